// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rv64mfd/core/hart"
)

// snapshot is the JSON-described register/CSR/memory state this tool
// reads and writes: a flat decode/execute-one-instruction input and
// output, never a program image. Numeric fields are hex strings
// ("0x...") so 64-bit values round-trip exactly through JSON.
type snapshot struct {
	XLEN   int               `json:"xlen"`
	RVMode int               `json:"rv_mode"`
	PC     string            `json:"pc"`
	GPR    map[string]string `json:"gpr,omitempty"`
	FPR    map[string]string `json:"fpr,omitempty"`
	CSR    map[string]string `json:"csr,omitempty"`
	Mem    map[string]string `json:"mem,omitempty"`
}

func parseHex64(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(trimHexPrefix(s), 16, 64)
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		return s[2:]
	}
	return s
}

func formatHex64(v uint64) string { return fmt.Sprintf("0x%x", v) }

// machine adapts a snapshot into hart.State: a flat, VM-disabled,
// byte-addressed store, with functional (copy-on-write) updates per
// the State contract.
type machine struct {
	gpr  [32]uint64
	fpr  [32]uint64
	csr  map[uint32]uint64
	pc   uint64
	xlen int
	rv   hart.RVMode
	mem  map[uint64]byte
}

func newMachineFromSnapshot(s *snapshot) (*machine, error) {
	m := &machine{csr: map[uint32]uint64{}, mem: map[uint64]byte{}}
	m.xlen = s.XLEN
	if m.xlen == 0 {
		m.xlen = 64
	}
	m.rv = hart.RVMode(s.RVMode)
	if m.rv == 0 {
		m.rv = hart.RV64
	}
	pc, err := parseHex64(s.PC)
	if err != nil {
		return nil, fmt.Errorf("pc: %w", err)
	}
	m.pc = pc

	if err := fillRegs(s.GPR, m.gpr[:]); err != nil {
		return nil, fmt.Errorf("gpr: %w", err)
	}
	if err := fillRegs(s.FPR, m.fpr[:]); err != nil {
		return nil, fmt.Errorf("fpr: %w", err)
	}
	for k, v := range s.CSR {
		idx, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("csr key %q: %w", k, err)
		}
		val, err := parseHex64(v)
		if err != nil {
			return nil, fmt.Errorf("csr %q: %w", k, err)
		}
		m.csr[uint32(idx)] = val
	}
	for k, v := range s.Mem {
		addr, err := parseHex64(k)
		if err != nil {
			return nil, fmt.Errorf("mem key %q: %w", k, err)
		}
		val, err := parseHex64(v)
		if err != nil {
			return nil, fmt.Errorf("mem %q: %w", k, err)
		}
		m.mem[addr] = byte(val)
	}
	return m, nil
}

func fillRegs(in map[string]string, out []uint64) error {
	for k, v := range in {
		idx, err := strconv.ParseUint(k, 10, 32)
		if err != nil || idx >= uint64(len(out)) {
			return fmt.Errorf("register index %q out of range", k)
		}
		val, err := parseHex64(v)
		if err != nil {
			return err
		}
		out[idx] = val
	}
	return nil
}

func (m *machine) toSnapshot() *snapshot {
	s := &snapshot{
		XLEN:   m.xlen,
		RVMode: int(m.rv),
		PC:     formatHex64(m.pc),
		GPR:    map[string]string{},
		FPR:    map[string]string{},
		CSR:    map[string]string{},
	}
	for i, v := range m.gpr {
		if v != 0 {
			s.GPR[strconv.Itoa(i)] = formatHex64(v)
		}
	}
	for i, v := range m.fpr {
		if v != 0 {
			s.FPR[strconv.Itoa(i)] = formatHex64(v)
		}
	}
	for k, v := range m.csr {
		s.CSR[strconv.FormatUint(uint64(k), 10)] = formatHex64(v)
	}
	if len(m.mem) > 0 {
		s.Mem = map[string]string{}
		for k, v := range m.mem {
			s.Mem[formatHex64(k)] = formatHex64(uint64(v))
		}
	}
	return s
}

func (m *machine) clone() *machine {
	n := *m
	n.csr = map[uint32]uint64{}
	for k, v := range m.csr {
		n.csr[k] = v
	}
	n.mem = map[uint64]byte{}
	for k, v := range m.mem {
		n.mem[k] = v
	}
	return &n
}

func (m *machine) ReadGPR(idx uint32) uint64 { return m.gpr[idx] }
func (m *machine) WriteGPR(idx uint32, v uint64) hart.State {
	n := m.clone()
	if idx != 0 {
		n.gpr[idx] = v
	}
	return n
}
func (m *machine) ReadFPR(idx uint32) uint64 { return m.fpr[idx] }
func (m *machine) WriteFPR(idx uint32, v uint64) hart.State {
	n := m.clone()
	n.fpr[idx] = v
	return n
}
func (m *machine) ReadCSR(addr uint32) uint64 { return m.csr[addr] }
func (m *machine) WriteCSR(addr uint32, v uint64) hart.State {
	n := m.clone()
	n.csr[addr] = v
	return n
}
func (m *machine) ReadPC() uint64 { return m.pc }
func (m *machine) WritePC(pc uint64) hart.State {
	n := m.clone()
	n.pc = pc
	return n
}
func (m *machine) XLEN() int           { return m.xlen }
func (m *machine) RVMode() hart.RVMode { return m.rv }

func (m *machine) VMIsActive(isInstr bool) bool { return false }

func (m *machine) VMTranslate(isInstr, isRead bool, va uint64) (uint64, hart.ExcCode, bool, hart.State) {
	return va, 0, true, m
}

func (m *machine) MemRead(defaultExc hart.ExcCode, funct3 uint32, pa uint64) (uint64, hart.ExcCode, bool, hart.State) {
	width := 1 << funct3
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(m.mem[pa+uint64(i)]) << (8 * i)
	}
	return v, 0, true, m
}

func (m *machine) MemWrite(funct3 uint32, pa uint64, v uint64) (hart.ExcCode, bool, hart.State) {
	n := m.clone()
	width := 1 << funct3
	for i := 0; i < width; i++ {
		n.mem[pa+uint64(i)] = byte(v >> (8 * i))
	}
	return 0, true, n
}

func decodeSnapshot(raw []byte) (*snapshot, error) {
	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
