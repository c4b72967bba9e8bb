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

// Package conformance exercises the cross-cutting invariants and the
// concrete instruction scenarios of this core as a ginkgo/gomega BDD
// suite, dispatching raw instruction words through isa/mext and
// isa/fdext against a small in-memory hart.State implementation.
package conformance

import "github.com/rv64mfd/core/hart"

// machine is a flat, fully in-memory hart.State used only by this
// suite: no virtual memory, a byte-addressed map-backed store, and
// functional (copy-on-write) updates matching the State contract.
type machine struct {
	gpr  [32]uint64
	fpr  [32]uint64
	csr  map[uint32]uint64
	pc   uint64
	xlen int
	rv   hart.RVMode
	mem  map[uint64]byte
}

func newMachine() *machine {
	m := &machine{csr: map[uint32]uint64{}, xlen: 64, rv: hart.RV64, mem: map[uint64]byte{}}
	m.csr[hart.CSRAddrMisa] = 1<<('F'-'A') | 1<<('D'-'A') | 1<<('M'-'A')
	m.csr[hart.CSRAddrFrm] = 0 // RNE
	m.pc = 0x1000
	return m
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
