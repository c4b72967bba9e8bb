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

package hart

import "testing"

// fakeState is a minimal in-memory State used only to exercise the
// finish helpers; production hosts supply their own.
type fakeState struct {
	gpr  [32]uint64
	fpr  [32]uint64
	csr  map[uint32]uint64
	pc   uint64
	xlen int
}

func newFake() *fakeState {
	return &fakeState{csr: map[uint32]uint64{}, xlen: 64}
}

func (s *fakeState) clone() *fakeState {
	n := *s
	n.csr = make(map[uint32]uint64, len(s.csr))
	for k, v := range s.csr {
		n.csr[k] = v
	}
	return &n
}

func (s *fakeState) ReadGPR(idx uint32) uint64 { return s.gpr[idx] }
func (s *fakeState) WriteGPR(idx uint32, v uint64) State {
	n := s.clone()
	if idx != 0 {
		n.gpr[idx] = v
	}
	return n
}
func (s *fakeState) ReadFPR(idx uint32) uint64 { return s.fpr[idx] }
func (s *fakeState) WriteFPR(idx uint32, v uint64) State {
	n := s.clone()
	n.fpr[idx] = v
	return n
}
func (s *fakeState) ReadCSR(addr uint32) uint64 { return s.csr[addr] }
func (s *fakeState) WriteCSR(addr uint32, v uint64) State {
	n := s.clone()
	n.csr[addr] = v
	return n
}
func (s *fakeState) ReadPC() uint64 { return s.pc }
func (s *fakeState) WritePC(pc uint64) State {
	n := s.clone()
	n.pc = pc
	return n
}
func (s *fakeState) XLEN() int    { return s.xlen }
func (s *fakeState) RVMode() RVMode { return RV64 }
func (s *fakeState) VMIsActive(isInstr bool) bool { return false }
func (s *fakeState) VMTranslate(isInstr, isRead bool, va uint64) (uint64, ExcCode, bool, State) {
	return va, 0, true, s
}
func (s *fakeState) MemRead(defaultExc ExcCode, funct3 uint32, pa uint64) (uint64, ExcCode, bool, State) {
	return 0, 0, true, s
}
func (s *fakeState) MemWrite(funct3 uint32, pa uint64, v uint64) (ExcCode, bool, State) {
	return 0, true, s
}

func TestFinishRdAndPCIncr(t *testing.T) {
	m := newFake()
	m.pc = 0x1000
	next := FinishRdAndPCIncr(m, 5, 42, false)
	if next.ReadGPR(5) != 42 {
		t.Errorf("GPR[5] = %d; want 42", next.ReadGPR(5))
	}
	if next.ReadPC() != 0x1004 {
		t.Errorf("PC = %#x; want 0x1004", next.ReadPC())
	}
}

func TestFinishRdAndPCIncrDropsX0(t *testing.T) {
	m := newFake()
	next := FinishRdAndPCIncr(m, 0, 99, false)
	if next.ReadGPR(0) != 0 {
		t.Errorf("GPR[0] = %d; want 0 (writes to x0 are dropped)", next.ReadGPR(0))
	}
}

func TestFinishFrdFflagsAndPCPlus4BoxesSP(t *testing.T) {
	m := newFake()
	next := FinishFrdFflagsAndPCPlus4(m, 3, 0x3F800000, true, 0x01)
	if next.ReadFPR(3) != 0xFFFFFFFF3F800000 {
		t.Errorf("FPR[3] = %#x; want NaN-boxed", next.ReadFPR(3))
	}
	if next.ReadCSR(CSRAddrFflags) != 0x01 {
		t.Errorf("fflags = %#x; want 0x01", next.ReadCSR(CSRAddrFflags))
	}
}

func TestFinishGrdFflagsAccumulates(t *testing.T) {
	m := newFake()
	m = m.WriteCSR(CSRAddrFflags, 0x02).(*fakeState)
	next := FinishGrdFflagsAndPCPlus4(m, 1, 1, 0x04)
	if next.ReadCSR(CSRAddrFflags) != 0x06 {
		t.Errorf("fflags = %#x; want 0x06 (OR-accumulated)", next.ReadCSR(CSRAddrFflags))
	}
}

func TestFinishTrap(t *testing.T) {
	m := newFake()
	m.pc = 0x2000
	next := FinishTrap(m, ExcLoadAccessFault, 0xBADC0FFE)
	if next.ReadPC() != 0x2000 {
		t.Errorf("PC = %#x; want unchanged 0x2000", next.ReadPC())
	}
	if next.ReadCSR(csrAddrMcause) != uint64(ExcLoadAccessFault) {
		t.Errorf("mcause = %d; want %d", next.ReadCSR(csrAddrMcause), ExcLoadAccessFault)
	}
	if next.ReadCSR(csrAddrMtval) != 0xBADC0FFE {
		t.Errorf("mtval = %#x; want 0xBADC0FFE", next.ReadCSR(csrAddrMtval))
	}
}

func TestMisaHasFD(t *testing.T) {
	misa := misaBit('F') | misaBit('D') | misaBit('I') | misaBit('M')
	if !MisaHasF(misa) || !MisaHasD(misa) {
		t.Errorf("MisaHasF/D false for misa=%#x", misa)
	}
	if MisaHasD(misaBit('F')) {
		t.Errorf("MisaHasD should be false when only F is set")
	}
}
