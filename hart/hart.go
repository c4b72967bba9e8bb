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

// Package hart defines the narrow host interface the M/F/D semantic
// families are written against (spec §6), the finish-instruction helpers
// of spec §4.8, and the trap/exception vocabulary those helpers and the
// memory-touching families (FLW/FLD/FSW/FSD) need.
//
// State is supplied by the host; this core never constructs one. Every
// mutator returns a new State rather than mutating in place, matching
// the purely functional, snapshot-to-snapshot model of spec §5.
package hart

import "fmt"

// RVMode selects RV32 or RV64, per spec §3.
type RVMode int

const (
	RV32 RVMode = 32
	RV64 RVMode = 64
)

// ExcCode is a RISC-V trap cause code, used both as the fixed "default"
// exception a memory access should raise when no more specific cause
// applies and as the code the VM/memory subsystem actually returns.
type ExcCode uint32

const (
	ExcInstrAddrMisaligned ExcCode = 0
	ExcInstrAccessFault    ExcCode = 1
	ExcIllegalInstr        ExcCode = 2
	ExcLoadAddrMisaligned  ExcCode = 4
	ExcLoadAccessFault     ExcCode = 5
	ExcStoreAddrMisaligned ExcCode = 6
	ExcStoreAccessFault    ExcCode = 7
	ExcInstrPageFault      ExcCode = 12
	ExcLoadPageFault       ExcCode = 13
	ExcStorePageFault      ExcCode = 15
)

// CSR addresses fixed by the RISC-V privileged spec (spec §6).
const (
	CSRAddrFflags uint32 = 0x001
	CSRAddrFrm    uint32 = 0x002
	CSRAddrFcsr   uint32 = 0x003
	CSRAddrMisa   uint32 = 0x301
)

// misa extension-letter bit positions, indexed A=0 .. Z=25.
func misaBit(letter byte) uint64 {
	return 1 << uint(letter-'A')
}

// MisaHasF/MisaHasD test the F and D bits of a raw misa CSR value.
func MisaHasF(misa uint64) bool { return misa&misaBit('F') != 0 }
func MisaHasD(misa uint64) bool { return misa&misaBit('D') != 0 }

// State is the host-supplied machine-state snapshot every semantic
// function in isa/mext and isa/fdext is written against (spec §6's
// callee-supplied interface). Every mutator is functional: it returns
// the next snapshot rather than mutating the receiver.
type State interface {
	ReadGPR(idx uint32) uint64
	WriteGPR(idx uint32, v uint64) State

	ReadFPR(idx uint32) uint64
	WriteFPR(idx uint32, v uint64) State

	ReadCSR(addr uint32) uint64
	WriteCSR(addr uint32, v uint64) State

	ReadPC() uint64
	WritePC(pc uint64) State

	XLEN() int
	RVMode() RVMode

	// VMIsActive reports whether address translation applies to the
	// given access kind (isInstr distinguishes fetch from data access;
	// only data access matters to this core, since it never fetches).
	VMIsActive(isInstr bool) bool

	// VMTranslate maps a virtual address to a physical one. ok=false
	// means the translation faulted with the returned code.
	VMTranslate(isInstr, isRead bool, va uint64) (pa uint64, exc ExcCode, ok bool, next State)

	// MemRead/MemWrite perform a width-coded (funct3) access at a
	// physical address. ok=false means the access faulted with the
	// returned code (defaultExc on MemRead is the code to report if the
	// backing store has no more specific cause of its own).
	MemRead(defaultExc ExcCode, funct3 uint32, pa uint64) (val uint64, exc ExcCode, ok bool, next State)
	MemWrite(funct3 uint32, pa uint64, v uint64) (exc ExcCode, ok bool, next State)
}

// FinishRdAndPCIncr implements spec §4.8's finish_rd_and_pc_incr: write
// an integer result to rd (writes to x0 are dropped by convention of the
// host's WriteGPR) and advance PC by 2 (compressed) or 4.
func FinishRdAndPCIncr(m State, rd uint32, val uint64, isC bool) State {
	m = m.WriteGPR(rd, val)
	return m.WritePC(m.ReadPC() + pcIncr(isC))
}

// FinishFrdAndPCPlus4 implements finish_frd_and_pc_plus_4: write an FPR
// result (NaN-boxed if the op was single-precision) and advance PC by 4.
// F/D ops are never compressed-instruction expansions in this core.
func FinishFrdAndPCPlus4(m State, rd uint32, val uint64, isSP bool) State {
	m = m.WriteFPR(rd, boxIfSP(val, isSP))
	return m.WritePC(m.ReadPC() + 4)
}

// FinishFrdFflagsAndPCPlus4 is FinishFrdAndPCPlus4 plus an OR-accumulate
// into fflags.
func FinishFrdFflagsAndPCPlus4(m State, rd uint32, val uint64, isSP bool, flags uint32) State {
	m = accumulateFflags(m, flags)
	m = m.WriteFPR(rd, boxIfSP(val, isSP))
	return m.WritePC(m.ReadPC() + 4)
}

// FinishGrdFflagsAndPCPlus4 is for GPR destinations (FCVT.int.S/D,
// FCMP) that still accumulate fflags.
func FinishGrdFflagsAndPCPlus4(m State, rd uint32, val uint64, flags uint32) State {
	m = accumulateFflags(m, flags)
	m = m.WriteGPR(rd, val)
	return m.WritePC(m.ReadPC() + 4)
}

// FinishTrap implements finish_trap: record the cause and faulting
// value. PC is left untouched; redirecting it to the trap vector is the
// host trap layer's responsibility, not this core's (spec §4.8, §7).
func FinishTrap(m State, exc ExcCode, tval uint64) State {
	m = m.WriteCSR(csrAddrMcause, uint64(exc))
	return m.WriteCSR(csrAddrMtval, tval)
}

// mcause/mtval are not part of spec §6's fixed CSR list (only misa,
// frm, fflags are read by the semantic functions themselves), but
// finish_trap has to put the fault somewhere a host trap layer can find
// it; these addresses match the RISC-V privileged spec's machine-mode
// trap CSRs.
const (
	csrAddrMcause uint32 = 0x342
	csrAddrMtval  uint32 = 0x343
)

func pcIncr(isC bool) uint64 {
	if isC {
		return 2
	}
	return 4
}

func boxIfSP(val uint64, isSP bool) uint64 {
	if isSP {
		return 0xFFFFFFFF00000000 | (val & 0xFFFFFFFF)
	}
	return val
}

func accumulateFflags(m State, flags uint32) State {
	if flags == 0 {
		return m
	}
	cur := m.ReadCSR(CSRAddrFflags)
	return m.WriteCSR(CSRAddrFflags, cur|uint64(flags))
}

// Dump renders a one-line debug summary of a State: PC, XLEN and the
// misa/frm/fflags CSRs (no GPR or FPR contents); it has no bearing on
// simulation semantics.
func Dump(m State) string {
	return fmt.Sprintf("pc=%#x xlen=%d misa=%#x frm=%d fflags=%#x",
		m.ReadPC(), m.XLEN(), m.ReadCSR(CSRAddrMisa), m.ReadCSR(CSRAddrFrm), m.ReadCSR(CSRAddrFflags))
}
