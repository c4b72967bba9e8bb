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

package fdext

import (
	"github.com/rv64mfd/core/bits"
	"github.com/rv64mfd/core/hart"
	"github.com/rv64mfd/core/isa"
)

// funct3 values for FLW/FLD/FSW/FSD (spec §4.7): these share the
// ordinary load/store funct3 encoding, width-coded.
const (
	funct3W = 2
	funct3D = 3
)

// executeLoad implements FLW/FLD's state machine (spec §4.7): compute
// the effective address, translate it if VM is active, read memory, and
// write the result to the destination FPR (NaN-boxing single-precision
// values). A VM or memory fault finishes as a trap instead, with PC left
// untouched, per spec §7.
func executeLoad(m hart.State, inst uint32, isC bool) (bool, hart.State) {
	i := isa.DecodeI(inst)
	isSP := i.Funct3 == funct3W
	isDP := i.Funct3 == funct3D
	if !isSP && !isDP {
		return false, m
	}
	if isSP && !hasF(m) {
		return false, m
	}
	if isDP && !hasD(m) {
		return false, m
	}

	ea := m.ReadGPR(i.RS1) + i.Imm12
	if m.XLEN() == 32 {
		ea = bits.TruncXLEN(ea, 32)
	}

	pa, trapped, next := translate(m, false, true, ea)
	if trapped {
		return true, next
	}

	width := uint32(funct3W)
	if isDP {
		width = funct3D
	}
	val, exc, ok, next2 := next.MemRead(hart.ExcLoadAccessFault, width, pa)
	if !ok {
		return true, hart.FinishTrap(next2, exc, ea)
	}
	return true, hart.FinishFrdAndPCPlus4(next2, i.RD, val, isSP)
}

// executeStore implements FSW/FSD's state machine symmetrically.
func executeStore(m hart.State, inst uint32, isC bool) (bool, hart.State) {
	s := isa.DecodeS(inst)
	isSP := s.Funct3 == funct3W
	isDP := s.Funct3 == funct3D
	if !isSP && !isDP {
		return false, m
	}
	if isSP && !hasF(m) {
		return false, m
	}
	if isDP && !hasD(m) {
		return false, m
	}

	ea := m.ReadGPR(s.RS1) + s.Imm12
	if m.XLEN() == 32 {
		ea = bits.TruncXLEN(ea, 32)
	}

	pa, trapped, next := translate(m, false, false, ea)
	if trapped {
		return true, next
	}

	val := next.ReadFPR(s.RS2)
	if isSP {
		val &= 0xFFFFFFFF
	}
	width := uint32(funct3W)
	if isDP {
		width = funct3D
	}
	exc, ok, next2 := next.MemWrite(width, pa, val)
	if !ok {
		return true, hart.FinishTrap(next2, exc, ea)
	}
	return true, next2.WritePC(next2.ReadPC() + 4)
}

// translate applies spec §4.7's "if VM active: translate" step. trapped
// reports that the returned state is already a finished trap snapshot
// and the caller should return it directly.
func translate(m hart.State, isInstr, isRead bool, va uint64) (pa uint64, trapped bool, next hart.State) {
	if !m.VMIsActive(isInstr) {
		return va, false, m
	}
	p, exc, ok, n := m.VMTranslate(isInstr, isRead, va)
	if !ok {
		return 0, true, hart.FinishTrap(n, exc, va)
	}
	return p, false, n
}
