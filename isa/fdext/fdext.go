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

// Package fdext implements the F/D semantic family of spec §4.6: the
// OP/FSGNJ/MIN-MAX/CMP/FCVT/FCLASS/FMV R-type dispatch (this file), the
// fused multiply-add R4-type family (fmadd.go), and the memory-touching
// FLW/FLD/FSW/FSD family (loadstore.go).
//
// Every entry point shares the same pure-function signature as the rest
// of this core (spec §2): (machine state, raw instruction, is_C) ->
// (legal, next state). Execute tries each sub-family opcode in turn.
package fdext

import (
	"github.com/rv64mfd/core/fpu"
	"github.com/rv64mfd/core/hart"
	"github.com/rv64mfd/core/isa"
	"github.com/rv64mfd/core/softfloat"
)

// funct7 values selecting the OP-family operation (opcode_FD_OP).
const (
	f7AddS   = 0x00
	f7SubS   = 0x04
	f7MulS   = 0x08
	f7DivS   = 0x0C
	f7SqrtS  = 0x2C
	f7SgnjS  = 0x10
	f7MinMaxS = 0x14
	f7CvtWS  = 0x60 // FCVT.{W,WU,L,LU}.S
	f7CvtSW  = 0x68 // FCVT.S.{W,WU,L,LU}
	f7MvXClassS = 0x70
	f7MvWX  = 0x78
	f7CmpS  = 0x50

	f7AddD   = 0x01
	f7SubD   = 0x05
	f7MulD   = 0x09
	f7DivD   = 0x0D
	f7SqrtD  = 0x2D
	f7SgnjD  = 0x11
	f7MinMaxD = 0x15
	f7CvtWD  = 0x61
	f7CvtDW  = 0x69
	f7MvXClassD = 0x71
	f7MvDX  = 0x79
	f7CmpD  = 0x51
	f7CvtSD = 0x20 // D -> S (rs2 must be 1)
	f7CvtDS = 0x21 // S -> D (rs2 must be 0)
)

// Execute tries the OP family, then the memory-touching families.
// isa/mext's Execute is tried separately by the caller's dispatch loop
// (spec §2: "callers chain these").
func Execute(m hart.State, inst uint32, isC bool) (bool, hart.State) {
	opcode := inst & 0x7F
	switch opcode {
	case isa.OpFDOp:
		return executeOp(m, inst, isC)
	case isa.OpFMADD, isa.OpFMSUB, isa.OpFNMSUB, isa.OpFNMADD:
		return executeFmadd(m, inst, isC)
	case isa.OpFDLoad:
		return executeLoad(m, inst, isC)
	case isa.OpFDStore:
		return executeStore(m, inst, isC)
	default:
		return false, m
	}
}

func hasF(m hart.State) bool { return hart.MisaHasF(m.ReadCSR(hart.CSRAddrMisa)) }
func hasD(m hart.State) bool { return hart.MisaHasD(m.ReadCSR(hart.CSRAddrMisa)) }

func rm(m hart.State, instRm uint32) (fpu.RoundingMode, bool) {
	return fpu.ResolveRoundingMode(instRm, uint32(m.ReadCSR(hart.CSRAddrFrm)))
}

func executeOp(m hart.State, inst uint32, isC bool) (bool, hart.State) {
	r := isa.DecodeR(inst)
	switch r.Funct7 {
	case f7AddS, f7SubS, f7MulS, f7DivS:
		return opArithSP(m, r, isC)
	case f7AddD, f7SubD, f7MulD, f7DivD:
		return opArithDP(m, r, isC)
	case f7SqrtS:
		return opSqrtSP(m, r, isC)
	case f7SqrtD:
		return opSqrtDP(m, r, isC)
	case f7SgnjS:
		return opSgnjSP(m, r, isC)
	case f7SgnjD:
		return opSgnjDP(m, r, isC)
	case f7MinMaxS:
		return opMinMaxSP(m, r, isC)
	case f7MinMaxD:
		return opMinMaxDP(m, r, isC)
	case f7CmpS:
		return opCmpSP(m, r, isC)
	case f7CmpD:
		return opCmpDP(m, r, isC)
	case f7CvtWS:
		return opCvtToIntSP(m, r, isC)
	case f7CvtWD:
		return opCvtToIntDP(m, r, isC)
	case f7CvtSW:
		return opCvtIntToSP(m, r, isC)
	case f7CvtDW:
		return opCvtIntToDP(m, r, isC)
	case f7CvtSD:
		return opCvtDToS(m, r, isC)
	case f7CvtDS:
		return opCvtSToD(m, r, isC)
	case f7MvXClassS:
		return opMvXClassSP(m, r, isC)
	case f7MvXClassD:
		return opMvXClassDP(m, r, isC)
	case f7MvWX:
		return opMvWX(m, r, isC)
	case f7MvDX:
		return opMvDX(m, r, isC)
	default:
		return false, m
	}
}

func opArithSP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	a := fpu.UnboxSP(m.ReadFPR(r.RS1))
	b := fpu.UnboxSP(m.ReadFPR(r.RS2))
	var res uint32
	var flags softfloat.Flags
	switch r.Funct7 {
	case f7AddS:
		res, flags = softfloat.AddSP(mode, a, b)
	case f7SubS:
		res, flags = softfloat.SubSP(mode, a, b)
	case f7MulS:
		res, flags = softfloat.MulSP(mode, a, b)
	case f7DivS:
		res, flags = softfloat.DivSP(mode, a, b)
	}
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, uint64(res), true, uint32(flags))
}

func opArithDP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	a := m.ReadFPR(r.RS1)
	b := m.ReadFPR(r.RS2)
	var res uint64
	var flags softfloat.Flags
	switch r.Funct7 {
	case f7AddD:
		res, flags = softfloat.AddDP(mode, a, b)
	case f7SubD:
		res, flags = softfloat.SubDP(mode, a, b)
	case f7MulD:
		res, flags = softfloat.MulDP(mode, a, b)
	case f7DivD:
		res, flags = softfloat.DivDP(mode, a, b)
	}
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, res, false, uint32(flags))
}

func opSqrtSP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) || r.RS2 != 0 {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	a := fpu.UnboxSP(m.ReadFPR(r.RS1))
	res, flags := softfloat.SqrtSP(mode, a)
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, uint64(res), true, uint32(flags))
}

func opSqrtDP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) || r.RS2 != 0 {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	a := m.ReadFPR(r.RS1)
	res, flags := softfloat.SqrtDP(mode, a)
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, res, false, uint32(flags))
}

// opSgnjSP/opSgnjDP implement FSGNJ/FSGNJN/FSGNJX, selected by funct3
// (000/001/010): combine rs2's sign bit (as-is, inverted, or XOR'd with
// rs1's own sign) with rs1's exponent and mantissa. No flags.
func opSgnjSP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) || r.Funct3 > 2 {
		return false, m
	}
	a := fpu.UnboxSP(m.ReadFPR(r.RS1))
	b := fpu.UnboxSP(m.ReadFPR(r.RS2))
	var sign uint32
	switch r.Funct3 {
	case 0:
		sign = fpu.SignSP(b)
	case 1:
		sign = fpu.SignSP(b) ^ 1
	case 2:
		sign = fpu.SignSP(a) ^ fpu.SignSP(b)
	}
	res := sign<<31 | a&0x7FFFFFFF
	return true, hart.FinishFrdAndPCPlus4(m, r.RD, uint64(res), true)
}

func opSgnjDP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) || r.Funct3 > 2 {
		return false, m
	}
	a := m.ReadFPR(r.RS1)
	b := m.ReadFPR(r.RS2)
	var sign uint64
	switch r.Funct3 {
	case 0:
		sign = fpu.SignDP(b)
	case 1:
		sign = fpu.SignDP(b) ^ 1
	case 2:
		sign = fpu.SignDP(a) ^ fpu.SignDP(b)
	}
	res := sign<<63 | a&0x7FFFFFFFFFFFFFFF
	return true, hart.FinishFrdAndPCPlus4(m, r.RD, res, false)
}

func opMinMaxSP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) || r.Funct3 > 1 {
		return false, m
	}
	a := fpu.UnboxSP(m.ReadFPR(r.RS1))
	b := fpu.UnboxSP(m.ReadFPR(r.RS2))
	var res uint32
	var flags softfloat.Flags
	if r.Funct3 == 0 {
		res, flags = softfloat.MinSP(a, b)
	} else {
		res, flags = softfloat.MaxSP(a, b)
	}
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, uint64(res), true, uint32(flags))
}

func opMinMaxDP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) || r.Funct3 > 1 {
		return false, m
	}
	a := m.ReadFPR(r.RS1)
	b := m.ReadFPR(r.RS2)
	var res uint64
	var flags softfloat.Flags
	if r.Funct3 == 0 {
		res, flags = softfloat.MinDP(a, b)
	} else {
		res, flags = softfloat.MaxDP(a, b)
	}
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, res, false, uint32(flags))
}

// opCmpSP/opCmpDP implement FEQ/FLT/FLE (funct3 010/001/000) writing a
// 0/1 result to a GPR.
func opCmpSP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) {
		return false, m
	}
	a := fpu.UnboxSP(m.ReadFPR(r.RS1))
	b := fpu.UnboxSP(m.ReadFPR(r.RS2))
	var ok bool
	var flags softfloat.Flags
	switch r.Funct3 {
	case 2:
		ok, flags = softfloat.EqSP(a, b)
	case 1:
		ok, flags = softfloat.LtSP(a, b)
	case 0:
		ok, flags = softfloat.LeSP(a, b)
	default:
		return false, m
	}
	return true, hart.FinishGrdFflagsAndPCPlus4(m, r.RD, boolToU64(ok), uint32(flags))
}

func opCmpDP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) {
		return false, m
	}
	a := m.ReadFPR(r.RS1)
	b := m.ReadFPR(r.RS2)
	var ok bool
	var flags softfloat.Flags
	switch r.Funct3 {
	case 2:
		ok, flags = softfloat.EqDP(a, b)
	case 1:
		ok, flags = softfloat.LtDP(a, b)
	case 0:
		ok, flags = softfloat.LeDP(a, b)
	default:
		return false, m
	}
	return true, hart.FinishGrdFflagsAndPCPlus4(m, r.RD, boolToU64(ok), uint32(flags))
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// rs2 selects the integer kind in the FCVT.{W,S}.{S,D} matrices (spec
// §4.6): 0=signed32, 1=unsigned32, 2=signed64 (RV64 only), 3=unsigned64
// (RV64 only).
func intKindFromRS2(rs2 uint32) (signed bool, width int, ok bool) {
	switch rs2 {
	case 0:
		return true, 32, true
	case 1:
		return false, 32, true
	case 2:
		return true, 64, true
	case 3:
		return false, 64, true
	default:
		return false, 0, false
	}
}

func opCvtToIntSP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) {
		return false, m
	}
	signed, width, ok := intKindFromRS2(r.RS2)
	if !ok || (width == 64 && m.RVMode() != hart.RV64) {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	a := fpu.UnboxSP(m.ReadFPR(r.RS1))
	res, flags := softfloat.CvtSPToInt(mode, a, signed, width)
	if signed {
		res = signExtendToXLEN(res, width, m.XLEN())
	} else if width == 32 {
		res = signExtendToXLEN(res, 32, m.XLEN())
	}
	return true, hart.FinishGrdFflagsAndPCPlus4(m, r.RD, res, uint32(flags))
}

func opCvtToIntDP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) {
		return false, m
	}
	signed, width, ok := intKindFromRS2(r.RS2)
	if !ok || (width == 64 && m.RVMode() != hart.RV64) {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	a := m.ReadFPR(r.RS1)
	res, flags := softfloat.CvtDPToInt(mode, a, signed, width)
	if signed {
		res = signExtendToXLEN(res, width, m.XLEN())
	} else if width == 32 {
		res = signExtendToXLEN(res, 32, m.XLEN())
	}
	return true, hart.FinishGrdFflagsAndPCPlus4(m, r.RD, res, uint32(flags))
}

// signExtendToXLEN sign-extends a width-bit two's-complement result up
// to the register width XLEN, matching how FCVT.int.S/D destinations
// are defined to behave when width < XLEN.
func signExtendToXLEN(v uint64, width, xlen int) uint64 {
	if width >= xlen {
		return v
	}
	bit := uint64(1) << (width - 1)
	if v&bit != 0 {
		return v | (^uint64(0) << uint(width))
	}
	return v
}

func opCvtIntToSP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) {
		return false, m
	}
	signed, width, ok := intKindFromRS2(r.RS2)
	if !ok || (width == 64 && m.RVMode() != hart.RV64) {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	v := m.ReadGPR(r.RS1)
	res, flags := softfloat.CvtIntToSP(mode, v, signed, width)
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, uint64(res), true, uint32(flags))
}

func opCvtIntToDP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) {
		return false, m
	}
	signed, width, ok := intKindFromRS2(r.RS2)
	if !ok || (width == 64 && m.RVMode() != hart.RV64) {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	v := m.ReadGPR(r.RS1)
	res, flags := softfloat.CvtIntToDP(mode, v, signed, width)
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, res, false, uint32(flags))
}

// opCvtDToS/opCvtSToD implement FCVT.S.D (rs2 must be 1) and FCVT.D.S
// (rs2 must be 0); both require F and D.
func opCvtDToS(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) || !hasD(m) || r.RS2 != 1 {
		return false, m
	}
	mode, legal := rm(m, r.Funct3)
	if !legal {
		return false, m
	}
	a := m.ReadFPR(r.RS1)
	res, flags := softfloat.CvtDPToSP(mode, a)
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, uint64(res), true, uint32(flags))
}

func opCvtSToD(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) || !hasD(m) || r.RS2 != 0 {
		return false, m
	}
	a := fpu.UnboxSP(m.ReadFPR(r.RS1))
	res, flags := softfloat.CvtSPToDP(a)
	return true, hart.FinishFrdFflagsAndPCPlus4(m, r.RD, res, false, uint32(flags))
}

// opMvXClassSP/opMvXClassDP implement FMV.X.W/FCLASS.S and
// FMV.X.D/FCLASS.D, selected by funct3 (000=FMV.X, 001=FCLASS); both
// require rs2==0 and no rounding-mode field is consulted.
func opMvXClassSP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) || r.RS2 != 0 || r.Funct3 > 1 {
		return false, m
	}
	var res uint64
	if r.Funct3 == 0 {
		// FMV.X.W is a raw bit move, not an FP operation: it takes the
		// low 32 bits of the FPR as-is, NaN-boxed or not, and sign-extends
		// them to XLEN.
		res = signExtendToXLEN(uint64(uint32(m.ReadFPR(r.RS1))), 32, m.XLEN())
	} else {
		res = fpu.ClassifySP(fpu.UnboxSP(m.ReadFPR(r.RS1)))
	}
	return true, hart.FinishRdAndPCIncr(m, r.RD, res, isC)
}

func opMvXClassDP(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) || r.RS2 != 0 || r.Funct3 > 1 {
		return false, m
	}
	if r.Funct3 == 0 && m.RVMode() != hart.RV64 {
		return false, m
	}
	bits := m.ReadFPR(r.RS1)
	var res uint64
	if r.Funct3 == 0 {
		res = bits
	} else {
		res = fpu.ClassifyDP(bits)
	}
	return true, hart.FinishRdAndPCIncr(m, r.RD, res, isC)
}

// opMvWX/opMvDX implement FMV.W.X and FMV.D.X: raw bit moves from GPR
// to FPR, no flags. FMV.D.X is RV64-only.
func opMvWX(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasF(m) || r.RS2 != 0 || r.Funct3 != 0 {
		return false, m
	}
	v := uint32(m.ReadGPR(r.RS1))
	return true, hart.FinishFrdAndPCPlus4(m, r.RD, uint64(v), true)
}

func opMvDX(m hart.State, r isa.RType, isC bool) (bool, hart.State) {
	if !hasD(m) || r.RS2 != 0 || r.Funct3 != 0 || m.RVMode() != hart.RV64 {
		return false, m
	}
	v := m.ReadGPR(r.RS1)
	return true, hart.FinishFrdAndPCPlus4(m, r.RD, v, false)
}
