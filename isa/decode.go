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

// Package isa holds the instruction-field decoders and opcode constants
// shared by the M and F/D semantic families (spec §4.1, §6).
//
// Unlike a full fetch/decode stage, this package never chooses which
// semantic function to call: it only slices bits out of a raw 32-bit
// instruction word into the fields (opcode, funct3, funct7, rd, rs1, rs2,
// rs3, rm, imm) each family needs to compute its own discriminants.
package isa

import rvbits "github.com/rv64mfd/core/bits"

// Opcodes this core cares about (riscv-spec-v2.2 Table 19.1). Opcodes for
// base-integer/compressed/other extensions are out of scope.
const (
	OpOP      = 0x33 // integer R-type (OP and the M-extension share it)
	OpOP32    = 0x3B // integer R-type, 32-bit results, RV64 only
	OpFDLoad  = 0x07 // FLW/FLD
	OpFDStore = 0x27 // FSW/FSD
	OpFDOp    = 0x53 // FP R-type (OP/FSGNJ/FCVT/MIN/MAX/CMP/FMV/FCLASS)
	OpFMADD   = 0x43
	OpFMSUB   = 0x47
	OpFNMSUB  = 0x4B
	OpFNMADD  = 0x4F
)

// MFunct7 is the funct7 value shared by every M-extension OP/OP-32
// instruction.
const MFunct7 = 0x01

// Static rounding-mode encodings for the rm instruction field (spec §4.4).
const (
	RNE = 0 // round to nearest, ties to even
	RTZ = 1 // round towards zero
	RDN = 2 // round down (towards -inf)
	RUP = 3 // round up (towards +inf)
	RMM = 4 // round to nearest, ties to max magnitude
	DYN = 7 // use frm
)

// RType is the decoded form of an R-type instruction (funct7 rs2 rs1
// funct3 rd opcode).
type RType struct {
	Opcode uint32
	Funct7 uint32
	Funct3 uint32
	RS1    uint32
	RS2    uint32
	RD     uint32
}

// DecodeR decodes in as an R-type instruction.
func DecodeR(in uint32) RType {
	return RType{
		Opcode: rvbits.Field(in, 6, 0),
		Funct7: rvbits.Field(in, 31, 25),
		Funct3: rvbits.Field(in, 14, 12),
		RS1:    rvbits.Field(in, 19, 15),
		RS2:    rvbits.Field(in, 24, 20),
		RD:     rvbits.Field(in, 11, 7),
	}
}

// IType is the decoded form of an I-type instruction; Imm12 is already
// sign-extended to 64 bits.
type IType struct {
	Opcode uint32
	Funct3 uint32
	RS1    uint32
	RD     uint32
	Imm12  uint64
}

// DecodeI decodes in as an I-type instruction.
func DecodeI(in uint32) IType {
	imm := rvbits.Field(in, 31, 20)
	return IType{
		Opcode: rvbits.Field(in, 6, 0),
		Funct3: rvbits.Field(in, 14, 12),
		RS1:    rvbits.Field(in, 19, 15),
		RD:     rvbits.Field(in, 11, 7),
		Imm12:  rvbits.SignExtend(uint64(imm), 11),
	}
}

// SType is the decoded form of an S-type instruction (used by FSW/FSD);
// Imm12 is already sign-extended to 64 bits.
type SType struct {
	Opcode uint32
	Funct3 uint32
	RS1    uint32
	RS2    uint32
	Imm12  uint64
}

// DecodeS decodes in as an S-type instruction.
func DecodeS(in uint32) SType {
	imm := rvbits.Field(in, 31, 25)<<5 | rvbits.Field(in, 11, 7)
	return SType{
		Opcode: rvbits.Field(in, 6, 0),
		Funct3: rvbits.Field(in, 14, 12),
		RS1:    rvbits.Field(in, 19, 15),
		RS2:    rvbits.Field(in, 24, 20),
		Imm12:  rvbits.SignExtend(uint64(imm), 11),
	}
}

// R4Type is the decoded form of an R4-type instruction: the fused
// multiply-add family (rs3 funct2 rs2 rs1 rm rd opcode).
type R4Type struct {
	Opcode uint32
	RS3    uint32
	Funct2 uint32
	RS2    uint32
	RS1    uint32
	RM     uint32
	RD     uint32
}

// DecodeR4 decodes in as an R4-type instruction.
func DecodeR4(in uint32) R4Type {
	return R4Type{
		Opcode: rvbits.Field(in, 6, 0),
		RS3:    rvbits.Field(in, 31, 27),
		Funct2: rvbits.Field(in, 26, 25),
		RS2:    rvbits.Field(in, 24, 20),
		RS1:    rvbits.Field(in, 19, 15),
		RM:     rvbits.Field(in, 14, 12),
		RD:     rvbits.Field(in, 11, 7),
	}
}
