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

// Package mext implements the M-extension semantic family of spec §4.2:
// MUL/MULH/MULHU/MULHSU, DIV/DIVU/REM/REMU, and their RV64-only W
// variants, as the single pure function Execute shares with every other
// instruction family (spec §2): given machine state, the raw
// instruction, and is_C, it returns (legal, next-state).
package mext

import (
	"github.com/rv64mfd/core/hart"
	"github.com/rv64mfd/core/intalu"
	"github.com/rv64mfd/core/isa"
)

// funct3 encodings shared by OP and OP-32 (spec §4.2 table).
const (
	funct3Mul    = 0
	funct3Mulh   = 1
	funct3Mulhsu = 2
	funct3Mulhu  = 3
	funct3Div    = 4
	funct3Divu   = 5
	funct3Rem    = 6
	funct3Remu   = 7
)

// Execute decodes inst as an R-type instruction and, if it is a legal
// M-extension opcode/funct7/funct3/rv-mode combination, computes and
// commits the result. legal=false leaves m untouched, per spec §2 and
// §7's illegal-instruction contract.
func Execute(m hart.State, inst uint32, isC bool) (legal bool, next hart.State) {
	r := isa.DecodeR(inst)
	if r.Funct7 != isa.MFunct7 {
		return false, m
	}

	isOp := r.Opcode == isa.OpOP
	isOp32 := r.Opcode == isa.OpOP32
	if !isOp && !isOp32 {
		return false, m
	}
	if isOp32 && m.RVMode() != hart.RV64 {
		return false, m
	}

	w := intalu.Width64
	if isOp32 {
		w = intalu.Width32
	} else if m.XLEN() == 32 {
		w = intalu.Width32
	}

	// MULHW/MULHSUW/MULHUW don't exist: the W opcode only defines the low
	// product (MULW) and the four division ops.
	if isOp32 {
		switch r.Funct3 {
		case funct3Mulh, funct3Mulhsu, funct3Mulhu:
			return false, m
		}
	}

	a, b := m.ReadGPR(r.RS1), m.ReadGPR(r.RS2)

	var result uint64
	switch r.Funct3 {
	case funct3Mul:
		result = intalu.Mul(w, a, b)
	case funct3Mulh:
		result = intalu.Mulh(w, a, b)
	case funct3Mulhsu:
		result = intalu.Mulhsu(w, a, b)
	case funct3Mulhu:
		result = intalu.Mulhu(w, a, b)
	case funct3Div:
		result = intalu.Div(w, a, b)
	case funct3Divu:
		result = intalu.Divu(w, a, b)
	case funct3Rem:
		result = intalu.Rem(w, a, b)
	case funct3Remu:
		result = intalu.Remu(w, a, b)
	default:
		return false, m
	}

	return true, hart.FinishRdAndPCIncr(m, r.RD, result, isC)
}
