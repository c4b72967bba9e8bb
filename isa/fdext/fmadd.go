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
	"github.com/rv64mfd/core/fpu"
	"github.com/rv64mfd/core/hart"
	"github.com/rv64mfd/core/isa"
	"github.com/rv64mfd/core/softfloat"
)

// funct2 selects the format in the R4-type fused multiply-add family:
// 00=S, 01=D (spec §4.1, §4.6).
const (
	funct2S = 0
	funct2D = 1
)

// executeFmadd implements FMADD/FMSUB/FNMSUB/FNMADD (opcode selects
// which of the two operands is negated before the single-rounded
// a*b+c): FMADD negates neither, FMSUB negates c, FNMSUB negates the
// product, FNMADD negates both.
func executeFmadd(m hart.State, inst uint32, isC bool) (bool, hart.State) {
	r4 := isa.DecodeR4(inst)
	opcode := inst & 0x7F

	var negProd, negC bool
	switch opcode {
	case isa.OpFMADD:
		negProd, negC = false, false
	case isa.OpFMSUB:
		negProd, negC = false, true
	case isa.OpFNMSUB:
		negProd, negC = true, false
	case isa.OpFNMADD:
		negProd, negC = true, true
	default:
		return false, m
	}

	switch r4.Funct2 {
	case funct2S:
		if !hasF(m) {
			return false, m
		}
		mode, legal := rm(m, r4.RM)
		if !legal {
			return false, m
		}
		a := fpu32(m, r4.RS1)
		b := fpu32(m, r4.RS2)
		c := fpu32(m, r4.RS3)
		res, flags := softfloat.MulAddSP(mode, a, b, c, negProd, negC)
		return true, hart.FinishFrdFflagsAndPCPlus4(m, r4.RD, uint64(res), true, uint32(flags))
	case funct2D:
		if !hasD(m) {
			return false, m
		}
		mode, legal := rm(m, r4.RM)
		if !legal {
			return false, m
		}
		a := m.ReadFPR(r4.RS1)
		b := m.ReadFPR(r4.RS2)
		c := m.ReadFPR(r4.RS3)
		res, flags := softfloat.MulAddDP(mode, a, b, c, negProd, negC)
		return true, hart.FinishFrdFflagsAndPCPlus4(m, r4.RD, res, false, uint32(flags))
	default:
		return false, m
	}
}

func fpu32(m hart.State, idx uint32) uint32 {
	return fpu.UnboxSP(m.ReadFPR(idx))
}
