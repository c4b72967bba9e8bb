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

// Package bits holds the leaf bit-manipulation helpers shared by the
// decoders and the ALU/FPU semantic functions: sign extension, bit-field
// slicing and fixed-width casts.
package bits

import "math"

// SignExtend treats v as a two's-complement value whose sign bit is bit
// (counting from 0) and extends that sign to all 64 bits.
func SignExtend(v uint64, bit int) uint64 {
	b := signBits[bit]
	if v&b.signBit != 0 {
		return v | b.ones
	}
	return v
}

var signBits [64]struct {
	signBit uint64
	ones    uint64
}

func init() {
	b := uint64(1)
	ones := uint64(math.MaxUint64)
	for i := 0; i < len(signBits); i++ {
		signBits[i].signBit = b
		signBits[i].ones = ones
		b <<= 1
		ones <<= 1
	}
}

// Field extracts the [hi:lo] inclusive bit field of in and right-justifies
// it.
func Field(in uint32, hi, lo int) uint32 {
	width := hi - lo + 1
	mask := uint32(1)<<uint(width) - 1
	return (in >> uint(lo)) & mask
}

// Field64 is Field for a 64-bit input/output, used when composing
// immediates wider than 32 bits.
func Field64(in uint64, hi, lo int) uint64 {
	width := hi - lo + 1
	mask := uint64(1)<<uint(width) - 1
	return (in >> uint(lo)) & mask
}

// SignExtend32 sign-extends a 32-bit two's-complement value to 64 bits.
func SignExtend32(v uint32) uint64 {
	return SignExtend(uint64(v), 31)
}

// TruncXLEN masks v down to xlen bits (32 or 64); for xlen==64 it is a
// no-op since v is already a 64-bit word.
func TruncXLEN(v uint64, xlen int) uint64 {
	if xlen >= 64 {
		return v
	}
	return v & (uint64(1)<<uint(xlen) - 1)
}

// SignExtendXLEN sign-extends the low xlen bits of v to a full uint64.
func SignExtendXLEN(v uint64, xlen int) uint64 {
	return SignExtend(v, xlen-1)
}
