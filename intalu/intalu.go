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

// Package intalu implements the width-parameterized integer ALU
// primitives of the M extension (spec §4.2): MUL/MULH/MULHU/MULHSU and
// DIV/DIVU/REM/REMU, including the RV64-only W variants which operate on
// the low 32 bits of each operand.
//
// Every function here is total: division by zero and signed overflow
// produce the values the RISC-V spec mandates rather than panicking.
package intalu

// Width selects the operand/result width an M-extension op works over:
// Width64 for OP, Width32 for the OP-32 (W-suffixed) variants.
type Width int

const (
	Width32 Width = 32
	Width64 Width = 64
)

// Mul returns the low w bits of the signed*signed product of a and b,
// interpreted and returned as w-bit two's complement stored in a uint64.
func Mul(w Width, a, b uint64) uint64 {
	if w == Width32 {
		return signExtend32(uint64(uint32(int32(a) * int32(b))))
	}
	return uint64(int64(a) * int64(b))
}

// Mulh returns the high w bits of the signed(a)*signed(b) product at
// width w. The M extension's OP-32 (W-suffixed) opcode has no MULHW;
// Width32 here instead serves plain OP under RV32, where XLEN=32 means
// MUL/MULH/MULHU/MULHSU all operate over 32-bit operands.
func Mulh(w Width, a, b uint64) uint64 {
	if w == Width32 {
		p := int64(int32(a)) * int64(int32(b))
		return signExtend32(uint64(uint32(p >> 32)))
	}
	n1, n2 := int64(a), int64(b)
	var neg1, neg2 bool
	if n1 < 0 {
		neg1, n1 = true, -n1
	}
	if n2 < 0 {
		neg2, n2 = true, -n2
	}
	v := mulhu64(uint64(n1), uint64(n2))
	if neg1 != neg2 {
		// Negate the full 128-bit product: invert the high word and carry
		// in from the low word only when the low word is zero.
		v = ^v
		if uint64(n1)*uint64(n2) == 0 {
			v++
		}
	}
	return v
}

// Mulhsu returns the high w bits of signed(a)*unsigned(b) at width w.
func Mulhsu(w Width, a, b uint64) uint64 {
	if w == Width32 {
		p := int64(int32(a)) * int64(uint32(b))
		return signExtend32(uint64(uint32(p >> 32)))
	}
	n1 := int64(a)
	var neg bool
	if n1 < 0 {
		neg, n1 = true, -n1
	}
	v := mulhu64(uint64(n1), b)
	if neg {
		v = ^v
		if uint64(n1)*b == 0 {
			v++
		}
	}
	return v
}

// Mulhu returns the high w bits of unsigned(a)*unsigned(b) at width w.
func Mulhu(w Width, a, b uint64) uint64 {
	if w == Width32 {
		p := uint64(uint32(a)) * uint64(uint32(b))
		return signExtend32(p >> 32)
	}
	return mulhu64(a, b)
}

// mulhu64 computes the high 64 bits of the 128-bit unsigned product of a
// and b via 32-bit partial products.
func mulhu64(a, b uint64) uint64 {
	ah, al := a>>32, a&0xffffffff
	bh, bl := b>>32, b&0xffffffff
	hi := ah * bh
	mid1 := ah * bl
	mid2 := al * bh
	lo := al * bl
	return hi + mid1>>32 + mid2>>32 + (lo>>32+mid1&0xffffffff+mid2&0xffffffff)>>32
}

// Div returns the signed truncated quotient a/b at width w. rs2==0
// yields all-ones (-1); INT_MIN/-1 wraps to INT_MIN rather than
// overflowing, per the RISC-V spec.
func Div(w Width, a, b uint64) uint64 {
	if w == Width32 {
		na, nb := int32(a), int32(b)
		if nb == 0 {
			return allOnes
		}
		if na == minInt32 && nb == -1 {
			return signExtend32(uint64(uint32(minInt32)))
		}
		return signExtend32(uint64(uint32(na / nb)))
	}
	na, nb := int64(a), int64(b)
	if nb == 0 {
		return allOnes
	}
	if na == minInt64 && nb == -1 {
		return uint64(minInt64)
	}
	return uint64(na / nb)
}

// Divu returns the unsigned quotient a/b at width w. rs2==0 yields
// 2^w-1.
func Divu(w Width, a, b uint64) uint64 {
	if w == Width32 {
		na, nb := uint32(a), uint32(b)
		if nb == 0 {
			return allOnes
		}
		return signExtend32(uint64(na / nb))
	}
	if b == 0 {
		return allOnes
	}
	return a / b
}

// Rem returns the signed remainder of a/b (sign of the dividend) at
// width w. rs2==0 yields a; the INT_MIN/-1 case yields 0.
func Rem(w Width, a, b uint64) uint64 {
	if w == Width32 {
		na, nb := int32(a), int32(b)
		if nb == 0 {
			return signExtend32(a)
		}
		if na == minInt32 && nb == -1 {
			return 0
		}
		return signExtend32(uint64(uint32(na % nb)))
	}
	na, nb := int64(a), int64(b)
	if nb == 0 {
		return a
	}
	if na == minInt64 && nb == -1 {
		return 0
	}
	return uint64(na % nb)
}

// Remu returns the unsigned remainder of a/b at width w. rs2==0 yields
// a.
func Remu(w Width, a, b uint64) uint64 {
	if w == Width32 {
		na, nb := uint32(a), uint32(b)
		if nb == 0 {
			return signExtend32(a)
		}
		return signExtend32(uint64(na % nb))
	}
	if b == 0 {
		return a
	}
	return a % b
}

const allOnes = ^uint64(0)

// minInt32/minInt64 are variables, not constants, so that converting them
// to an unsigned type is a run-time two's-complement reinterpretation.
var (
	minInt32 = int32(-1 << 31)
	minInt64 = int64(-1 << 63)
)

func signExtend32(v uint64) uint64 {
	if v&0x80000000 != 0 {
		return v | 0xFFFFFFFF00000000
	}
	return v & 0xFFFFFFFF
}
