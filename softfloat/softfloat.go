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

// Package softfloat implements the C3 adapter of spec §4.3: correctly
// rounded IEEE-754-2008 arithmetic (add/sub/mul/div/sqrt/muladd),
// comparisons, classification and the integer<->float conversion matrix,
// in both single (f32) and double (f64) precision, with a caller-supplied
// rounding mode and accumulated sticky exception flags.
//
// spec §9's Design Notes sanction driving this off the host's hardware FP
// via a controllable-rounding abstraction rather than linking an external
// correctly-rounded library (none of this module's reference pack ships
// one). The abstraction here is math/big's arbitrary-precision Float,
// which is itself a correctly-rounded (MPFR-style) arithmetic engine: we
// round every operation's exact mathematical result to the target
// precision and RISC-V rounding mode in one step, so fused multiply-add
// is a true single rounding rather than a rounded multiply followed by a
// rounded add.
package softfloat

import (
	"math"
	"math/big"

	"github.com/rv64mfd/core/fpu"
)

// Flags holds the accrued IEEE-754 exception flags of spec §3 (NV, DZ,
// OF, UF, NX); a caller ORs these into the fflags CSR.
type Flags uint32

const (
	NV Flags = 1 << iota // invalid operation
	DZ                    // divide by zero
	OF                    // overflow
	UF                    // underflow
	NX                    // inexact
)

func bigMode(rm fpu.RoundingMode) big.RoundingMode {
	switch rm {
	case fpu.RTZ:
		return big.ToZero
	case fpu.RDN:
		return big.ToNegativeInf
	case fpu.RUP:
		return big.ToPositiveInf
	case fpu.RMM:
		return big.ToNearestAway
	default:
		return big.ToNearestEven
	}
}

// precision/exponent parameters for each format; "normal exponent" uses
// the 1.xxxx * 2^E convention.
const (
	precSP        = 24
	minNormalExpSP = -126
	precDP        = 53
	minNormalExpDP = -1022
)

var (
	maxFiniteSP = big.NewFloat(float64(math.MaxFloat32))
	maxFiniteDP = big.NewFloat(math.MaxFloat64)
)

// roundSP rounds the exact mathematical value x to a float32 using mode,
// applying IEEE-754 overflow/underflow/subnormal conventions. It reports
// the resulting bit pattern and the OF/UF/NX flags the rounding itself
// produced (NV/DZ are the caller's responsibility: they come from operand
// classification, not from rounding a finite exact value).
func roundSP(x *big.Float, neg bool, mode big.RoundingMode) (bits uint32, of, uf, nx bool) {
	v, of, uf, nx := roundGeneric(x, neg, mode, precSP, minNormalExpSP, maxFiniteSP)
	f32, _ := v.Float32()
	return math.Float32bits(f32), of, uf, nx
}

// roundDP is roundSP for float64.
func roundDP(x *big.Float, neg bool, mode big.RoundingMode) (bits uint64, of, uf, nx bool) {
	v, of, uf, nx := roundGeneric(x, neg, mode, precDP, minNormalExpDP, maxFiniteDP)
	f64, _ := v.Float64()
	return math.Float64bits(f64), of, uf, nx
}

// roundGeneric implements spec §4.3's "round the exact result" step
// shared by SP and DP: reduce precision in the subnormal range (gradual
// underflow), then clamp directional overflow at the top of the range.
func roundGeneric(x *big.Float, neg bool, mode big.RoundingMode, prec uint, minNormalExp int, maxFinite *big.Float) (result *big.Float, of, uf, nx bool) {
	if x.Sign() == 0 {
		z := new(big.Float).SetPrec(prec)
		if neg {
			z.Neg(z)
		}
		return z, false, false, false
	}

	// Determine the unbiased exponent E of x in 1.xxxx*2^E form: MantExp
	// returns e with x = mant*2^e, 0.5<=|mant|<1, so E = e-1.
	e := new(big.Float).SetPrec(prec + 64).Abs(x).MantExp(nil)
	E := e - 1

	usablePrec := prec
	if E < minNormalExp {
		reduce := minNormalExp - E
		if uint(reduce) >= prec {
			usablePrec = 1
		} else {
			usablePrec = prec - uint(reduce)
		}
	}

	rounded := new(big.Float).SetPrec(usablePrec).SetMode(mode).Set(x)
	nx = rounded.Cmp(x) != 0
	uf = nx && E < minNormalExp

	abs := new(big.Float).SetPrec(prec + 64).Abs(rounded)
	if abs.Cmp(maxFinite) > 0 {
		of = true
		nx = true
		rounded = overflowValue(neg, mode, maxFinite)
	} else {
		rounded.SetPrec(prec)
	}
	return rounded, of, uf, nx
}

// overflowValue implements the IEEE-754 §7.4 directional-overflow rule:
// round-to-nearest modes saturate to infinity, round-toward-zero always
// clamps to the largest finite magnitude, and the two directed modes
// clamp to the largest finite magnitude on the side rounding would move
// away from infinity.
func overflowValue(neg bool, mode big.RoundingMode, maxFinite *big.Float) *big.Float {
	toInf := true
	switch mode {
	case big.ToZero:
		toInf = false
	case big.ToPositiveInf:
		toInf = !neg
	case big.ToNegativeInf:
		toInf = neg
	}
	if toInf {
		z := new(big.Float).SetInf(neg)
		return z
	}
	z := new(big.Float).Copy(maxFinite)
	if neg {
		z.Neg(z)
	}
	return z
}
