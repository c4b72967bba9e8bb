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

package softfloat

import (
	"math"
	"math/big"

	"github.com/rv64mfd/core/fpu"
)

func toBigSP(bits uint32) *big.Float {
	return new(big.Float).SetPrec(precSP).SetFloat64(float64(math.Float32frombits(bits)))
}

func toBigDP(bits uint64) *big.Float {
	return new(big.Float).SetPrec(precDP).SetFloat64(math.Float64frombits(bits))
}

// exactSum returns x+y without rounding: the precision is widened to
// cover both significands plus the gap between the two exponents.
func exactSum(x, y *big.Float) *big.Float {
	gap := x.MantExp(nil) - y.MantExp(nil)
	if gap < 0 {
		gap = -gap
	}
	return new(big.Float).SetPrec(x.Prec()+y.Prec()+uint(gap)+1).Add(x, y)
}

func negSP(bits uint32) uint32 { return bits ^ 0x80000000 }
func negDP(bits uint64) uint64 { return bits ^ 0x8000000000000000 }

// nanResultSP/nanResultDP implement spec §4.3's NaN-propagation rule:
// any NaN operand (quiet or signaling) yields the canonical NaN, and a
// signaling operand additionally raises NV.
func nanResultSP(a, b uint32) (bits uint32, flags Flags, isNaN bool) {
	switch {
	case fpu.IsNaNSP(a) || fpu.IsNaNSP(b):
		f := Flags(0)
		if fpu.IsSignalingSP(a) || fpu.IsSignalingSP(b) {
			f = NV
		}
		return fpu.CanonicalNaN32, f, true
	default:
		return 0, 0, false
	}
}

func nanResultDP(a, b uint64) (bits uint64, flags Flags, isNaN bool) {
	switch {
	case fpu.IsNaNDP(a) || fpu.IsNaNDP(b):
		f := Flags(0)
		if fpu.IsSignalingDP(a) || fpu.IsSignalingDP(b) {
			f = NV
		}
		return fpu.CanonicalNaN64, f, true
	default:
		return 0, 0, false
	}
}

// AddSP computes a+b per spec §4.3.
func AddSP(rm fpu.RoundingMode, a, b uint32) (uint32, Flags) {
	if r, f, ok := nanResultSP(a, b); ok {
		return r, f
	}
	aInf, bInf := fpu.IsInfSP(a), fpu.IsInfSP(b)
	if aInf && bInf {
		if fpu.SignSP(a) != fpu.SignSP(b) {
			return fpu.CanonicalNaN32, NV
		}
		return a, 0
	}
	if aInf {
		return a, 0
	}
	if bInf {
		return b, 0
	}
	if fpu.IsZeroSP(a) && fpu.IsZeroSP(b) {
		// x-0+x-0: result sign is the AND of signs unless rounding to -inf,
		// which rounds -0+0 toward the more negative zero.
		if fpu.SignSP(a) == fpu.SignSP(b) {
			return a, 0
		}
		if rm == fpu.RDN {
			return 0x80000000, 0
		}
		return 0, 0
	}
	sum := exactSum(toBigSP(a), toBigSP(b))
	neg := sum.Sign() < 0
	bits, of, uf, nx := roundSP(sum, neg, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

// SubSP computes a-b as a+(-b), per the standard FSUB-as-FADD identity.
func SubSP(rm fpu.RoundingMode, a, b uint32) (uint32, Flags) {
	return AddSP(rm, a, negSP(b))
}

func AddDP(rm fpu.RoundingMode, a, b uint64) (uint64, Flags) {
	if r, f, ok := nanResultDP(a, b); ok {
		return r, f
	}
	aInf, bInf := fpu.IsInfDP(a), fpu.IsInfDP(b)
	if aInf && bInf {
		if fpu.SignDP(a) != fpu.SignDP(b) {
			return fpu.CanonicalNaN64, NV
		}
		return a, 0
	}
	if aInf {
		return a, 0
	}
	if bInf {
		return b, 0
	}
	if fpu.IsZeroDP(a) && fpu.IsZeroDP(b) {
		if fpu.SignDP(a) == fpu.SignDP(b) {
			return a, 0
		}
		if rm == fpu.RDN {
			return 0x8000000000000000, 0
		}
		return 0, 0
	}
	sum := exactSum(toBigDP(a), toBigDP(b))
	neg := sum.Sign() < 0
	bits, of, uf, nx := roundDP(sum, neg, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

func SubDP(rm fpu.RoundingMode, a, b uint64) (uint64, Flags) {
	return AddDP(rm, a, negDP(b))
}

// MulSP computes a*b per spec §4.3.
func MulSP(rm fpu.RoundingMode, a, b uint32) (uint32, Flags) {
	if r, f, ok := nanResultSP(a, b); ok {
		return r, f
	}
	sign := fpu.SignSP(a) ^ fpu.SignSP(b)
	aInf, bInf := fpu.IsInfSP(a), fpu.IsInfSP(b)
	aZero, bZero := fpu.IsZeroSP(a), fpu.IsZeroSP(b)
	if (aInf && bZero) || (bInf && aZero) {
		return fpu.CanonicalNaN32, NV
	}
	if aInf || bInf {
		return sign<<31 | 0x7F800000, 0
	}
	if aZero || bZero {
		return sign << 31, 0
	}
	prod := new(big.Float).SetPrec(2*precSP + 8).Mul(toBigSP(a), toBigSP(b))
	bits, of, uf, nx := roundSP(prod, sign != 0, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

func MulDP(rm fpu.RoundingMode, a, b uint64) (uint64, Flags) {
	if r, f, ok := nanResultDP(a, b); ok {
		return r, f
	}
	sign := fpu.SignDP(a) ^ fpu.SignDP(b)
	aInf, bInf := fpu.IsInfDP(a), fpu.IsInfDP(b)
	aZero, bZero := fpu.IsZeroDP(a), fpu.IsZeroDP(b)
	if (aInf && bZero) || (bInf && aZero) {
		return fpu.CanonicalNaN64, NV
	}
	if aInf || bInf {
		return sign<<63 | 0x7FF0000000000000, 0
	}
	if aZero || bZero {
		return sign << 63, 0
	}
	prod := new(big.Float).SetPrec(2*precDP + 8).Mul(toBigDP(a), toBigDP(b))
	bits, of, uf, nx := roundDP(prod, sign != 0, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

// DivSP computes a/b per spec §4.3.
func DivSP(rm fpu.RoundingMode, a, b uint32) (uint32, Flags) {
	if r, f, ok := nanResultSP(a, b); ok {
		return r, f
	}
	sign := fpu.SignSP(a) ^ fpu.SignSP(b)
	aInf, bInf := fpu.IsInfSP(a), fpu.IsInfSP(b)
	aZero, bZero := fpu.IsZeroSP(a), fpu.IsZeroSP(b)
	if (aInf && bInf) || (aZero && bZero) {
		return fpu.CanonicalNaN32, NV
	}
	if bZero {
		return sign<<31 | 0x7F800000, DZ
	}
	if aInf {
		return sign<<31 | 0x7F800000, 0
	}
	if bInf || aZero {
		return sign << 31, 0
	}
	q := new(big.Float).SetPrec(precSP + 64).Quo(toBigSP(a), toBigSP(b))
	bits, of, uf, nx := roundSP(q, sign != 0, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

func DivDP(rm fpu.RoundingMode, a, b uint64) (uint64, Flags) {
	if r, f, ok := nanResultDP(a, b); ok {
		return r, f
	}
	sign := fpu.SignDP(a) ^ fpu.SignDP(b)
	aInf, bInf := fpu.IsInfDP(a), fpu.IsInfDP(b)
	aZero, bZero := fpu.IsZeroDP(a), fpu.IsZeroDP(b)
	if (aInf && bInf) || (aZero && bZero) {
		return fpu.CanonicalNaN64, NV
	}
	if bZero {
		return sign<<63 | 0x7FF0000000000000, DZ
	}
	if aInf {
		return sign<<63 | 0x7FF0000000000000, 0
	}
	if bInf || aZero {
		return sign << 63, 0
	}
	q := new(big.Float).SetPrec(precDP + 64).Quo(toBigDP(a), toBigDP(b))
	bits, of, uf, nx := roundDP(q, sign != 0, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

// SqrtSP computes the square root per spec §4.3: negative non-zero
// operands (including -inf) are invalid; -0 and +0 are exact.
func SqrtSP(rm fpu.RoundingMode, a uint32) (uint32, Flags) {
	if fpu.IsNaNSP(a) {
		f := Flags(0)
		if fpu.IsSignalingSP(a) {
			f = NV
		}
		return fpu.CanonicalNaN32, f
	}
	if fpu.IsZeroSP(a) {
		return a, 0
	}
	if fpu.SignSP(a) != 0 {
		return fpu.CanonicalNaN32, NV
	}
	if fpu.IsInfSP(a) {
		return a, 0
	}
	root := new(big.Float).SetPrec(precSP + 64).Sqrt(toBigSP(a))
	bits, of, uf, nx := roundSP(root, false, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

func SqrtDP(rm fpu.RoundingMode, a uint64) (uint64, Flags) {
	if fpu.IsNaNDP(a) {
		f := Flags(0)
		if fpu.IsSignalingDP(a) {
			f = NV
		}
		return fpu.CanonicalNaN64, f
	}
	if fpu.IsZeroDP(a) {
		return a, 0
	}
	if fpu.SignDP(a) != 0 {
		return fpu.CanonicalNaN64, NV
	}
	if fpu.IsInfDP(a) {
		return a, 0
	}
	root := new(big.Float).SetPrec(precDP + 64).Sqrt(toBigDP(a))
	bits, of, uf, nx := roundDP(root, false, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

// MulAddSP computes (a*b)+c as a single rounding (fused multiply-add),
// per spec §4.3 and §9: the product a*b is formed exactly (24x24-bit
// mantissas fit in well under the accumulator's precision) and only the
// final addition with c is rounded.
func MulAddSP(rm fpu.RoundingMode, a, b, c uint32, negProd, negC bool) (uint32, Flags) {
	if negProd {
		a = negSP(a)
	}
	if negC {
		c = negSP(c)
	}
	if r, f, ok := nanResultSP(a, b); ok {
		return r, f
	}
	if fpu.IsNaNSP(c) {
		rc, fc, _ := nanResultSP(c, c)
		return rc, fc
	}
	sign := fpu.SignSP(a) ^ fpu.SignSP(b)
	aInf, bInf := fpu.IsInfSP(a), fpu.IsInfSP(b)
	aZero, bZero := fpu.IsZeroSP(a), fpu.IsZeroSP(b)
	if (aInf && bZero) || (bInf && aZero) {
		return fpu.CanonicalNaN32, NV
	}
	if aInf || bInf {
		// The product is an exact infinity: adding any finite c, or an
		// infinite c of the same sign, cannot introduce rounding error,
		// so this must not be routed through roundSP's overflow clamp.
		if fpu.IsInfSP(c) && fpu.SignSP(c) != sign {
			return fpu.CanonicalNaN32, NV
		}
		return sign<<31 | 0x7F800000, 0
	}
	if fpu.IsInfSP(c) {
		return c, 0
	}
	var prod *big.Float
	if aZero || bZero {
		prod = new(big.Float).SetPrec(precSP + 8)
		if sign != 0 {
			prod.Neg(prod)
		}
	} else {
		prod = new(big.Float).SetPrec(2*precSP + 8).Mul(toBigSP(a), toBigSP(b))
	}
	sum := exactSum(prod, toBigSP(c))
	neg := sum.Sign() < 0
	bits, of, uf, nx := roundSP(sum, neg, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

func MulAddDP(rm fpu.RoundingMode, a, b, c uint64, negProd, negC bool) (uint64, Flags) {
	if negProd {
		a = negDP(a)
	}
	if negC {
		c = negDP(c)
	}
	if r, f, ok := nanResultDP(a, b); ok {
		return r, f
	}
	if fpu.IsNaNDP(c) {
		rc, fc, _ := nanResultDP(c, c)
		return rc, fc
	}
	sign := fpu.SignDP(a) ^ fpu.SignDP(b)
	aInf, bInf := fpu.IsInfDP(a), fpu.IsInfDP(b)
	aZero, bZero := fpu.IsZeroDP(a), fpu.IsZeroDP(b)
	if (aInf && bZero) || (bInf && aZero) {
		return fpu.CanonicalNaN64, NV
	}
	if aInf || bInf {
		// The product is an exact infinity: adding any finite c, or an
		// infinite c of the same sign, cannot introduce rounding error,
		// so this must not be routed through roundDP's overflow clamp.
		if fpu.IsInfDP(c) && fpu.SignDP(c) != sign {
			return fpu.CanonicalNaN64, NV
		}
		return sign<<63 | 0x7FF0000000000000, 0
	}
	if fpu.IsInfDP(c) {
		return c, 0
	}
	var prod *big.Float
	if aZero || bZero {
		prod = new(big.Float).SetPrec(precDP + 8)
		if sign != 0 {
			prod.Neg(prod)
		}
	} else {
		prod = new(big.Float).SetPrec(2*precDP + 8).Mul(toBigDP(a), toBigDP(b))
	}
	sum := exactSum(prod, toBigDP(c))
	neg := sum.Sign() < 0
	bits, of, uf, nx := roundDP(sum, neg, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

func flagsOf(of, uf, nx bool) Flags {
	var f Flags
	if of {
		f |= OF
	}
	if uf {
		f |= UF
	}
	if nx {
		f |= NX
	}
	return f
}
