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
	"math/big"

	"github.com/rv64mfd/core/fpu"
)

var half = big.NewFloat(0.5)

// roundToBigInt rounds the exact value x to the nearest integer under
// mode, returning the integer and whether x had a fractional part (the
// source of the NX flag for float->int conversions).
func roundToBigInt(x *big.Float, mode big.RoundingMode) (*big.Int, bool) {
	ip, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(x.Prec() + 64).Sub(x, new(big.Float).SetInt(ip))
	if frac.Sign() == 0 {
		return ip, false
	}
	sign := frac.Sign()
	adjust := 0
	cmp := new(big.Float).Abs(frac).Cmp(half)
	switch {
	case cmp > 0:
		switch mode {
		case big.ToZero:
		case big.ToNegativeInf:
			if sign < 0 {
				adjust = sign
			}
		case big.ToPositiveInf:
			if sign > 0 {
				adjust = sign
			}
		default:
			adjust = sign
		}
	case cmp == 0:
		switch mode {
		case big.ToNegativeInf:
			if sign < 0 {
				adjust = sign
			}
		case big.ToPositiveInf:
			if sign > 0 {
				adjust = sign
			}
		case big.ToNearestAway:
			adjust = sign
		case big.ToNearestEven:
			if ip.Bit(0) != 0 {
				adjust = sign
			}
		}
	default: // |frac| < 0.5: directed modes may still need to move off the truncated value
		switch mode {
		case big.ToNegativeInf:
			if sign < 0 {
				adjust = sign
			}
		case big.ToPositiveInf:
			if sign > 0 {
				adjust = sign
			}
		}
	}
	if adjust != 0 {
		ip = new(big.Int).Add(ip, big.NewInt(int64(adjust)))
	}
	return ip, true
}

// intRange returns the representable [min,max] of the destination
// integer type, as big.Ints, for saturation on out-of-range conversion.
func intRange(signed bool, width int) (min, max *big.Int) {
	if signed {
		m := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
		max = new(big.Int).Sub(m, big.NewInt(1))
		min = new(big.Int).Neg(m)
		return
	}
	min = big.NewInt(0)
	max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	return
}

// cvtFloatToInt implements spec §4.3's FCVT.int.S/D family: round to an
// integer under rm, then saturate per the RISC-V convention (NaN and
// out-of-range values raise NV and produce the closest representable
// boundary value rather than wrapping).
func cvtFloatToInt(isNaN, isInf, neg bool, val *big.Float, rm fpu.RoundingMode, signed bool, width int) (uint64, Flags) {
	min, max := intRange(signed, width)
	if isNaN {
		return clampBits(max, signed, width), NV
	}
	if isInf {
		if neg {
			return clampBits(min, signed, width), NV
		}
		return clampBits(max, signed, width), NV
	}
	ip, nx := roundToBigInt(val, bigMode(rm))
	if ip.Cmp(min) < 0 {
		return clampBits(min, signed, width), NV
	}
	if ip.Cmp(max) > 0 {
		return clampBits(max, signed, width), NV
	}
	f := Flags(0)
	if nx {
		f = NX
	}
	return clampBits(ip, signed, width), f
}

// clampBits reduces a big.Int already known to be in range to its width-
// bit two's-complement/unsigned representation in a uint64.
func clampBits(v *big.Int, signed bool, width int) uint64 {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	u := new(big.Int).And(v, mask)
	return u.Uint64()
}

func intToBig(v uint64, signed bool, width int) *big.Float {
	bi := new(big.Int)
	if signed {
		switch width {
		case 32:
			bi.SetInt64(int64(int32(v)))
		default:
			bi.SetInt64(int64(v))
		}
	} else {
		switch width {
		case 32:
			bi.SetUint64(uint64(uint32(v)))
		default:
			bi.SetUint64(v)
		}
	}
	return new(big.Float).SetPrec(128).SetInt(bi)
}

// CvtSPToInt/CvtDPToInt implement FCVT.W.S, FCVT.WU.S, FCVT.L.S,
// FCVT.LU.S and their double-precision counterparts, selected by
// signed/width.
func CvtSPToInt(rm fpu.RoundingMode, a uint32, signed bool, width int) (uint64, Flags) {
	isNaN := fpu.IsNaNSP(a)
	isInf := fpu.IsInfSP(a)
	neg := fpu.SignSP(a) != 0
	f := Flags(0)
	if fpu.IsSignalingSP(a) {
		f = NV
	}
	var val *big.Float // a NaN has no big.Float value; cvtFloatToInt never reads it
	if !isNaN {
		val = toBigSP(a)
	}
	res, cf := cvtFloatToInt(isNaN, isInf, neg, val, rm, signed, width)
	return res, cf | f
}

func CvtDPToInt(rm fpu.RoundingMode, a uint64, signed bool, width int) (uint64, Flags) {
	isNaN := fpu.IsNaNDP(a)
	isInf := fpu.IsInfDP(a)
	neg := fpu.SignDP(a) != 0
	f := Flags(0)
	if fpu.IsSignalingDP(a) {
		f = NV
	}
	var val *big.Float
	if !isNaN {
		val = toBigDP(a)
	}
	res, cf := cvtFloatToInt(isNaN, isInf, neg, val, rm, signed, width)
	return res, cf | f
}

// CvtIntToSP/CvtIntToDP implement FCVT.S.W/WU/L/LU and the
// double-precision counterparts.
func CvtIntToSP(rm fpu.RoundingMode, v uint64, signed bool, width int) (uint32, Flags) {
	bf := intToBig(v, signed, width)
	neg := bf.Sign() < 0
	bits, of, uf, nx := roundSP(bf, neg, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

func CvtIntToDP(rm fpu.RoundingMode, v uint64, signed bool, width int) (uint64, Flags) {
	bf := intToBig(v, signed, width)
	neg := bf.Sign() < 0
	bits, of, uf, nx := roundDP(bf, neg, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}

// CvtSPToDP widens a single-precision value to double precision;
// per spec §4.3 this is always exact except for NaN canonicalization.
func CvtSPToDP(a uint32) (uint64, Flags) {
	if fpu.IsNaNSP(a) {
		f := Flags(0)
		if fpu.IsSignalingSP(a) {
			f = NV
		}
		return fpu.CanonicalNaN64, f
	}
	if fpu.IsInfSP(a) {
		sign := uint64(fpu.SignSP(a))
		return sign<<63 | 0x7FF0000000000000, 0
	}
	if fpu.IsZeroSP(a) {
		return uint64(fpu.SignSP(a)) << 63, 0
	}
	bits, _, _, _ := roundDP(toBigSP(a), fpu.SignSP(a) != 0, big.ToNearestEven)
	return bits, 0
}

// CvtDPToSP narrows a double-precision value to single precision under
// rm; this is the one FCVT direction that can be inexact, overflow or
// underflow.
func CvtDPToSP(rm fpu.RoundingMode, a uint64) (uint32, Flags) {
	if fpu.IsNaNDP(a) {
		f := Flags(0)
		if fpu.IsSignalingDP(a) {
			f = NV
		}
		return fpu.CanonicalNaN32, f
	}
	if fpu.IsInfDP(a) {
		sign := uint32(fpu.SignDP(a))
		return sign<<31 | 0x7F800000, 0
	}
	if fpu.IsZeroDP(a) {
		return uint32(fpu.SignDP(a)) << 31, 0
	}
	v := toBigDP(a)
	neg := v.Sign() < 0
	bits, of, uf, nx := roundSP(v, neg, bigMode(rm))
	return bits, flagsOf(of, uf, nx)
}
