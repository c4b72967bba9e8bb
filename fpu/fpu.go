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

// Package fpu implements the FP helpers of spec §4.4-§4.5: NaN boxing and
// unboxing of single-precision values inside the 64-bit FPR file,
// canonical-NaN constants, and translation of the instruction rm field
// (plus the CSR frm fallback) into an effective rounding mode.
package fpu

// Canonical quiet NaN bit patterns (spec §6 "Constants").
const (
	CanonicalNaN32 = uint32(0x7FC00000)
	CanonicalNaN64 = uint64(0x7FF8000000000000)
)

// RoundingMode is a resolved (not DYN) IEEE-754 rounding mode.
type RoundingMode int

const (
	RNE RoundingMode = 0 // round to nearest, ties to even
	RTZ RoundingMode = 1 // round towards zero
	RDN RoundingMode = 2 // round down (towards -inf)
	RUP RoundingMode = 3 // round up (towards +inf)
	RMM RoundingMode = 4 // round to nearest, ties to max magnitude
)

const dyn = 7

// ResolveRoundingMode implements spec §4.4's rounding_mode_check: rm
// selects a static mode, or DYN meaning "use frm". It returns the
// effective mode and whether the combination is legal.
func ResolveRoundingMode(rm, frm uint32) (mode RoundingMode, legal bool) {
	switch rm {
	case 0, 1, 2, 3, 4:
		return RoundingMode(rm), true
	case dyn:
		if frm <= 4 {
			return RoundingMode(frm), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// UnboxSP reads a single-precision value out of a 64-bit FPR, per spec
// §4.5: if the upper 32 bits are not all-ones, the value is not properly
// NaN-boxed and FP ops must treat it as the canonical 32-bit NaN.
func UnboxSP(fpr uint64) uint32 {
	if fpr>>32 != 0xFFFFFFFF {
		return CanonicalNaN32
	}
	return uint32(fpr)
}

// BoxSP NaN-boxes a single-precision value for storage in a 64-bit FPR:
// the upper 32 bits are set to all-ones.
func BoxSP(v uint32) uint64 {
	return 0xFFFFFFFF00000000 | uint64(v)
}

// IsBoxed reports whether fpr carries a properly NaN-boxed single value.
func IsBoxed(fpr uint64) bool {
	return fpr>>32 == 0xFFFFFFFF
}

// SP decomposition/composition (sign, biased exponent, mantissa).

// DecomposeSP splits a float32 bit pattern into sign, biased exponent (8
// bits) and mantissa (23 bits).
func DecomposeSP(bits uint32) (sign uint32, exp uint32, mant uint32) {
	return bits >> 31, (bits >> 23) & 0xFF, bits & 0x7FFFFF
}

// ComposeSP assembles a float32 bit pattern from sign/exponent/mantissa.
func ComposeSP(sign, exp, mant uint32) uint32 {
	return sign<<31 | (exp&0xFF)<<23 | mant&0x7FFFFF
}

// DecomposeDP splits a float64 bit pattern into sign, biased exponent (11
// bits) and mantissa (52 bits).
func DecomposeDP(bits uint64) (sign uint64, exp uint64, mant uint64) {
	return bits >> 63, (bits >> 52) & 0x7FF, bits & 0xFFFFFFFFFFFFF
}

// ComposeDP assembles a float64 bit pattern from sign/exponent/mantissa.
func ComposeDP(sign, exp, mant uint64) uint64 {
	return sign<<63 | (exp&0x7FF)<<52 | mant&0xFFFFFFFFFFFFF
}

// IsNaNSP/IsNaNDP/IsSignalingSP/IsSignalingDP classify NaN bit patterns
// directly (cheaper and clearer than round-tripping through
// math.Float32frombits when only the bit pattern matters).

func IsNaNSP(bits uint32) bool {
	_, exp, mant := DecomposeSP(bits)
	return exp == 0xFF && mant != 0
}

func IsNaNDP(bits uint64) bool {
	_, exp, mant := DecomposeDP(bits)
	return exp == 0x7FF && mant != 0
}

// IsSignalingSP reports whether bits is a signaling NaN: a NaN whose
// mantissa's MSB (the "quiet bit") is 0.
func IsSignalingSP(bits uint32) bool {
	return IsNaNSP(bits) && bits&0x400000 == 0
}

// IsSignalingDP reports whether bits is a signaling NaN.
func IsSignalingDP(bits uint64) bool {
	return IsNaNDP(bits) && bits&0x8000000000000 == 0
}

func IsQuietSP(bits uint32) bool  { return IsNaNSP(bits) && !IsSignalingSP(bits) }
func IsQuietDP(bits uint64) bool  { return IsNaNDP(bits) && !IsSignalingDP(bits) }
func IsInfSP(bits uint32) bool    { _, exp, mant := DecomposeSP(bits); return exp == 0xFF && mant == 0 }
func IsInfDP(bits uint64) bool    { _, exp, mant := DecomposeDP(bits); return exp == 0x7FF && mant == 0 }
func IsZeroSP(bits uint32) bool   { return bits&0x7FFFFFFF == 0 }
func IsZeroDP(bits uint64) bool   { return bits&0x7FFFFFFFFFFFFFFF == 0 }
func SignSP(bits uint32) uint32   { return bits >> 31 }
func SignDP(bits uint64) uint64   { return bits >> 63 }
func IsSubnormalSP(bits uint32) bool {
	_, exp, mant := DecomposeSP(bits)
	return exp == 0 && mant != 0
}
func IsSubnormalDP(bits uint64) bool {
	_, exp, mant := DecomposeDP(bits)
	return exp == 0 && mant != 0
}

// FCLASS bit positions (spec §4.6, §6).
const (
	ClassNegInf      = 1 << 0
	ClassNegNormal   = 1 << 1
	ClassNegSubnorm  = 1 << 2
	ClassNegZero     = 1 << 3
	ClassPosZero     = 1 << 4
	ClassPosSubnorm  = 1 << 5
	ClassPosNormal   = 1 << 6
	ClassPosInf      = 1 << 7
	ClassSignalingNaN = 1 << 8
	ClassQuietNaN    = 1 << 9
)

// ClassifySP returns the one-hot FCLASS mask for a single-precision bit
// pattern. Each case is checked in priority order and returns
// immediately, so the classifier is disjoint even though the underlying
// predicates (NaN/Inf/subnormal/zero) are not mutually exclusive in how
// they're written.
func ClassifySP(bits uint32) uint64 {
	switch {
	case IsSignalingSP(bits):
		return ClassSignalingNaN
	case IsQuietSP(bits):
		return ClassQuietNaN
	case IsInfSP(bits):
		if SignSP(bits) != 0 {
			return ClassNegInf
		}
		return ClassPosInf
	case IsZeroSP(bits):
		if SignSP(bits) != 0 {
			return ClassNegZero
		}
		return ClassPosZero
	case IsSubnormalSP(bits):
		if SignSP(bits) != 0 {
			return ClassNegSubnorm
		}
		return ClassPosSubnorm
	default:
		if SignSP(bits) != 0 {
			return ClassNegNormal
		}
		return ClassPosNormal
	}
}

// ClassifyDP is ClassifySP for double precision.
func ClassifyDP(bits uint64) uint64 {
	switch {
	case IsSignalingDP(bits):
		return ClassSignalingNaN
	case IsQuietDP(bits):
		return ClassQuietNaN
	case IsInfDP(bits):
		if SignDP(bits) != 0 {
			return ClassNegInf
		}
		return ClassPosInf
	case IsZeroDP(bits):
		if SignDP(bits) != 0 {
			return ClassNegZero
		}
		return ClassPosZero
	case IsSubnormalDP(bits):
		if SignDP(bits) != 0 {
			return ClassNegSubnorm
		}
		return ClassPosSubnorm
	default:
		if SignDP(bits) != 0 {
			return ClassNegNormal
		}
		return ClassPosNormal
	}
}
