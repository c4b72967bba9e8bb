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

	"github.com/rv64mfd/core/fpu"
)

// EqSP/LtSP/LeSP implement spec §4.3's FEQ/FLT/FLE comparisons: FEQ
// treats a quiet NaN operand as merely "unordered" (result false, no
// flag), while FLT/FLE raise NV for any NaN operand, quiet or
// signaling, since an ordering comparison against a NaN is always
// invalid.
func EqSP(a, b uint32) (bool, Flags) {
	if fpu.IsSignalingSP(a) || fpu.IsSignalingSP(b) {
		return false, NV
	}
	if fpu.IsNaNSP(a) || fpu.IsNaNSP(b) {
		return false, 0
	}
	return math.Float32frombits(a) == math.Float32frombits(b), 0
}

func LtSP(a, b uint32) (bool, Flags) {
	if fpu.IsNaNSP(a) || fpu.IsNaNSP(b) {
		return false, NV
	}
	return math.Float32frombits(a) < math.Float32frombits(b), 0
}

func LeSP(a, b uint32) (bool, Flags) {
	if fpu.IsNaNSP(a) || fpu.IsNaNSP(b) {
		return false, NV
	}
	return math.Float32frombits(a) <= math.Float32frombits(b), 0
}

func EqDP(a, b uint64) (bool, Flags) {
	if fpu.IsSignalingDP(a) || fpu.IsSignalingDP(b) {
		return false, NV
	}
	if fpu.IsNaNDP(a) || fpu.IsNaNDP(b) {
		return false, 0
	}
	return math.Float64frombits(a) == math.Float64frombits(b), 0
}

func LtDP(a, b uint64) (bool, Flags) {
	if fpu.IsNaNDP(a) || fpu.IsNaNDP(b) {
		return false, NV
	}
	return math.Float64frombits(a) < math.Float64frombits(b), 0
}

func LeDP(a, b uint64) (bool, Flags) {
	if fpu.IsNaNDP(a) || fpu.IsNaNDP(b) {
		return false, NV
	}
	return math.Float64frombits(a) <= math.Float64frombits(b), 0
}

// MinSP/MaxSP/MinDP/MaxDP implement spec §4.3's FMIN/FMAX, including the
// 2019 RISC-V spec's NaN-handling erratum: if exactly one operand is a
// NaN, the other (numeric) operand is returned; if both are NaN, the
// canonical NaN is returned; any signaling NaN operand raises NV
// regardless of which operand is chosen as the result. -0 compares less
// than +0.
func MinSP(a, b uint32) (uint32, Flags) {
	if r, f, isNaN := minMaxNaNSP(a, b); isNaN {
		return r, f
	}
	f := sigNaNFlagSP(a, b)
	if fpu.IsZeroSP(a) && fpu.IsZeroSP(b) && fpu.SignSP(a) != fpu.SignSP(b) {
		if fpu.SignSP(a) != 0 {
			return a, f
		}
		return b, f
	}
	if math.Float32frombits(a) < math.Float32frombits(b) {
		return a, f
	}
	return b, f
}

func MaxSP(a, b uint32) (uint32, Flags) {
	if r, f, isNaN := minMaxNaNSP(a, b); isNaN {
		return r, f
	}
	f := sigNaNFlagSP(a, b)
	if fpu.IsZeroSP(a) && fpu.IsZeroSP(b) && fpu.SignSP(a) != fpu.SignSP(b) {
		if fpu.SignSP(a) == 0 {
			return a, f
		}
		return b, f
	}
	if math.Float32frombits(a) > math.Float32frombits(b) {
		return a, f
	}
	return b, f
}

func minMaxNaNSP(a, b uint32) (uint32, Flags, bool) {
	aNaN, bNaN := fpu.IsNaNSP(a), fpu.IsNaNSP(b)
	if !aNaN && !bNaN {
		return 0, 0, false
	}
	f := sigNaNFlagSP(a, b)
	switch {
	case aNaN && bNaN:
		return fpu.CanonicalNaN32, f, true
	case aNaN:
		return b, f, true
	default:
		return a, f, true
	}
}

func sigNaNFlagSP(a, b uint32) Flags {
	if fpu.IsSignalingSP(a) || fpu.IsSignalingSP(b) {
		return NV
	}
	return 0
}

func MinDP(a, b uint64) (uint64, Flags) {
	if r, f, isNaN := minMaxNaNDP(a, b); isNaN {
		return r, f
	}
	f := sigNaNFlagDP(a, b)
	if fpu.IsZeroDP(a) && fpu.IsZeroDP(b) && fpu.SignDP(a) != fpu.SignDP(b) {
		if fpu.SignDP(a) != 0 {
			return a, f
		}
		return b, f
	}
	if math.Float64frombits(a) < math.Float64frombits(b) {
		return a, f
	}
	return b, f
}

func MaxDP(a, b uint64) (uint64, Flags) {
	if r, f, isNaN := minMaxNaNDP(a, b); isNaN {
		return r, f
	}
	f := sigNaNFlagDP(a, b)
	if fpu.IsZeroDP(a) && fpu.IsZeroDP(b) && fpu.SignDP(a) != fpu.SignDP(b) {
		if fpu.SignDP(a) == 0 {
			return a, f
		}
		return b, f
	}
	if math.Float64frombits(a) > math.Float64frombits(b) {
		return a, f
	}
	return b, f
}

func minMaxNaNDP(a, b uint64) (uint64, Flags, bool) {
	aNaN, bNaN := fpu.IsNaNDP(a), fpu.IsNaNDP(b)
	if !aNaN && !bNaN {
		return 0, 0, false
	}
	f := sigNaNFlagDP(a, b)
	switch {
	case aNaN && bNaN:
		return fpu.CanonicalNaN64, f, true
	case aNaN:
		return b, f, true
	default:
		return a, f, true
	}
}

func sigNaNFlagDP(a, b uint64) Flags {
	if fpu.IsSignalingDP(a) || fpu.IsSignalingDP(b) {
		return NV
	}
	return 0
}
