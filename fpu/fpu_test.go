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

package fpu

import "testing"

func TestUnboxBox(t *testing.T) {
	boxed := BoxSP(0x3F800000) // 1.0f
	if got := UnboxSP(boxed); got != 0x3F800000 {
		t.Errorf("UnboxSP(BoxSP(v)) = %#x; want %#x", got, 0x3F800000)
	}
	if !IsBoxed(boxed) {
		t.Errorf("IsBoxed(BoxSP(v)) = false; want true")
	}
	if got := UnboxSP(0x1234567800000001); got != CanonicalNaN32 {
		t.Errorf("UnboxSP(not boxed) = %#x; want canonical NaN %#x", got, CanonicalNaN32)
	}
}

func TestResolveRoundingMode(t *testing.T) {
	tests := []struct {
		rm, frm   uint32
		wantMode  RoundingMode
		wantLegal bool
	}{
		{rm: 0, frm: 0, wantMode: RNE, wantLegal: true},
		{rm: 4, frm: 0, wantMode: RMM, wantLegal: true},
		{rm: 7, frm: 2, wantMode: RDN, wantLegal: true},
		{rm: 7, frm: 5, wantLegal: false},
		{rm: 5, frm: 0, wantLegal: false},
		{rm: 6, frm: 0, wantLegal: false},
	}
	for _, tt := range tests {
		mode, legal := ResolveRoundingMode(tt.rm, tt.frm)
		if legal != tt.wantLegal {
			t.Errorf("ResolveRoundingMode(%d,%d) legal=%v; want %v", tt.rm, tt.frm, legal, tt.wantLegal)
			continue
		}
		if legal && mode != tt.wantMode {
			t.Errorf("ResolveRoundingMode(%d,%d) mode=%d; want %d", tt.rm, tt.frm, mode, tt.wantMode)
		}
	}
}

func TestClassifySP(t *testing.T) {
	tests := []struct {
		desc string
		bits uint32
		want uint64
	}{
		{"positive zero", 0x00000000, ClassPosZero},
		{"negative zero", 0x80000000, ClassNegZero},
		{"positive inf", 0x7F800000, ClassPosInf},
		{"negative inf", 0xFF800000, ClassNegInf},
		{"positive normal", 0x3F800000, ClassPosNormal},
		{"negative normal", 0xBF800000, ClassNegNormal},
		{"positive subnormal", 0x00000001, ClassPosSubnorm},
		{"negative subnormal", 0x80000001, ClassNegSubnorm},
		{"signaling nan", 0x7F800001, ClassSignalingNaN},
		{"quiet nan", CanonicalNaN32, ClassQuietNaN},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := ClassifySP(tt.bits); got != tt.want {
				t.Errorf("ClassifySP(%#x) = %#x; want %#x", tt.bits, got, tt.want)
			}
			// exactly one bit set
			if got := ClassifySP(tt.bits); got == 0 || got&(got-1) != 0 {
				t.Errorf("ClassifySP(%#x) = %#x is not one-hot", tt.bits, got)
			}
		})
	}
}

func TestClassifyDPNegInf(t *testing.T) {
	if got := ClassifyDP(0xFFF0000000000000); got != ClassNegInf {
		t.Errorf("ClassifyDP(-inf) = %#x; want %#x", got, ClassNegInf)
	}
}
