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

package isa

import "testing"

func TestDecodeR(t *testing.T) {
	// MUL x10,x10,x11: 0x02B50533
	r := DecodeR(0x02B50533)
	if r.Opcode != OpOP {
		t.Errorf("Opcode = %#x; want %#x", r.Opcode, OpOP)
	}
	if r.Funct7 != MFunct7 {
		t.Errorf("Funct7 = %#x; want %#x", r.Funct7, MFunct7)
	}
	if r.Funct3 != 0 {
		t.Errorf("Funct3 = %d; want 0 (MUL)", r.Funct3)
	}
	if r.RD != 10 || r.RS1 != 10 || r.RS2 != 11 {
		t.Errorf("rd=%d rs1=%d rs2=%d; want 10,10,11", r.RD, r.RS1, r.RS2)
	}
}

func TestDecodeI(t *testing.T) {
	// FLW f1, -4(x2): imm=-4, rs1=2, funct3=010, rd=1, opcode=0000111
	in := uint32(0xFFC12087) // imm=0xFFC rs1=2 funct3=2 rd=1 opcode=0x07
	i := DecodeI(in)
	if i.Opcode != OpFDLoad {
		t.Errorf("Opcode = %#x; want %#x", i.Opcode, OpFDLoad)
	}
	if int64(i.Imm12) != -4 {
		t.Errorf("Imm12 = %d; want -4", int64(i.Imm12))
	}
}

func TestDecodeS(t *testing.T) {
	// FSW f3, -4(x2): S-type, imm split across [31:25] and [11:7]
	in := uint32(0xFE312E27) // imm=-4 rs2=3 rs1=2 funct3=2 opcode=0x27
	s := DecodeS(in)
	if s.Opcode != OpFDStore {
		t.Errorf("Opcode = %#x; want %#x", s.Opcode, OpFDStore)
	}
	if int64(s.Imm12) != -4 {
		t.Errorf("Imm12 = %d; want -4", int64(s.Imm12))
	}
	if s.RS1 != 2 || s.RS2 != 3 {
		t.Errorf("rs1=%d rs2=%d; want 2,3", s.RS1, s.RS2)
	}
}

func TestDecodeR4(t *testing.T) {
	// FMADD.D f1, f2, f3, f4, rm=0: rs3=4 funct2=01(D) rs2=3 rs1=2 rm=0 rd=1 opcode=0x43
	in := uint32(0)
	in |= 4 << 27
	in |= 1 << 25
	in |= 3 << 20
	in |= 2 << 15
	in |= 0 << 12
	in |= 1 << 7
	in |= OpFMADD
	r4 := DecodeR4(in)
	if r4.RS3 != 4 || r4.Funct2 != 1 || r4.RS2 != 3 || r4.RS1 != 2 || r4.RD != 1 {
		t.Errorf("decoded %+v", r4)
	}
}
