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

package main

import "testing"

func TestSnapshotRoundTrip(t *testing.T) {
	s := &snapshot{
		XLEN:   64,
		RVMode: 64,
		PC:     "0x1000",
		GPR:    map[string]string{"10": "0x3", "11": "0x5"},
		FPR:    map[string]string{"10": "0x3ff8000000000000"},
		CSR:    map[string]string{"3": "0x0"},
	}
	m, err := newMachineFromSnapshot(s)
	if err != nil {
		t.Fatalf("newMachineFromSnapshot: %v", err)
	}
	if m.pc != 0x1000 {
		t.Errorf("pc = %#x; want 0x1000", m.pc)
	}
	if m.gpr[10] != 3 || m.gpr[11] != 5 {
		t.Errorf("gpr[10,11] = %d,%d; want 3,5", m.gpr[10], m.gpr[11])
	}

	back := m.toSnapshot()
	if back.PC != "0x1000" {
		t.Errorf("round-tripped pc = %q; want 0x1000", back.PC)
	}
	if back.GPR["10"] != "0x3" || back.GPR["11"] != "0x5" {
		t.Errorf("round-tripped gpr = %v", back.GPR)
	}
}

func TestNewMachineFromSnapshotDefaultsXLEN(t *testing.T) {
	m, err := newMachineFromSnapshot(&snapshot{PC: "0x0"})
	if err != nil {
		t.Fatalf("newMachineFromSnapshot: %v", err)
	}
	if m.xlen != 64 {
		t.Errorf("xlen = %d; want default 64", m.xlen)
	}
}

func TestMemReadWriteRoundTrip(t *testing.T) {
	m, err := newMachineFromSnapshot(&snapshot{PC: "0x0"})
	if err != nil {
		t.Fatalf("newMachineFromSnapshot: %v", err)
	}
	_, ok, next := m.MemWrite(2, 0x2000, 0xCAFEBABE)
	if !ok {
		t.Fatalf("MemWrite failed")
	}
	v, _, ok, _ := next.MemRead(0, 2, 0x2000)
	if !ok || v != 0xCAFEBABE {
		t.Errorf("MemRead = %#x, ok=%v; want 0xCAFEBABE, true", v, ok)
	}
}
