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

package conformance

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv64mfd/core/hart"
)

// These mirror the concrete scenario table: RV64, misa has F/D/M,
// frm=RNE, PC=0x1000 (newMachine's defaults).
var _ = Describe("Concrete scenarios", func() {
	var m *machine

	BeforeEach(func() {
		m = newMachine()
	})

	It("MUL x10,x10,x11: x10=3,x11=5 -> x10=15, PC=0x1004", func() {
		m.gpr[10], m.gpr[11] = 3, 5
		inst := encodeR(0x33, 0x01, 11, 10, 0, 10)
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadGPR(10)).To(Equal(uint64(15)))
		Expect(next.ReadPC()).To(Equal(uint64(0x1004)))
	})

	It("DIV x10,x11,x0: x11=7 -> x10=all-ones", func() {
		m.gpr[11] = 7
		inst := encodeR(0x33, 0x01, 0, 11, 4, 10)
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadGPR(10)).To(Equal(uint64(math.MaxUint64)))
	})

	It("REM x10,x11,x0: x11=7 -> x10=7", func() {
		m.gpr[11] = 7
		inst := encodeR(0x33, 0x01, 0, 11, 6, 10)
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadGPR(10)).To(Equal(uint64(7)))
	})

	It("MULW x10,x10,x11 (RV64): low 32 bits multiplied and sign-extended", func() {
		m.gpr[10] = 0x0000000100000002
		m.gpr[11] = 0x2
		inst := encodeR(0x3B, 0x01, 11, 10, 0, 10)
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadGPR(10)).To(Equal(uint64(0x0000000000000004)))
	})

	It("FADD.D f10,f10,f11: f10=1.5,f11=2.25 -> f10=3.75, fflags unchanged", func() {
		m.fpr[10] = math.Float64bits(1.5)
		m.fpr[11] = math.Float64bits(2.25)
		before := m.ReadCSR(hart.CSRAddrFflags)
		inst := encodeR(0x53, 0x01, 11, 10, 7, 10) // dynamic rm, resolved via frm=RNE
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(math.Float64frombits(next.ReadFPR(10))).To(Equal(3.75))
		Expect(next.ReadCSR(hart.CSRAddrFflags)).To(Equal(before))
	})

	It("FMIN.D with sNaN and +1.0: f10=sNaN(D),f11=+1.0 -> f10=+1.0, fflags|=NV", func() {
		const sNaND = 0x7FF4000000000001 // signaling NaN: quiet bit clear, non-zero payload
		m.fpr[10] = sNaND
		m.fpr[11] = math.Float64bits(1.0)
		inst := encodeR(0x53, 0x15, 11, 10, 0, 10) // FMIN.D
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(math.Float64frombits(next.ReadFPR(10))).To(Equal(1.0))
		Expect(next.ReadCSR(hart.CSRAddrFflags) & 0x1).To(Equal(uint64(0x1))) // NV
	})

	It("FDIV.S f10,f10,f11: f10=1.0(boxed),f11=0.0(boxed) -> f10=+Inf boxed, fflags|=DZ", func() {
		m.fpr[10] = 0xFFFFFFFF00000000 | uint64(math.Float32bits(1.0))
		m.fpr[11] = 0xFFFFFFFF00000000 | uint64(math.Float32bits(0.0))
		inst := encodeR(0x53, 0x0C, 11, 10, 7, 10) // FDIV.S
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadFPR(10) >> 32).To(Equal(uint64(0xFFFFFFFF)))
		Expect(math.Float32frombits(uint32(next.ReadFPR(10)))).To(Equal(float32(math.Inf(1))))
		Expect(next.ReadCSR(hart.CSRAddrFflags) & 0x2).To(Equal(uint64(0x2))) // DZ
	})

	It("FCLASS.D on -Inf: f10=-Inf(D) -> x_rd=0x1 (bit 0)", func() {
		m.fpr[10] = 0xFFF0000000000000 // -Inf
		inst := encodeR(0x53, 0x71, 0, 10, 1, 5)
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadGPR(5)).To(Equal(uint64(0x1)))
	})
})
