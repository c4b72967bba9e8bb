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
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv64mfd/core/hart"
)

func TestConformance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Conformance Suite")
}

func encodeR(opcode, funct7, rs2, rs1, funct3, rd uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

var _ = Describe("Cross-cutting invariants", func() {
	var m *machine

	BeforeEach(func() {
		m = newMachine()
	})

	It("keeps GPR[0] pinned at zero through WriteGPR", func() {
		next := m.WriteGPR(0, 0xDEADBEEF)
		Expect(next.ReadGPR(0)).To(Equal(uint64(0)))
	})

	It("advances PC by exactly 4 for a non-compressed MUL", func() {
		m.gpr[10], m.gpr[11] = 6, 7
		inst := encodeR(0x33, 0x01, 11, 10, 0, 12)
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadPC()).To(Equal(m.pc + 4))
	})

	It("advances PC by exactly 2 for a compressed-flagged MUL", func() {
		m.gpr[10], m.gpr[11] = 6, 7
		inst := encodeR(0x33, 0x01, 11, 10, 0, 12)
		legal, next := execute(m, inst, true)
		Expect(legal).To(BeTrue())
		Expect(next.ReadPC()).To(Equal(m.pc + 2))
	})

	It("only ORs into fflags, never clearing an already-set bit", func() {
		m.csr[hart.CSRAddrFflags] = 0x1 // NV already set, unrelated to this op
		m.fpr[10] = 0xFFFFFFFF00000000 | uint64(math.Float32bits(1.0))
		m.fpr[11] = 0xFFFFFFFF00000000 | uint64(math.Float32bits(2.0))
		inst := encodeR(0x53, 0x00, 11, 10, 0, 12) // FADD.S
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadCSR(hart.CSRAddrFflags) & 0x1).To(Equal(uint64(0x1)))
	})

	It("leaves bits [63:32] of an SP result all-ones after the instruction", func() {
		m.fpr[10] = 0xFFFFFFFF00000000 | uint64(math.Float32bits(1.0))
		m.fpr[11] = 0xFFFFFFFF00000000 | uint64(math.Float32bits(2.0))
		inst := encodeR(0x53, 0x00, 11, 10, 0, 12) // FADD.S
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		Expect(next.ReadFPR(12) >> 32).To(Equal(uint64(0xFFFFFFFF)))
	})

	It("returns the input state unchanged when legal=false", func() {
		inst := encodeR(0x33, 0x00, 11, 10, 0, 12) // funct7=0 -> ADD, not MUL: illegal here
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeFalse())
		Expect(next).To(Equal(hart.State(m)))
	})

	It("satisfies MULHU*2^XLEN + MUL == a*b for unsigned operands", func() {
		a, b := uint64(0xFFFFFFFFFFFFFFFF), uint64(3)
		m.gpr[1], m.gpr[2] = a, b
		mulInst := encodeR(0x33, 0x01, 2, 1, 0, 10)
		mulhuInst := encodeR(0x33, 0x01, 2, 1, 3, 11)
		_, afterMul := execute(m, mulInst, false)
		_, afterMulhu := execute(m, mulInst, false)
		_, afterMulhu = execute(afterMulhu, mulhuInst, false)
		lo := afterMul.ReadGPR(10)
		hi := afterMulhu.ReadGPR(11)
		hiBig := new(bigUint).fromParts(hi, lo)
		want := new(bigUint).mulUint64(a, b)
		Expect(hiBig.eq(want)).To(BeTrue())
	})

	It("satisfies the DIVU/REMU identity and the by-zero convention", func() {
		m.gpr[1], m.gpr[2] = 17, 5
		divu := encodeR(0x33, 0x01, 2, 1, 5, 10)
		remu := encodeR(0x33, 0x01, 2, 1, 7, 11)
		_, next := execute(m, divu, false)
		_, next = execute(next, remu, false)
		Expect(next.ReadGPR(10)*5 + next.ReadGPR(11)).To(Equal(uint64(17)))

		m.gpr[1], m.gpr[2] = 17, 0
		_, nz := execute(m, divu, false)
		_, nz = execute(nz, remu, false)
		Expect(nz.ReadGPR(10)).To(Equal(uint64(math.MaxUint64)))
		Expect(nz.ReadGPR(11)).To(Equal(uint64(17)))
	})

	It("wraps DIV(INT_MIN,-1) to INT_MIN and REM(INT_MIN,-1) to 0", func() {
		m.gpr[1] = 1 << 63    // INT_MIN
		m.gpr[2] = ^uint64(0) // -1
		div := encodeR(0x33, 0x01, 2, 1, 4, 10)
		rem := encodeR(0x33, 0x01, 2, 1, 6, 11)
		_, next := execute(m, div, false)
		_, next = execute(next, rem, false)
		Expect(int64(next.ReadGPR(10))).To(Equal(int64(math.MinInt64)))
		Expect(next.ReadGPR(11)).To(Equal(uint64(0)))
	})

	It("FSGNJX(a,a) clears the sign bit", func() {
		m.fpr[1] = 0xFFFFFFFFBF800000 // -1.0f boxed
		inst := encodeR(0x53, 0x10, 1, 1, 2, 5)
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		got := uint32(next.ReadFPR(5))
		Expect(got >> 31).To(Equal(uint32(0)))
	})

	It("FCLASS sets exactly one bit", func() {
		m.fpr[1] = 0xFFFFFFFF3F800000 // 1.0f boxed
		inst := encodeR(0x53, 0x70, 0, 1, 1, 5)
		legal, next := execute(m, inst, false)
		Expect(legal).To(BeTrue())
		v := next.ReadGPR(5)
		Expect(popcount(v)).To(Equal(1))
	})

	It("round-trips unbox(box(v)) == v for any 32-bit v", func() {
		for _, v := range []uint32{0, 1, 0x7F800000, 0xFFC00000, 0x80000000} {
			m.fpr[1] = 0xFFFFFFFF00000000 | uint64(v)
			inst := encodeR(0x53, 0x10, 1, 1, 0, 5) // FSGNJ.S rd,rs1,rs1 -> rs1 unchanged
			legal, next := execute(m, inst, false)
			Expect(legal).To(BeTrue())
			Expect(uint32(next.ReadFPR(5))).To(Equal(v))
		}
	})
})

func popcount(v uint64) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

// bigUint is a minimal 128-bit unsigned helper used only to check the
// MULHU/MUL identity without importing math/big into the suite.
type bigUint struct {
	hi, lo uint64
}

func (b *bigUint) fromParts(hi, lo uint64) *bigUint {
	b.hi, b.lo = hi, lo
	return b
}

func (b *bigUint) mulUint64(a, x uint64) *bigUint {
	hi, lo := bits64Mul(a, x)
	b.hi, b.lo = hi, lo
	return b
}

func (b *bigUint) eq(o *bigUint) bool { return b.hi == o.hi && b.lo == o.lo }

func bits64Mul(a, b uint64) (hi, lo uint64) {
	const mask32 = 0xFFFFFFFF
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	ll := aLo * bLo
	lh := aLo * bHi
	hl := aHi * bLo
	hh := aHi * bHi

	mid := lh + hl
	var carry uint64
	if mid < lh {
		carry = 1 << 32
	}
	midLo := (mid & mask32) << 32
	midHi := mid >> 32

	lo = ll + midLo
	if lo < ll {
		carry++
	}
	hi = hh + midHi + carry
	return hi, lo
}
