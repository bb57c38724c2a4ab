package regs_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c64xplusdis/regs"
)

var _ = Describe("Register", func() {
	Describe("scalar registers", func() {
		It("should render a side-A scalar as A<n>", func() {
			r := regs.FromScalar(3, false)
			Expect(r.String()).To(Equal("A3"))
			Expect(r.Side()).To(BeFalse())
			Expect(r.IsPair()).To(BeFalse())
		})

		It("should render a side-B scalar as B<n>", func() {
			r := regs.FromScalar(14, true)
			Expect(r.String()).To(Equal("B14"))
			Expect(r.Side()).To(BeTrue())
		})
	})

	Describe("register pairs", func() {
		// FromPair(n, s).String() always renders two indices differing by
		// 1 with the lower one even, upper index first (e.g. A5:A4).
		It("should normalize an even index to itself", func() {
			r := regs.FromPair(4, false)
			Expect(r.String()).To(Equal("A5:A4"))
		})

		It("should normalize an odd index down to the even lower half", func() {
			r := regs.FromPair(5, false)
			Expect(r.String()).To(Equal("A5:A4"))
		})

		It("should work on side B", func() {
			r := regs.FromPair(7, true)
			Expect(r.String()).To(Equal("B7:B6"))
		})
	})

	Describe("Not (cross-path complement)", func() {
		It("should flip A to B while preserving the index", func() {
			r := regs.FromScalar(5, false)
			Expect(r.Not().String()).To(Equal("B5"))
		})

		It("should flip B to A while preserving the index", func() {
			r := regs.FromScalar(5, true)
			Expect(r.Not().String()).To(Equal("A5"))
		})

		It("should preserve pair-ness", func() {
			r := regs.FromPair(4, false)
			flipped := r.Not()
			Expect(flipped.IsPair()).To(BeTrue())
			Expect(flipped.String()).To(Equal("B5:B4"))
		})
	})

	Describe("Add", func() {
		It("should increment a scalar register's index", func() {
			r := regs.FromScalar(3, false)
			Expect(r.Add(2).String()).To(Equal("A5"))
		})

		It("should advance a pair's lower half to the even value of k", func() {
			r := regs.FromPair(0, false)
			Expect(r.Add(3).String()).To(Equal("A3:A2"))
		})
	})
})

var _ = Describe("Unit", func() {
	It("should render with an A-side (1) suffix", func() {
		Expect(regs.UnitS.SidedString(false)).To(Equal("S1"))
	})

	It("should render with a B-side (2) suffix", func() {
		Expect(regs.UnitL.SidedString(true)).To(Equal("L2"))
	})

	It("should render the bare unit letter", func() {
		Expect(regs.UnitD.String()).To(Equal("D"))
		Expect(regs.UnitM.String()).To(Equal("M"))
	})
})
