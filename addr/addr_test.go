package addr_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/addr"
)

var _ = Describe("Layout", func() {
	Describe("NewLayout", func() {
		DescribeTable("rejects degenerate widths",
			func(s, b int) {
				_, err := addr.NewLayout(s, b)
				Expect(err).To(MatchError(addr.ErrInvalidLayout))
			},
			Entry("zero index bits", 0, 4),
			Entry("negative index bits", -1, 4),
			Entry("zero block bits", 4, 0),
			Entry("sum of 64", 32, 32),
			Entry("sum above 64", 60, 10),
		)

		It("derives the tag width and sizes", func() {
			l, err := addr.NewLayout(4, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.TagBits()).To(Equal(55))
			Expect(l.NumSets()).To(Equal(uint64(16)))
			Expect(l.BlockSize()).To(Equal(uint64(32)))
		})
	})

	Describe("Split", func() {
		It("splits a small address", func() {
			l := addr.MustLayout(4, 4)
			f := l.Split(0x10)
			Expect(f).To(Equal(addr.Fields{Tag: 0, SetIndex: 1, BlockOffset: 0}))
		})

		It("splits fields at their boundaries", func() {
			l := addr.MustLayout(8, 4)
			f := l.Split(0xABCDE7F)
			Expect(f.BlockOffset).To(Equal(uint64(0xF)))
			Expect(f.SetIndex).To(Equal(uint64(0xE7)))
			Expect(f.Tag).To(Equal(uint64(0xABCD)))
		})

		It("keeps the high bits of 64-bit addresses in the tag", func() {
			l := addr.MustLayout(1, 1)
			f := l.Split(0xFFFFFFFFFFFFFFFF)
			Expect(f.BlockOffset).To(Equal(uint64(1)))
			Expect(f.SetIndex).To(Equal(uint64(1)))
			Expect(f.Tag).To(Equal(uint64(0x3FFFFFFFFFFFFFFF)))
		})

		It("masks wide index fields without overflow", func() {
			l := addr.MustLayout(40, 8)
			f := l.Split(0x0000_FFFF_FFFF_FF00)
			Expect(f.SetIndex).To(Equal(uint64(0xFF_FFFF_FFFF)))
			Expect(f.Tag).To(BeZero())
		})

		It("round-trips through Join", func() {
			r := rand.New(rand.NewSource(1))
			for s := 1; s < 20; s++ {
				for b := 1; b < 12; b++ {
					l := addr.MustLayout(s, b)
					for i := 0; i < 50; i++ {
						a := r.Uint64()
						Expect(l.Join(l.Split(a))).To(Equal(a))
					}
				}
			}
		})
	})

	It("aligns addresses to their block", func() {
		l := addr.MustLayout(2, 5)
		Expect(l.BlockAddr(0x12345)).To(Equal(uint64(0x12340)))
		Expect(l.BlockAddr(0x1235F)).To(Equal(uint64(0x12340)))
	})
})
