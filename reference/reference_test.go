package reference_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/addr"
	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/reference"
	"github.com/sarchlab/csim/sim"
	"github.com/sarchlab/csim/trace"
)

var _ = Describe("Cache", func() {
	var c *reference.Cache

	BeforeEach(func() {
		// 16 sets, 4-way, 64B lines
		var err error
		c, err = reference.New(addr.MustLayout(4, 6), 4)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should miss on cold cache", func() {
		Expect(c.Access(0x1000, cache.Load)).To(Equal(cache.Miss))
		Expect(c.Stats()).To(Equal(cache.Statistics{Misses: 1}))
	})

	It("should hit on different addresses in same cache line", func() {
		c.Access(0x1000, cache.Load)
		Expect(c.Access(0x1004, cache.Load)).To(Equal(cache.Hit))
	})

	It("should classify modify as a load then a store", func() {
		Expect(c.Access(0x2000, cache.Modify)).To(Equal(cache.MissHit))
		Expect(c.Access(0x2000, cache.Modify)).To(Equal(cache.HitHit))
	})

	Describe("Eviction", func() {
		It("should evict when a set is full", func() {
			// Set 0 addresses are 1KB apart
			c.Access(0x0000, cache.Store)
			c.Access(0x0400, cache.Store)
			c.Access(0x0800, cache.Store)
			c.Access(0x0C00, cache.Store)

			Expect(c.Access(0x1000, cache.Store)).To(Equal(cache.MissEviction))
			stats := c.Stats()
			Expect(stats.Evictions).To(Equal(uint64(1)))
			Expect(stats.DirtyEvictions).To(Equal(uint64(1)))
		})

		It("should evict the least recently used block", func() {
			c.Access(0x0000, cache.Load)
			c.Access(0x0400, cache.Load)
			c.Access(0x0800, cache.Load)
			c.Access(0x0C00, cache.Load)

			// Touch every block except 0x0400
			c.Access(0x0000, cache.Load)
			c.Access(0x0800, cache.Load)
			c.Access(0x0C00, cache.Load)

			Expect(c.Access(0x1000, cache.Load)).To(Equal(cache.MissEviction))
			Expect(c.Access(0x0000, cache.Load)).To(Equal(cache.Hit))
			Expect(c.Access(0x0400, cache.Load)).To(Equal(cache.MissEviction))
			Expect(c.Stats().DirtyEvictions).To(BeZero())
		})
	})

	It("should clear state on reset", func() {
		c.Access(0x1000, cache.Load)
		c.Reset()
		Expect(c.Stats()).To(Equal(cache.Statistics{}))
		Expect(c.Access(0x1000, cache.Load)).To(Equal(cache.Miss))
	})

	It("should reject oversized geometries", func() {
		_, err := reference.New(addr.MustLayout(30, 4), 64)
		Expect(err).To(HaveOccurred())

		_, err = reference.New(addr.MustLayout(2, 4), 0)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Checker", func() {
	DescribeTable("agrees with the simulator on random traces",
		func(s, e, b int, span int64) {
			layout := addr.MustLayout(s, b)
			checker, err := reference.NewChecker(layout, e)
			Expect(err).NotTo(HaveOccurred())

			simulation, err := sim.New(layout, e, sim.WithObserver(checker))
			Expect(err).NotTo(HaveOccurred())

			r := rand.New(rand.NewSource(int64(s*100 + e*10 + b)))
			ops := make([]trace.Operation, 5000)
			for i := range ops {
				ops[i] = trace.Operation{
					Kind: cache.Kind(r.Intn(3)),
					Addr: uint64(r.Int63n(span)),
					Size: 4,
				}
			}

			stats, err := simulation.Run(trace.NewReplay(ops))
			Expect(err).NotTo(HaveOccurred())
			Expect(checker.Err()).NotTo(HaveOccurred())
			Expect(checker.Checked()).To(Equal(uint64(len(ops))))
			Expect(checker.Stats()).To(Equal(stats))
		},
		Entry("direct mapped", 4, 1, 4, int64(1<<12)),
		Entry("two-way", 4, 2, 4, int64(1<<12)),
		Entry("eight-way", 2, 8, 5, int64(1<<11)),
		Entry("fully associative set", 1, 16, 3, int64(1<<10)),
		Entry("large sparse", 8, 4, 6, int64(1<<24)),
	)

	It("reports outcomes that differ", func() {
		layout := addr.MustLayout(2, 2)
		checker, err := reference.NewChecker(layout, 1)
		Expect(err).NotTo(HaveOccurred())

		op := trace.Operation{Kind: cache.Load, Addr: 0x10, Size: 1}
		checker.Observe(op, layout.Split(op.Addr), cache.Hit)

		Expect(checker.Mismatches()).To(HaveLen(1))
		Expect(checker.Err()).To(MatchError(ContainSubstring(`simulator "hit", reference "miss"`)))
	})
})
