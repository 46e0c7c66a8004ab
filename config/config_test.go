package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/addr"
	"github.com/sarchlab/csim/config"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	It("requires a cache geometry by default", func() {
		c := config.Default()
		Expect(c.Validate()).To(MatchError(config.ErrMissingArgument))
	})

	It("describes the transpose evaluation cache", func() {
		c := config.DirectMapped1K()
		Expect(c.ValidateGeometry()).To(Succeed())

		layout, err := c.Layout()
		Expect(err).NotTo(HaveOccurred())
		Expect(layout.NumSets() * uint64(c.LinesPerSet) * layout.BlockSize()).
			To(Equal(uint64(1024)))
	})

	DescribeTable("Validate",
		func(s, e, b int, tracePath string, ok bool) {
			c := config.Default()
			c.IndexBits, c.LinesPerSet, c.BlockBits, c.Trace = s, e, b, tracePath

			err := c.Validate()
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(HaveOccurred())
			}
		},
		Entry("complete", 4, 1, 4, "yi.trace", true),
		Entry("missing s", 0, 1, 4, "yi.trace", false),
		Entry("missing E", 4, 0, 4, "yi.trace", false),
		Entry("negative b", 4, 1, -4, "yi.trace", false),
		Entry("missing trace", 4, 1, 4, "", false),
		Entry("fields too wide", 40, 1, 30, "yi.trace", false),
	)

	It("reports too-wide fields as a layout error", func() {
		c := config.Default()
		c.IndexBits, c.LinesPerSet, c.BlockBits = 40, 1, 30
		Expect(c.ValidateGeometry()).To(MatchError(addr.ErrInvalidLayout))
	})

	It("loads YAML over the defaults", func() {
		path := writeFile("csim.yaml", `
index_bits: 4
lines_per_set: 2
block_bits: 4
trace: traces/yi.trace
verbose: true
metrics:
  labels:
    trace: yi
`)
		c, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.IndexBits).To(Equal(4))
		Expect(c.LinesPerSet).To(Equal(2))
		Expect(c.BlockBits).To(Equal(4))
		Expect(c.Trace).To(Equal("traces/yi.trace"))
		Expect(c.Verbose).To(BeTrue())
		Expect(c.Metrics.Namespace).To(Equal("csim"))
		Expect(c.Metrics.Labels).To(HaveKeyWithValue("trace", "yi"))
	})

	It("fails on a missing file", func() {
		_, err := config.Load(filepath.Join(dir, "absent.yaml"))
		Expect(err).To(MatchError(ContainSubstring("failed to read config file")))
	})

	It("fails on malformed YAML", func() {
		path := writeFile("bad.yaml", "index_bits: [1, 2")
		_, err := config.Load(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
	})

	It("round-trips through Save", func() {
		c := config.DirectMapped1K()
		c.Trace = "trace.f0"
		path := filepath.Join(dir, "saved.yaml")
		Expect(c.Save(path)).To(Succeed())

		loaded, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(c))
	})
})
