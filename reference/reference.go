// Package reference provides a second model of the simulated cache built on
// Akita cache components. It is used to cross-check the outcomes of the
// cache package.
package reference

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/csim/addr"
	"github.com/sarchlab/csim/cache"
)

// MaxLines bounds the number of blocks the Akita directory may allocate.
const MaxLines = 1 << 24

// Cache is a tag-only cache backed by an Akita directory with LRU
// replacement.
type Cache struct {
	layout addr.Layout
	ways   int

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	stats cache.Statistics
}

// New creates a reference cache with the given layout and associativity.
func New(layout addr.Layout, ways int) (*Cache, error) {
	if ways <= 0 {
		return nil, fmt.Errorf("lines per set must be > 0, got %d", ways)
	}

	if layout.NumSets() > MaxLines/uint64(ways) {
		return nil, fmt.Errorf("reference model supports at most %d lines", MaxLines)
	}

	if layout.BlockBits() > 30 {
		return nil, fmt.Errorf("reference model supports at most 30 block offset bits")
	}

	return &Cache{
		layout: layout,
		ways:   ways,
		directory: akitacache.NewDirectory(
			int(layout.NumSets()),
			ways,
			int(layout.BlockSize()),
			akitacache.NewLRUVictimFinder(),
		),
	}, nil
}

// Stats returns the accumulated statistics.
func (c *Cache) Stats() cache.Statistics {
	return c.stats
}

// Access performs a load, store or modify of the block holding address a.
func (c *Cache) Access(a uint64, kind cache.Kind) cache.Outcome {
	blockAddr := c.layout.BlockAddr(a)
	write := kind == cache.Store || kind == cache.Modify

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		if write {
			block.IsDirty = true
		}
		c.directory.Visit(block)

		return c.record(cache.Classify(kind, true, true), false)
	}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		panic("reference: no victim in a set without locked blocks")
	}

	evicted := victim.IsValid
	dirty := evicted && victim.IsDirty

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = write
	c.directory.Visit(victim)

	return c.record(cache.Classify(kind, evicted, false), dirty)
}

func (c *Cache) record(o cache.Outcome, dirtyEviction bool) cache.Outcome {
	c.stats.Add(o)
	if dirtyEviction {
		c.stats.DirtyEvictions++
	}

	return o
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = cache.Statistics{}
}
