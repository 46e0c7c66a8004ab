// Package cache models a set-associative cache with true LRU replacement.
// It tracks tags and line state only; no data is stored.
package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by New for a geometry that cannot be built.
var ErrInvalidConfig = errors.New("invalid cache config")

// maxLines bounds the total number of lines a Cache may allocate.
const maxLines = 1 << 30

// Config holds the cache geometry.
type Config struct {
	// NumSets is the number of sets.
	NumSets uint64
	// Ways is the number of lines per set.
	Ways int
}

// Line is the state of one cache line.
type Line struct {
	Tag      uint64
	Valid    bool
	Dirty    bool
	LastUsed uint64
}

// Set is a fixed group of lines sharing a set index.
type Set struct {
	Lines []Line
}

// Statistics holds cache event counts.
type Statistics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// DirtyEvictions counts evicted lines that had their dirty bit set.
	DirtyEvictions uint64
}

// Add folds the events of an outcome into the statistics.
func (s *Statistics) Add(o Outcome) {
	s.Hits += o.Hits()
	s.Misses += o.Misses()
	s.Evictions += o.Evictions()
}

// Cache is a set-associative cache. All sets and lines are allocated by New;
// Access does not allocate.
type Cache struct {
	sets   []Set
	now    uint64
	stats  Statistics
}

// New creates an empty cache with the given geometry.
func New(config Config) (*Cache, error) {
	if config.NumSets == 0 {
		return nil, fmt.Errorf("%w: number of sets must be > 0", ErrInvalidConfig)
	}

	if config.Ways <= 0 {
		return nil, fmt.Errorf("%w: lines per set must be > 0, got %d",
			ErrInvalidConfig, config.Ways)
	}

	if config.NumSets > maxLines/uint64(config.Ways) {
		return nil, fmt.Errorf("%w: %d sets of %d lines exceeds %d lines",
			ErrInvalidConfig, config.NumSets, config.Ways, maxLines)
	}

	lines := make([]Line, config.NumSets*uint64(config.Ways))
	sets := make([]Set, config.NumSets)
	for i := range sets {
		start := i * config.Ways
		sets[i].Lines = lines[start : start+config.Ways : start+config.Ways]
	}

	return &Cache{sets: sets}, nil
}

// Stats returns the accumulated statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Now returns the time stamp the next access will receive.
func (c *Cache) Now() uint64 {
	return c.now
}

// Line returns a copy of a line.
func (c *Cache) Line(set uint64, way int) Line {
	return c.sets[set].Lines[way]
}

// Lookup returns the way an access to tag in the given set lands on: the
// valid line holding tag, else the first invalid line, else the least
// recently used line. The lowest way wins ties. Lookup does not change state.
func (c *Cache) Lookup(set uint64, tag uint64) int {
	lines := c.sets[set].Lines

	for i := range lines {
		if lines[i].Valid && lines[i].Tag == tag {
			return i
		}
	}

	for i := range lines {
		if !lines[i].Valid {
			return i
		}
	}

	victim := 0
	for i := range lines {
		if lines[i].LastUsed < lines[victim].LastUsed {
			victim = i
		}
	}

	return victim
}

// Access performs one load, store or modify of tag in the given set and
// returns its classification.
func (c *Cache) Access(set uint64, tag uint64, kind Kind) Outcome {
	line := &c.sets[set].Lines[c.Lookup(set, tag)]
	outcome := Classify(kind, line.Valid, line.Tag == tag)

	if outcome.Evictions() > 0 && line.Dirty {
		c.stats.DirtyEvictions++
	}

	line.Valid = true
	line.Tag = tag
	line.LastUsed = c.now
	c.now++

	switch kind {
	case Store, Modify:
		line.Dirty = true
	default:
		if outcome.Misses() > 0 {
			line.Dirty = false
		}
	}

	c.stats.Add(outcome)

	return outcome
}

// ResetStats clears the statistics without touching line state.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// Reset invalidates every line and clears statistics and the time stamp.
func (c *Cache) Reset() {
	for i := range c.sets {
		clear(c.sets[i].Lines)
	}

	c.now = 0
	c.stats = Statistics{}
}
