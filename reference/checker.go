package reference

import (
	"fmt"

	"github.com/sarchlab/csim/addr"
	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/trace"
)

// Mismatch describes an access the two models classified differently.
type Mismatch struct {
	Index     uint64
	Op        trace.Operation
	Got       cache.Outcome
	Reference cache.Outcome
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("access %d (%s): simulator %q, reference %q",
		m.Index, m.Op.Text(), m.Got, m.Reference)
}

// Checker replays every observed access on a reference cache and records
// the accesses whose outcomes differ.
type Checker struct {
	model      *Cache
	count      uint64
	mismatches []Mismatch
}

// NewChecker creates a Checker with a fresh reference cache.
func NewChecker(layout addr.Layout, ways int) (*Checker, error) {
	model, err := New(layout, ways)
	if err != nil {
		return nil, err
	}

	return &Checker{model: model}, nil
}

// Observe replays op on the reference cache.
func (c *Checker) Observe(
	op trace.Operation,
	_ addr.Fields,
	outcome cache.Outcome,
) {
	want := c.model.Access(op.Addr, op.Kind)
	if want != outcome {
		c.mismatches = append(c.mismatches, Mismatch{
			Index:     c.count,
			Op:        op,
			Got:       outcome,
			Reference: want,
		})
	}
	c.count++
}

// Checked returns the number of accesses checked.
func (c *Checker) Checked() uint64 {
	return c.count
}

// Mismatches returns the accesses whose outcomes differed.
func (c *Checker) Mismatches() []Mismatch {
	return c.mismatches
}

// Stats returns the statistics of the reference cache.
func (c *Checker) Stats() cache.Statistics {
	return c.model.Stats()
}

// Err returns the first mismatch, or nil if the models agreed.
func (c *Checker) Err() error {
	if len(c.mismatches) == 0 {
		return nil
	}

	return c.mismatches[0]
}
