// Package sim replays memory-access traces against a cache model.
package sim

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/csim/addr"
	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/trace"
)

// Source provides the operations to replay. Next returns false when the
// replay should stop.
type Source interface {
	Next() (trace.Operation, bool)
}

// erroringSource is a Source that can fail for reasons other than
// malformed input.
type erroringSource interface {
	Err() error
}

// Observer is notified of every replayed access.
type Observer interface {
	Observe(op trace.Operation, fields addr.Fields, outcome cache.Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(op trace.Operation, fields addr.Fields, outcome cache.Outcome)

// Observe calls f.
func (f ObserverFunc) Observe(
	op trace.Operation,
	fields addr.Fields,
	outcome cache.Outcome,
) {
	f(op, fields, outcome)
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithVerbose echoes every replayed access and its outcome to w.
func WithVerbose(w io.Writer) Option {
	return func(s *Simulation) {
		s.verbose = w
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(s *Simulation) {
		s.observers = append(s.observers, o)
	}
}

// WithLogger sets the logger. The standard logrus logger is used otherwise.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulation) {
		s.log = l
	}
}

// Simulation owns one cache for the duration of one run.
type Simulation struct {
	layout    addr.Layout
	cache     *cache.Cache
	verbose   io.Writer
	observers []Observer
	log       logrus.FieldLogger
}

// New creates a simulation of a cache with layout.NumSets() sets of ways
// lines each.
func New(layout addr.Layout, ways int, opts ...Option) (*Simulation, error) {
	c, err := cache.New(cache.Config{NumSets: layout.NumSets(), Ways: ways})
	if err != nil {
		return nil, fmt.Errorf("failed to build cache: %w", err)
	}

	s := &Simulation{
		layout: layout,
		cache:  c,
		log:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Layout returns the address layout.
func (s *Simulation) Layout() addr.Layout {
	return s.layout
}

// Cache returns the simulated cache.
func (s *Simulation) Cache() *cache.Cache {
	return s.cache
}

// Stats returns the statistics accumulated so far.
func (s *Simulation) Stats() cache.Statistics {
	return s.cache.Stats()
}

// Step replays a single operation.
func (s *Simulation) Step(op trace.Operation) (cache.Outcome, error) {
	fields := s.layout.Split(op.Addr)
	outcome := s.cache.Access(fields.SetIndex, fields.Tag, op.Kind)

	for _, o := range s.observers {
		o.Observe(op, fields, outcome)
	}

	if s.verbose != nil {
		if _, err := fmt.Fprintf(s.verbose, "%s %s\n", op.Text(), outcome); err != nil {
			return outcome, fmt.Errorf("failed to write verbose output: %w", err)
		}
	}

	return outcome, nil
}

// Run replays operations from src until it is exhausted and returns the
// statistics of the run. A source that reports a read error makes Run fail;
// accesses replayed before the error stay counted.
func (s *Simulation) Run(src Source) (cache.Statistics, error) {
	var n uint64

	for {
		op, ok := src.Next()
		if !ok {
			break
		}

		if _, err := s.Step(op); err != nil {
			return s.Stats(), err
		}
		n++
	}

	if es, ok := src.(erroringSource); ok {
		if err := es.Err(); err != nil {
			return s.Stats(), fmt.Errorf("failed to read trace: %w", err)
		}
	}

	stats := s.Stats()
	s.log.WithFields(logrus.Fields{
		"accesses":  n,
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"evictions": stats.Evictions,
	}).Debug("replay finished")

	return stats, nil
}

// PrintSummary writes the hit, miss and eviction totals.
func PrintSummary(w io.Writer, stats cache.Statistics) error {
	_, err := fmt.Fprintf(w, "hits:%d misses:%d evictions:%d\n",
		stats.Hits, stats.Misses, stats.Evictions)
	return err
}

// WriteResults writes the totals to path as three space-separated integers.
func WriteResults(path string, stats cache.Statistics) error {
	data := fmt.Sprintf("%d %d %d\n", stats.Hits, stats.Misses, stats.Evictions)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	return nil
}
