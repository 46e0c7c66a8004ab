package transpose

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/config"
	"github.com/sarchlab/csim/sim"
	"github.com/sarchlab/csim/trace"
)

// MaxDim is the largest supported matrix dimension.
const MaxDim = 256

// Base addresses of the source and destination matrices. Each matrix gets a
// MaxDim x MaxDim slot, so the two are a multiple of the cache size apart.
const (
	BaseA uint64 = 0x100000
	BaseB        = BaseA + MaxDim*MaxDim*ElementSize
)

// Result is the evaluation of one routine.
type Result struct {
	Desc    string
	Correct bool
	Stats   cache.Statistics
	// Ops are the recorded element accesses in program order.
	Ops []trace.Operation
}

// Evaluate runs fn on an n x m matrix and replays its accesses against the
// 1KB direct-mapped cache.
func Evaluate(e Entry, m, n int) (Result, error) {
	if m <= 0 || n <= 0 || m > MaxDim || n > MaxDim {
		return Result{}, fmt.Errorf("matrix dimensions must be in [1, %d], got %dx%d",
			MaxDim, m, n)
	}

	rec := &Recorder{}
	a := NewMatrix(n, m, BaseA, rec)
	b := NewMatrix(m, n, BaseB, rec)
	for i := range a.data {
		a.data[i] = int32(i)
	}

	rec.Start()
	e.Func(a, b)
	rec.Stop()

	result := Result{
		Desc:    e.Desc,
		Correct: IsTranspose(a, b),
		Ops:     rec.Ops(),
	}

	cfg := config.DirectMapped1K()
	layout, err := cfg.Layout()
	if err != nil {
		return result, err
	}

	simulation, err := sim.New(layout, cfg.LinesPerSet)
	if err != nil {
		return result, err
	}

	result.Stats, err = simulation.Run(trace.NewReplay(result.Ops))
	if err != nil {
		return result, err
	}

	logrus.WithFields(logrus.Fields{
		"func":     e.Desc,
		"accesses": len(result.Ops),
		"misses":   result.Stats.Misses,
	}).Debug("transpose evaluated")

	return result, nil
}

// EvaluateAll evaluates every registered routine.
func EvaluateAll(m, n int) ([]Result, error) {
	var results []Result

	for _, e := range Functions() {
		r, err := Evaluate(e, m, n)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %q: %w", e.Desc, err)
		}
		results = append(results, r)
	}

	return results, nil
}
