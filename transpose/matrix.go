// Package transpose evaluates how cache-friendly matrix transpose routines
// are. Every element access a routine makes is recorded and replayed
// against a 1KB direct-mapped cache with 32-byte blocks.
package transpose

import (
	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/trace"
)

// ElementSize is the size in bytes of a matrix element.
const ElementSize = 4

// Recorder collects the accesses made through the matrices that share it.
type Recorder struct {
	ops     []trace.Operation
	enabled bool
}

// Start begins recording.
func (r *Recorder) Start() { r.enabled = true }

// Stop ends recording.
func (r *Recorder) Stop() { r.enabled = false }

// Ops returns the recorded accesses.
func (r *Recorder) Ops() []trace.Operation { return r.ops }

func (r *Recorder) record(kind cache.Kind, a uint64) {
	if r == nil || !r.enabled {
		return
	}

	r.ops = append(r.ops, trace.Operation{Kind: kind, Addr: a, Size: ElementSize})
}

// Matrix is a row-major matrix of int32 placed at a fixed base address.
type Matrix struct {
	rows, cols int
	base       uint64
	data       []int32
	rec        *Recorder
}

// NewMatrix creates a zeroed rows x cols matrix at base. Accesses through
// Get and Set are reported to rec, which may be nil.
func NewMatrix(rows, cols int, base uint64, rec *Recorder) *Matrix {
	return &Matrix{
		rows: rows,
		cols: cols,
		base: base,
		data: make([]int32, rows*cols),
		rec:  rec,
	}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Addr returns the address of element (i, j).
func (m *Matrix) Addr(i, j int) uint64 {
	return m.base + uint64(i*m.cols+j)*ElementSize
}

// Get loads element (i, j).
func (m *Matrix) Get(i, j int) int32 {
	m.rec.record(cache.Load, m.Addr(i, j))
	return m.data[i*m.cols+j]
}

// Set stores v to element (i, j).
func (m *Matrix) Set(i, j int, v int32) {
	m.rec.record(cache.Store, m.Addr(i, j))
	m.data[i*m.cols+j] = v
}

func (m *Matrix) at(i, j int) int32 {
	return m.data[i*m.cols+j]
}

// IsTranspose reports whether b is the transpose of a. It does not record
// accesses.
func IsTranspose(a, b *Matrix) bool {
	if a.rows != b.cols || a.cols != b.rows {
		return false
	}

	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			if a.at(i, j) != b.at(j, i) {
				return false
			}
		}
	}

	return true
}
