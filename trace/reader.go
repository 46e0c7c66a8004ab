package trace

import (
	"bufio"
	"io"
	"math"
)

const initialBufferSize = 64 * 1024

// Reader streams data operations from a trace. Instruction fetches are
// skipped. Reading stops at the first line that is not an access.
type Reader struct {
	scanner *bufio.Scanner
	lineNo  int
	stopped string
	early   bool
}

// NewReader creates a Reader over r. Lines may be of any length.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialBufferSize), math.MaxInt)

	return &Reader{scanner: scanner}
}

// Next returns the next data operation. It returns false at the end of the
// input or at the first line that cannot be parsed.
func (r *Reader) Next() (Operation, bool) {
	for r.scanner.Scan() {
		r.lineNo++
		line := r.scanner.Text()

		op, kind := parseLine(line)
		switch kind {
		case lineInstruction:
			continue
		case lineData:
			return op, true
		default:
			r.stopped = line
			r.early = true
			return Operation{}, false
		}
	}

	return Operation{}, false
}

// Err returns the first read error. Reaching the end of the input or a
// malformed line is not an error.
func (r *Reader) Err() error {
	return r.scanner.Err()
}

// LineNumber returns the number of lines consumed so far.
func (r *Reader) LineNumber() int {
	return r.lineNo
}

// StoppedAt returns the line that ended reading before the end of the input.
func (r *Reader) StoppedAt() (string, bool) {
	return r.stopped, r.early
}

// Replay is a source over operations held in memory.
type Replay struct {
	ops []Operation
	pos int
}

// NewReplay creates a source that yields ops in order.
func NewReplay(ops []Operation) *Replay {
	return &Replay{ops: ops}
}

// Next returns the next operation.
func (r *Replay) Next() (Operation, bool) {
	if r.pos >= len(r.ops) {
		return Operation{}, false
	}

	op := r.ops[r.pos]
	r.pos++

	return op, true
}
