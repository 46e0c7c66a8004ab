package trace

import (
	"bufio"
	"fmt"
	"io"
)

// Writer writes operations in trace format.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer over w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one operation as a data access line.
func (w *Writer) Write(op Operation) error {
	_, err := fmt.Fprintf(w.w, " %c %x,%x\n", kindChar(op.Kind), op.Addr, op.Size)
	return err
}

// WriteAll writes every operation and flushes.
func (w *Writer) WriteAll(ops []Operation) error {
	for _, op := range ops {
		if err := w.Write(op); err != nil {
			return err
		}
	}

	return w.Flush()
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
