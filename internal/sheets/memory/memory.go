// Package memory is an in-process BackupWriter used in tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "buddyx/internal/sheets"
)

type Writer struct {
	mu   sync.Mutex
	rows []ports.Row

	// FailNext makes the next Append return an error, then clears itself.
	FailNext error
}

var _ ports.BackupWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) Append(ctx context.Context, row ports.Row) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.FailNext != nil {
		err := w.FailNext
		w.FailNext = nil
		return "", err
	}
	w.rows = append(w.rows, row)
	return fmt.Sprintf("memory!A%d:E%d", len(w.rows), len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []ports.Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ports.Row, len(w.rows))
	copy(out, w.rows)
	return out
}
