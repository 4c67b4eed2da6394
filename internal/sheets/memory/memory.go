// Package memory provides an in-process sheets.Exporter that keeps the last
// exported snapshot. The sync worker uses it when no spreadsheet is
// configured, and tests use it to observe exports.
package memory

import (
	"context"
	"sync"

	"expensetracker/internal/core"
	ports "expensetracker/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	rows    []core.Expense
	exports int
}

var _ ports.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(_ context.Context, expenses []core.Expense) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append([]core.Expense(nil), expenses...)
	e.exports++
	return nil
}

// Snapshot returns the rows written by the most recent Export.
func (e *Exporter) Snapshot() []core.Expense {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Expense(nil), e.rows...)
}

// Exports returns how many times Export was called.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
