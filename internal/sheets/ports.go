package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Exporter mirrors the whole expense collection to an external sheet.
// Each call replaces what the previous call wrote.
type Exporter interface {
	Export(ctx context.Context, expenses []core.Expense) error
}
