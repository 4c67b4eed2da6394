// Package ports defines the interfaces the HTTP and CLI layers depend on.
package ports

import (
	"context"

	"expensetracker/internal/core"
)

// ExpenseStore is the expense collection as seen by the outer surfaces.
// store.Store satisfies it directly; services.ExpenseService wraps one to
// publish change events.
type ExpenseStore interface {
	Add(ctx context.Context, description string, amount core.Money, category, date string) (core.Expense, error)
	Delete(ctx context.Context, id string) error
	Filter(category, month string) []core.Expense
	Statistics() core.Statistics
	Categories() []string
	All() []core.Expense
	Len() int
}
