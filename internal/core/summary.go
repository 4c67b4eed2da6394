package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryShare is the part of the grand total spent in one category.
type CategoryShare struct {
	Amount     Money   `json:"amount"`
	Percentage float64 `json:"percentage"` // of grand total, one decimal
}

// Statistics summarizes a collection of expenses.
type Statistics struct {
	Total      Money                    `json:"total"`
	Count      int                      `json:"count"`
	Average    Money                    `json:"average"`
	Categories map[string]CategoryShare `json:"categories"`
}

// CategoryAmount pairs a category name with its share, for ordered display.
type CategoryAmount struct {
	Name string
	CategoryShare
}

// Summarize computes totals, average and the per-category breakdown.
// Categories are grouped by exact name. An empty input yields zero values
// and an empty (non-nil) category map.
func Summarize(expenses []Expense) Statistics {
	stats := Statistics{Categories: map[string]CategoryShare{}}
	if len(expenses) == 0 {
		return stats
	}

	byCategory := make(map[string]int64)
	for _, e := range expenses {
		stats.Total.Cents += e.Amount.Cents
		byCategory[e.Category] += e.Amount.Cents
	}
	stats.Count = len(expenses)

	total := decimal.NewFromInt(stats.Total.Cents)
	stats.Average = Money{Cents: total.Div(decimal.NewFromInt(int64(stats.Count))).Round(0).IntPart()}

	for name, cents := range byCategory {
		share := CategoryShare{Amount: Money{Cents: cents}}
		if stats.Total.Cents > 0 {
			share.Percentage = decimal.NewFromInt(cents).Mul(hundred).Div(total).Round(1).InexactFloat64()
		}
		stats.Categories[name] = share
	}
	return stats
}

// ByAmount returns the category breakdown sorted by amount descending,
// then by name.
func (s Statistics) ByAmount() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s.Categories))
	for name, share := range s.Categories {
		out = append(out, CategoryAmount{Name: name, CategoryShare: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}
