package google

import (
	"fmt"

	"expensetracker/internal/core"
)

var header = []any{"ID", "Date", "Description", "Category", "Amount"}

func sheetRange(sheetName string) string {
	return fmt.Sprintf("%s!A:E", sheetName)
}

// toRows converts expenses to a values matrix with a header row.
// Amounts are written as numbers so the sheet can sum them.
func toRows(expenses []core.Expense) [][]any {
	rows := make([][]any, 0, len(expenses)+1)
	rows = append(rows, header)
	for _, e := range expenses {
		rows = append(rows, []any{
			e.ID,
			e.Date,
			e.Description,
			e.Category,
			e.Amount.Decimal().InexactFloat64(),
		})
	}
	return rows
}
