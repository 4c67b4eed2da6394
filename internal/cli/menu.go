package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"expensetracker/internal/core"
	"expensetracker/internal/ports"
	"expensetracker/internal/store"
)

const (
	rule     = "=================================================="
	wideRule = "================================================================================"
)

// Menu is the interactive numbered menu over an expense store.
type Menu struct {
	store    ports.ExpenseStore
	in       *bufio.Scanner
	out      io.Writer
	currency string
}

func NewMenu(s ports.ExpenseStore, in io.Reader, out io.Writer, currency string) *Menu {
	return &Menu{
		store:    s,
		in:       bufio.NewScanner(in),
		out:      out,
		currency: currency,
	}
}

// Run loops until the user exits, input ends or ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()

		choice, ok := m.prompt("\nEnter your choice (1-8): ")
		if !ok {
			fmt.Fprintln(m.out)
			return m.in.Err()
		}

		switch choice {
		case "1":
			m.addExpense(ctx)
		case "2":
			m.viewExpenses("", "")
		case "3":
			category, _ := m.prompt("Enter category: ")
			m.viewExpenses(category, "")
		case "4":
			month, _ := m.prompt("Enter month (YYYY-MM): ")
			m.viewExpenses("", month)
		case "5":
			m.deleteExpense(ctx)
		case "6":
			m.statistics()
		case "7":
			m.listCategories()
		case "8":
			fmt.Fprintln(m.out, "\nThank you for using Expense Tracker!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintf(m.out, "\n%s\nEXPENSE TRACKER\n%s\n", rule, rule)
	fmt.Fprintln(m.out, "1. Add Expense")
	fmt.Fprintln(m.out, "2. View All Expenses")
	fmt.Fprintln(m.out, "3. View Expenses by Category")
	fmt.Fprintln(m.out, "4. View Expenses by Month (YYYY-MM)")
	fmt.Fprintln(m.out, "5. Delete Expense")
	fmt.Fprintln(m.out, "6. View Statistics")
	fmt.Fprintln(m.out, "7. List Categories")
	fmt.Fprintln(m.out, "8. Exit")
	fmt.Fprintln(m.out, rule)
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) addExpense(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- Add New Expense ---")

	description, _ := m.prompt("Description: ")
	if description == "" {
		m.fail(core.ErrEmptyDescription)
		return
	}
	rawAmount, _ := m.prompt("Amount (" + core.CurrencySymbol(m.currency) + "): ")
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		m.fail(err)
		return
	}
	category, _ := m.prompt("Category: ")
	if category == "" {
		m.fail(core.ErrEmptyCategory)
		return
	}
	date, _ := m.prompt("Date (YYYY-MM-DD, press Enter for today): ")

	if _, err := m.store.Add(ctx, description, amount, category, date); err != nil {
		if core.IsValidation(err) {
			m.fail(err)
			return
		}
		fmt.Fprintln(m.out, "Error: Failed to save expense")
		return
	}
	fmt.Fprintln(m.out, "✓ Expense added successfully!")
}

func (m *Menu) deleteExpense(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- Delete Expense ---")
	m.viewExpenses("", "")

	id, _ := m.prompt("Enter expense ID to delete: ")
	if id == "" {
		return
	}
	switch err := m.store.Delete(ctx, id); {
	case err == nil:
		fmt.Fprintln(m.out, "✓ Expense deleted successfully!")
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(m.out, "Error: Expense not found.")
	default:
		fmt.Fprintln(m.out, "Error: Failed to delete expense")
	}
}

func (m *Menu) viewExpenses(category, month string) {
	expenses := m.store.Filter(category, month)
	if len(expenses) == 0 {
		fmt.Fprintln(m.out, "No expenses found.")
		return
	}

	fmt.Fprintf(m.out, "\n%s\n", wideRule)
	tw := tabwriter.NewWriter(m.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tCategory\tAmount\tDescription\tID")
	fmt.Fprintln(tw, "----\t--------\t------\t-----------\t--")
	var total core.Money
	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date, e.Category, e.Amount.Display(m.currency), e.Description, e.ID)
		total.Cents += e.Amount.Cents
	}
	fmt.Fprintf(tw, "Total\t\t%s\t\t\n", total.Display(m.currency))
	_ = tw.Flush()
	fmt.Fprintf(m.out, "%s\n\n", wideRule)
}

func (m *Menu) statistics() {
	stats := m.store.Statistics()
	if stats.Count == 0 {
		fmt.Fprintln(m.out, "No expenses to analyze.")
		return
	}

	fmt.Fprintf(m.out, "\n%s\nEXPENSE STATISTICS\n%s\n", rule, rule)
	fmt.Fprintf(m.out, "Total Expenses: %s\n", stats.Total.Display(m.currency))
	fmt.Fprintf(m.out, "Number of Transactions: %d\n", stats.Count)
	fmt.Fprintf(m.out, "Average per Transaction: %s\n", stats.Average.Display(m.currency))
	fmt.Fprintln(m.out, "\nBy Category:")
	fmt.Fprintln(m.out, strings.Repeat("-", len(rule)))
	for _, c := range stats.ByAmount() {
		fmt.Fprintf(m.out, "%-20s %12s (%5.1f%%)\n", c.Name, c.Amount.Display(m.currency), c.Percentage)
	}
	fmt.Fprintf(m.out, "%s\n\n", rule)
}

func (m *Menu) listCategories() {
	categories := m.store.Categories()
	if len(categories) == 0 {
		fmt.Fprintln(m.out, "No categories found.")
		return
	}
	fmt.Fprintln(m.out, "\nCategories:")
	for _, c := range categories {
		fmt.Fprintf(m.out, "  - %s\n", c)
	}
	fmt.Fprintln(m.out)
}

func (m *Menu) fail(err error) {
	msg := err.Error()
	fmt.Fprintf(m.out, "Error: %s\n", strings.ToUpper(msg[:1])+msg[1:])
}
