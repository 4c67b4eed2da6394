package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
)

// JSONFile persists the expense collection as a single indented JSON array.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Path() string { return f.path }

// fileRecord mirrors core.Expense with pointer fields so missing keys can
// be told apart from zero values.
type fileRecord struct {
	ID          *string     `json:"id"`
	Description *string     `json:"description"`
	Amount      *core.Money `json:"amount"`
	Category    *string     `json:"category"`
	Date        *string     `json:"date"`
}

func (r fileRecord) toExpense(i int) (core.Expense, error) {
	missing := func(field string) error {
		return fmt.Errorf("record %d: missing field %q", i, field)
	}
	switch {
	case r.ID == nil:
		return core.Expense{}, missing("id")
	case r.Description == nil:
		return core.Expense{}, missing("description")
	case r.Amount == nil:
		return core.Expense{}, missing("amount")
	case r.Category == nil:
		return core.Expense{}, missing("category")
	case r.Date == nil:
		return core.Expense{}, missing("date")
	}
	return core.Expense{
		ID:          *r.ID,
		Description: *r.Description,
		Amount:      *r.Amount,
		Category:    *r.Category,
		Date:        *r.Date,
	}, nil
}

// ReadAll returns the stored expenses. A missing file yields an empty slice.
func (f *JSONFile) ReadAll(ctx context.Context) ([]core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []core.Expense{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}

	out := make([]core.Expense, 0, len(records))
	for i, r := range records {
		e, err := r.toExpense(i)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.path, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// WriteAll replaces the file contents. The data goes to a temp file in the
// same directory first and is renamed into place.
func (f *JSONFile) WriteAll(ctx context.Context, expenses []core.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	data, err := json.MarshalIndent(expenses, "", "  ")
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
