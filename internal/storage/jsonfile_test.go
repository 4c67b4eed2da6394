package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expensetracker/internal/core"
)

var sample = []core.Expense{
	{ID: "20240115103000", Description: "Lunch", Amount: core.Money{Cents: 1250}, Category: "Food", Date: "2024-01-15"},
	{ID: "20240116090000", Description: "Train", Amount: core.Money{Cents: 4000}, Category: "Travel", Date: "2024-01-16"},
}

func TestJSONFile_MissingFileIsEmpty(t *testing.T) {
	f := NewJSONFile(filepath.Join(t.TempDir(), "expenses.json"))

	got, err := f.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadAll() = %+v, want empty", got)
	}
}

func TestJSONFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "expenses.json")
	f := NewJSONFile(path)

	if err := f.WriteAll(ctx, sample); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	got, err := f.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != len(sample) {
		t.Fatalf("got %d records, want %d", len(got), len(sample))
	}
	for i := range sample {
		if got[i] != sample[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], sample[i])
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, temp file left behind?", len(entries))
	}
}

func TestJSONFile_Format(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.json")
	f := NewJSONFile(path)

	if err := f.WriteAll(ctx, sample[:1]); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := `[
  {
    "id": "20240115103000",
    "description": "Lunch",
    "amount": 12.5,
    "category": "Food",
    "date": "2024-01-15"
  }
]`
	if string(data) != want {
		t.Errorf("file contents:\n%s\nwant:\n%s", data, want)
	}

	if err := f.WriteAll(ctx, nil); err != nil {
		t.Fatalf("WriteAll(nil) error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "[]" {
		t.Errorf("empty collection written as %q, want []", data)
	}
}

func TestJSONFile_ReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed json", `[{"id": "1",`, "parse"},
		{"not an array", `{"id": "1"}`, "parse"},
		{"missing amount", `[{"id":"1","description":"x","category":"c","date":"2024-01-01"}]`, `missing field "amount"`},
		{"missing id", `[{"description":"x","amount":1,"category":"c","date":"2024-01-01"}]`, `missing field "id"`},
		{"null amount", `[{"id":"1","description":"x","amount":null,"category":"c","date":"2024-01-01"}]`, `missing field "amount"`},
		{"non-numeric amount", `[{"id":"1","description":"x","amount":"abc","category":"c","date":"2024-01-01"}]`, "invalid amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "expenses.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := NewJSONFile(path).ReadAll(context.Background())
			if err == nil {
				t.Fatal("ReadAll() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestJSONFile_AcceptsStringAmounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	content := `[{"id":"1","description":"x","amount":"7.25","category":"c","date":"2024-01-01"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewJSONFile(path).ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if got[0].Amount.Cents != 725 {
		t.Errorf("Amount = %d cents, want 725", got[0].Amount.Cents)
	}
}

func TestJSONFile_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	f := NewJSONFile(path)
	if err := f.WriteAll(context.Background(), sample); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.WriteAll(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteAll() error = %v, want context.Canceled", err)
	}
	if _, err := f.ReadAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadAll() error = %v, want context.Canceled", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Errorf("file changed after cancelled write:\n%s", after)
	}
}
