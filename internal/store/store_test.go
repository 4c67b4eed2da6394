package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// memPersister keeps the last written collection and can be told to fail.
type memPersister struct {
	mu       sync.Mutex
	stored   []core.Expense
	readErr  error
	writeErr error
	writes   int
}

func (m *memPersister) ReadAll(context.Context) ([]core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]core.Expense(nil), m.stored...), nil
}

func (m *memPersister) WriteAll(_ context.Context, expenses []core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.stored = append([]core.Expense(nil), expenses...)
	return nil
}

var fixedNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// seqIDs hands out "id-1", "id-2", ... so tests can add several records
// within the same clock second.
func seqIDs() core.IDGenerator {
	n := 0
	return func(time.Time) string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(p Persister) *Store {
	return New(p, log.Discard(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(seqIDs()))
}

func cents(c int64) core.Money { return core.Money{Cents: c} }

func TestStore_AddPersistsAndReturnsRecord(t *testing.T) {
	p := &memPersister{}
	s := New(p, log.Discard(), WithClock(func() time.Time { return fixedNow }))

	e, err := s.Add(context.Background(), "  Lunch ", cents(1250), " Food ", "2024-01-15")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if e.ID != "20240115103000" {
		t.Errorf("ID = %q, want timestamp id", e.ID)
	}
	if e.Description != "Lunch" || e.Category != "Food" {
		t.Errorf("inputs not trimmed: %+v", e)
	}
	if len(p.stored) != 1 || p.stored[0] != e {
		t.Errorf("persisted = %+v, want [%+v]", p.stored, e)
	}
}

func TestStore_AddDefaultsDateToToday(t *testing.T) {
	s := newTestStore(&memPersister{})

	e, err := s.Add(context.Background(), "Coffee", cents(300), "Food", "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if e.Date != "2024-01-15" {
		t.Errorf("Date = %q, want 2024-01-15", e.Date)
	}
}

func TestStore_AddRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		description string
		amount      core.Money
		category    string
		date        string
		want        error
	}{
		{"empty description", "   ", cents(100), "Food", "", core.ErrEmptyDescription},
		{"zero amount", "Lunch", cents(0), "Food", "", core.ErrNonPositiveAmount},
		{"negative amount", "Lunch", cents(-5), "Food", "", core.ErrNonPositiveAmount},
		{"empty category", "Lunch", cents(100), " ", "", core.ErrEmptyCategory},
		{"bad date", "Lunch", cents(100), "Food", "15/01/2024", core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &memPersister{}
			s := newTestStore(p)

			_, err := s.Add(context.Background(), tt.description, tt.amount, tt.category, tt.date)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Add() error = %v, want %v", err, tt.want)
			}
			if s.Len() != 0 || p.writes != 0 {
				t.Errorf("rejected add changed state: len=%d writes=%d", s.Len(), p.writes)
			}
		})
	}
}

func TestStore_AddKeepsRecordWhenSaveFails(t *testing.T) {
	p := &memPersister{writeErr: errors.New("disk full")}
	s := newTestStore(p)

	e, err := s.Add(context.Background(), "Taxi", cents(2000), "Travel", "2024-01-10")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Add() error = %v, want ErrPersistence", err)
	}
	if e.ID == "" {
		t.Error("record should still be returned on save failure")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the matching record", func(t *testing.T) {
		p := &memPersister{}
		s := newTestStore(p)
		a, _ := s.Add(ctx, "A", cents(100), "Food", "2024-01-01")
		b, _ := s.Add(ctx, "B", cents(200), "Food", "2024-01-02")

		if err := s.Delete(ctx, a.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		all := s.All()
		if len(all) != 1 || all[0].ID != b.ID {
			t.Errorf("All() = %+v, want only %s", all, b.ID)
		}
		if len(p.stored) != 1 {
			t.Errorf("persisted %d records, want 1", len(p.stored))
		}
	})

	t.Run("removes every record sharing the id", func(t *testing.T) {
		p := &memPersister{stored: []core.Expense{
			{ID: "dup", Description: "A", Amount: cents(100), Category: "Food", Date: "2024-01-01"},
			{ID: "dup", Description: "B", Amount: cents(200), Category: "Food", Date: "2024-01-01"},
			{ID: "other", Description: "C", Amount: cents(300), Category: "Food", Date: "2024-01-01"},
		}}
		s := newTestStore(p)
		s.Load(ctx)

		if err := s.Delete(ctx, "dup"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
	})

	t.Run("unknown id leaves store untouched", func(t *testing.T) {
		p := &memPersister{}
		s := newTestStore(p)
		_, _ = s.Add(ctx, "A", cents(100), "Food", "2024-01-01")
		writes := p.writes

		if err := s.Delete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Delete() error = %v, want ErrNotFound", err)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
		if p.writes != writes {
			t.Error("Delete of unknown id should not save")
		}
	})
}

func TestStore_Filter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(&memPersister{})
	_, _ = s.Add(ctx, "Groceries", cents(100), "Food", "2024-01-05")
	_, _ = s.Add(ctx, "Train", cents(200), "Travel", "2024-02-01")
	_, _ = s.Add(ctx, "Dinner", cents(300), "food", "2024-01-20")
	_, _ = s.Add(ctx, "Snack", cents(50), "Food", "2024-01-20")

	t.Run("no filters returns all newest first", func(t *testing.T) {
		got := s.Filter("", "")
		want := []string{"Train", "Dinner", "Snack", "Groceries"}
		assertDescriptions(t, got, want)
	})

	t.Run("category is case-insensitive", func(t *testing.T) {
		got := s.Filter("FOOD", "")
		want := []string{"Dinner", "Snack", "Groceries"}
		assertDescriptions(t, got, want)
	})

	t.Run("month prefix", func(t *testing.T) {
		got := s.Filter("", "2024-02")
		assertDescriptions(t, got, []string{"Train"})
	})

	t.Run("both filters", func(t *testing.T) {
		got := s.Filter("travel", "2024-01")
		if len(got) != 0 {
			t.Errorf("Filter() = %+v, want empty", got)
		}
	})
}

func assertDescriptions(t *testing.T, got []core.Expense, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d expenses, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Description != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i].Description, want[i])
		}
	}
}

func TestStore_StatisticsAndCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(&memPersister{})

	stats := s.Statistics()
	if stats.Count != 0 || stats.Total.Cents != 0 || len(stats.Categories) != 0 {
		t.Errorf("empty Statistics() = %+v", stats)
	}

	_, _ = s.Add(ctx, "A", cents(1000), "Travel", "2024-01-01")
	_, _ = s.Add(ctx, "B", cents(3000), "Food", "2024-01-02")
	_, _ = s.Add(ctx, "C", cents(1000), "Food", "2024-01-03")

	stats = s.Statistics()
	if stats.Total.Cents != 5000 || stats.Count != 3 {
		t.Errorf("Total/Count = %d/%d, want 5000/3", stats.Total.Cents, stats.Count)
	}
	if got := stats.Categories["Food"].Percentage; got != 80 {
		t.Errorf("Food percentage = %v, want 80", got)
	}

	cats := s.Categories()
	if len(cats) != 2 || cats[0] != "Food" || cats[1] != "Travel" {
		t.Errorf("Categories() = %v, want [Food Travel]", cats)
	}
}

func TestStore_LoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	s := newTestStore(p)
	_, _ = s.Add(ctx, "A", cents(1999), "Food", "2024-01-01")
	_, _ = s.Add(ctx, "B", cents(500), "Bills", "2024-01-02")

	reopened := Open(ctx, p, log.Discard())
	got, want := reopened.All(), s.All()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStore_LoadFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("read error starts empty", func(t *testing.T) {
		p := &memPersister{readErr: errors.New("corrupt json")}
		s := newTestStore(p)
		_, _ = s.Add(ctx, "A", cents(100), "Food", "2024-01-01")

		s.Load(ctx)
		if s.Len() != 0 {
			t.Errorf("Len() = %d after failed load, want 0", s.Len())
		}
	})

	t.Run("read error is reported by Reload", func(t *testing.T) {
		p := &memPersister{readErr: errors.New("corrupt json")}
		s := newTestStore(p)
		if err := s.Reload(ctx); err == nil {
			t.Error("Reload() expected error")
		}
	})

	t.Run("invalid records are kept", func(t *testing.T) {
		p := &memPersister{stored: []core.Expense{
			{ID: "1", Description: "ok", Amount: cents(100), Category: "Food", Date: "2024-01-01"},
			{ID: "2", Description: "", Amount: cents(100), Category: "Food", Date: "2024-01-01"},
			{ID: "3", Description: "neg", Amount: cents(-1), Category: "Food", Date: "2024-01-01"},
		}}
		s := Open(ctx, p, log.Discard())
		if s.Len() != 3 {
			t.Errorf("Len() = %d, want 3", s.Len())
		}
	})
}

func TestStore_DeleteKeepsUntouchedLegacyRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.json")
	data := `[
  {"id": "1", "description": "Old tea", "amount": 20, "category": "Food", "date": "2024-3-1"},
  {"id": "2", "description": "Rounding", "amount": 0.004, "category": "Misc", "date": "2024-03-02"},
  {"id": "3", "description": "Bus", "amount": 15, "category": "Travel", "date": "2024-03-03"}
]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	file := storage.NewJSONFile(path)

	s := Open(ctx, file, log.Discard())
	if err := s.Delete(ctx, "3"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := file.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("file holds %+v, want records 1 and 2", got)
	}
	if got[0].Date != "2024-3-1" {
		t.Errorf("date rewritten to %q", got[0].Date)
	}
}

func TestStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	s := New(p, log.Discard(), WithIDGenerator(func(time.Time) string { return "same" }))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Add(ctx, "x", cents(1), "c", "2024-01-01")
		}()
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("Len() = %d, want 50", s.Len())
	}
	if len(p.stored) != 50 {
		t.Errorf("persisted %d, want 50", len(p.stored))
	}
}
