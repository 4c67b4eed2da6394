package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets/memory"
	"expensetracker/internal/storage"
	"expensetracker/internal/store"
)

// chanConsumer feeds events from a channel and stops when it is closed.
type chanConsumer struct {
	events chan *amqp.ExpenseEvent
	errs   chan error
}

func (c *chanConsumer) Consume(ctx context.Context, handler func(context.Context, *amqp.ExpenseEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.events:
			if !ok {
				return nil
			}
			c.errs <- handler(ctx, ev)
		}
	}
}

type failingExporter struct{}

func (failingExporter) Export(context.Context, []core.Expense) error {
	return errors.New("quota exceeded")
}

func TestSyncWorker_SyncNowReadsBackingFile(t *testing.T) {
	ctx := context.Background()
	file := storage.NewJSONFile(filepath.Join(t.TempDir(), "expenses.json"))

	// A separate store instance plays the web server writing the file.
	writer := store.New(file, log.Discard())
	if _, err := writer.Add(ctx, "Lunch", core.Money{Cents: 1250}, "Food", "2024-01-15"); err != nil {
		t.Fatal(err)
	}

	exp := memory.New()
	w := NewSyncWorker(store.New(file, log.Discard()), exp, log.Discard())

	if err := w.SyncNow(ctx); err != nil {
		t.Fatalf("SyncNow() error = %v", err)
	}
	got := exp.Snapshot()
	if len(got) != 1 || got[0].Description != "Lunch" {
		t.Errorf("exported %+v, want the Lunch expense", got)
	}
}

func TestSyncWorker_MalformedFileKeepsSheet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.json")
	file := storage.NewJSONFile(path)
	writer := store.New(file, log.Discard())
	if _, err := writer.Add(ctx, "Lunch", core.Money{Cents: 1250}, "Food", "2024-01-15"); err != nil {
		t.Fatal(err)
	}

	exp := memory.New()
	w := NewSyncWorker(store.New(file, log.Discard()), exp, log.Discard())
	if err := w.SyncNow(ctx); err != nil {
		t.Fatalf("SyncNow() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(`[{"id": "1",`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := w.SyncNow(ctx); !errors.Is(err, ErrSourceUnreadable) {
		t.Errorf("SyncNow() error = %v, want ErrSourceUnreadable", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewExpenseEvent(amqp.EventExpenseAdded, "1")); err != nil {
		t.Errorf("HandleEvent() error = %v, want event dropped", err)
	}
	if exp.Exports() != 1 {
		t.Errorf("Exports() = %d, want 1", exp.Exports())
	}
	if got := exp.Snapshot(); len(got) != 1 || got[0].Description != "Lunch" {
		t.Errorf("snapshot = %+v, want the Lunch expense kept", got)
	}
}

func TestSyncWorker_HandleEventPropagatesExportError(t *testing.T) {
	file := storage.NewJSONFile(filepath.Join(t.TempDir(), "expenses.json"))
	w := NewSyncWorker(store.New(file, log.Discard()), failingExporter{}, log.Discard())

	err := w.HandleEvent(context.Background(), amqp.NewExpenseEvent(amqp.EventExpenseAdded, "x"))
	if err == nil {
		t.Fatal("HandleEvent() expected error")
	}
}

func TestSyncWorker_Run(t *testing.T) {
	ctx := context.Background()
	file := storage.NewJSONFile(filepath.Join(t.TempDir(), "expenses.json"))
	writer := store.New(file, log.Discard())
	exp := memory.New()
	w := NewSyncWorker(store.New(file, log.Discard()), exp, log.Discard())

	consumer := &chanConsumer{
		events: make(chan *amqp.ExpenseEvent),
		errs:   make(chan error, 1),
	}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer, 0) }()

	e, err := writer.Add(ctx, "Train", core.Money{Cents: 4000}, "Travel", "2024-01-16")
	if err != nil {
		t.Fatal(err)
	}
	consumer.events <- amqp.NewExpenseEvent(amqp.EventExpenseAdded, e.ID)
	if err := <-consumer.errs; err != nil {
		t.Fatalf("handler error = %v", err)
	}
	close(consumer.events)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after consumer stopped")
	}

	// one startup sync plus one per event
	if exp.Exports() != 2 {
		t.Errorf("Exports() = %d, want 2", exp.Exports())
	}
	if got := exp.Snapshot(); len(got) != 1 || got[0].ID != e.ID {
		t.Errorf("snapshot = %+v", got)
	}
}
