package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
)

// ErrSourceUnreadable marks a sync skipped because the backing store
// could not be read.
var ErrSourceUnreadable = errors.New("expense source unreadable")

// Source is the expense collection the worker mirrors. *store.Store
// satisfies it; Reload re-reads the backing file written by another process.
type Source interface {
	Reload(ctx context.Context) error
	All() []core.Expense
}

// EventConsumer delivers change events until ctx ends. *amqp.Client
// satisfies it.
type EventConsumer interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.ExpenseEvent) error) error
}

// SyncWorker keeps a sheet in step with the expense collection by
// re-exporting the whole collection after every change event.
type SyncWorker struct {
	source   Source
	exporter sheets.Exporter
	logger   *log.Logger
}

func NewSyncWorker(source Source, exporter sheets.Exporter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		source:   source,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent reloads the collection and exports it. Returning an error
// makes the consumer requeue the event.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	w.logger.InfoContext(ctx, "Processing expense event",
		log.FieldEvent, ev.Type,
		log.FieldExpenseID, ev.ID)
	err := w.SyncNow(ctx)
	if errors.Is(err, ErrSourceUnreadable) {
		// The periodic sync retries once the file is readable again.
		w.logger.WarnContext(ctx, "Dropping event, backing store unreadable",
			log.FieldEvent, ev.Type,
			log.FieldError, err)
		return nil
	}
	return err
}

// SyncNow exports the current contents of the backing file. Nothing is
// exported when the file cannot be read, so the sheet keeps its last good
// copy.
func (w *SyncWorker) SyncNow(ctx context.Context) error {
	if err := w.source.Reload(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	expenses := w.source.All()
	if err := w.exporter.Export(ctx, expenses); err != nil {
		return fmt.Errorf("export expenses: %w", err)
	}
	w.logger.DebugContext(ctx, "Sheet synchronized", log.FieldCount, len(expenses))
	return nil
}

// Run performs a startup sync, then consumes events and re-syncs every
// interval as a backstop for lost messages. A zero interval disables the
// periodic sync. Run returns when ctx is cancelled or consumption fails.
func (w *SyncWorker) Run(ctx context.Context, consumer EventConsumer, interval time.Duration) error {
	if err := w.SyncNow(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sync failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Consume(ctx, w.HandleEvent)
	})
	if interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := w.SyncNow(ctx); err != nil {
						w.logger.ErrorContext(ctx, "Periodic sync failed", log.FieldError, err)
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
