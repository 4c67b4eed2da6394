// Package store holds the in-memory expense collection and its
// load/save contract with a backing persister.
//
// Every mutation rewrites the whole collection through the Persister.
// A failed save is reported to the caller but the in-memory change is kept,
// so memory may run ahead of disk until the next successful save.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

var (
	ErrNotFound    = errors.New("expense not found")
	ErrPersistence = errors.New("persist expenses")
)

// Persister reads and writes the full expense collection.
// ReadAll returns an empty slice and no error when nothing was stored yet.
type Persister interface {
	ReadAll(ctx context.Context) ([]core.Expense, error)
	WriteAll(ctx context.Context, expenses []core.Expense) error
}

type Store struct {
	mu        sync.RWMutex
	items     []core.Expense
	persister Persister
	logger    *log.Logger
	now       func() time.Time
	newID     core.IDGenerator
}

type Option func(*Store)

// WithClock overrides the time source used for ids and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id scheme (default core.TimestampID).
func WithIDGenerator(gen core.IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

// New returns an empty store. Call Load to read the backing file.
func New(p Persister, logger *log.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Store{
		persister: p,
		logger:    logger.WithComponent(log.ComponentStore),
		now:       time.Now,
		newID:     core.TimestampID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a store populated from the persister.
func Open(ctx context.Context, p Persister, logger *log.Logger, opts ...Option) *Store {
	s := New(p, logger, opts...)
	s.Load(ctx)
	return s
}

// Load replaces the in-memory collection with the persisted one.
// Read or parse failures are logged and leave the store empty. No error
// reaches the caller.
func (s *Store) Load(ctx context.Context) {
	_ = s.Reload(ctx)
}

// Reload is Load for callers that must know whether the backing store was
// readable. The store is left empty when it was not.
//
// Records that break an invariant are kept as stored so that the next save
// writes them back unchanged.
func (s *Store) Reload(ctx context.Context) error {
	items, err := s.persister.ReadAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load expenses, starting empty",
			log.FieldError, err,
			log.FieldOperation, log.OpLoad)
		s.items = nil
		return err
	}

	for _, e := range items {
		if err := e.Validate(); err != nil {
			s.logger.WarnContext(ctx, "Stored expense is invalid",
				log.FieldExpenseID, e.ID,
				log.FieldError, err,
				log.FieldOperation, log.OpLoad)
		}
	}
	s.items = items
	s.logger.DebugContext(ctx, "Expenses loaded", log.FieldCount, len(items))
	return nil
}

// Save rewrites the backing file with the full collection.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	snapshot := append([]core.Expense(nil), s.items...)
	if err := s.persister.WriteAll(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save expenses",
			log.FieldError, err,
			log.FieldCount, len(snapshot),
			log.FieldOperation, log.OpSave)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// Add validates and appends a new expense, then saves. An empty date
// defaults to today. On a save failure the expense is returned along with
// an ErrPersistence error and stays in memory.
func (s *Store) Add(ctx context.Context, description string, amount core.Money, category, date string) (core.Expense, error) {
	now := s.now()
	e := core.Expense{
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Category:    strings.TrimSpace(category),
		Date:        strings.TrimSpace(date),
	}
	if e.Date == "" {
		e.Date = now.Format(core.DateLayout)
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.newID(now)
	s.items = append(s.items, e)
	if err := s.saveLocked(ctx); err != nil {
		return e, err
	}
	return e, nil
}

// Delete removes every expense with the given id and saves.
// It returns ErrNotFound, without saving, when nothing matched.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0:0]
	for _, e := range s.items {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(s.items) {
		return ErrNotFound
	}
	s.items = kept
	return s.saveLocked(ctx)
}

// Filter returns expenses matching category (case-insensitive) and whose
// date starts with month, newest first. Empty arguments do not filter.
func (s *Store) Filter(category, month string) []core.Expense {
	s.mu.RLock()
	out := make([]core.Expense, 0, len(s.items))
	for _, e := range s.items {
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		if month != "" && !strings.HasPrefix(e.Date, month) {
			continue
		}
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// All returns the collection in stored order.
func (s *Store) All() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Expense(nil), s.items...)
}

func (s *Store) Statistics() core.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Summarize(s.items)
}

// Categories returns the distinct category names, sorted.
func (s *Store) Categories() []string {
	s.mu.RLock()
	seen := make(map[string]struct{}, len(s.items))
	out := make([]string, 0, len(s.items))
	for _, e := range s.items {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Len returns the number of expenses held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
