package services

import (
	"context"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/ports"
)

// EventPublisher delivers change events; *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// ExpenseService wraps a store and announces successful mutations.
// Reads pass straight through. Publishing is best effort: a failed publish
// is logged and never fails the mutation.
type ExpenseService struct {
	ports.ExpenseStore
	publisher EventPublisher
	logger    *log.Logger
}

var _ ports.ExpenseStore = (*ExpenseService)(nil)

// NewExpenseService returns a service over store. A nil publisher disables
// events.
func NewExpenseService(store ports.ExpenseStore, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExpenseService{
		ExpenseStore: store,
		publisher:    publisher,
		logger:       logger.WithComponent(log.ComponentService),
	}
}

func (s *ExpenseService) Add(ctx context.Context, description string, amount core.Money, category, date string) (core.Expense, error) {
	e, err := s.ExpenseStore.Add(ctx, description, amount, category, date)
	if err != nil {
		return e, err
	}

	s.logger.InfoContext(ctx, "Expense created",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithExpense(e.ID, e.Description, e.Amount.Cents, e.Category, e.Date).
			ToSlice()...)
	s.publish(ctx, amqp.EventExpenseAdded, e.ID)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.ExpenseStore.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldExpenseID, id,
		log.FieldOperation, log.OpDelete)
	s.publish(ctx, amqp.EventExpenseDeleted, id)
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, eventType, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, amqp.NewExpenseEvent(eventType, id)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			log.FieldEvent, eventType,
			log.FieldExpenseID, id,
			log.FieldError, err,
			log.FieldOperation, log.OpPublish)
	}
}
