package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types published after a successful store mutation.
const (
	EventExpenseAdded   = "expense.added"
	EventExpenseDeleted = "expense.deleted"
)

// ExpenseEvent announces that the expense collection changed. It carries
// only the record id; consumers reload the collection from the store.
type ExpenseEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(eventType, id string) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      eventType,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes an event and rejects unknown types.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case EventExpenseAdded, EventExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return &ev, nil
}
