package amqp

import (
	"encoding/json"
	"time"
)

// Event types double as routing keys on the topic exchange.
const (
	EventExpenseCreated  = "expense.created"
	EventExpenseUpdated  = "expense.updated"
	EventExpenseDeleted  = "expense.deleted"
	EventCategoryDeleted = "category.deleted"
	EventUserDeleted     = "user.deleted"
)

// EventMessage is a lightweight notification that an entity changed.
// Consumers fetch the current state through the API if they need more.
type EventMessage struct {
	Type        string `json:"type"`
	EntityID    int64  `json:"entity_id"`
	UserID      int64  `json:"user_id,omitempty"`
	CategoryID  int64  `json:"category_id,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Date        string `json:"date,omitempty"`
	// PreviousDate is set on updates that moved an expense to another day.
	PreviousDate string    `json:"previous_date,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewEventMessage creates an event of the given type for entityID.
func NewEventMessage(eventType string, entityID int64) *EventMessage {
	return &EventMessage{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
