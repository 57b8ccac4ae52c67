package amqp

import (
	"encoding/json"
	"time"
)

// Transaction lifecycle events carried on the wire.
const (
	EventCreated   = "created"
	EventCompleted = "completed"
	EventReverted  = "reverted"
)

// TransactionEventMessage is a lightweight notification hand-off: only
// the id, owner and event name travel on the queue, the worker fetches
// the full record from the store.
type TransactionEventMessage struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEventMessage creates an event message stamped now.
func NewTransactionEventMessage(id, ownerID int64, event string) *TransactionEventMessage {
	return &TransactionEventMessage{
		ID:        id,
		OwnerID:   ownerID,
		Event:     event,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON parses a message from JSON bytes.
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
