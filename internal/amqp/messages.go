package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"fintrack/internal/ledger"
)

var ErrMissingEventType = errors.New("ledger event without type")

// LedgerEventMessage announces a committed ledger mutation. It carries no
// transaction data; consumers reload the ledger from the shared backend.
type LedgerEventMessage struct {
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Count         int       `json:"count"`
	Revision      uint64    `json:"revision"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEventMessage converts a ledger event to its wire form.
func NewLedgerEventMessage(e ledger.Event) *LedgerEventMessage {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &LedgerEventMessage{
		Type:          string(e.Type),
		TransactionID: e.TransactionID,
		Count:         e.Count,
		Revision:      e.Revision,
		Timestamp:     ts,
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON decodes a message and rejects one without a type.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, ErrMissingEventType
	}
	return &msg, nil
}
