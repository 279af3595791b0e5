package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event kinds published to downstream consumers.
const (
	EventSavingsAdded         = "savings.added"
	EventSavingsDeleted       = "savings.deleted"
	EventEntertainmentAdded   = "entertainment.added"
	EventEntertainmentDeleted = "entertainment.deleted"
	EventRatesUpdated         = "rates.updated"
)

// LedgerEventMessage describes a record-level change. Amounts travel as
// strings to keep decimal values exact.
type LedgerEventMessage struct {
	Kind      string    `json:"kind"`
	RecordID  int64     `json:"record_id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RatesUpdatedMessage announces a completed rate refresh.
type RatesUpdatedMessage struct {
	Kind      string    `json:"kind"`
	CAD       string    `json:"cad"`
	CNY       string    `json:"cny"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *RatesUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
