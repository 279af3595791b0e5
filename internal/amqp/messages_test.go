package amqp

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLedgerEventMessageToJSON(t *testing.T) {
	msg := &LedgerEventMessage{
		Kind:      EventEntertainmentAdded,
		RecordID:  42,
		Amount:    "-36.7647058823529412",
		Currency:  "CAD",
		Timestamp: time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["kind"] != "entertainment.added" {
		t.Errorf("kind = %v", decoded["kind"])
	}
	// Amounts travel as strings so decimals stay exact.
	if decoded["amount"] != "-36.7647058823529412" {
		t.Errorf("amount = %v", decoded["amount"])
	}
}

func TestLedgerEventMessageOmitsEmptyCurrency(t *testing.T) {
	msg := &LedgerEventMessage{Kind: EventSavingsDeleted, RecordID: 7, Amount: "0"}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["currency"]; ok {
		t.Error("empty currency should be omitted")
	}
}
