package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{"shipment rated", TypeShipmentRated, true},
		{"rating failed", TypeRatingFailed, true},
		{"line written", TypeInvoiceLineWritten, true},
		{"status changed", TypeInvoiceStatusChanged, true},
		{"unknown", Type("instance.created"), false},
		{"empty", Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	e := NewEvent(TypeShipmentRated, 7, 42, "CN-1", map[string]interface{}{"amount_minor": int64(15296)})

	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", e.ID, err)
	}
	if e.CorrelationID != e.ID {
		t.Errorf("CorrelationID = %q, want own ID %q", e.CorrelationID, e.ID)
	}
	if e.FranchiseID != 7 || e.HeaderID != 42 || e.ShipmentID != "CN-1" {
		t.Errorf("unexpected identifiers: %+v", e)
	}
	if e.Timestamp.Before(before) {
		t.Errorf("Timestamp %v is before creation", e.Timestamp)
	}
	if got := e.GetPayloadInt("amount_minor"); got != 15296 {
		t.Errorf("GetPayloadInt() = %d, want 15296", got)
	}
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		e := NewEvent(TypeRatingFailed, 1, 0, "", nil)
		if seen[e.ID] {
			t.Fatalf("duplicate ID %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestEvent_WithPayloadDoesNotMutate(t *testing.T) {
	original := NewEvent(TypeInvoiceStatusChanged, 1, 2, "", map[string]interface{}{"from": "draft"})
	updated := original.WithPayload("to", "sent")

	if _, ok := original.Payload["to"]; ok {
		t.Error("WithPayload mutated the original payload")
	}
	if updated.GetPayloadString("to") != "sent" || updated.GetPayloadString("from") != "draft" {
		t.Errorf("unexpected payload %v", updated.Payload)
	}
	if updated.ID != original.ID {
		t.Error("WithPayload must keep the event ID")
	}
}

func TestEvent_WithCorrelation(t *testing.T) {
	parent := NewEvent(TypeShipmentRated, 1, 2, "CN-1", nil)
	child := NewEvent(TypeInvoiceLineWritten, 1, 2, "CN-1", nil).WithCorrelation(parent.CorrelationID)

	if child.CorrelationID != parent.CorrelationID {
		t.Errorf("CorrelationID = %q, want %q", child.CorrelationID, parent.CorrelationID)
	}
	if child.Payload == nil {
		t.Error("clone should allocate a payload map")
	}
	if got := child.WithCorrelation("").CorrelationID; got != parent.CorrelationID {
		t.Errorf("empty correlation should keep existing chain, got %q", got)
	}
}

func TestEvent_GetPayloadMissingKeys(t *testing.T) {
	e := NewEvent(TypeRatingFailed, 1, 0, "CN-2", map[string]interface{}{"clamped": true, "kind": 3})

	if e.GetPayloadString("missing") != "" {
		t.Error("missing string key should be empty")
	}
	if e.GetPayloadString("kind") != "" {
		t.Error("non-string value should be empty")
	}
	if !e.GetPayloadBool("clamped") {
		t.Error("GetPayloadBool() = false, want true")
	}
	if e.GetPayloadInt("kind") != 3 {
		t.Error("GetPayloadInt() should accept int")
	}
}
