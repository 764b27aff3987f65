package event

import (
	"testing"
)

func TestNewChangeMessage(t *testing.T) {
	msg := NewChangeMessage("item", ActionUpdated, "cat-1", "item-1", "2024-01-01")
	if msg.Entity != "item" || msg.Action != ActionUpdated {
		t.Errorf("msg = %+v", msg)
	}
	if msg.CategoryID != "cat-1" || msg.ItemID != "item-1" || msg.Date != "2024-01-01" {
		t.Errorf("ids = %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestChangeMessageJSON(t *testing.T) {
	msg := NewChangeMessage("category", ActionDeleted, "cat-1", "", "")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}

	back, err := ChangeMessageFromJSON(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if back.Entity != msg.Entity || back.Action != msg.Action || back.CategoryID != msg.CategoryID {
		t.Errorf("round trip = %+v, want %+v", back, msg)
	}

	if _, err := ChangeMessageFromJSON([]byte("{broken")); err == nil {
		t.Error("accepted malformed JSON")
	}
}
