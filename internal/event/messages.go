package event

import (
	"encoding/json"
	"time"
)

// Mutation actions carried by ChangeMessage.
const (
	ActionCreated = "created"
	ActionRenamed = "renamed"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeMessage describes one persisted mutation. It carries ids and the
// category's calendar date, not the mutated payload; consumers fetch current
// state from the API if they need it.
type ChangeMessage struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	CategoryID string    `json:"category_id"`
	ItemID     string    `json:"item_id,omitempty"`
	Date       string    `json:"date,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChangeMessage creates a timestamped change message.
func NewChangeMessage(entity, action, categoryID, itemID, date string) ChangeMessage {
	return ChangeMessage{
		Entity:     entity,
		Action:     action,
		CategoryID: categoryID,
		ItemID:     itemID,
		Date:       date,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChangeMessage{}, err
	}
	return msg, nil
}
