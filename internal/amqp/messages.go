package amqp

import (
	"encoding/json"
	"time"
)

// GenerationCompletedMessage notifies downstream consumers that a user's
// recurring transactions were regenerated. Consumers fetch the transactions
// from the database; the message carries only the summary.
type GenerationCompletedMessage struct {
	UserID                string    `json:"userId"`
	WindowStart           string    `json:"windowStart"`
	WindowEnd             string    `json:"windowEnd"`
	TransactionsGenerated int       `json:"transactionsGenerated"`
	ConflictsDetected     int       `json:"conflictsDetected"`
	Timestamp             time.Time `json:"timestamp"`
}

// NewGenerationCompletedMessage creates a message stamped with the current time.
func NewGenerationCompletedMessage(userID, windowStart, windowEnd string, generated, conflicts int) *GenerationCompletedMessage {
	return &GenerationCompletedMessage{
		UserID:                userID,
		WindowStart:           windowStart,
		WindowEnd:             windowEnd,
		TransactionsGenerated: generated,
		ConflictsDetected:     conflicts,
		Timestamp:             time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *GenerationCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// GenerationCompletedMessageFromJSON creates a message from JSON bytes
func GenerationCompletedMessageFromJSON(data []byte) (*GenerationCompletedMessage, error) {
	var msg GenerationCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
