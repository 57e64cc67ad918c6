package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	MessageCreated EventType = "message_created"
	MessageUpdated EventType = "message_updated"
	MessageDeleted EventType = "message_deleted"
)

// MessageEvent is published after a message mutation has been committed.
// Body and Username are empty for deletions.
type MessageEvent struct {
	Type       EventType `json:"type"`
	MessageID  int64     `json:"message_id"`
	Body       string    `json:"body,omitempty"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e MessageEvent) Key() []byte {
	return []byte(fmt.Sprintf("%d", e.MessageID))
}

func Encode(e MessageEvent) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return payload, nil
}

func Decode(data []byte) (MessageEvent, error) {
	var evt MessageEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return MessageEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return evt, nil
}
