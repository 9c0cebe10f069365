package server

import (
	"time"

	"github.com/hellodesk/callcenter/internal/session"
)

const EventVersion = 1

type Event struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
}

type CallStartedEvent struct {
	Event
	CallID string `json:"call_id"`
}

type CallEndedEvent struct {
	Event
	CallID   string  `json:"call_id"`
	Duration float64 `json:"duration"`
}

type ActivityChangedEvent struct {
	Event
	Activity string `json:"activity"`
}

type TranscriptUpdatedEvent struct {
	Event
	Role string `json:"role"`
	Text string `json:"text"`
	// Replaced is true when the message is a merged revision of the last
	// transcript entry rather than a new one.
	Replaced bool `json:"replaced"`
}

type CallErrorEvent struct {
	Event
	Message string `json:"message"`
}

type CallResetEvent struct {
	Event
}

type ConnectionEvent struct {
	Event
	Connected bool `json:"connected"`
}

// SessionStateEvent carries the full session snapshot sent to a client right
// after it connects.
type SessionStateEvent struct {
	Event
	State session.State `json:"state"`
}

func newEvent(eventType string, now time.Time) Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Event{
		Type:      eventType,
		Version:   EventVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}
