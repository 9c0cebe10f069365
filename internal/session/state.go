package session

import (
	"time"

	"github.com/hellodesk/callcenter/internal/transcript"
)

type Connection string

const (
	ConnIdle      Connection = "idle"
	ConnConnected Connection = "connected"
	ConnEnded     Connection = "ended"
)

type Activity string

const (
	ActivityIdle      Activity = "idle"
	ActivitySpeaking  Activity = "speaking"
	ActivityListening Activity = "listening"
)

// State is the full UI-visible state of one voice call.
type State struct {
	Connection       Connection           `json:"connection"`
	Activity         Activity             `json:"activity"`
	StartedAt        time.Time            `json:"started_at,omitzero"`
	EndedAt          time.Time            `json:"ended_at,omitzero"`
	Transcript       []transcript.Message `json:"transcript"`
	LastError        string               `json:"last_error,omitempty"`
	ShowEndedOverlay bool                 `json:"show_ended_overlay"`
}

type EventType string

const (
	EventCallStart   EventType = "call-start"
	EventCallEnd     EventType = "call-end"
	EventSpeechStart EventType = "speech-start"
	EventSpeechEnd   EventType = "speech-end"
	EventTranscript  EventType = "transcript"
	EventError       EventType = "error"
)

// Event is one externally delivered voice-platform event. Role and Text are
// only meaningful for EventTranscript; CallID is optional and only consulted
// on EventCallStart.
type Event struct {
	Type   EventType `json:"type"`
	CallID string    `json:"callId,omitempty"`
	Role   string    `json:"role,omitempty"`
	Text   string    `json:"text,omitempty"`
}

// errCallFailed is the fixed user-facing message for a runtime transport
// error. A runtime error never interrupts an in-progress call.
const errCallFailed = "An error occurred during the call."

// Reduce applies one event to the session state and returns the next state.
// It is pure: the input state is never mutated, and now is the only source
// of time. Events arrive one at a time in delivery order, so no operation
// here needs to consider concurrent updates.
func Reduce(s State, ev Event, now time.Time) State {
	switch ev.Type {
	case EventCallStart:
		s.Connection = ConnConnected
		s.LastError = ""
		s.ShowEndedOverlay = false
		s.StartedAt = now

	case EventCallEnd:
		s.Connection = ConnEnded
		s.Activity = ActivityIdle
		s.EndedAt = now
		s.ShowEndedOverlay = true

	case EventSpeechStart:
		s.Activity = ActivitySpeaking

	case EventSpeechEnd:
		s.Activity = ActivityListening

	case EventTranscript:
		s.Transcript = transcript.Append(s.Transcript, ev.Role, ev.Text, now)

	case EventError:
		s.LastError = errCallFailed
	}

	return s
}
