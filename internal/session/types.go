package session

import (
	"context"
	"time"

	"github.com/hellodesk/callcenter/internal/transcript"
)

// VoiceTransport starts and stops the platform-side voice session. Start
// returns the platform-assigned call ID.
type VoiceTransport interface {
	Start(ctx context.Context) (callID string, err error)
	Stop(ctx context.Context, callID string) error
}

// ReportMessage is one transcript entry in the call-end relay payload, with
// the timestamp flattened to epoch milliseconds for the wire.
type ReportMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// CallReport is the payload posted to the transcript relay when a call ends.
type CallReport struct {
	CallID      string          `json:"callId,omitempty"`
	AssistantID string          `json:"assistantId,omitempty"`
	StartedAt   int64           `json:"startedAt,omitempty"`
	EndedAt     int64           `json:"endedAt,omitempty"`
	Transcript  []ReportMessage `json:"transcript"`
}

// TranscriptRelay delivers the final call report downstream. The manager
// never awaits or retries this; failures are logged and dropped.
type TranscriptRelay interface {
	PostTranscript(ctx context.Context, report CallReport) error
}

// Broadcaster pushes state changes to connected UI clients.
type Broadcaster interface {
	BroadcastCallStarted(callID string)
	BroadcastCallEnded(callID string, duration time.Duration)
	BroadcastActivityChanged(activity Activity)
	BroadcastTranscriptUpdated(msg transcript.Message, replaced bool)
	BroadcastCallError(message string)
	BroadcastCallReset()
}
