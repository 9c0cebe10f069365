package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hellodesk/callcenter/internal/transcript"
)

// endedOverlayDelay is how long the "call ended" overlay stays up before the
// session resets and the voice transport is released. It exists only to let
// the end-of-call animation play; it is not the transcript merge window even
// though both are currently three seconds.
const endedOverlayDelay = 3 * time.Second

const errStartFailed = "Failed to start the call. Please try again."

// Manager owns the state of one voice call at a time. Platform events are
// delivered onto a single-consumer channel and applied by the Run loop, so
// state transitions happen one at a time in delivery order. The call-end
// transcript relay runs detached and never blocks or alters UI state.
type Manager struct {
	transport    VoiceTransport
	relay        TranscriptRelay
	hub          Broadcaster
	assistantID  string
	overlayDelay time.Duration
	now          func() time.Time

	events chan Event
	done   chan struct{}

	mu           sync.Mutex
	state        State
	callID       string
	overlayTimer *time.Timer
}

func NewManager(transport VoiceTransport, relay TranscriptRelay, hub Broadcaster, assistantID string, overlayDelay time.Duration) *Manager {
	if overlayDelay <= 0 {
		overlayDelay = endedOverlayDelay
	}

	return &Manager{
		transport:    transport,
		relay:        relay,
		hub:          hub,
		assistantID:  assistantID,
		overlayDelay: overlayDelay,
		now:          time.Now,
		events:       make(chan Event, 64),
		done:         make(chan struct{}),
		state:        State{Connection: ConnIdle, Activity: ActivityIdle},
	}
}

// Run consumes delivered events until ctx is cancelled or Close is called.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case ev := <-m.events:
			m.apply(ev)
		}
	}
}

// Close stops the Run loop and any pending overlay timer.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.overlayTimer != nil {
		m.overlayTimer.Stop()
		m.overlayTimer = nil
	}
	m.mu.Unlock()

	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

// Deliver enqueues one platform event for the Run loop.
func (m *Manager) Deliver(ev Event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	s.Transcript = append([]transcript.Message(nil), m.state.Transcript...)
	return s
}

// StartCall clears any previous error and transcript, then asks the voice
// transport to begin. The connection state is not touched here; it flips to
// connected only when the platform delivers its call-start event. A start
// failure sets a fixed user-facing message and leaves the state as it was.
func (m *Manager) StartCall(ctx context.Context) error {
	if m.transport == nil {
		return ErrTransportNotReady
	}

	m.mu.Lock()
	m.state.LastError = ""
	m.state.Transcript = nil
	m.mu.Unlock()

	callID, err := m.transport.Start(ctx)
	if err != nil {
		m.mu.Lock()
		m.state.LastError = errStartFailed
		m.mu.Unlock()
		if m.hub != nil {
			m.hub.BroadcastCallError(errStartFailed)
		}
		return fmt.Errorf("start voice transport: %w", err)
	}

	m.mu.Lock()
	m.callID = callID
	m.state.Activity = ActivityListening
	m.mu.Unlock()

	if m.hub != nil {
		m.hub.BroadcastActivityChanged(ActivityListening)
	}
	return nil
}

// EndCall asks the voice transport to stop. Transport failures are logged
// and swallowed: ending a call must never surface an error to the user.
func (m *Manager) EndCall(ctx context.Context) error {
	if m.transport == nil {
		return ErrTransportNotReady
	}

	m.mu.Lock()
	callID := m.callID
	m.mu.Unlock()

	if err := m.transport.Stop(ctx, callID); err != nil {
		log.Printf("end call: transport stop failed: %v", err)
	}
	return nil
}

func (m *Manager) apply(ev Event) {
	now := m.now()

	m.mu.Lock()
	prev := m.state
	next := Reduce(prev, ev, now)
	m.state = next

	if ev.Type == EventCallStart {
		if ev.CallID != "" {
			m.callID = ev.CallID
		} else if m.callID == "" {
			m.callID = uuid.NewString()
		}
	}
	callID := m.callID
	m.mu.Unlock()

	switch ev.Type {
	case EventCallStart:
		if m.hub != nil {
			m.hub.BroadcastCallStarted(callID)
		}

	case EventSpeechStart, EventSpeechEnd:
		if m.hub != nil {
			m.hub.BroadcastActivityChanged(next.Activity)
		}

	case EventTranscript:
		m.broadcastTranscriptChange(prev, next)

	case EventError:
		if m.hub != nil {
			m.hub.BroadcastCallError(next.LastError)
		}

	case EventCallEnd:
		m.finishCall(callID, next)
	}
}

func (m *Manager) broadcastTranscriptChange(prev, next State) {
	if m.hub == nil {
		return
	}

	np, nn := len(prev.Transcript), len(next.Transcript)
	switch {
	case nn > np:
		m.hub.BroadcastTranscriptUpdated(next.Transcript[nn-1], false)
	case nn > 0 && next.Transcript[nn-1] != prev.Transcript[nn-1]:
		m.hub.BroadcastTranscriptUpdated(next.Transcript[nn-1], true)
	}
}

// finishCall captures the call report, launches the detached relay post,
// and arms the overlay timer that later resets the session and releases the
// transport. The start timestamp is cleared once the report is captured.
func (m *Manager) finishCall(callID string, next State) {
	report := m.buildReport(callID, next)

	m.mu.Lock()
	startedAt := next.StartedAt
	m.state.StartedAt = time.Time{}
	if m.overlayTimer != nil {
		m.overlayTimer.Stop()
	}
	m.overlayTimer = time.AfterFunc(m.overlayDelay, m.clearEndedOverlay)
	m.mu.Unlock()

	go m.postReport(report)

	if m.hub != nil {
		duration := time.Duration(0)
		if !startedAt.IsZero() {
			duration = next.EndedAt.Sub(startedAt)
		}
		m.hub.BroadcastCallEnded(callID, duration)
	}
}

func (m *Manager) buildReport(callID string, s State) CallReport {
	deduped := transcript.Deduplicate(s.Transcript)

	msgs := make([]ReportMessage, 0, len(deduped))
	for _, msg := range deduped {
		msgs = append(msgs, ReportMessage{
			Role:      msg.Role,
			Text:      msg.Text,
			Timestamp: msg.Timestamp.UnixMilli(),
		})
	}

	report := CallReport{
		CallID:      callID,
		AssistantID: m.assistantID,
		Transcript:  msgs,
	}
	if !s.StartedAt.IsZero() {
		report.StartedAt = s.StartedAt.UnixMilli()
	}
	if !s.EndedAt.IsZero() {
		report.EndedAt = s.EndedAt.UnixMilli()
	}
	return report
}

// postReport is fire-and-forget: the user-visible call has already ended,
// so a relay failure is logged and nothing else.
func (m *Manager) postReport(report CallReport) {
	if m.relay == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.relay.PostTranscript(ctx, report); err != nil {
		log.Printf("transcript relay failed: %v", err)
	}
}

func (m *Manager) clearEndedOverlay() {
	m.mu.Lock()
	m.state.ShowEndedOverlay = false
	m.state.Connection = ConnIdle
	m.state.Activity = ActivityIdle
	callID := m.callID
	m.callID = ""
	m.overlayTimer = nil
	m.mu.Unlock()

	if m.transport != nil && callID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.transport.Stop(ctx, callID)
	}

	if m.hub != nil {
		m.hub.BroadcastCallReset()
	}
}
