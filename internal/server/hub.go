package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/hellodesk/callcenter/internal/session"
	"github.com/hellodesk/callcenter/internal/transcript"
)

// Hub fans session-state events out to every connected websocket client.
// Slow clients are skipped rather than blocking the broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) BroadcastCallStarted(callID string) {
	h.broadcastEvent(CallStartedEvent{
		Event:  newEvent("call_started", time.Now().UTC()),
		CallID: callID,
	})
}

func (h *Hub) BroadcastCallEnded(callID string, duration time.Duration) {
	h.broadcastEvent(CallEndedEvent{
		Event:    newEvent("call_ended", time.Now().UTC()),
		CallID:   callID,
		Duration: duration.Seconds(),
	})
}

func (h *Hub) BroadcastActivityChanged(activity session.Activity) {
	h.broadcastEvent(ActivityChangedEvent{
		Event:    newEvent("activity_changed", time.Now().UTC()),
		Activity: string(activity),
	})
}

func (h *Hub) BroadcastTranscriptUpdated(msg transcript.Message, replaced bool) {
	h.broadcastEvent(TranscriptUpdatedEvent{
		Event:    newEvent("transcript_updated", msg.Timestamp),
		Role:     msg.Role,
		Text:     msg.Text,
		Replaced: replaced,
	})
}

func (h *Hub) BroadcastCallError(message string) {
	h.broadcastEvent(CallErrorEvent{
		Event:   newEvent("call_error", time.Now().UTC()),
		Message: message,
	})
}

func (h *Hub) BroadcastCallReset() {
	h.broadcastEvent(CallResetEvent{
		Event: newEvent("call_reset", time.Now().UTC()),
	})
}

func (h *Hub) broadcastEvent(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	h.Broadcast(payload)
}
