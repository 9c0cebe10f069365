package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/kaptinlin/jsonschema"

	"github.com/hellodesk/callcenter/internal/phone"
	"github.com/hellodesk/callcenter/internal/session"
	"github.com/hellodesk/callcenter/internal/vapi"
)

const maxBodyBytes = 4 << 20

// VapiAPI is the slice of the platform server API the relay endpoints use.
type VapiAPI interface {
	CreateCall(ctx context.Context, req vapi.CallRequest) (vapi.Resource, error)
	CreateCampaign(ctx context.Context, req vapi.CampaignRequest) (vapi.Resource, error)
}

// TranscriptForwarder posts a transcript payload verbatim to the configured
// downstream webhook.
type TranscriptForwarder interface {
	Forward(ctx context.Context, body []byte) error
}

// SessionManager is the call-session surface exposed to the UI and to the
// platform's event webhook.
type SessionManager interface {
	Deliver(ev session.Event)
	StartCall(ctx context.Context) error
	EndCall(ctx context.Context) error
	Snapshot() session.State
}

// Deps carries everything the API routes need. All configuration is injected
// here; handlers never read the process environment.
type Deps struct {
	Env                string
	DefaultCountryCode string
	CampaignName       string

	// Vapi is nil when the server-side credential is unconfigured; the
	// outbound endpoints then answer 500.
	Vapi VapiAPI

	// Forwarder is nil when no transcript webhook is configured; the
	// transcript endpoint then answers 502.
	Forwarder TranscriptForwarder

	Sessions SessionManager
}

func (d Deps) production() bool {
	return d.Env == "production"
}

type outboundRequest struct {
	Name          string        `json:"name"`
	PhoneNumberID string        `json:"phoneNumberId"`
	AssistantID   string        `json:"assistantId"`
	Customer      vapi.Customer `json:"customer"`
}

func registerAPIRoutes(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "env": deps.Env})
	})

	mux.HandleFunc("GET /api/session", func(w http.ResponseWriter, r *http.Request) {
		if deps.Sessions == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "session manager unavailable")
			return
		}
		writeJSON(w, http.StatusOK, deps.Sessions.Snapshot())
	})

	mux.HandleFunc("POST /api/call/start", func(w http.ResponseWriter, r *http.Request) {
		if deps.Sessions == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "session manager unavailable")
			return
		}
		if err := deps.Sessions.StartCall(r.Context()); err != nil {
			if errors.Is(err, session.ErrTransportNotReady) {
				writeJSONError(w, http.StatusServiceUnavailable, "voice transport not configured")
				return
			}
			log.Printf("start call failed: %v", err)
			writeJSONError(w, http.StatusBadGateway, "failed to start call")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/call/end", func(w http.ResponseWriter, r *http.Request) {
		if deps.Sessions == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "session manager unavailable")
			return
		}
		// Errors from ending a call are intentionally never surfaced.
		_ = deps.Sessions.EndCall(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/vapi/events", handleVapiEvents(deps))
	mux.HandleFunc("POST /api/transcripts", handleTranscripts(deps))
	mux.HandleFunc("POST /api/vapi/outbound-call", handleOutboundCall(deps))
	mux.HandleFunc("POST /api/vapi/outbound-campaign", handleOutboundCampaign(deps))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not Found")
	})
}

// handleVapiEvents receives the platform's server-event webhook and funnels
// each event onto the session manager's queue. Unknown event types are
// accepted and dropped so a platform-side schema addition never breaks us.
func handleVapiEvents(deps Deps) http.HandlerFunc {
	known := map[session.EventType]bool{
		session.EventCallStart:   true,
		session.EventCallEnd:     true,
		session.EventSpeechStart: true,
		session.EventSpeechEnd:   true,
		session.EventTranscript:  true,
		session.EventError:       true,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var ev session.Event
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&ev); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid event body")
			return
		}

		if known[ev.Type] && deps.Sessions != nil {
			deps.Sessions.Deliver(ev)
		}
		writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	}
}

func handleTranscripts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readLimitedBody(w, r)
		if !ok {
			return
		}

		// Size cap first so an oversized payload gets 413, not a generic 400.
		var sizeProbe struct {
			Transcript []json.RawMessage `json:"transcript"`
		}
		if err := json.Unmarshal(body, &sizeProbe); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(sizeProbe.Transcript) > maxTranscriptMessages {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "transcript exceeds maximum size")
			return
		}

		if details := validateBody(transcriptSchema, body); details != nil {
			writeValidationError(w, details)
			return
		}

		if deps.Forwarder == nil {
			writeJSONError(w, http.StatusBadGateway, "transcript webhook not configured")
			return
		}

		if err := deps.Forwarder.Forward(r.Context(), body); err != nil {
			log.Printf("transcript forward failed: %v", err)
			writeJSONError(w, http.StatusBadGateway, "failed to forward transcript")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func handleOutboundCall(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeOutbound(w, r, outboundCallSchema, deps)
		if !ok {
			return
		}

		res, err := deps.Vapi.CreateCall(r.Context(), vapi.CallRequest{
			PhoneNumberID: req.PhoneNumberID,
			AssistantID:   req.AssistantID,
			Customer:      req.Customer,
		})
		if err != nil {
			log.Printf("outbound call creation failed: %v", err)
			writeJSONError(w, http.StatusBadGateway, "failed to create call")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{"id": res.ID, "call": res.Raw})
	}
}

func handleOutboundCampaign(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeOutbound(w, r, outboundCampaignSchema, deps)
		if !ok {
			return
		}

		name := req.Name
		if name == "" {
			name = deps.CampaignName
		}

		res, err := deps.Vapi.CreateCampaign(r.Context(), vapi.CampaignRequest{
			Name:          name,
			PhoneNumberID: req.PhoneNumberID,
			AssistantID:   req.AssistantID,
			Customers:     []vapi.Customer{req.Customer},
		})
		if err != nil {
			log.Printf("outbound campaign creation failed: %v", err)
			writeJSONError(w, http.StatusBadGateway, "failed to create campaign")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{"id": res.ID, "campaign": res.Raw})
	}
}

// decodeOutbound validates and decodes an outbound call/campaign body,
// normalizes the customer phone number, and checks the platform client is
// configured. It writes the error response itself when it returns false.
func decodeOutbound(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, deps Deps) (outboundRequest, bool) {
	body, ok := readLimitedBody(w, r)
	if !ok {
		return outboundRequest{}, false
	}

	if details := validateBody(schema, body); details != nil {
		writeValidationError(w, details)
		return outboundRequest{}, false
	}

	var req outboundRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return outboundRequest{}, false
	}

	normalized, ok := phone.Normalize(req.Customer.Number, deps.DefaultCountryCode)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid phone number")
		return outboundRequest{}, false
	}
	req.Customer.Number = normalized

	if deps.Vapi == nil {
		writeJSONError(w, http.StatusInternalServerError, "server API credential not configured")
		return outboundRequest{}, false
	}

	return req, true
}

// readLimitedBody reads a request body up to maxBodyBytes. A body past the
// cap answers 413 rather than being silently truncated into a JSON parse 400.
func readLimitedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.ContentLength > maxBodyBytes {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "read body failed")
		return nil, false
	}
	if len(body) > maxBodyBytes {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	return body, true
}

func writeValidationError(w http.ResponseWriter, details any) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "validation failed",
		"details": details,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
