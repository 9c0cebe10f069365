package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hellodesk/callcenter/internal/session"
)

// Forwarder posts transcript payloads to the configured downstream webhook.
// It does not inspect or rewrite the payload and never retries.
type Forwarder struct {
	url   string
	httpc *http.Client
}

func NewForwarder(url string, opts ...ForwarderOption) *Forwarder {
	f := &Forwarder{
		url:   url,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type ForwarderOption func(*Forwarder)

func WithForwarderHTTPClient(httpc *http.Client) ForwarderOption {
	return func(f *Forwarder) { f.httpc = httpc }
}

// Forward posts body verbatim to the webhook. A transport error or non-2xx
// status is an upstream failure.
func (f *Forwarder) Forward(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// PostTranscript implements the session manager's relay boundary.
func (f *Forwarder) PostTranscript(ctx context.Context, report session.CallReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal call report: %w", err)
	}
	return f.Forward(ctx, body)
}
