package vapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Transport adapts the client to the session manager's voice-transport
// boundary: starting opens a browser-attachable web call for the configured
// assistant, stopping releases it on the platform side.
type Transport struct {
	client      *Client
	assistantID string
}

func NewTransport(client *Client, assistantID string) *Transport {
	return &Transport{client: client, assistantID: assistantID}
}

func (t *Transport) Start(ctx context.Context) (string, error) {
	res, err := t.client.create(ctx, "/call/web", map[string]string{"assistantId": t.assistantID})
	if err != nil {
		return "", fmt.Errorf("create web call: %w", err)
	}
	return res.ID, nil
}

func (t *Transport) Stop(ctx context.Context, callID string) error {
	if callID == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, t.client.baseURL+"/call/"+callID, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.client.apiKey)

	resp, err := t.client.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("end call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: ""}
	}
	return nil
}
