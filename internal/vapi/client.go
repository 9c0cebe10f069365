// Package vapi is a thin client for the voice platform's server API and the
// transcript webhook. The hard work (speech recognition, synthesis,
// telephony signaling) lives on the platform; this package only creates
// calls and campaigns and relays payloads.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.vapi.ai"

type Customer struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
}

type CallRequest struct {
	PhoneNumberID string   `json:"phoneNumberId"`
	AssistantID   string   `json:"assistantId"`
	Customer      Customer `json:"customer"`
}

type CampaignRequest struct {
	Name          string     `json:"name"`
	PhoneNumberID string     `json:"phoneNumberId"`
	AssistantID   string     `json:"assistantId"`
	Customers     []Customer `json:"customers"`
}

// Resource is the platform's response to a create request: the assigned ID
// plus the raw remote object, which the relay endpoints return unmodified.
type Resource struct {
	ID  string
	Raw json.RawMessage
}

// APIError is a non-2xx response from the platform.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vapi: status %d: %s", e.Status, e.Body)
}

type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateCall places one outbound phone call.
func (c *Client) CreateCall(ctx context.Context, req CallRequest) (Resource, error) {
	return c.create(ctx, "/call", req)
}

// CreateCampaign creates an outbound campaign; the demo wraps a single
// customer as a one-element campaign.
func (c *Client) CreateCampaign(ctx context.Context, req CampaignRequest) (Resource, error) {
	return c.create(ctx, "/campaign", req)
}

func (c *Client) create(ctx context.Context, path string, payload any) (Resource, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Resource{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Resource{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return Resource{}, fmt.Errorf("vapi request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Resource{}, fmt.Errorf("read vapi response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Resource{}, &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	var idHolder struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &idHolder); err != nil {
		return Resource{}, fmt.Errorf("decode vapi response: %w", err)
	}

	return Resource{ID: idHolder.ID, Raw: raw}, nil
}
