// Package backend is the HTTP client the form intake uses to reach the
// events API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventlisting/src/core/domain"
	"eventlisting/src/core/ports"
)

// EventsPath is the events collection on the API.
const EventsPath = "/events/Events"

// maxErrorBody bounds how much of a failed response is echoed to the caller.
const maxErrorBody = 4 << 10

// Client calls the events API. It forwards the request id from the
// context and enforces a per-call timeout.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
}

var _ ports.EventsBackend = (*Client)(nil)

// NewClient creates a Client for baseURL.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		log:     log,
	}
}

// CreateEvent posts payload as JSON.
func (c *Client) CreateEvent(ctx context.Context, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, EventsPath, bytes.NewReader(body))
}

// ListEvents fetches the full event list.
func (c *Client) ListEvents(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, EventsPath, nil)
}

// Health calls the API health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			"method", method,
			"path", path,
			"duration", time.Since(start),
			"error", err,
		)
		return nil, mapError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ports.BackendStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(text)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mapError(err)
	}
	return raw, nil
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewUnavailableError("events backend timed out")
	}
	return domain.NewUnavailableError(err.Error())
}
