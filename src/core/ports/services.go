package ports

import (
	"context"
	"encoding/json"
	"fmt"
)

// ExternalService is the base interface for external service adapters.
type ExternalService interface {
	// Health checks if the external service is reachable.
	Health(ctx context.Context) error
}

// EventsBackend is the events API as seen from the form intake.
type EventsBackend interface {
	ExternalService

	// CreateEvent posts payload and returns the raw response body.
	CreateEvent(ctx context.Context, payload any) (json.RawMessage, error)

	// ListEvents returns the raw list response body.
	ListEvents(ctx context.Context) (json.RawMessage, error)
}

// BackendStatusError is a non-success response from the events API.
type BackendStatusError struct {
	StatusCode int
	Body       string
}

func (e *BackendStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend error %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Body)
}
