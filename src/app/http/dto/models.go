package dto

import (
	"time"

	"eventlisting/src/core/domain"
	"eventlisting/src/core/usecase"
)

// CreateEventRequest is the payload for POST /events/Events.
type CreateEventRequest struct {
	EventName string    `json:"eventName" binding:"required,max=200"`
	DateStart time.Time `json:"dateStart" binding:"required"`
	DateEnd   time.Time `json:"dateEnd" binding:"required"`
	Covers    []*string `json:"covers"`
	EventType string    `json:"eventType" binding:"required,max=200"`
	Features  []string  `json:"features"`
}

// ToInput converts the request to the use case input.
func (r *CreateEventRequest) ToInput() usecase.CreateEventInput {
	return usecase.CreateEventInput{
		Name:     r.EventName,
		Start:    r.DateStart,
		End:      r.DateEnd,
		Covers:   r.Covers,
		Category: r.EventType,
		Features: r.Features,
	}
}

// CreatedEventResponse is the body answered for a created event.
type CreatedEventResponse struct {
	ID        string    `json:"id"`
	EventName string    `json:"eventName"`
	DateStart time.Time `json:"dateStart"`
	DateEnd   time.Time `json:"dateEnd"`
	Covers    []string  `json:"covers"`
	EventType *string   `json:"eventType"`
	Features  []string  `json:"features"`
}

// CreatedEventFromDomain projects a stored event.
func CreatedEventFromDomain(e *domain.Event) CreatedEventResponse {
	return CreatedEventResponse{
		ID:        e.ID.String(),
		EventName: e.Name,
		DateStart: e.Start,
		DateEnd:   e.End,
		Covers:    e.Covers,
		EventType: e.CategoryName(),
		Features:  e.FeatureNames(),
	}
}

// ValidationProblem is the body of a field-level validation failure.
type ValidationProblem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors"`
}

// InvalidRequest is the body of a rejected request that echoes its input.
type InvalidRequest struct {
	Error string `json:"error"`
	Value any    `json:"value"`
}
