package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"eventlisting/src/core/ports"
)

// FormLookup returns a submitted form value and whether the field was present.
type FormLookup func(key string) (string, bool)

// Form field names accepted by the intake.
const (
	FieldEventName = "eventName"
	FieldEventType = "eventType"
	FieldDateStart = "dateStart"
	FieldDateEnd   = "dateEnd"
	FieldCovers    = "covers"
	FieldFeatures  = "features"
	FieldWidth     = "width"
	FieldHeight    = "height"
	FieldBackend   = "backend"
)

var listSeparator = regexp.MustCompile(`\r?\n|,`)

// dateLayouts are tried in order; values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// IntakeForm holds the typed fields parsed from a submission.
type IntakeForm struct {
	EventName *string
	EventType *string
	Start     *time.Time
	End       *time.Time
	Covers    []string
	Features  []string
	Width     *string
	Height    *string
}

// IntakeValues echoes the submission back for re-display.
type IntakeValues struct {
	EventName string `json:"eventName"`
	EventType string `json:"eventType"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
	Covers    string `json:"covers"`
	Features  string `json:"features"`
	Width     string `json:"width"`
	Height    string `json:"height"`
}

// CreateEventPayload is the normalized body forwarded to the events API.
type CreateEventPayload struct {
	EventName string   `json:"eventName"`
	DateStart string   `json:"dateStart"`
	DateEnd   string   `json:"dateEnd"`
	Covers    []string `json:"covers"`
	EventType *string  `json:"eventType"`
	Features  []string `json:"features"`
}

// IntakeError reports a rejected submission with the HTTP status to answer with.
type IntakeError struct {
	Status int
	Errors map[string]string
	Values IntakeValues
}

func (e *IntakeError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f, msg := range e.Errors {
		fields = append(fields, f+": "+msg)
	}
	return fmt.Sprintf("intake rejected (%d): %s", e.Status, strings.Join(fields, ", "))
}

// IntakeResult is an accepted submission and the backend's answer to it.
type IntakeResult struct {
	Form    IntakeForm
	Payload CreateEventPayload
	DTO     json.RawMessage
}

// ParseDate returns the instant value holds, or nil when it holds none.
func ParseDate(value string, present bool) *time.Time {
	if !present || value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// ParseList splits on newlines or commas, trims entries and drops empty
// ones. The result is never nil.
func ParseList(value string, present bool) []string {
	out := []string{}
	if !present {
		return out
	}
	for _, part := range listSeparator.Split(value, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseOptionalString trims value; blank or absent yields nil.
func ParseOptionalString(value string, present bool) *string {
	if !present {
		return nil
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

// ParseIntakeForm reads every intake field through lookup.
func ParseIntakeForm(lookup FormLookup) IntakeForm {
	return IntakeForm{
		EventName: ParseOptionalString(lookup(FieldEventName)),
		EventType: ParseOptionalString(lookup(FieldEventType)),
		Start:     ParseDate(lookup(FieldDateStart)),
		End:       ParseDate(lookup(FieldDateEnd)),
		Covers:    ParseList(lookup(FieldCovers)),
		Features:  ParseList(lookup(FieldFeatures)),
		Width:     ParseOptionalString(lookup(FieldWidth)),
		Height:    ParseOptionalString(lookup(FieldHeight)),
	}
}

// Validate returns one message per failing field. A later rule for the
// same field replaces an earlier one.
func (f IntakeForm) Validate() map[string]string {
	errs := map[string]string{}
	if f.EventName == nil {
		errs[FieldEventName] = "Event name is required."
	}
	if f.Start == nil {
		errs[FieldDateStart] = "Start date is required."
	}
	if f.End == nil {
		errs[FieldDateEnd] = "End date is required."
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		errs[FieldDateEnd] = "End date must be after start date."
	}
	if len(f.Covers) == 0 {
		errs[FieldCovers] = "At least one cover URL/path is required."
	}
	return errs
}

// Payload builds the normalized body for the events API. Only valid forms
// may be converted.
func (f IntakeForm) Payload() CreateEventPayload {
	return CreateEventPayload{
		EventName: *f.EventName,
		DateStart: FormatISO(*f.Start),
		DateEnd:   FormatISO(*f.End),
		Covers:    f.Covers,
		EventType: f.EventType,
		Features:  f.Features,
	}
}

// FormatISO renders t like JavaScript's Date.toISOString.
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func intakeValues(lookup FormLookup, f IntakeForm) IntakeValues {
	raw := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return IntakeValues{
		EventName: deref(f.EventName),
		EventType: deref(f.EventType),
		DateStart: raw(FieldDateStart),
		DateEnd:   raw(FieldDateEnd),
		Covers:    raw(FieldCovers),
		Features:  raw(FieldFeatures),
		Width:     deref(f.Width),
		Height:    deref(f.Height),
	}
}

// IntakeService validates form submissions and forwards them to the events API.
type IntakeService struct {
	backend ports.EventsBackend
	log     *slog.Logger
}

// NewIntakeService creates an IntakeService.
func NewIntakeService(backend ports.EventsBackend, log *slog.Logger) *IntakeService {
	return &IntakeService{backend: backend, log: log}
}

// Submit parses and validates a submission, then creates the event through
// the backend. Rejections are returned as *IntakeError.
func (s *IntakeService) Submit(ctx context.Context, lookup FormLookup) (*IntakeResult, error) {
	form := ParseIntakeForm(lookup)
	values := intakeValues(lookup, form)

	if errs := form.Validate(); len(errs) > 0 {
		return nil, &IntakeError{Status: http.StatusBadRequest, Errors: errs, Values: values}
	}

	payload := form.Payload()
	body, err := s.backend.CreateEvent(ctx, payload)
	if err != nil {
		var statusErr *ports.BackendStatusError
		if errors.As(err, &statusErr) {
			msg := fmt.Sprintf("Backend error %d", statusErr.StatusCode)
			if statusErr.Body != "" {
				msg += ": " + statusErr.Body
			}
			return nil, &IntakeError{
				Status: statusErr.StatusCode,
				Errors: map[string]string{FieldBackend: msg},
				Values: values,
			}
		}
		s.log.Error("events backend unreachable", "error", err)
		return nil, &IntakeError{
			Status: http.StatusBadGateway,
			Errors: map[string]string{FieldBackend: "Backend unavailable: " + err.Error()},
			Values: values,
		}
	}

	dto := body
	if len(body) == 0 || !json.Valid(body) {
		if dto, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
	}

	s.log.Debug("event submitted", "event_name", payload.EventName)
	return &IntakeResult{Form: form, Payload: payload, DTO: dto}, nil
}

// Cards returns the raw event list from the backend.
func (s *IntakeService) Cards(ctx context.Context) (json.RawMessage, error) {
	return s.backend.ListEvents(ctx)
}
