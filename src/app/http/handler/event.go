package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"eventlisting/src/app/http/dto"
	"eventlisting/src/app/http/response"
	"eventlisting/src/app/middleware"
	"eventlisting/src/core/domain"
	"eventlisting/src/core/usecase"
)

// EventHandler serves the events collection.
type EventHandler struct {
	eventService *usecase.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService *usecase.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Create stores a new event.
// POST /events/Events
func (h *EventHandler) Create(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || isEmptyBody(raw) {
		response.InvalidRequest(c, domain.MsgNoCreationArguments, nil)
		return
	}

	var req dto.CreateEventRequest
	if err := binding.JSON.BindBody(raw, &req); err != nil {
		if fields := bindingFieldErrors(err); fields != nil {
			response.ValidationProblem(c, fields)
			return
		}
		response.InvalidRequest(c, domain.MsgNoCreationArguments, nil)
		return
	}

	ev, err := h.eventService.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		var reqErr *domain.RequestError
		if errors.As(err, &reqErr) {
			response.InvalidRequest(c, reqErr.Message, req)
			return
		}
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.Created(c, "/events/"+ev.ID.String(), dto.CreatedEventFromDomain(ev))
}

// List returns every event.
// GET /events/Events
func (h *EventHandler) List(c *gin.Context) {
	items, err := h.eventService.List(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, items)
}

func isEmptyBody(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// bindingFieldErrors translates binding failures that concern a single
// field into FieldErrors keyed by JSON name. It returns nil for anything
// else.
func bindingFieldErrors(err error) domain.FieldErrors {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := domain.FieldErrors{}
		for _, fe := range verrs {
			name := jsonFieldName(fe.StructField())
			switch fe.Tag() {
			case "required":
				fields.Add(name, fmt.Sprintf("The %s field is required.", name))
			case "max":
				fields.Add(name, fmt.Sprintf("The field %s must be a string with a maximum length of %s.", name, fe.Param()))
			default:
				fields.Add(name, fmt.Sprintf("The %s field is invalid.", name))
			}
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields := domain.FieldErrors{}
		fields.Add(typeErr.Field, fmt.Sprintf("The JSON value could not be converted to %s.", typeErr.Type))
		return fields
	}
	return nil
}

func jsonFieldName(structField string) string {
	f, ok := reflect.TypeOf(dto.CreateEventRequest{}).FieldByName(structField)
	if !ok {
		return structField
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return structField
	}
	return name
}
