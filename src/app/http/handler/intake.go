package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventlisting/src/app/http/dto"
	"eventlisting/src/app/http/response"
	"eventlisting/src/app/middleware"
	"eventlisting/src/core/ports"
	"eventlisting/src/core/usecase"
)

// IntakeHandler serves the form intake front.
type IntakeHandler struct {
	intakeService *usecase.IntakeService
	log           *slog.Logger
}

// NewIntakeHandler creates a new IntakeHandler.
func NewIntakeHandler(intakeService *usecase.IntakeService, log *slog.Logger) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService, log: log}
}

// IntakeFailure is the body answered for a rejected submission.
type IntakeFailure struct {
	Errors map[string]string    `json:"errors"`
	Values usecase.IntakeValues `json:"values"`
}

// IntakeSuccess carries the API's answer and the card built from it.
type IntakeSuccess struct {
	DTO  json.RawMessage  `json:"dto"`
	Card *dto.CardPostDTO `json:"card"`
}

// AddEvent accepts a multipart or urlencoded event form.
// POST /addevent
func (h *IntakeHandler) AddEvent(c *gin.Context) {
	result, err := h.intakeService.Submit(c.Request.Context(), c.GetPostForm)
	if err != nil {
		var intakeErr *usecase.IntakeError
		if errors.As(err, &intakeErr) {
			c.JSON(intakeErr.Status, IntakeFailure{Errors: intakeErr.Errors, Values: intakeErr.Values})
			return
		}
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	out := IntakeSuccess{DTO: result.DTO}
	card, err := dto.CardFromCreated(result.DTO, result.Form.Width, result.Form.Height)
	if err != nil {
		h.log.Warn("created event is not a card", "error", err)
	} else {
		rec := dto.ToWireFormat(card)
		out.Card = &rec
	}
	c.JSON(http.StatusOK, out)
}

// Cards lists every stored event as card records.
// GET /cards
func (h *IntakeHandler) Cards(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	raw, err := h.intakeService.Cards(c.Request.Context())
	if err != nil {
		var statusErr *ports.BackendStatusError
		if errors.As(err, &statusErr) {
			response.BadGateway(c, fmt.Sprintf("Backend error %d", statusErr.StatusCode), requestID)
			return
		}
		response.FromDomainError(c, err, requestID)
		return
	}

	var events []dto.EventData
	if err := json.Unmarshal(raw, &events); err != nil {
		h.log.Error("decode event list", "error", err)
		response.BadGateway(c, "Backend returned an unreadable event list", requestID)
		return
	}

	cards := make([]dto.CardPostDTO, 0, len(events))
	for _, ev := range events {
		card, err := dto.FromEventData(ev)
		if err != nil {
			h.log.Warn("skipping event with invalid dates", "event_id", ev.ID, "error", err)
			continue
		}
		cards = append(cards, dto.ToWireFormat(card))
	}
	response.OK(c, cards)
}
