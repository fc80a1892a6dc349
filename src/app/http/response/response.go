// Package response defines consistent HTTP response structures.
// Error responses outside the create contract use the Error envelope.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventlisting/src/app/http/dto"
	"eventlisting/src/core/domain"
)

// Error represents an error response.
type Error struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "BAD_GATEWAY")
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Field is the field that caused the error (for validation errors)
	Field string `json:"field,omitempty"`

	// RequestID is the request ID for debugging
	RequestID string `json:"request_id,omitempty"`
}

// OK sends a 200 response with body as is.
func OK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// Created sends a 201 response pointing at location.
func Created(c *gin.Context, location string, body any) {
	c.Header("Location", location)
	c.JSON(http.StatusCreated, body)
}

// InvalidRequest sends a 400 response echoing the rejected input.
func InvalidRequest(c *gin.Context, message string, value any) {
	c.JSON(http.StatusBadRequest, dto.InvalidRequest{Error: message, Value: value})
}

// ValidationProblem sends a 400 response listing every failing field.
func ValidationProblem(c *gin.Context, fields domain.FieldErrors) {
	c.JSON(http.StatusBadRequest, dto.ValidationProblem{
		Title:  "One or more validation errors occurred.",
		Status: http.StatusBadRequest,
		Errors: fields,
	})
}

// ValidationError sends a 400 response for a single invalid field.
func ValidationError(c *gin.Context, field, message, requestID string) {
	c.JSON(http.StatusBadRequest, Error{
		Error: ErrorDetail{
			Code:      "VALIDATION_ERROR",
			Message:   message,
			Field:     field,
			RequestID: requestID,
		},
	})
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message, requestID string) {
	c.JSON(http.StatusNotFound, Error{
		Error: ErrorDetail{
			Code:      "NOT_FOUND",
			Message:   message,
			RequestID: requestID,
		},
	})
}

// Conflict sends a 409 response.
func Conflict(c *gin.Context, message, requestID string) {
	c.JSON(http.StatusConflict, Error{
		Error: ErrorDetail{
			Code:      "CONFLICT",
			Message:   message,
			RequestID: requestID,
		},
	})
}

// BadGateway sends a 502 response for an unreachable dependency.
func BadGateway(c *gin.Context, message, requestID string) {
	c.JSON(http.StatusBadGateway, Error{
		Error: ErrorDetail{
			Code:      "BAD_GATEWAY",
			Message:   message,
			RequestID: requestID,
		},
	})
}

// InternalError sends a 500 response.
func InternalError(c *gin.Context, requestID string) {
	c.JSON(http.StatusInternalServerError, Error{
		Error: ErrorDetail{
			Code:      "INTERNAL_ERROR",
			Message:   "An unexpected error occurred",
			RequestID: requestID,
		},
	})
}

// FromDomainError converts a domain error to an appropriate HTTP response.
// This centralizes error handling and ensures consistent error responses.
func FromDomainError(c *gin.Context, err error, requestID string) {
	var (
		fields    domain.FieldErrors
		reqErr    *domain.RequestError
		domainErr *domain.DomainError
	)
	switch {
	case errors.As(err, &fields):
		ValidationProblem(c, fields)
	case errors.As(err, &reqErr):
		InvalidRequest(c, reqErr.Message, reqErr.Value)
	case domain.IsValidationError(err):
		if errors.As(err, &domainErr) {
			ValidationError(c, domainErr.Field, domainErr.Message, requestID)
		} else {
			InvalidRequest(c, err.Error(), nil)
		}
	case domain.IsNotFound(err):
		NotFound(c, err.Error(), requestID)
	case domain.IsConflict(err):
		Conflict(c, err.Error(), requestID)
	case domain.IsUnavailable(err):
		BadGateway(c, err.Error(), requestID)
	default:
		InternalError(c, requestID)
	}
}
