// Package middleware contains HTTP middleware for the Gin router.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventlisting/src/infra/backend"
)

// RequestIDHeader is the HTTP header used for request tracing.
const RequestIDHeader = backend.RequestIDHeader

// RequestIDKey is the context key for storing the request ID.
const RequestIDKey = "request_id"

// RequestID reuses the incoming X-Request-ID or generates one. The id is
// stored in the Gin context, echoed in the response headers and attached
// to the request context so outgoing backend calls carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(backend.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context.
// Returns empty string if not set.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
