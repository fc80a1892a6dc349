package usecase

import (
	"context"
	"log/slog"

	"eventlisting/src/core/ports"
)

// HealthService handles health check logic for the process dependencies.
type HealthService struct {
	log        *slog.Logger
	components map[string]ports.ExternalService
}

// NewHealthService creates a HealthService checking the named components.
// Nil components are skipped.
func NewHealthService(log *slog.Logger, components map[string]ports.ExternalService) *HealthService {
	active := make(map[string]ports.ExternalService, len(components))
	for name, c := range components {
		if c != nil {
			active[name] = c
		}
	}
	return &HealthService{
		log:        log,
		components: active,
	}
}

// HealthStatus represents the health of the application.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Check performs a health check of all application components.
// A failing component degrades the overall status.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "ok",
		Components: make(map[string]ComponentHealth),
	}

	for name, c := range s.components {
		if err := c.Health(ctx); err != nil {
			status.Status = "degraded"
			status.Components[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
			s.log.Warn("health check failed", "component", name, "error", err)
			continue
		}
		status.Components[name] = ComponentHealth{Status: "healthy"}
	}

	return status
}
