package server

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"eventlisting/src/app/http/handler"
	"eventlisting/src/core/ports"
	"eventlisting/src/core/usecase"
	"eventlisting/src/infra/config"
)

// NewWeb creates the intake server that accepts event forms and forwards
// them to the events API through backend.
func NewWeb(cfg *config.Config, log *slog.Logger, backend ports.EventsBackend, reg *prometheus.Registry) *Server {
	healthHandler := handler.NewHealthHandler(usecase.NewHealthService(log, map[string]ports.ExternalService{
		"backend": backend,
	}))
	intakeHandler := handler.NewIntakeHandler(usecase.NewIntakeService(backend, log), log)

	s := newServer("web", cfg.Web.Addr(), cfg, log, reg)
	s.router.MaxMultipartMemory = 8 << 20

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/detailed", healthHandler.DetailedHealth)
	s.router.POST("/addevent", intakeHandler.AddEvent)
	s.router.GET("/cards", intakeHandler.Cards)

	return s
}
