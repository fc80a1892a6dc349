// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventlisting/src/app/http/handler"
	"eventlisting/src/app/middleware"
	"eventlisting/src/core/ports"
	"eventlisting/src/core/usecase"
	"eventlisting/src/infra/config"
)

// Server wraps an HTTP server and its router.
type Server struct {
	name            string
	addr            string
	shutdownTimeout time.Duration
	log             *slog.Logger
	router          *gin.Engine
	http            *http.Server
}

// New creates the events API server. cache may be nil.
func New(cfg *config.Config, log *slog.Logger, repo ports.EventRepository, cache ports.EventListCache, reg *prometheus.Registry) *Server {
	components := map[string]ports.ExternalService{"database": repo}
	if cache != nil {
		components["cache"] = cache
	}

	healthHandler := handler.NewHealthHandler(usecase.NewHealthService(log, components))
	eventHandler := handler.NewEventHandler(usecase.NewEventService(repo, cache, log))

	s := newServer("api", cfg.Server.Addr(), cfg, log, reg)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/detailed", healthHandler.DetailedHealth)

	events := s.router.Group("/events")
	{
		events.POST("/Events", eventHandler.Create)
		events.GET("/Events", eventHandler.List)
	}

	return s
}

// newServer builds a router with the common middleware chain and the
// metrics endpoint.
func newServer(name, addr string, cfg *config.Config, log *slog.Logger, reg *prometheus.Registry) *Server {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	log = log.With("server", name)

	// Recovery first so it catches panics in every later handler.
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.NewMetrics(reg).Handler())
	router.Use(middleware.CORS())
	router.Use(middleware.Logging(log))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "The requested resource was not found",
				"request_id": middleware.GetRequestID(c),
			},
		})
	})

	return &Server{
		name:            name,
		addr:            addr,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		log:             log,
		router:          router,
		http: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("starting HTTP server", "addr", s.addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// WaitForReady waits until the server is ready to accept connections.
// Useful for integration tests.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", s.addr))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}
