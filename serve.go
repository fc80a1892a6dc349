package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"eventlisting/src/app/server"
	"eventlisting/src/core/ports"
	"eventlisting/src/infra/cache"
	"eventlisting/src/infra/config"
	"eventlisting/src/infra/db"
	"eventlisting/src/infra/logger"
	"eventlisting/src/infra/repo"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the events API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Info("starting events API",
		"port", cfg.Server.Port,
		"store", cfg.Database.Driver,
		"log_level", cfg.Log.Level,
	)

	eventRepo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	// A nil interface disables caching; never pass a typed nil.
	var listCache ports.EventListCache
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.New(ctx, cfg.Cache.RedisURL, cfg.Cache.ListTTL)
		if err != nil {
			log.Warn("event list cache disabled", "error", err)
		} else {
			defer rc.Close()
			listCache = rc
			log.Info("event list cache enabled", "ttl", cfg.Cache.ListTTL)
		}
	}

	srv := server.New(cfg, log, eventRepo, listCache, newRegistry())
	return srv.Run()
}

// openRepository returns the configured store and a function releasing it.
func openRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.EventRepository, func(), error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory store; events are lost on restart")
		return repo.NewMemoryRepository(), func() {}, nil
	}

	pg, err := db.New(ctx, cfg.Database, logger.WithComponent(log, "db"))
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := pg.Migrate(ctx, db.MigrateUp); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return repo.NewPostgresRepository(pg, log), pg.Close, nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
