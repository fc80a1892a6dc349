package main

import (
	"github.com/spf13/cobra"

	"eventlisting/src/app/server"
	"eventlisting/src/infra/backend"
	"eventlisting/src/infra/config"
	"eventlisting/src/infra/logger"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the form intake front that forwards events to the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logger.New(cfg.Log)
		log.Info("starting form intake",
			"port", cfg.Web.Port,
			"backend", cfg.Web.BackendURL,
		)

		client := backend.NewClient(cfg.Web.BackendURL, cfg.Web.BackendTimeout, logger.WithComponent(log, "backend"))
		return server.NewWeb(cfg, log, client, newRegistry()).Run()
	},
}
