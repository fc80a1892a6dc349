package main

import (
	"github.com/spf13/cobra"

	"eventlisting/src/infra/config"
	"eventlisting/src/infra/db"
	"eventlisting/src/infra/logger"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Run embedded schema migrations",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(db.MigrateUp), string(db.MigrateDown), string(db.MigrateStatus)},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cobra.OnlyValidArgs(cmd, args); err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logger.New(cfg.Log)

		pg, err := db.New(cmd.Context(), cfg.Database, logger.WithComponent(log, "db"))
		if err != nil {
			return err
		}
		defer pg.Close()

		return pg.Migrate(cmd.Context(), db.MigrateCommand(args[0]))
	},
}
