// Package main is the entry point for the events listing service.
// The API, the form intake front and schema migrations are subcommands.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "eventsapi",
	Short:         "Events listing API and form intake",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}
