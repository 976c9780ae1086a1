package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crewgrid",
	Short: "Multi-specialist goal orchestrator",
	Long: `Crewgrid routes free-text goals through a fixed workflow graph of
specialist workers: a coordinator delegates, specialists execute, and a
dispatcher drains each worker's task backlog.

Goals arrive through a durable Redis Streams queue (or inline when no
Redis is configured); worker, task, message and activity state persists
in SQLite.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}
