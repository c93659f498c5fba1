package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mp",
	Short: "Model pipeline - convert and publish ML model artifacts",
	Long: `Model pipeline sequences the external model tooling: it downloads models
from the hub, exports them to inference runtime formats via optimum-cli,
syncs the artifacts to an object-storage bucket, and records every produced
artifact in a registry file.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(loadDotenv)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
}

// loadDotenv pulls a local .env into the process environment so hub and
// cloud credentials reach the external tools. A missing file is fine.
func loadDotenv() {
	_ = godotenv.Load()
}

// newLogger builds the logger handed to every component. MP_LOG_LEVEL
// overrides the default info level.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if lvl := os.Getenv("MP_LOG_LEVEL"); lvl != "" {
		if parsed, err := log.ParseLevel(lvl); err == nil {
			logger.SetLevel(parsed)
		}
	}
	return logger
}
