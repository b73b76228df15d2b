package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/99minutos/backoffice/internal/pkg/config"
	"github.com/99minutos/backoffice/pkg/logger"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Back-office console for merchants and administrators",
	Long: `Backoffice signs operators in against the REST backend, keeps their session
verified and serves the role-gated dashboard screens.

Configuration is read from the environment (API_URL, SESSION_STORE, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		// Production logs are always JSON for the collector.
		logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty && !cfg.IsProduction(), Service: "backoffice"})
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
