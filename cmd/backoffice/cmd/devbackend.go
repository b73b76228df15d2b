package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/99minutos/backoffice/internal/devbackend"
	mongostore "github.com/99minutos/backoffice/internal/infrastructure/db/mongo"
	devhttp "github.com/99minutos/backoffice/internal/infrastructure/http"
	"github.com/99minutos/backoffice/internal/infrastructure/http/handlers"
	"github.com/99minutos/backoffice/pkg/logger"
)

var devPort string

var devBackendCmd = &cobra.Command{
	Use:   "devbackend",
	Short: "Start a development REST backend for the console",
	Long: `Devbackend answers login, logout and verifySession and keeps every dashboard
resource in memory. Accounts come from DEV_SEED_USERS (username:password:role[:merchantId]).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if devPort != "" {
			cfg.Dev.Port = devPort
		}
		log := logger.Component("devbackend")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		checks := make(map[string]handlers.Check)
		var repo devbackend.UserRepository = devbackend.NewMemoryUserRepository()
		if cfg.Dev.UserStore == "mongo" {
			conn, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close(context.Background()) }()

			users := mongostore.NewUserRepository(conn.DB)
			if err := users.EnsureIndexes(ctx); err != nil {
				return err
			}
			repo = users
			checks["mongodb"] = conn.Ping
		}

		if cfg.Dev.SessionSecret == "" {
			log.Warn().Msg("DEV_SESSION_SECRET not set, sessions will not survive a restart")
		}
		svc := devbackend.NewService(repo, devbackend.Config{
			Secret:        cfg.Dev.SessionSecret,
			SessionTTL:    cfg.Dev.SessionTTL,
			ExpiryWarning: cfg.Dev.ExpiryWarning,
		})

		entries := cfg.Dev.SeedUsers
		if len(entries) == 0 {
			entries = devbackend.DefaultSeedUsers
		}
		seeds, err := devbackend.ParseSeedUsers(entries)
		if err != nil {
			return fmt.Errorf("DEV_SEED_USERS: %w", err)
		}
		if err := svc.Seed(ctx, seeds); err != nil {
			return err
		}
		log.Info().Int("users", len(seeds)).Str("user_store", cfg.Dev.UserStore).Msg("accounts seeded")

		router := devhttp.NewRouter(devhttp.Dependencies{
			Service:  svc,
			Store:    devbackend.NewResourceStore(),
			AuthPath: cfg.Backend.AuthPath,
			Checks:   checks,
			Log:      log,
		})
		return runServer(ctx, newHTTPServer(cfg.Dev.Port, router), log)
	},
}

func init() {
	rootCmd.AddCommand(devBackendCmd)
	devBackendCmd.Flags().StringVarP(&devPort, "port", "p", "", "Port to listen on (overrides DEV_PORT)")
}
