package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/99minutos/backoffice/internal/api"
	"github.com/99minutos/backoffice/internal/core/ports"
	"github.com/99minutos/backoffice/internal/core/service"
	"github.com/99minutos/backoffice/internal/infrastructure/backend"
	boltstore "github.com/99minutos/backoffice/internal/infrastructure/db/bolt"
	memstore "github.com/99minutos/backoffice/internal/infrastructure/db/memory"
	redisstore "github.com/99minutos/backoffice/internal/infrastructure/db/redis"
	"github.com/99minutos/backoffice/internal/infrastructure/http/handlers"
	"github.com/99minutos/backoffice/internal/pkg/config"
	"github.com/99minutos/backoffice/pkg/logger"
)

var (
	servePort   string
	serveAPIURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard console",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}
		if serveAPIURL != "" {
			cfg.Backend.URL = serveAPIURL
		}
		log := logger.Component("console")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		kv, checks, err := openSessionStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		base, err := backend.ParseBaseURL(cfg.Backend.URL)
		if err != nil {
			return err
		}
		jar, err := backend.NewPersistentJar(ctx, base, kv, logger.Component("cookies"))
		if err != nil {
			return fmt.Errorf("cookie jar: %w", err)
		}
		client, err := backend.NewClient(backend.Config{
			BaseURL:  cfg.Backend.URL,
			AuthPath: cfg.Backend.AuthPath,
			Timeout:  cfg.Backend.RequestTimeout,
		}, jar, logger.Component("backend"))
		if err != nil {
			return err
		}

		auth := service.NewAuthService(
			client,
			service.NewSessionStore(kv, logger.Component("session_store")),
			logger.Component("auth"),
			service.WithTransport(client),
			service.WithVerifyInterval(cfg.Backend.VerifyInterval),
		)
		auth.Start(ctx)
		defer auth.Stop()

		checks["session"] = func(context.Context) error {
			select {
			case <-auth.Ready():
				return nil
			default:
				return errors.New("first session verification still running")
			}
		}

		router := api.NewRouter(api.Dependencies{
			Auth:      auth,
			Prefs:     service.NewPreferences(kv, logger.Component("preferences")),
			Resources: backend.NewResourceClient(client.BaseURL(), auth, logger.Component("resources")),
			SignUp:    service.NewSignUpService(client, logger.Component("signup")),
			Checks:    checks,
			Log:       log,
		})

		log.Info().Str("api_url", cfg.Backend.URL).Str("session_store", cfg.Session.Store).Msg("console starting")
		return runServer(ctx, newHTTPServer(cfg.Port, router), log)
	},
}

// openSessionStore opens the configured key-value store and the readiness
// checks that go with it.
func openSessionStore(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, map[string]handlers.Check, error) {
	checks := make(map[string]handlers.Check)
	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		s := redisstore.NewSessionStore(client, cfg.Redis.Prefix)
		checks["redis"] = s.Ping
		return s, checks, nil
	case config.StoreMemory:
		return memstore.NewStore(), checks, nil
	default:
		s, err := boltstore.Open(cfg.Session.File)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		checks["bolt"] = s.Ping
		return s, checks, nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveAPIURL, "api-url", "", "REST backend origin (overrides API_URL)")
}
