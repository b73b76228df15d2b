package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session store backends.
const (
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Port      string `env:"PORT,       default=3000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
	Dev     DevBackendConfig
	Mongo   MongoConfig
}

// BackendConfig points the console at the REST backend.
type BackendConfig struct {
	URL            string        `env:"API_URL,         default=http://localhost:8080"`
	AuthPath       string        `env:"AUTH_PATH,       default=/userAdmins"`
	VerifyInterval time.Duration `env:"VERIFY_INTERVAL, default=60s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=15s"`
}

type SessionConfig struct {
	Store string `env:"SESSION_STORE, default=bolt"`
	File  string `env:"SESSION_FILE,  default=backoffice.db"`
}

type RedisConfig struct {
	Addr   string `env:"REDIS_ADDR,   default=localhost:6379"`
	DB     int    `env:"REDIS_DB,     default=0"`
	Prefix string `env:"REDIS_PREFIX, default=backoffice:"`
}

// DevBackendConfig configures the development REST backend.
type DevBackendConfig struct {
	Port          string        `env:"DEV_PORT,           default=8080"`
	SessionSecret string        `env:"DEV_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"DEV_SESSION_TTL,    default=1h"`
	ExpiryWarning time.Duration `env:"DEV_EXPIRY_WARNING, default=5m"`
	UserStore     string        `env:"DEV_USER_STORE,     default=memory"`
	// SeedUsers is a comma separated list of username:password:role[:merchantId].
	SeedUsers []string `env:"DEV_SEED_USERS"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=backoffice"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	return LoadWith(context.Background(), envconfig.OsLookuper())
}

// LoadWith reads configuration from l. Tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case StoreBolt, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("config: SESSION_STORE must be one of bolt, redis, memory; got %q", c.Session.Store)
	}
	switch c.Dev.UserStore {
	case "memory", "mongo":
	default:
		return fmt.Errorf("config: DEV_USER_STORE must be memory or mongo; got %q", c.Dev.UserStore)
	}
	if c.Backend.VerifyInterval <= 0 {
		return fmt.Errorf("config: VERIFY_INTERVAL must be positive")
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
