package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ferretex"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	// Env var names shared with tests and deploy manifests.
	EnvAppEnv          = "FERRETEX_APP_ENV"
	EnvLogLevel        = "FERRETEX_LOG_LEVEL"
	EnvAPIBaseURL      = "FERRETEX_API_BASE_URL"
	EnvSnapshotBackend = "FERRETEX_SNAPSHOT_BACKEND"
	EnvSnapshotPath    = "FERRETEX_SNAPSHOT_PATH"
	EnvRedisURL        = "FERRETEX_REDIS_URL"
	EnvSyncInterval    = "FERRETEX_SYNC_POLL_INTERVAL"
)

const (
	SnapshotBackendFile  = "file"
	SnapshotBackendRedis = "redis"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Snapshot SnapshotConfig
	Redis    RedisConfig
	Sync     SyncConfig
}

// Load reads the full configuration from the environment and validates the
// pieces envconfig cannot express.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Snapshot.validate(&cfg.Redis); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"FERRETEX_APP_ENV" default:"development"`
	LogLevel string `envconfig:"FERRETEX_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the Ferretex backend.
type APIConfig struct {
	BaseURL   string        `envconfig:"FERRETEX_API_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"FERRETEX_API_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"FERRETEX_API_USER_AGENT" default:"ferretex-storefront/1.0"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimRight(a.BaseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api base url %q is not an absolute url", a.BaseURL)
	}
	return nil
}

// SnapshotConfig selects where the persisted state blob lives.
type SnapshotConfig struct {
	Backend   string `envconfig:"FERRETEX_SNAPSHOT_BACKEND" default:"file"`
	Path      string `envconfig:"FERRETEX_SNAPSHOT_PATH"`
	Namespace string `envconfig:"FERRETEX_SNAPSHOT_NAMESPACE" default:"ferretex:v1"`
}

func (s SnapshotConfig) validate(redis *RedisConfig) error {
	switch s.Backend {
	case SnapshotBackendFile:
		return nil
	case SnapshotBackendRedis:
		if redis.URL == "" && redis.Address == "" {
			return errors.New("redis snapshot backend requires a redis url or address")
		}
		return nil
	default:
		return fmt.Errorf("unknown snapshot backend %q", s.Backend)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"FERRETEX_REDIS_URL"`
	Address      string        `envconfig:"FERRETEX_REDIS_ADDR"`
	Password     string        `envconfig:"FERRETEX_REDIS_PASSWORD"`
	DB           int           `envconfig:"FERRETEX_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"FERRETEX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FERRETEX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FERRETEX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SyncConfig tunes the polling synchronizer. The interval is deliberately a
// knob rather than a constant.
type SyncConfig struct {
	PollInterval time.Duration `envconfig:"FERRETEX_SYNC_POLL_INTERVAL" default:"5s"`
	Products     bool          `envconfig:"FERRETEX_SYNC_PRODUCTS" default:"true"`
	Orders       bool          `envconfig:"FERRETEX_SYNC_ORDERS" default:"true"`
}
