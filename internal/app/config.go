package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// PersistBackend selects where state slots live: "redis" or "postgres".
	PersistBackend string `envconfig:"PERSIST_BACKEND" default:"redis"`
	PGDSN          string `envconfig:"PG_DSN"`
	StatePrefix    string `envconfig:"STATE_PREFIX" default:"starlink"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	AdminEmail        string `envconfig:"ADMIN_EMAIL" default:"admin@starlink.com"`
	AdminPassword     string `envconfig:"ADMIN_PASSWORD"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	AllowNegativeStock bool `envconfig:"ALLOW_NEGATIVE_STOCK" default:"false"`

	SMTPHost       string `envconfig:"SMTP_HOST" default:"127.0.0.1"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPFrom       string `envconfig:"SMTP_FROM" default:"no-reply@starlink.local"`
	AlertRecipient string `envconfig:"ALERT_RECIPIENT"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.PersistBackend == "postgres" && cfg.PGDSN == "" {
		return nil, errors.New("postgres persistence requires PG_DSN")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, errors.New("admin password or password hash must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
