package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Auth modes.
const (
	AuthModeOIDC = "oidc"
	AuthModeHS   = "hs256"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth       AuthConfig
	Identity   IdentityConfig
	Invitation InvitationConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

type AuthConfig struct {
	// Mode selects the token verifier: "oidc" validates against the
	// identity provider's JWKS, "hs256" uses a shared secret (dev only).
	Mode      string `env:"AUTH_MODE,      default=oidc"`
	IssuerURL string `env:"AUTH_ISSUER_URL"`
	ClientID  string `env:"AUTH_CLIENT_ID"`
	HSSecret  string `env:"AUTH_HS_SECRET"`
}

type IdentityConfig struct {
	AdminURL   string        `env:"IDP_ADMIN_URL"`
	AdminToken string        `env:"IDP_ADMIN_TOKEN"`
	Timeout    time.Duration `env:"IDP_TIMEOUT, default=8s"`
}

type InvitationConfig struct {
	ExpiryDays       int    `env:"INVITATION_EXPIRY_DAYS,    default=7"`
	CredentialLength int    `env:"INVITATION_CREDENTIAL_LEN, default=12"`
	SweepSchedule    string `env:"INVITATION_SWEEP_SCHEDULE, default=@every 10m"`
	DeliveryWorkers  int    `env:"INVITATION_WORKERS,        default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tenant_engine"`
	// Timeout bounds every storage operation, not just the initial
	// connect. A slow primary surfaces as a retryable 503 instead of a
	// hung request.
	Timeout time.Duration `env:"MONGO_TIMEOUT, default=5s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,       default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,         default=0"`
	CacheTTL time.Duration `env:"TENANT_CACHE_TTL, default=30s"`
	// Timeout bounds individual cache operations. The cache is
	// best-effort, so a slow Redis degrades to repository reads instead
	// of stalling the request.
	Timeout time.Duration `env:"REDIS_TIMEOUT, default=2s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Auth.Mode {
	case AuthModeOIDC:
		if c.Auth.IssuerURL == "" || c.Auth.ClientID == "" {
			return fmt.Errorf("auth mode %q requires AUTH_ISSUER_URL and AUTH_CLIENT_ID", c.Auth.Mode)
		}
	case AuthModeHS:
		if c.Auth.HSSecret == "" {
			return fmt.Errorf("auth mode %q requires AUTH_HS_SECRET", c.Auth.Mode)
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}
	return nil
}
