package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration loaded from the environment.
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Addr string `env:"HTTP_ADDR" envDefault:":9000"`
	}

	Siwe struct {
		// Domain is the host challenges must be bound to.
		Domain string `env:"SIWE_DOMAIN" envDefault:"localhost:3000"`
		// ChainID is the network wallets are expected to sign from.
		ChainID int64 `env:"SIWE_CHAIN_ID" envDefault:"5042002"`
		// IdentityDomain namespaces address-derived login keys.
		IdentityDomain string `env:"IDENTITY_DOMAIN" envDefault:"wallet.intent.app"`
	}

	Tokens struct {
		AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"5m"`
		RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"120h"`
		// SigningKeyPEM is an optional PEM-encoded P-256 key; when empty an
		// ephemeral key is generated and sessions do not survive restarts.
		SigningKeyPEM string `env:"TOKEN_SIGNING_KEY"`
	}

	RateLimit struct {
		MaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"10"`
		Window      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	}

	// RedisURL enables the shared store, identity store, rate limiter and
	// event stream; empty falls back to in-process implementations.
	RedisURL string `env:"REDIS_URL"`
}

// Load reads the environment into a Config. A missing .env file is not an
// error; production sets variables directly.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
