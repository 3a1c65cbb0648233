package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Auth    AuthConfig
	Cache   CacheConfig
	Fixture FixtureConfig
	Mongo   MongoConfig
	Server  ServerConfig
}

type ServerConfig struct {
	Port                   int `env:"SERVER_PORT, default=8080"`
	ShutdownTimeoutSeconds int `env:"SERVER_SHUTDOWN_TIMEOUT_SECS, default=25"`

	// Request rates are per client IP over a one-minute window. The auth
	// limit applies to the signup/login routes only.
	RateLimitPerMinute     int `env:"SERVER_RATE_LIMIT_PER_MIN, default=100"`
	AuthRateLimitPerMinute int `env:"SERVER_AUTH_RATE_LIMIT_PER_MIN, default=15"`
}

type AuthConfig struct {
	// Secret is the process-wide HS256 signing secret. Tokens verify only
	// against the process(es) sharing this value.
	Secret string `env:"JWT_SECRET, required"`

	TokenExpirySeconds int `env:"JWT_EXPIRY_SECS, default=3600"`
}

// CacheConfig specifies cache configuration.
type CacheConfig struct {
	// Type selects the cache implementation: "memory" (default) or "valkey"
	Type string `env:"CACHE_TYPE, default=memory"`

	// MaxEntries bounds the in-memory cache size. Ignored for valkey.
	MaxEntries int `env:"CACHE_MAX_ENTRIES, default=10000"`

	// Valkey holds distributed cache settings.
	Valkey ValkeyConfig
}

// ValkeyConfig specifies distributed cache configuration.
type ValkeyConfig struct {
	// Address is the Valkey server address (host:port).
	Address string `env:"VALKEY_ADDRESS"`

	// TLS enables TLS connection to Valkey. Defaults to true so the secure
	// option is the default.
	TLS bool `env:"VALKEY_TLS, default=true"`

	// Username for Valkey authentication.
	Username string `env:"VALKEY_USERNAME"`

	// Password for Valkey authentication.
	Password string `env:"VALKEY_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://127.0.0.1:27017"`
	Database string `env:"MONGO_DATABASE, default=matchday"`
}

type FixtureConfig struct {
	// LinkBase is the prefix for generated fixture share links.
	LinkBase string `env:"FIXTURE_LINK_BASE, default=https://matchday.example.com/fixtures"`
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.Cache.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid cache configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the cache configuration is valid.
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "memory":
	case "valkey":
		if c.Valkey.Address == "" {
			return fmt.Errorf("VALKEY_ADDRESS required when CACHE_TYPE=valkey")
		}
	default:
		return fmt.Errorf("invalid cache type %q: must be either \"memory\" or \"valkey\"", c.Type)
	}

	return nil
}
