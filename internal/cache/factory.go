package cache

import (
	"crypto/tls"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"

	"github.com/matchday/matchday-api/internal/config"
)

// NewFromConfig creates a cache implementation based on the provided
// configuration. The cache type must be either "memory" or "valkey"; any
// other value returns an error.
func NewFromConfig(cacheConfig config.CacheConfig) (Store, error) {
	switch cacheConfig.Type {
	case "valkey":
		log.Info().
			Str("cache_type", "valkey").
			Str("address", cacheConfig.Valkey.Address).
			Bool("tls", cacheConfig.Valkey.TLS).
			Msg("initializing distributed cache")

		if cacheConfig.Valkey.Address == "" {
			return nil, fmt.Errorf("valkey address is required when cache type is valkey")
		}

		valkeyOpts := valkey.ClientOption{
			InitAddress: []string{cacheConfig.Valkey.Address},
			Username:    cacheConfig.Valkey.Username,
			Password:    cacheConfig.Valkey.Password,
		}

		if cacheConfig.Valkey.TLS {
			valkeyOpts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		valkeyClient, err := valkey.NewClient(valkeyOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create valkey client: %w", err)
		}

		return NewDistributed(valkeyClient), nil

	case "memory":
		log.Info().
			Str("cache_type", "memory").
			Msg("initializing in-memory cache")

		memory, err := NewMemory(cacheConfig.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}

		return memory, nil

	default:
		return nil, fmt.Errorf("invalid cache type %q: must be either \"memory\" or \"valkey\"", cacheConfig.Type)
	}
}
