package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Server.ShutdownTimeoutSeconds)
	assert.Equal(t, 100, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, 15, cfg.Server.AuthRateLimitPerMinute)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.Equal(t, 3600, cfg.Auth.TokenExpirySeconds)
	assert.Equal(t, "mongodb://127.0.0.1:27017", cfg.Mongo.URI)
	assert.Equal(t, "matchday", cfg.Mongo.Database)
}

func TestLoad_SecretRequired(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(nil))
	assert.Error(t, err)
}

func TestLoad_ValkeyRequiresAddress(t *testing.T) {
	lookup := envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "test-secret",
		"CACHE_TYPE": "valkey",
	})

	_, err := load(context.Background(), lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALKEY_ADDRESS")
}

func TestLoad_ValkeyConfig(t *testing.T) {
	lookup := envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      "test-secret",
		"CACHE_TYPE":      "valkey",
		"VALKEY_ADDRESS":  "localhost:6379",
		"VALKEY_USERNAME": "default",
		"VALKEY_PASSWORD": "hunter2",
	})

	cfg, err := load(context.Background(), lookup)
	require.NoError(t, err)

	expected := ValkeyConfig{
		Address:  "localhost:6379",
		TLS:      true, // default
		Username: "default",
		Password: "hunter2",
	}
	assert.Equal(t, expected, cfg.Cache.Valkey)
}

func TestLoad_InvalidCacheType(t *testing.T) {
	lookup := envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "test-secret",
		"CACHE_TYPE": "memcached",
	})

	_, err := load(context.Background(), lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache type")
}
