// Package cache provides the key-value store used for response and query
// caching. Callers must treat every failure from a Store as a cache miss
// and fall through to the source of truth: the cache is best-effort and
// must never fail a request.
package cache

import (
	"context"
	"time"
)

// Store is a string-payload cache with per-entry expiry. Concurrent writers
// to the same key race with last-write-wins semantics; no atomicity is
// guaranteed or required.
type Store interface {
	// Get retrieves a value from the cache.
	// Returns the value, whether it was found, and any error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value in the cache with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes a value from the cache.
	Del(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
