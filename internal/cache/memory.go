package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
)

type memoryEntry struct {
	value string
	ttl   time.Duration
}

// Memory is an in-process cache implementation using otter. It is the
// development fallback for installations that don't run a Valkey server;
// entries are not shared between processes.
type Memory struct {
	cache *otter.Cache[string, memoryEntry]
}

// NewMemory creates a new in-memory cache bounded to maxSize entries.
func NewMemory(maxSize int) (*Memory, error) {
	cache := otter.Must(&otter.Options[string, memoryEntry]{
		MaximumSize: maxSize,
		ExpiryCalculator: otter.ExpiryCreatingFunc(func(e otter.Entry[string, memoryEntry]) time.Duration {
			return e.Value.ttl
		}),
	})

	return &Memory{cache: cache}, nil
}

// Get retrieves a value from the cache.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	entry, ok := m.cache.GetEntry(key)
	if !ok {
		return "", false, nil
	}

	return entry.Value.value, true, nil
}

// Set stores a value in the cache with the given TTL.
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.cache.Set(key, memoryEntry{value: value, ttl: ttl})
	return nil
}

// Del removes a value from the cache.
func (m *Memory) Del(ctx context.Context, key string) error {
	m.cache.Invalidate(key)
	return nil
}

// Close is a no-op for the in-memory cache.
func (m *Memory) Close() error {
	return nil
}
