package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Distributed implements Store backed by a Valkey server. Values are stored
// as-is; serialization is the caller's concern.
type Distributed struct {
	client valkey.Client
}

// NewDistributed creates a new Valkey-backed cache.
func NewDistributed(client valkey.Client) *Distributed {
	return &Distributed{client: client}
}

// Get retrieves a value from the cache.
// Returns the value, whether it was found, and any error.
func (d *Distributed) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := d.client.B().Get().Key(key).Build()
	result := d.client.Do(ctx, cmd)

	if err := result.Error(); err != nil {
		// Key not found is not an error in our semantics
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached value: %w", err)
	}

	value, err := result.ToString()
	if err != nil {
		return "", false, fmt.Errorf("failed to convert cached value to string: %w", err)
	}

	return value, true, nil
}

// Set stores a value in the cache with the given TTL.
func (d *Distributed) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	cmd := d.client.B().Set().Key(key).Value(value).ExSeconds(int64(ttl.Seconds())).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cached value: %w", err)
	}
	return nil
}

// Del removes a value from the cache.
func (d *Distributed) Del(ctx context.Context, key string) error {
	cmd := d.client.B().Del().Key(key).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete cached value: %w", err)
	}
	return nil
}

// Close releases resources associated with the cache client.
func (d *Distributed) Close() error {
	d.client.Close()
	return nil
}
