package common

import (
	"context"
	"time"
)

// CacheInterface defines the contract for the shared key/value cache
// (revoked sessions live here).
type CacheInterface interface {
	// Set stores a value with the given key and time to live
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Get retrieves a value by key. Returns false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes a key
	Delete(ctx context.Context, key string) error

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
