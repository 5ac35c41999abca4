// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key does not exist or its entry has expired
var ErrCacheMiss = errors.New("cache miss")

// CachedResponse is a stored API response payload with its lifetime metadata
type CachedResponse struct {
	Key       string `badgerhold:"key"`
	Payload   []byte
	CreatedAt time.Time
	ExpiresAt time.Time // Zero value means the entry never expires
}

// Expired reports whether the entry's lifetime has elapsed at the given time
func (c *CachedResponse) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// CacheStorage defines the key-value boundary used for response caching.
// Keys are opaque strings; callers namespace them with a prefix so that
// DeleteByPrefix can clear one client's entries without touching others.
type CacheStorage interface {
	// Get returns the stored payload, or ErrCacheMiss when the key is
	// absent or the entry has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a payload under key with the given lifetime.
	// A non-positive ttl stores the entry without an expiration.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Delete removes exactly one entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every entry whose key starts with prefix and
	// returns the number of entries removed.
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)

	// PurgeExpired removes all expired entries and returns the number removed.
	PurgeExpired(ctx context.Context) (int, error)
}
