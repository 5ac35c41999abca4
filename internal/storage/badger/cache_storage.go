package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/locus/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// CacheStorage implements the CacheStorage interface for Badger
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CacheStorage {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a cached payload by key. Expired entries are treated as
// misses and removed lazily.
func (s *CacheStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var entry interfaces.CachedResponse
	err := s.db.Store().Get(key, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if entry.Expired(time.Now()) {
		if err := s.db.Store().Delete(key, &interfaces.CachedResponse{}); err != nil && err != badgerhold.ErrNotFound {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete expired cache entry")
		}
		return nil, interfaces.ErrCacheMiss
	}

	return entry.Payload, nil
}

// Set inserts or updates a cached payload with the given lifetime
func (s *CacheStorage) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := time.Now()
	entry := interfaces.CachedResponse{
		Key:       key,
		Payload:   payload,
		CreatedAt: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	if err := s.db.Store().Upsert(key, &entry); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	return nil
}

// Delete removes a single cache entry. Absent keys are not an error.
func (s *CacheStorage) Delete(ctx context.Context, key string) error {
	err := s.db.Store().Delete(key, &interfaces.CachedResponse{})
	if err == badgerhold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix
func (s *CacheStorage) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	var entries []interfaces.CachedResponse
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return 0, fmt.Errorf("failed to list cache entries for deletion: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Key, prefix) {
			continue
		}
		if err := s.db.Store().Delete(entry.Key, &interfaces.CachedResponse{}); err != nil {
			s.logger.Warn().Str("key", entry.Key).Err(err).Msg("Failed to delete cache entry during prefix deletion")
			continue
		}
		deleted++
	}

	s.logger.Debug().Str("prefix", prefix).Int("count", deleted).Msg("Deleted cache entries by prefix")
	return deleted, nil
}

// PurgeExpired removes all expired entries
func (s *CacheStorage) PurgeExpired(ctx context.Context) (int, error) {
	var entries []interfaces.CachedResponse
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return 0, fmt.Errorf("failed to list cache entries for purge: %w", err)
	}

	now := time.Now()
	purged := 0
	for _, entry := range entries {
		if !entry.Expired(now) {
			continue
		}
		if err := s.db.Store().Delete(entry.Key, &interfaces.CachedResponse{}); err != nil {
			s.logger.Warn().Str("key", entry.Key).Err(err).Msg("Failed to delete expired cache entry during purge")
			continue
		}
		purged++
	}

	if purged > 0 {
		s.logger.Info().Int("count", purged).Msg("Purged expired cache entries")
	}
	return purged, nil
}
