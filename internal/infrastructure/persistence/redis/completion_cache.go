package redis

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETION CACHE
// ══════════════════════════════════════════════════════════════════════════════

// completionTTL bounds staleness of the cached flag; the durable store stays
// authoritative.
const completionTTL = 24 * time.Hour

// CompletionCache is a read-through cache over a durable
// profile.CompletionStore. The flag is checked on every page load to decide
// whether to show the wizard, so it must not hit PostgreSQL each time.
type CompletionCache struct {
	cache   *Cache
	durable profile.CompletionStore
	logger  *zap.Logger
}

// NewCompletionCache wraps the durable store with a Redis fast path.
func NewCompletionCache(cache *Cache, durable profile.CompletionStore, logger *zap.Logger) *CompletionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionCache{cache: cache, durable: durable, logger: logger}
}

var _ profile.CompletionStore = (*CompletionCache)(nil)

// IsComplete checks the cache first, falling back to the durable store and
// backfilling on a miss. Cache errors degrade to the durable store.
func (c *CompletionCache) IsComplete(ctx context.Context, userID string) (bool, error) {
	val, err := c.cache.GetString(ctx, OnboardingKey(userID))
	if err == nil {
		return val == "1", nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("completion cache read failed", zap.Error(err))
	}

	complete, err := c.durable.IsComplete(ctx, userID)
	if err != nil {
		return false, err
	}

	flag := "0"
	if complete {
		flag = "1"
	}
	if cacheErr := c.cache.SetString(ctx, OnboardingKey(userID), flag, completionTTL); cacheErr != nil {
		c.logger.Warn("completion cache backfill failed", zap.Error(cacheErr))
	}
	return complete, nil
}

// MarkComplete writes through: durable first, then cache. A cache failure
// after a durable write is logged, not surfaced.
func (c *CompletionCache) MarkComplete(ctx context.Context, userID string) error {
	if err := c.durable.MarkComplete(ctx, userID); err != nil {
		return err
	}
	if err := c.cache.SetString(ctx, OnboardingKey(userID), "1", completionTTL); err != nil {
		c.logger.Warn("completion cache write failed", zap.Error(err))
	}
	return nil
}

// Reset clears the flag in both layers.
func (c *CompletionCache) Reset(ctx context.Context, userID string) error {
	if err := c.durable.Reset(ctx, userID); err != nil {
		return err
	}
	if err := c.cache.Delete(ctx, OnboardingKey(userID)); err != nil {
		c.logger.Warn("completion cache delete failed", zap.Error(err))
	}
	return nil
}
