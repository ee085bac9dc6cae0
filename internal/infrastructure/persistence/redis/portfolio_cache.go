package redis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/application"
)

// ══════════════════════════════════════════════════════════════════════════════
// PORTFOLIO CACHE
// ══════════════════════════════════════════════════════════════════════════════

// PortfolioSnapshot is the cached form of a completed portfolio load: the
// backend's collection plus its precomputed stats, stamped with load time.
type PortfolioSnapshot struct {
	Records  []application.Record       `json:"records"`
	Stats    application.PortfolioStats `json:"stats"`
	LoadedAt time.Time                  `json:"loaded_at"`
}

// PortfolioCache keeps the last successful portfolio load per user so a
// failed refresh can keep showing data instead of an empty tracker.
type PortfolioCache struct {
	cache  *Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewPortfolioCache creates a new portfolio cache with the given TTL.
func NewPortfolioCache(cache *Cache, ttl time.Duration, logger *zap.Logger) *PortfolioCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioCache{cache: cache, ttl: ttl, logger: logger}
}

// Get returns the cached snapshot for the user, or ErrCacheMiss.
func (p *PortfolioCache) Get(ctx context.Context, userID string) (*PortfolioSnapshot, error) {
	var snapshot PortfolioSnapshot
	if err := p.cache.Get(ctx, PortfolioKey(userID), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Put stores the snapshot for the user.
func (p *PortfolioCache) Put(ctx context.Context, userID string, snapshot *PortfolioSnapshot) error {
	if err := p.cache.Set(ctx, PortfolioKey(userID), snapshot, p.ttl); err != nil {
		return err
	}
	p.logger.Debug("portfolio snapshot cached",
		zap.String("user_id", userID),
		zap.Int("records", len(snapshot.Records)))
	return nil
}

// Invalidate drops the cached snapshot for the user.
func (p *PortfolioCache) Invalidate(ctx context.Context, userID string) error {
	return p.cache.Delete(ctx, PortfolioKey(userID))
}
