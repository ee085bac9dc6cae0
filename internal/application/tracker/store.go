// Package tracker implements the application portfolio store and its view
// queries: the local read-mostly copy of the backend's application records,
// refreshed atomically and filtered per tab for display.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/application"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/persistence/redis"
	"github.com/scholarstream/scholarstream-core/internal/observability"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotDraft is returned when deletion is requested for an application
	// that already left draft. The guard is local: no backend call is made.
	ErrNotDraft = errors.New("tracker: only draft applications can be deleted")

	// ErrUnknownApplication is returned when the application is not in the
	// local collection.
	ErrUnknownApplication = errors.New("tracker: application not found")

	// ErrNeverLoaded is returned by queries before the first load settles.
	ErrNeverLoaded = errors.New("tracker: portfolio has not been loaded")
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// PortfolioClient is the port to the backend of record.
type PortfolioClient interface {
	// GetUserApplications returns the full collection and the backend's
	// precomputed stats.
	GetUserApplications(ctx context.Context, userID string) ([]application.Record, application.PortfolioStats, error)

	// DeleteApplication asks the backend to delete a draft. An error means
	// no acknowledgement; the record must stay.
	DeleteApplication(ctx context.Context, applicationID string) error
}

// Store holds the local application collection. A load replaces the whole
// collection atomically under the lock; a failed load keeps whatever was
// displayed before. Stats are always derived locally by folding over the
// collection, so counts and totals can never disagree with the list.
type Store struct {
	mu       sync.RWMutex
	records  []application.Record
	loadedAt time.Time
	loaded   bool

	session   *shared.Session
	client    PortfolioClient
	cache     *redis.PortfolioCache
	publisher shared.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// Options configures a Store.
type Options struct {
	// Session is the resolved auth context.
	Session *shared.Session

	// Client is the backend port.
	Client PortfolioClient

	// Cache keeps the last successful snapshot; optional.
	Cache *redis.PortfolioCache

	// Publisher receives portfolio events; optional.
	Publisher shared.EventPublisher

	// Metrics receives counters; optional.
	Metrics *observability.Metrics

	// Logger for structured logging; optional.
	Logger *zap.Logger
}

// NewStore creates an empty store. Call Load before querying.
func NewStore(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		session:   opts.Session,
		client:    opts.Client,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Load
// ─────────────────────────────────────────────────────────────────────────────

// Load fetches the full collection from the backend and replaces the local
// one atomically. Concurrent loads are safe: each completed load replaces
// wholesale, so the collection always reflects exactly one completed load
// (the last to finish). On failure the previous collection stays displayed
// and the error is returned for the caller's advisory.
func (s *Store) Load(ctx context.Context) error {
	uid, err := s.session.UserID()
	if err != nil {
		return err
	}
	userID := uid.String()

	start := time.Now()
	records, backendStats, err := s.client.GetUserApplications(ctx, userID)
	if err != nil {
		s.countLoad(observability.OutcomeError)
		s.publish(shared.NewBaseEvent(shared.EventPortfolioLoadFailed, userID))
		s.logger.Error("portfolio load failed, keeping previous collection",
			zap.String("user_id", userID),
			zap.Error(err))

		if !s.hasLoaded() {
			// Nothing on screen yet; fall back to the cached snapshot so the
			// tracker is not empty during a backend outage.
			if s.restoreFromCache(ctx, userID) {
				s.countLoad(observability.OutcomeCached)
				return nil
			}
		}
		return fmt.Errorf("tracker: load: %w", err)
	}

	s.replace(records)
	s.countLoad(observability.OutcomeOK)
	if s.metrics != nil {
		s.metrics.PortfolioLoadDuration.Observe(time.Since(start).Seconds())
	}

	s.reconcileStats(userID, backendStats)
	s.storeToCache(ctx, userID, records, backendStats)

	s.publish(shared.NewPortfolioRefreshedEvent(userID, len(records)))
	s.logger.Info("portfolio loaded",
		zap.String("user_id", userID),
		zap.Int("records", len(records)))
	return nil
}

// replace swaps the collection wholesale.
func (s *Store) replace(records []application.Record) {
	copied := append([]application.Record(nil), records...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = copied
	s.loadedAt = time.Now().UTC()
	s.loaded = true
}

// reconcileStats compares the backend's precomputed stats against the local
// fold. The fold is what gets displayed either way; a divergence is a
// contract drift worth a warning.
func (s *Store) reconcileStats(userID string, backendStats application.PortfolioStats) {
	local := s.Stats()
	if !local.Equal(backendStats) {
		s.logger.Warn("backend stats diverge from local fold",
			zap.String("user_id", userID),
			zap.Any("backend", backendStats),
			zap.Any("local", local))
	}
}

// restoreFromCache loads the last cached snapshot. Reports whether anything
// was restored.
func (s *Store) restoreFromCache(ctx context.Context, userID string) bool {
	if s.cache == nil {
		return false
	}
	snapshot, err := s.cache.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("portfolio cache read failed", zap.Error(err))
		}
		return false
	}

	s.replace(snapshot.Records)
	s.logger.Info("portfolio restored from cache",
		zap.String("user_id", userID),
		zap.Time("cached_at", snapshot.LoadedAt))
	return true
}

func (s *Store) storeToCache(ctx context.Context, userID string, records []application.Record, stats application.PortfolioStats) {
	if s.cache == nil {
		return
	}
	err := s.cache.Put(ctx, userID, &redis.PortfolioSnapshot{
		Records:  records,
		Stats:    stats,
		LoadedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("portfolio cache write failed", zap.Error(err))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────────────────────

// Delete removes a draft application. Non-draft records are rejected locally
// without a backend call. For drafts the backend is asked first and the local
// record is removed only after its acknowledgement, so the list can never
// show a deletion the backend did not perform.
func (s *Store) Delete(ctx context.Context, applicationID string) error {
	uid, err := s.session.UserID()
	if err != nil {
		return err
	}
	userID := uid.String()

	record, ok := s.find(applicationID)
	if !ok {
		return ErrUnknownApplication
	}
	if !record.IsDraft() {
		s.countDelete(observability.OutcomeRejected)
		return fmt.Errorf("%w: %s is %s", ErrNotDraft, applicationID, record.Status)
	}

	if err := s.client.DeleteApplication(ctx, applicationID); err != nil {
		s.countDelete(observability.OutcomeError)
		return fmt.Errorf("tracker: delete: %w", err)
	}

	s.remove(applicationID)
	s.countDelete(observability.OutcomeOK)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.logger.Warn("portfolio cache invalidation failed", zap.Error(err))
		}
	}

	s.publish(shared.NewApplicationDeletedEvent(userID, applicationID))
	s.logger.Info("application deleted",
		zap.String("user_id", userID),
		zap.String("application_id", applicationID))
	return nil
}

func (s *Store) find(applicationID string) (application.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ApplicationID == applicationID {
			return r, true
		}
	}
	return application.Record{}, false
}

func (s *Store) remove(applicationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.ApplicationID != applicationID {
			kept = append(kept, r)
		}
	}
	s.records = kept
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// Records returns a copy of the full collection in backend order.
func (s *Store) Records() []application.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]application.Record(nil), s.records...)
}

// Loaded reports whether at least one load has completed.
func (s *Store) Loaded() bool {
	return s.hasLoaded()
}

// LoadedAt returns when the displayed collection was loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Stats folds the current collection into portfolio totals. It is always
// derived from the same collection the list renders from.
func (s *Store) Stats() application.PortfolioStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return application.DeriveStats(s.records)
}

// Tab returns the records visible under the tab, preserving backend order.
func (s *Store) Tab(tab application.Tab) []application.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return application.FilterTab(s.records, tab)
}

// TabCounts returns per-tab counts over the same collection the tabs render.
func (s *Store) TabCounts() map[application.Tab]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return application.TabCounts(s.records)
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) hasLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) publish(event shared.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Warn("failed to publish event", zap.Error(err))
	}
}

func (s *Store) countLoad(outcome string) {
	if s.metrics != nil {
		s.metrics.PortfolioLoads.WithLabelValues(outcome).Inc()
	}
}

func (s *Store) countDelete(outcome string) {
	if s.metrics != nil {
		s.metrics.ApplicationDeletes.WithLabelValues(outcome).Inc()
	}
}
