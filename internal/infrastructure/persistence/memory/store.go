// Package memory provides in-memory implementations of the persistence
// ports. They back local development without PostgreSQL and the test suites.
package memory

import (
	"context"
	"sync"

	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT STORE
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotStore keeps onboarding snapshots in a map.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]profile.Snapshot
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]profile.Snapshot)}
}

var _ profile.SnapshotStore = (*SnapshotStore)(nil)

// Load returns the snapshot for the session, or profile.ErrSnapshotNotFound.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (*profile.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[sessionID]
	if !ok {
		return nil, profile.ErrSnapshotNotFound
	}
	snapshot.Draft = *snapshot.Draft.Clone()
	return &snapshot, nil
}

// Save persists the snapshot, replacing any previous one for the session.
func (s *SnapshotStore) Save(ctx context.Context, snapshot *profile.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *snapshot
	stored.Draft = *snapshot.Draft.Clone()
	s.snapshots[snapshot.SessionID] = stored
	return nil
}

// Clear removes the snapshot for the session.
func (s *SnapshotStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, sessionID)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETION STORE
// ══════════════════════════════════════════════════════════════════════════════

// CompletionStore keeps per-user completion flags in a map.
type CompletionStore struct {
	mu       sync.RWMutex
	complete map[string]bool
}

// NewCompletionStore creates an empty store.
func NewCompletionStore() *CompletionStore {
	return &CompletionStore{complete: make(map[string]bool)}
}

var _ profile.CompletionStore = (*CompletionStore)(nil)

// IsComplete reports whether the user has finished onboarding.
func (s *CompletionStore) IsComplete(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.complete[userID], nil
}

// MarkComplete records the completion flag for the user.
func (s *CompletionStore) MarkComplete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete[userID] = true
	return nil
}

// Reset clears the completion flag.
func (s *CompletionStore) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.complete, userID)
	return nil
}
