package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// ONBOARDING SESSION STORE
// ══════════════════════════════════════════════════════════════════════════════

// SessionStore persists onboarding wizard snapshots. It implements both
// profile.SnapshotStore and profile.CompletionStore.
type SessionStore struct {
	conn   *Connection
	logger *zap.Logger
}

// NewSessionStore creates a new session store.
func NewSessionStore(conn *Connection, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{conn: conn, logger: logger}
}

var _ profile.SnapshotStore = (*SessionStore)(nil)
var _ profile.CompletionStore = (*SessionStore)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// SnapshotStore
// ─────────────────────────────────────────────────────────────────────────────

// Load returns the snapshot for the session, or profile.ErrSnapshotNotFound.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*profile.Snapshot, error) {
	const query = `
		SELECT session_id, user_id, draft, step, step_valid, saved_at
		FROM onboarding_sessions
		WHERE session_id = $1
	`

	var (
		snapshot  profile.Snapshot
		draftJSON []byte
		validJSON []byte
		step      int16
	)

	err := s.conn.QueryRow(ctx, query, sessionID).Scan(
		&snapshot.SessionID,
		&snapshot.UserID,
		&draftJSON,
		&step,
		&validJSON,
		&snapshot.SavedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, profile.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load onboarding session: %w", err)
	}

	if err := json.Unmarshal(draftJSON, &snapshot.Draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	var valid []bool
	if err := json.Unmarshal(validJSON, &valid); err != nil {
		return nil, fmt.Errorf("unmarshal step validity: %w", err)
	}

	snapshot.State = profile.NewWizardState()
	snapshot.State.Step = profile.StepIndex(step)
	for i := 0; i < len(valid) && i < profile.StepCount; i++ {
		snapshot.State.Valid[i] = valid[i]
	}

	return &snapshot, nil
}

// Save upserts the snapshot for its session.
func (s *SessionStore) Save(ctx context.Context, snapshot *profile.Snapshot) error {
	if snapshot == nil {
		return errors.New("postgres: nil snapshot")
	}

	draftJSON, err := json.Marshal(snapshot.Draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	validJSON, err := json.Marshal(snapshot.State.Valid[:])
	if err != nil {
		return fmt.Errorf("marshal step validity: %w", err)
	}

	savedAt := snapshot.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO onboarding_sessions (session_id, user_id, draft, step, step_valid, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			draft = EXCLUDED.draft,
			step = EXCLUDED.step,
			step_valid = EXCLUDED.step_valid,
			saved_at = EXCLUDED.saved_at
	`

	_, err = s.conn.Exec(ctx, query,
		snapshot.SessionID,
		snapshot.UserID,
		draftJSON,
		int16(snapshot.State.Step),
		validJSON,
		savedAt,
	)
	if err != nil {
		return fmt.Errorf("save onboarding session: %w", err)
	}

	s.logger.Debug("onboarding session saved",
		zap.String("session_id", snapshot.SessionID),
		zap.Int("step", int(snapshot.State.Step)))
	return nil
}

// Clear removes the snapshot for the session. Clearing a session that does
// not exist is not an error.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM onboarding_sessions WHERE session_id = $1`

	if _, err := s.conn.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("clear onboarding session: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CompletionStore
// ─────────────────────────────────────────────────────────────────────────────

// IsComplete reports whether the user has finished onboarding.
func (s *SessionStore) IsComplete(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM onboarding_completions WHERE user_id = $1)`

	var complete bool
	if err := s.conn.QueryRow(ctx, query, userID).Scan(&complete); err != nil {
		return false, fmt.Errorf("check onboarding completion: %w", err)
	}
	return complete, nil
}

// MarkComplete records the completion flag for the user. Idempotent.
func (s *SessionStore) MarkComplete(ctx context.Context, userID string) error {
	const query = `
		INSERT INTO onboarding_completions (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := s.conn.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("mark onboarding complete: %w", err)
	}
	return nil
}

// Reset clears the completion flag, re-arming the wizard for the user.
func (s *SessionStore) Reset(ctx context.Context, userID string) error {
	const query = `DELETE FROM onboarding_completions WHERE user_id = $1`

	if _, err := s.conn.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("reset onboarding completion: %w", err)
	}
	return nil
}
