package profile

import (
	"context"
	"errors"
	"time"
)

// ErrSnapshotNotFound is returned when no persisted snapshot exists for the
// session, which a fresh onboarding treats as "start from step zero".
var ErrSnapshotNotFound = errors.New("profile: snapshot not found")

// Snapshot is the durable resumability record: the full draft plus the wizard
// cursor, keyed to the onboarding session. It is written after every
// successful advance and cleared on terminal submission or abandonment.
type Snapshot struct {
	SessionID string       `json:"session_id"`
	UserID    string       `json:"user_id"`
	Draft     ProfileDraft `json:"draft"`
	State     WizardState  `json:"state"`
	SavedAt   time.Time    `json:"saved_at"`
}

// SnapshotStore is the persisted-state port the wizard controller depends on.
// The save in Advance happens-before the new state is returned, so a crash
// between persist and render cannot lose data already entered.
type SnapshotStore interface {
	// Load returns the snapshot for the session, or ErrSnapshotNotFound.
	Load(ctx context.Context, sessionID string) (*Snapshot, error)

	// Save persists the snapshot, replacing any previous one for the session.
	Save(ctx context.Context, snapshot *Snapshot) error

	// Clear removes the snapshot for the session.
	Clear(ctx context.Context, sessionID string) error
}

// CompletionStore persists the durable "onboarding complete" flag per user.
// The flag is set on terminal submission (even when discovery degrades) and
// cleared on sign-out and at account creation.
type CompletionStore interface {
	IsComplete(ctx context.Context, userID string) (bool, error)
	MarkComplete(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
}
