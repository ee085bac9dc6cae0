// Package wizard implements the onboarding flow: a six-step state machine
// over the profile draft, persisted after every accepted step so the flow
// survives reloads and sign-out.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
	"github.com/scholarstream/scholarstream-core/internal/observability"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS & PROMPTS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAlreadyComplete is returned when the wizard is started for a user
	// whose completion flag is set.
	ErrAlreadyComplete = errors.New("wizard: onboarding already complete")

	// ErrAtTerminalStep is returned when Advance or ConfirmAbandon is called
	// on the final step; the terminal transition goes through Submit instead.
	ErrAtTerminalStep = errors.New("wizard: already at final step")

	// ErrSubmitting is returned when a mutation arrives while the terminal
	// submission is in flight.
	ErrSubmitting = errors.New("wizard: submission in progress")
)

// ExitPrompt is the confirmation shown before the user leaves mid-flow. The
// copy reassures rather than warns: progress is already persisted.
type ExitPrompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Stay    string `json:"stay"`
	Leave   string `json:"leave"`
}

// exitPrompt is the fixed confirmation copy.
var exitPrompt = ExitPrompt{
	Title: "Your Progress is Saved",
	Message: "Don't worry! Your onboarding progress has been automatically saved. " +
		"You can come back anytime to complete your profile and start finding scholarships.",
	Stay:  "Stay & Continue",
	Leave: "Leave for Now",
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTROLLER
// ══════════════════════════════════════════════════════════════════════════════

// Submitter runs the terminal submission: the discovery request raced against
// the progress narrative. It reports whether the run degraded.
type Submitter interface {
	Run(ctx context.Context, userID string, draft *profile.ProfileDraft) (degraded bool, err error)
}

// Controller drives one onboarding session. It is the single writer of the
// draft: every mutation goes through Advance, Retreat, or ConfirmAbandon, and
// an accepted advance is persisted before the new state is returned.
type Controller struct {
	sessionID string
	session   *shared.Session

	draft *profile.ProfileDraft
	state profile.WizardState

	snapshots   profile.SnapshotStore
	completions profile.CompletionStore
	submitter   Submitter
	publisher   shared.EventPublisher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// Options configures a Controller.
type Options struct {
	// SessionID identifies the onboarding session; generated when empty.
	SessionID string

	// Session is the resolved auth context.
	Session *shared.Session

	// Snapshots persists the resumable state.
	Snapshots profile.SnapshotStore

	// Completions persists the per-user completion flag.
	Completions profile.CompletionStore

	// Submitter runs the terminal submission.
	Submitter Submitter

	// Publisher receives domain events; optional.
	Publisher shared.EventPublisher

	// Metrics receives counters; optional.
	Metrics *observability.Metrics

	// Logger for structured logging; optional.
	Logger *zap.Logger
}

// NewController creates a controller positioned at the first step with an
// empty draft. Call Resume to pick up a persisted session instead.
func NewController(opts Options) *Controller {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Controller{
		sessionID:   opts.SessionID,
		session:     opts.Session,
		draft:       profile.NewProfileDraft(),
		state:       profile.NewWizardState(),
		snapshots:   opts.Snapshots,
		completions: opts.Completions,
		submitter:   opts.Submitter,
		publisher:   opts.Publisher,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
	}
}

// SessionID returns the onboarding session identifier.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// State returns a copy of the current wizard state.
func (c *Controller) State() profile.WizardState {
	return c.state
}

// Draft returns a deep copy of the current draft. Callers cannot mutate the
// wizard's own copy through it.
func (c *Controller) Draft() *profile.ProfileDraft {
	return c.draft.Clone()
}

// ─────────────────────────────────────────────────────────────────────────────
// Start & resume
// ─────────────────────────────────────────────────────────────────────────────

// Start begins a fresh session. It refuses when the user's completion flag is
// already set, so a completed user is routed to the tracker instead.
func (c *Controller) Start(ctx context.Context) error {
	uid, err := c.session.UserID()
	if err != nil {
		return err
	}
	userID := uid.String()

	complete, err := c.completions.IsComplete(ctx, userID)
	if err != nil {
		// Fail open: a completion-store outage must not lock a new user out
		// of onboarding.
		c.logger.Warn("completion check failed, starting anyway", zap.Error(err))
	} else if complete {
		return ErrAlreadyComplete
	}

	c.draft = profile.NewProfileDraft()
	c.state = profile.NewWizardState()

	c.publish(shared.NewBaseEvent(shared.EventOnboardingStarted, userID))
	c.logger.Info("onboarding started",
		zap.String("session_id", c.sessionID),
		zap.String("user_id", userID))
	return nil
}

// Resume restores the persisted session if one exists, otherwise starts
// fresh. The restored cursor lands exactly where the user left off.
func (c *Controller) Resume(ctx context.Context) error {
	snapshot, err := c.snapshots.Load(ctx, c.sessionID)
	if err != nil {
		if errors.Is(err, profile.ErrSnapshotNotFound) {
			return c.Start(ctx)
		}
		return fmt.Errorf("wizard: resume: %w", err)
	}

	draft := snapshot.Draft
	c.draft = &draft
	c.state = snapshot.State
	c.state.Submitting = false // an interrupted submission is not resumed

	c.logger.Info("onboarding resumed",
		zap.String("session_id", c.sessionID),
		zap.Int("step", int(c.state.Step)))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Navigation
// ─────────────────────────────────────────────────────────────────────────────

// Advance validates the submitted step data, merges it into the draft, and
// moves the cursor forward. The snapshot is persisted before the new state is
// returned; on any failure the draft and cursor are left untouched.
func (c *Controller) Advance(ctx context.Context, data profile.StepData) (profile.WizardState, error) {
	if c.state.Submitting {
		return c.state, ErrSubmitting
	}
	if c.state.Step.IsTerminal() {
		return c.state, ErrAtTerminalStep
	}

	schema, ok := profile.SchemaFor(c.state.Step)
	if !ok {
		return c.state, shared.NewDomainError("wizard", "Advance", shared.ErrInvalidState,
			fmt.Sprintf("no schema for step %d", c.state.Step))
	}

	if errs := schema.Validate(data, c.draft); errs != nil {
		c.countAdvance(observability.OutcomeInvalid)
		return c.state, fmt.Errorf("%w: %w", profile.ErrStepInvalid, errs)
	}

	// Stage the mutation on copies so a persist failure leaves nothing behind.
	nextDraft := c.draft.Clone()
	nextDraft.Merge(data)

	nextState := c.state
	nextState.Valid[c.state.Step] = true
	nextState.Step = c.state.Step + 1

	if err := c.persist(ctx, nextDraft, nextState); err != nil {
		c.countAdvance(observability.OutcomeError)
		return c.state, fmt.Errorf("wizard: advance: %w", err)
	}

	c.draft = nextDraft
	c.state = nextState

	c.countAdvance(observability.OutcomeOK)
	c.publish(shared.NewBaseEvent(shared.EventOnboardingAdvanced, c.sessionID))
	c.logger.Debug("step advanced",
		zap.String("session_id", c.sessionID),
		zap.Int("step", int(c.state.Step)))
	return c.state, nil
}

// Retreat moves the cursor back one step. It never validates and floors at
// the first step, where it is a no-op. Entered data stays in the draft.
func (c *Controller) Retreat(ctx context.Context) profile.WizardState {
	if c.state.Submitting || c.state.Step <= profile.StepName {
		return c.state
	}

	c.state.Step--

	// Best effort: the draft is unchanged, only the cursor moved.
	if err := c.persist(ctx, c.draft, c.state); err != nil {
		c.logger.Warn("failed to persist cursor on retreat", zap.Error(err))
	}
	return c.state
}

// ─────────────────────────────────────────────────────────────────────────────
// Abandonment
// ─────────────────────────────────────────────────────────────────────────────

// RequestAbandon returns the exit confirmation. Nothing is discarded until
// the user confirms; progress is already persisted when this is shown.
func (c *Controller) RequestAbandon() ExitPrompt {
	return exitPrompt
}

// ConfirmAbandon leaves the flow. The snapshot stays in place so the user
// can resume later; only the in-memory working state is released. Abandon is
// only reachable before the terminal step and never during submission.
func (c *Controller) ConfirmAbandon(ctx context.Context) error {
	if c.state.Submitting {
		return ErrSubmitting
	}
	if c.state.Step.IsTerminal() {
		return ErrAtTerminalStep
	}

	uid, _ := c.session.UserID()
	userID := uid.String()

	c.draft = profile.NewProfileDraft()
	c.state = profile.NewWizardState()

	if c.metrics != nil {
		c.metrics.WizardAbandons.Inc()
	}
	c.publish(shared.NewBaseEvent(shared.EventOnboardingAbandoned, c.sessionID))
	c.logger.Info("onboarding abandoned",
		zap.String("session_id", c.sessionID),
		zap.String("user_id", userID))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Submission
// ─────────────────────────────────────────────────────────────────────────────

// Submit runs the terminal transition: the draft is validated as a whole and
// handed to the submitter (discovery trigger). Submit returns only after the
// submitter's barrier releases. The completion flag is set and the snapshot
// cleared whether or not discovery degraded; degradation is reported, not
// treated as failure.
func (c *Controller) Submit(ctx context.Context) (degraded bool, err error) {
	if c.state.Submitting {
		return false, ErrSubmitting
	}
	if !c.state.Step.IsTerminal() {
		return false, shared.NewDomainError("wizard", "Submit", shared.ErrStateTransition,
			"submit is only available on the final step")
	}

	uid, err := c.session.UserID()
	if err != nil {
		return false, err
	}
	userID := uid.String()

	if errs := c.draft.ValidateForSubmission(); errs != nil {
		return false, fmt.Errorf("%w: %w", profile.ErrStepInvalid, errs)
	}

	c.state.Submitting = true
	defer func() { c.state.Submitting = false }()

	start := time.Now()
	degraded, err = c.submitter.Run(ctx, userID, c.draft.Clone())
	if err != nil {
		c.countSubmission(observability.OutcomeError)
		return false, fmt.Errorf("wizard: submit: %w", err)
	}

	if c.metrics != nil {
		c.metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	}
	if degraded {
		c.countSubmission(observability.OutcomeDegraded)
	} else {
		c.countSubmission(observability.OutcomeOK)
	}

	if err := c.completions.MarkComplete(ctx, userID); err != nil {
		c.logger.Error("failed to persist completion flag", zap.Error(err))
	}
	if err := c.snapshots.Clear(ctx, c.sessionID); err != nil {
		c.logger.Warn("failed to clear onboarding snapshot", zap.Error(err))
	}

	c.publish(shared.NewOnboardingCompletedEvent(userID, degraded))
	c.logger.Info("onboarding completed",
		zap.String("user_id", userID),
		zap.Bool("degraded", degraded))
	return degraded, nil
}

// Summary returns the completion-screen read model for the current draft.
func (c *Controller) Summary() profile.Summary {
	return c.draft.BuildSummary()
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal
// ─────────────────────────────────────────────────────────────────────────────

// persist writes the snapshot for the given draft and state.
func (c *Controller) persist(ctx context.Context, draft *profile.ProfileDraft, state profile.WizardState) error {
	uid, _ := c.session.UserID()
	return c.snapshots.Save(ctx, &profile.Snapshot{
		SessionID: c.sessionID,
		UserID:    uid.String(),
		Draft:     *draft.Clone(),
		State:     state,
		SavedAt:   time.Now().UTC(),
	})
}

func (c *Controller) publish(event shared.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(event); err != nil {
		c.logger.Warn("failed to publish event",
			zap.String("event_type", string(event.EventType())),
			zap.Error(err))
	}
}

func (c *Controller) countAdvance(outcome string) {
	if c.metrics != nil {
		c.metrics.WizardAdvances.WithLabelValues(outcome).Inc()
	}
}

func (c *Controller) countSubmission(outcome string) {
	if c.metrics != nil {
		c.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}
