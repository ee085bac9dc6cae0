package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/persistence/memory"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func statusPtr(s profile.AcademicStatus) *profile.AcademicStatus { return &s }

// failingSnapshotStore rejects every save, to exercise the persistence guard.
type failingSnapshotStore struct {
	profile.SnapshotStore
}

func (f *failingSnapshotStore) Save(ctx context.Context, snapshot *profile.Snapshot) error {
	return errors.New("disk full")
}

// fakeSubmitter records the draft it was handed and returns a canned result.
type fakeSubmitter struct {
	degraded bool
	err      error
	gotDraft *profile.ProfileDraft
	calls    int
}

func (f *fakeSubmitter) Run(ctx context.Context, userID string, draft *profile.ProfileDraft) (bool, error) {
	f.calls++
	f.gotDraft = draft
	return f.degraded, f.err
}

// abandoningSubmitter attempts an abandon from inside the submission.
type abandoningSubmitter struct {
	controller *Controller
	abandonErr error
}

func (s *abandoningSubmitter) Run(ctx context.Context, userID string, draft *profile.ProfileDraft) (bool, error) {
	s.abandonErr = s.controller.ConfirmAbandon(ctx)
	return false, nil
}

func resolvedSession(t *testing.T) *shared.Session {
	t.Helper()
	session := shared.NewSession()
	require.NoError(t, session.Resolve("user-1"))
	return session
}

func newTestController(t *testing.T, submitter Submitter) (*Controller, *memory.SnapshotStore, *memory.CompletionStore) {
	t.Helper()
	snapshots := memory.NewSnapshotStore()
	completions := memory.NewCompletionStore()
	c := NewController(Options{
		SessionID:   "session-1",
		Session:     resolvedSession(t),
		Snapshots:   snapshots,
		Completions: completions,
		Submitter:   submitter,
	})
	return c, snapshots, completions
}

// walkToComplete drives a valid draft through every collecting step.
func walkToComplete(t *testing.T, c *Controller) {
	t.Helper()
	ctx := context.Background()

	steps := []profile.StepData{
		{FirstName: strPtr("Ava"), LastName: strPtr("Chen")},
		{AcademicStatus: statusPtr(profile.StatusUndergraduate), Year: strPtr("Sophomore")},
		{School: strPtr("Stanford University")},
		{FinancialNeed: boolPtr(true)},
		{Interests: []string{"STEM", "Community Service"}},
	}
	for _, data := range steps {
		_, err := c.Advance(ctx, data)
		require.NoError(t, err)
	}
	require.Equal(t, profile.StepComplete, c.State().Step)
}

func TestController_Start(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSubmitter{})

	assert.NoError(t, c.Start(context.Background()))
	assert.Equal(t, profile.StepName, c.State().Step)
}

func TestController_Start_AlreadyComplete(t *testing.T) {
	c, _, completions := newTestController(t, &fakeSubmitter{})
	require.NoError(t, completions.MarkComplete(context.Background(), "user-1"))

	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyComplete)
}

func TestController_Start_NoUser(t *testing.T) {
	c := NewController(Options{
		Session:     shared.NewSession(),
		Snapshots:   memory.NewSnapshotStore(),
		Completions: memory.NewCompletionStore(),
		Submitter:   &fakeSubmitter{},
	})

	assert.ErrorIs(t, c.Start(context.Background()), shared.ErrNoUser)
}

func TestController_Advance_InvalidLeavesStateUntouched(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSubmitter{})
	ctx := context.Background()

	state, err := c.Advance(ctx, profile.StepData{FirstName: strPtr("Ava")})

	assert.ErrorIs(t, err, profile.ErrStepInvalid)
	var errs profile.ValidationErrors
	assert.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, profile.FieldLastName)

	assert.Equal(t, profile.StepName, state.Step)
	assert.Empty(t, c.Draft().FirstName, "rejected data must not leak into the draft")
}

func TestController_Advance_PersistsBeforeReturning(t *testing.T) {
	c, snapshots, _ := newTestController(t, &fakeSubmitter{})
	ctx := context.Background()

	state, err := c.Advance(ctx, profile.StepData{FirstName: strPtr("Ava"), LastName: strPtr("Chen")})
	require.NoError(t, err)
	assert.Equal(t, profile.StepAcademic, state.Step)
	assert.True(t, state.Valid[profile.StepName])

	snapshot, err := snapshots.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", snapshot.UserID)
	assert.Equal(t, "Ava", snapshot.Draft.FirstName)
	assert.Equal(t, profile.StepAcademic, snapshot.State.Step)
}

func TestController_Advance_PersistFailureLeavesStateUntouched(t *testing.T) {
	c := NewController(Options{
		SessionID:   "session-1",
		Session:     resolvedSession(t),
		Snapshots:   &failingSnapshotStore{},
		Completions: memory.NewCompletionStore(),
		Submitter:   &fakeSubmitter{},
	})

	state, err := c.Advance(context.Background(), profile.StepData{
		FirstName: strPtr("Ava"),
		LastName:  strPtr("Chen"),
	})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, profile.ErrStepInvalid)
	assert.Equal(t, profile.StepName, state.Step)
	assert.Empty(t, c.Draft().FirstName)
	assert.False(t, c.State().Valid[profile.StepName])
}

func TestController_Advance_TerminalStepRefused(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSubmitter{})
	walkToComplete(t, c)

	_, err := c.Advance(context.Background(), profile.StepData{})
	assert.ErrorIs(t, err, ErrAtTerminalStep)
}

func TestController_Retreat_FloorsAtFirstStep(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSubmitter{})
	ctx := context.Background()

	// Retreat on the first step is a no-op.
	state := c.Retreat(ctx)
	assert.Equal(t, profile.StepName, state.Step)

	_, err := c.Advance(ctx, profile.StepData{FirstName: strPtr("Ava"), LastName: strPtr("Chen")})
	require.NoError(t, err)

	state = c.Retreat(ctx)
	assert.Equal(t, profile.StepName, state.Step)

	// Entered data stays in the draft after going back.
	assert.Equal(t, "Ava", c.Draft().FirstName)

	state = c.Retreat(ctx)
	assert.Equal(t, profile.StepName, state.Step)
}

func TestController_Resume_RestoresCursor(t *testing.T) {
	c, snapshots, _ := newTestController(t, &fakeSubmitter{})
	ctx := context.Background()

	_, err := c.Advance(ctx, profile.StepData{FirstName: strPtr("Ava"), LastName: strPtr("Chen")})
	require.NoError(t, err)
	_, err = c.Advance(ctx, profile.StepData{AcademicStatus: statusPtr(profile.StatusOther)})
	require.NoError(t, err)

	// Fresh controller for the same session, as after a reload.
	resumed := NewController(Options{
		SessionID:   "session-1",
		Session:     resolvedSession(t),
		Snapshots:   snapshots,
		Completions: memory.NewCompletionStore(),
		Submitter:   &fakeSubmitter{},
	})
	require.NoError(t, resumed.Resume(ctx))

	assert.Equal(t, profile.StepSchool, resumed.State().Step)
	assert.Equal(t, "Ava", resumed.Draft().FirstName)
	assert.Equal(t, profile.StatusOther, resumed.Draft().AcademicStatus)
	assert.False(t, resumed.State().Submitting)
}

func TestController_Resume_NoSnapshotStartsFresh(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSubmitter{})

	assert.NoError(t, c.Resume(context.Background()))
	assert.Equal(t, profile.StepName, c.State().Step)
}

func TestController_Abandon_KeepsSnapshot(t *testing.T) {
	c, snapshots, _ := newTestController(t, &fakeSubmitter{})
	ctx := context.Background()

	_, err := c.Advance(ctx, profile.StepData{FirstName: strPtr("Ava"), LastName: strPtr("Chen")})
	require.NoError(t, err)

	prompt := c.RequestAbandon()
	assert.Equal(t, "Your Progress is Saved", prompt.Title)
	assert.Equal(t, "Stay & Continue", prompt.Stay)
	assert.Equal(t, "Leave for Now", prompt.Leave)

	// Requesting the prompt alone changes nothing.
	assert.Equal(t, "Ava", c.Draft().FirstName)

	require.NoError(t, c.ConfirmAbandon(ctx))
	assert.Empty(t, c.Draft().FirstName)

	// The persisted snapshot survives for a later resume.
	snapshot, err := snapshots.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "Ava", snapshot.Draft.FirstName)
}

func TestController_Abandon_RefusedAtFinalStep(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSubmitter{})
	walkToComplete(t, c)

	assert.ErrorIs(t, c.ConfirmAbandon(context.Background()), ErrAtTerminalStep)
	// The finished draft is untouched.
	assert.Equal(t, "Ava", c.Draft().FirstName)
}

func TestController_Abandon_RefusedWhileSubmitting(t *testing.T) {
	// The submitter calls back into the controller mid-run, while the
	// Submitting flag is raised.
	submitter := &abandoningSubmitter{}
	c, _, _ := newTestController(t, submitter)
	submitter.controller = c
	walkToComplete(t, c)

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, submitter.abandonErr, ErrSubmitting)
}

func TestController_Submit(t *testing.T) {
	submitter := &fakeSubmitter{}
	c, snapshots, completions := newTestController(t, submitter)
	ctx := context.Background()
	walkToComplete(t, c)

	degraded, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, 1, submitter.calls)
	assert.Equal(t, "Ava", submitter.gotDraft.FirstName)

	complete, err := completions.IsComplete(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, complete)

	_, err = snapshots.Load(ctx, "session-1")
	assert.ErrorIs(t, err, profile.ErrSnapshotNotFound)
}

func TestController_Submit_DegradedStillCompletes(t *testing.T) {
	submitter := &fakeSubmitter{degraded: true}
	c, snapshots, completions := newTestController(t, submitter)
	ctx := context.Background()
	walkToComplete(t, c)

	degraded, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, degraded)

	// Degradation does not hold onboarding hostage: the flag is set and the
	// snapshot cleared exactly as on the happy path.
	complete, err := completions.IsComplete(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, complete)

	_, err = snapshots.Load(ctx, "session-1")
	assert.ErrorIs(t, err, profile.ErrSnapshotNotFound)
}

func TestController_Submit_BeforeFinalStepRefused(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSubmitter{})

	_, err := c.Submit(context.Background())
	assert.Error(t, err)
}

func TestController_Submit_SubmitterErrorKeepsCompletionUnset(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("canceled")}
	c, _, completions := newTestController(t, submitter)
	ctx := context.Background()
	walkToComplete(t, c)

	_, err := c.Submit(ctx)
	assert.Error(t, err)

	complete, err := completions.IsComplete(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, complete)
	assert.False(t, c.State().Submitting)
}

func TestController_Summary(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSubmitter{})
	walkToComplete(t, c)

	summary := c.Summary()
	assert.Equal(t, "Ava Chen", summary.Name)
	assert.Equal(t, "Undergraduate (Sophomore)", summary.AcademicStatus)
	assert.Equal(t, []string{"STEM", "Community Service"}, summary.Interests)
}
