package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarstream/scholarstream-core/config"
	"github.com/scholarstream/scholarstream-core/internal/application/discovery"
	"github.com/scholarstream/scholarstream-core/internal/application/tracker"
	"github.com/scholarstream/scholarstream-core/internal/application/wizard"
	"github.com/scholarstream/scholarstream-core/internal/domain/application"
	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/external/scholar"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/persistence/memory"
)

// fakeBackend satisfies both the matching and the portfolio ports.
type fakeBackend struct {
	records     []application.Record
	loadErr     error
	discoverErr error
	deleteErr   error
	deleteCalls []string
}

func (f *fakeBackend) DiscoverScholarships(ctx context.Context, userID string, draft *profile.ProfileDraft) error {
	return f.discoverErr
}

func (f *fakeBackend) GetUserApplications(ctx context.Context, userID string) ([]application.Record, application.PortfolioStats, error) {
	if f.loadErr != nil {
		return nil, application.PortfolioStats{}, f.loadErr
	}
	return f.records, application.DeriveStats(f.records), nil
}

func (f *fakeBackend) DeleteApplication(ctx context.Context, applicationID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleteCalls = append(f.deleteCalls, applicationID)
	return nil
}

// testEnv is a running server plus handles on its injected state.
type testEnv struct {
	*httptest.Server
	session     *shared.Session
	snapshots   profile.SnapshotStore
	completions profile.CompletionStore
	flags       *config.FeatureFlags
}

func newTestServer(t *testing.T, backend *fakeBackend) *testEnv {
	t.Helper()

	session := shared.NewSession()
	require.NoError(t, session.Resolve("user-1"))

	snapshots := memory.NewSnapshotStore()
	completions := memory.NewCompletionStore()
	flags := config.LoadFeatureFlags()

	trigger := discovery.NewTrigger(discovery.Options{
		Client:   backend,
		Interval: time.Millisecond,
		Enabled:  func() bool { return flags.Enabled(config.FeatureDiscovery) },
	})
	controller := wizard.NewController(wizard.Options{
		SessionID:   "session-1",
		Session:     session,
		Snapshots:   snapshots,
		Completions: completions,
		Submitter:   trigger,
	})
	store := tracker.NewStore(tracker.Options{
		Session: session,
		Client:  backend,
	})

	cfg := DefaultConfig()
	cfg.EnableMetrics = false
	cfg.RateLimitPerMinute = 0

	srv := NewServer(cfg, Dependencies{
		Wizard:      controller,
		Tracker:     store,
		Session:     session,
		Snapshots:   snapshots,
		Completions: completions,
		Features:    flags,
	})

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return &testEnv{
		Server:      ts,
		session:     session,
		snapshots:   snapshots,
		completions: completions,
		flags:       flags,
	}
}

// envelope mirrors the response wrapper every endpoint uses.
type envelope struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})

	resp, body := doJSON(t, http.MethodGet, env.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.Contains(t, body.Data, "uptime_ms")

	// No durable dependencies wired means nothing can fail the probe.
	resp, _ = doJSON(t, http.MethodGet, env.URL+"/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOnboardingFlow(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})

	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/start", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", string(body.Data["step"]))

	resp, body = doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/steps",
		`{"first_name": "Ava", "last_name": "Chen"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", string(body.Data["step"]))

	resp, body = doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/back", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", string(body.Data["step"]))
}

func TestAdvance_ValidationError(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})
	doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/start", "")

	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/steps",
		`{"first_name": "Ava"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "validation_failed", body.Error.Code)
	assert.Contains(t, body.Error.Fields, "last_name")
}

func TestAdvance_MalformedBody(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})

	resp, _ := doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/steps", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExitPrompt(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})

	resp, body := doJSON(t, http.MethodGet, env.URL+"/api/v1/onboarding/exit", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `"Your Progress is Saved"`, string(body.Data["title"]))
	assert.Equal(t, `"Stay & Continue"`, string(body.Data["stay"]))
	assert.Equal(t, `"Leave for Now"`, string(body.Data["leave"]))
}

func TestAbandon_RequiresConfirmation(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})
	doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/start", "")

	// No ack from the exit dialog, nothing happens.
	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/abandon", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "not_confirmed", body.Error.Code)

	resp, body = doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/abandon",
		`{"confirmed": false}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/abandon",
		`{"confirmed": true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", string(body.Data["step"]))
}

func walkToFinalStep(t *testing.T, baseURL string) {
	t.Helper()
	steps := []string{
		`{"first_name": "Ava", "last_name": "Chen"}`,
		`{"academic_status": "undergraduate", "year": "Sophomore"}`,
		`{"school": "Stanford University"}`,
		`{"financial_need": true}`,
		`{"interests": ["STEM", "Community Service"]}`,
	}
	doJSON(t, http.MethodPost, baseURL+"/api/v1/onboarding/start", "")
	for _, step := range steps {
		resp, _ := doJSON(t, http.MethodPost, baseURL+"/api/v1/onboarding/steps", step)
		require.Equal(t, http.StatusOK, resp.StatusCode, step)
	}
}

func TestAbandon_RefusedAtFinalStep(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})
	walkToFinalStep(t, env.URL)

	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/abandon",
		`{"confirmed": true}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "at_final_step", body.Error.Code)
}

func TestSubmitFlow(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})
	walkToFinalStep(t, env.URL)

	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/submit", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "false", string(body.Data["degraded"]))

	var summary profile.Summary
	require.NoError(t, json.Unmarshal(body.Data["summary"], &summary))
	assert.Equal(t, "Ava Chen", summary.Name)

	var narrative []string
	require.NoError(t, json.Unmarshal(body.Data["narrative"], &narrative))
	assert.Equal(t, discovery.NarrativeLines, narrative)
}

func TestSubmit_DegradedCarriesAdvisory(t *testing.T) {
	backend := &fakeBackend{discoverErr: errors.New("503 service unavailable")}
	env := newTestServer(t, backend)
	walkToFinalStep(t, env.URL)

	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/submit", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", string(body.Data["degraded"]))

	var advisory string
	require.NoError(t, json.Unmarshal(body.Data["advisory"], &advisory))
	assert.Equal(t, discovery.Advisory, advisory)
}

func TestSubmit_DiscoveryFlagOffDegrades(t *testing.T) {
	backend := &fakeBackend{}
	env := newTestServer(t, backend)
	env.flags.Set(config.FeatureDiscovery, false)
	walkToFinalStep(t, env.URL)

	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/onboarding/submit", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", string(body.Data["degraded"]))
}

func TestSchoolSearch(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})

	resp, body := doJSON(t, http.MethodGet, env.URL+"/api/v1/onboarding/schools?q=stanford", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var schools []string
	require.NoError(t, json.Unmarshal(body.Data["schools"], &schools))
	assert.Equal(t, []string{"Stanford University"}, schools)
}

func TestSchoolSearch_FlagOff(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})
	env.flags.Set(config.FeatureSchoolSuggestions, false)

	resp, body := doJSON(t, http.MethodGet, env.URL+"/api/v1/onboarding/schools?q=stanford", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var schools []string
	require.NoError(t, json.Unmarshal(body.Data["schools"], &schools))
	assert.Empty(t, schools)
}

func TestGetApplications(t *testing.T) {
	award := 2000.0
	backend := &fakeBackend{records: []application.Record{
		{ApplicationID: "app-1", ScholarshipName: "STEM Excellence", ScholarshipAmount: 5000, Status: application.StatusDraft},
		{ApplicationID: "app-2", ScholarshipName: "First Generation", ScholarshipAmount: 2000, Status: application.StatusAwarded, AwardAmount: &award},
	}}
	env := newTestServer(t, backend)

	resp, body := doJSON(t, http.MethodGet, env.URL+"/api/v1/applications", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []struct {
		application.Record
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal(body.Data["applications"], &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Draft", items[0].Label)
	assert.Equal(t, "Award Won!", items[1].Label)

	var stats application.PortfolioStats
	require.NoError(t, json.Unmarshal(body.Data["stats"], &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2000.0, stats.TotalWon)
}

func TestGetApplications_TabFilterAndEmptyState(t *testing.T) {
	backend := &fakeBackend{records: []application.Record{
		{ApplicationID: "app-1", ScholarshipAmount: 5000, Status: application.StatusDraft},
	}}
	env := newTestServer(t, backend)

	resp, body := doJSON(t, http.MethodGet, env.URL+"/api/v1/applications?tab=awarded", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(body.Data["applications"], &items))
	assert.Empty(t, items)
	assert.NotEmpty(t, body.Data["empty_state"])

	resp, _ = doJSON(t, http.MethodGet, env.URL+"/api/v1/applications?tab=bogus", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetApplications_ArchivedFlagOff(t *testing.T) {
	backend := &fakeBackend{records: []application.Record{
		{ApplicationID: "app-1", ScholarshipAmount: 5000, Status: application.StatusDraft},
		{ApplicationID: "app-2", ScholarshipAmount: 1000, Status: application.StatusDeclined},
	}}
	env := newTestServer(t, backend)
	env.flags.Set(config.FeatureArchivedTab, false)

	resp, body := doJSON(t, http.MethodGet, env.URL+"/api/v1/applications?tab=archived", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "tab_disabled", body.Error.Code)

	// The archived bucket disappears from the counts too.
	resp, body = doJSON(t, http.MethodGet, env.URL+"/api/v1/applications", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var counts map[string]int
	require.NoError(t, json.Unmarshal(body.Data["counts"], &counts))
	assert.NotContains(t, counts, "archived")
	assert.Contains(t, counts, "all")
}

func TestGetApplications_BackendUnavailable(t *testing.T) {
	backend := &fakeBackend{
		loadErr: fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, errors.New("dial tcp: connection refused")),
	}
	env := newTestServer(t, backend)

	resp, body := doJSON(t, http.MethodGet, env.URL+"/api/v1/applications", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "service_unavailable", body.Error.Code)
}

func TestDeleteApplication(t *testing.T) {
	backend := &fakeBackend{records: []application.Record{
		{ApplicationID: "app-1", ScholarshipAmount: 5000, Status: application.StatusDraft},
		{ApplicationID: "app-2", ScholarshipAmount: 1000, Status: application.StatusSubmitted, ConfirmationNumber: "CONF-2"},
	}}
	env := newTestServer(t, backend)

	// Prime the store.
	doJSON(t, http.MethodGet, env.URL+"/api/v1/applications", "")

	resp, _ := doJSON(t, http.MethodDelete, env.URL+"/api/v1/applications/app-1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"app-1"}, backend.deleteCalls)

	// Submitted applications are refused before any backend call.
	resp, _ = doJSON(t, http.MethodDelete, env.URL+"/api/v1/applications/app-2", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, []string{"app-1"}, backend.deleteCalls)

	resp, _ = doJSON(t, http.MethodDelete, env.URL+"/api/v1/applications/app-404", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteApplication_BackendRejectionSurfaced(t *testing.T) {
	// The record is still draft locally but the backend has already moved it
	// on; its verdict wins and its own message reaches the client.
	apiErr := &scholar.APIError{StatusCode: 409, Code: "not_draft", Message: "Application is no longer a draft"}
	backend := &fakeBackend{
		records: []application.Record{
			{ApplicationID: "app-1", ScholarshipAmount: 5000, Status: application.StatusDraft},
		},
		deleteErr: fmt.Errorf("%w: %w", shared.ErrRejected, apiErr),
	}
	env := newTestServer(t, backend)
	doJSON(t, http.MethodGet, env.URL+"/api/v1/applications", "")

	resp, body := doJSON(t, http.MethodDelete, env.URL+"/api/v1/applications/app-1", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "rejected", body.Error.Code)
	assert.Equal(t, "Application is no longer a draft", body.Error.Message)
}

func TestSessionSignInAndOut(t *testing.T) {
	env := newTestServer(t, &fakeBackend{records: []application.Record{
		{ApplicationID: "app-1", ScholarshipAmount: 5000, Status: application.StatusDraft},
	}})
	env.session.Clear()

	// User-scoped surfaces refuse until someone signs in.
	resp, _ := doJSON(t, http.MethodGet, env.URL+"/api/v1/applications", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/session", `{"user_id": "user-9"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", string(body.Data["resolved"]))

	resp, _ = doJSON(t, http.MethodGet, env.URL+"/api/v1/applications", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Sign-out drops the session and the completion flag.
	ctx := context.Background()
	require.NoError(t, env.completions.MarkComplete(ctx, "user-9"))

	resp, _ = doJSON(t, http.MethodDelete, env.URL+"/api/v1/session", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, env.session.Resolved())

	complete, err := env.completions.IsComplete(ctx, "user-9")
	require.NoError(t, err)
	assert.False(t, complete)

	resp, _ = doJSON(t, http.MethodGet, env.URL+"/api/v1/applications", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionSignOut_WithoutUser(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})
	env.session.Clear()

	resp, _ := doJSON(t, http.MethodDelete, env.URL+"/api/v1/session", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionSignIn_NewAccountResetsState(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})
	ctx := context.Background()

	// Leftovers from a previous user of this install.
	require.NoError(t, env.completions.MarkComplete(ctx, "user-9"))
	require.NoError(t, env.snapshots.Save(ctx, &profile.Snapshot{
		SessionID: "session-1",
		UserID:    "user-1",
		Draft:     *profile.NewProfileDraft(),
		State:     profile.NewWizardState(),
	}))
	env.session.Clear()

	resp, _ := doJSON(t, http.MethodPost, env.URL+"/api/v1/session",
		`{"user_id": "user-9", "new_account": true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	complete, err := env.completions.IsComplete(ctx, "user-9")
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = env.snapshots.Load(ctx, "session-1")
	assert.ErrorIs(t, err, profile.ErrSnapshotNotFound)
}

func TestSessionSignIn_MissingUserID(t *testing.T) {
	env := newTestServer(t, &fakeBackend{})

	resp, body := doJSON(t, http.MethodPost, env.URL+"/api/v1/session", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "missing_user_id", body.Error.Code)
}

func TestSessionResolvedFromHeader(t *testing.T) {
	env := newTestServer(t, &fakeBackend{records: []application.Record{
		{ApplicationID: "app-1", ScholarshipAmount: 5000, Status: application.StatusDraft},
	}})
	env.session.Clear()

	req, err := http.NewRequest(http.MethodGet, env.URL+"/api/v1/applications", nil)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-7")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.session.Resolved())

	uid, err := env.session.UserID()
	require.NoError(t, err)
	assert.Equal(t, "user-7", uid.String())
}
