package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/config"
	"github.com/scholarstream/scholarstream-core/internal/application/discovery"
	"github.com/scholarstream/scholarstream-core/internal/application/tracker"
	"github.com/scholarstream/scholarstream-core/internal/application/wizard"
	"github.com/scholarstream/scholarstream-core/internal/domain/application"
	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/external/scholar"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"time":      time.Now().UTC(),
		"uptime_ms": s.uptime().Milliseconds(),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReady pings the durable stores; degraded dependencies flip readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	for name, dep := range map[string]HealthChecker{
		"database": s.deps.Database,
		"cache":    s.deps.Cache,
	} {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"ready":  ready,
		"checks": checks,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// signInRequest binds an identity-provider user to the process session.
// NewAccount marks a fresh signup: any stale local onboarding state from a
// previous user of this install is cleared first.
type signInRequest struct {
	UserID     string `json:"user_id"`
	NewAccount bool   `json:"new_account"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}
	if req.UserID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return
	}

	if req.NewAccount {
		s.resetOnboardingState(r.Context(), req.UserID)
	}

	if err := s.deps.Session.Resolve(shared.UserID(req.UserID)); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_user_id", "user_id is not usable")
		return
	}

	s.publishEvent(shared.NewSessionResolvedEvent(req.UserID, req.NewAccount))
	s.logger.Info("session resolved",
		zap.String("user_id", req.UserID),
		zap.Bool("new_account", req.NewAccount))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  req.UserID,
		"resolved": true,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	uid, err := s.deps.Session.UserID()
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "no_session", "No user is signed in")
		return
	}
	userID := uid.String()

	s.resetOnboardingState(r.Context(), userID)
	s.deps.Session.Clear()

	s.publishEvent(shared.NewSignedOutEvent(userID))
	s.logger.Info("session cleared", zap.String("user_id", userID))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"signed_out": true,
	})
}

// resetOnboardingState drops the durable per-install onboarding state: the
// completion flag and the wizard snapshot. Failures are logged and tolerated;
// the stores self-heal on the next write.
func (s *Server) resetOnboardingState(ctx context.Context, userID string) {
	if s.deps.Completions != nil {
		if err := s.deps.Completions.Reset(ctx, userID); err != nil {
			s.logger.Warn("completion flag reset failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	if s.deps.Snapshots != nil && s.deps.Wizard != nil {
		if err := s.deps.Snapshots.Clear(ctx, s.deps.Wizard.SessionID()); err != nil {
			s.logger.Warn("wizard snapshot clear failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ONBOARDING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// onboardingView is the wizard state as rendered to the client.
type onboardingView struct {
	SessionID  string                `json:"session_id"`
	Step       int                   `json:"step"`
	StepName   string                `json:"step_name"`
	StepCount  int                   `json:"step_count"`
	Draft      *profile.ProfileDraft `json:"draft"`
	Submitting bool                  `json:"submitting"`
}

func (s *Server) currentOnboarding() onboardingView {
	state := s.deps.Wizard.State()
	return onboardingView{
		SessionID:  s.deps.Wizard.SessionID(),
		Step:       int(state.Step),
		StepName:   state.Step.String(),
		StepCount:  profile.StepCount,
		Draft:      s.deps.Wizard.Draft(),
		Submitting: state.Submitting,
	}
}

func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentOnboarding())
}

func (s *Server) handleStartOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Wizard.Resume(r.Context()); err != nil {
		s.writeWizardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentOnboarding())
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var data profile.StepData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	if _, err := s.deps.Wizard.Advance(r.Context(), data); err != nil {
		s.writeWizardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentOnboarding())
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	s.deps.Wizard.Retreat(r.Context())
	writeJSON(w, http.StatusOK, s.currentOnboarding())
}

func (s *Server) handleExitPrompt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Wizard.RequestAbandon())
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	// Leaving mid-flow is destructive enough to demand an explicit ack from
	// the exit confirmation dialog.
	var body struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}
	if !body.Confirmed {
		writeJSONError(w, http.StatusBadRequest, "not_confirmed", "Abandoning requires confirmation")
		return
	}

	if err := s.deps.Wizard.ConfirmAbandon(r.Context()); err != nil {
		s.writeWizardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentOnboarding())
}

// submitResponse is the terminal submission result: the summary plus the
// advisory when discovery degraded.
type submitResponse struct {
	Summary   profile.Summary `json:"summary"`
	Narrative []string        `json:"narrative"`
	Degraded  bool            `json:"degraded"`
	Advisory  string          `json:"advisory,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	degraded, err := s.deps.Wizard.Submit(r.Context())
	if err != nil {
		s.writeWizardError(w, r, err)
		return
	}

	resp := submitResponse{
		Summary:   s.deps.Wizard.Summary(),
		Narrative: discovery.NarrativeLines,
		Degraded:  degraded,
	}
	if degraded {
		resp.Advisory = discovery.Advisory
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchoolSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	schools := []string{}
	if s.featureEnabled(config.FeatureSchoolSuggestions) {
		schools = profile.SearchSchools(query)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"schools": schools,
	})
}

// writeWizardError maps wizard errors onto HTTP statuses with copy the
// client can show as-is. Unknown errors get a generic message.
func (s *Server) writeWizardError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs profile.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		fields := make(map[string]string, len(validationErrs))
		for f, msg := range validationErrs {
			fields[string(f)] = msg
		}
		writeValidationError(w, fields)
	case errors.Is(err, shared.ErrNoUser):
		writeJSONError(w, http.StatusUnauthorized, "no_session", "Sign in to continue")
	case errors.Is(err, wizard.ErrAlreadyComplete):
		writeJSONError(w, http.StatusConflict, "already_complete", "Your profile is already set up")
	case errors.Is(err, wizard.ErrSubmitting):
		writeJSONError(w, http.StatusConflict, "submitting", "Hang tight, we're finding your scholarships")
	case errors.Is(err, wizard.ErrAtTerminalStep):
		writeJSONError(w, http.StatusConflict, "at_final_step", "You're all set - submit to finish")
	case errors.Is(err, shared.ErrServiceUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", discovery.Advisory)
	default:
		s.logger.Error("wizard request failed",
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again.")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// applicationItem is one row of the portfolio list: the record plus its
// display classification.
type applicationItem struct {
	application.Record
	Label    string `json:"label"`
	Category string `json:"category"`
	Icon     string `json:"icon"`
	Accent   string `json:"accent"`
}

// portfolioResponse is the tracker view for one tab.
type portfolioResponse struct {
	Tab          application.Tab            `json:"tab"`
	Applications []applicationItem          `json:"applications"`
	Counts       map[application.Tab]int    `json:"counts"`
	Stats        application.PortfolioStats `json:"stats"`
	Header       string                     `json:"header"`
	EmptyState   *application.EmptyState    `json:"empty_state,omitempty"`
	LoadedAt     time.Time                  `json:"loaded_at"`
}

func (s *Server) handleGetApplications(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Tracker.Loaded() {
		if err := s.deps.Tracker.Load(r.Context()); err != nil {
			s.writeTrackerError(w, r, err)
			return
		}
	}

	tab := application.Tab(r.URL.Query().Get("tab"))
	if tab == "" {
		tab = application.TabAll
	}
	if !tab.IsValid() {
		writeJSONError(w, http.StatusBadRequest, "unknown_tab", "Unknown tab: "+string(tab))
		return
	}
	if tab == application.TabArchived && !s.featureEnabled(config.FeatureArchivedTab) {
		writeJSONError(w, http.StatusNotFound, "tab_disabled", "The archived tab is not available")
		return
	}

	records := s.deps.Tracker.Tab(tab)
	items := make([]applicationItem, 0, len(records))
	for _, rec := range records {
		desc := application.Classify(rec.Status)
		items = append(items, applicationItem{
			Record:   rec,
			Label:    desc.Label,
			Category: string(desc.Category),
			Icon:     desc.Icon,
			Accent:   desc.Accent,
		})
	}

	stats := s.deps.Tracker.Stats()
	resp := portfolioResponse{
		Tab:          tab,
		Applications: items,
		Counts:       s.tabCounts(),
		Stats:        stats,
		Header:       application.HeaderLine(stats),
		LoadedAt:     s.deps.Tracker.LoadedAt(),
	}
	if len(items) == 0 {
		es := application.EmptyStateFor(tab)
		resp.EmptyState = &es
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefreshApplications(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Tracker.Load(r.Context()); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":     s.deps.Tracker.Stats(),
		"counts":    s.tabCounts(),
		"loaded_at": s.deps.Tracker.LoadedAt(),
	})
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("id")
	if applicationID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_id", "Application id is required")
		return
	}

	if err := s.deps.Tracker.Delete(r.Context(), applicationID); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": applicationID,
		"stats":   s.deps.Tracker.Stats(),
		"counts":  s.tabCounts(),
	})
}

// tabCounts folds the per-tab counts, hiding the archived tab when its
// feature flag is off.
func (s *Server) tabCounts() map[application.Tab]int {
	counts := s.deps.Tracker.TabCounts()
	if !s.featureEnabled(config.FeatureArchivedTab) {
		delete(counts, application.TabArchived)
	}
	return counts
}

// writeTrackerError maps tracker errors onto HTTP statuses.
func (s *Server) writeTrackerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNoUser):
		writeJSONError(w, http.StatusUnauthorized, "no_session", "Sign in to continue")
	case errors.Is(err, tracker.ErrUnknownApplication):
		writeJSONError(w, http.StatusNotFound, "not_found", "We couldn't find that application")
	case errors.Is(err, tracker.ErrNotDraft):
		writeJSONError(w, http.StatusConflict, "not_draft", "Only draft applications can be deleted")
	case errors.Is(err, shared.ErrRejected):
		// The backend is authoritative; surface its own message when it
		// sent one.
		message := "The backend declined this change"
		var apiErr *scholar.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}
		writeJSONError(w, http.StatusConflict, "rejected", message)
	case errors.Is(err, shared.ErrServiceUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable",
			"We couldn't reach the scholarship service. Your applications are shown as of the last refresh.")
	default:
		s.logger.Error("tracker request failed",
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again.")
	}
}
