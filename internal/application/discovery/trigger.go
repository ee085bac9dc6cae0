// Package discovery implements the terminal onboarding submission: a cosmetic
// progress narrative raced against the real matching request, joined by a
// barrier so the completion screen never appears before both finish.
package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NARRATIVE
// ══════════════════════════════════════════════════════════════════════════════

// NarrativeLines is the fixed progress script shown while the matching
// request runs. The lines are cosmetic: they advance on a timer, not on
// backend progress.
var NarrativeLines = []string{
	"Analyzing your profile...",
	"Searching scholarship databases...",
	"Running AI matching algorithm...",
	"Prioritizing your opportunities...",
}

// Advisory is shown instead of the match summary when the request failed.
// The flow still completes; the backend retries matching out of band.
const Advisory = "Discovery service temporarily unavailable. Your scholarships will be ready shortly."

// DefaultInterval is the cadence of the narrative lines.
const DefaultInterval = time.Second

// ══════════════════════════════════════════════════════════════════════════════
// TRIGGER
// ══════════════════════════════════════════════════════════════════════════════

// MatchingClient is the port to the backend matching service.
type MatchingClient interface {
	DiscoverScholarships(ctx context.Context, userID string, draft *profile.ProfileDraft) error
}

// Trigger runs the submission. It satisfies the wizard's Submitter port.
type Trigger struct {
	client    MatchingClient
	interval  time.Duration
	publisher shared.EventPublisher
	logger    *zap.Logger
	enabled   func() bool

	// onNarrative receives each line as it becomes current; optional.
	onNarrative func(line string)
}

// Options configures a Trigger.
type Options struct {
	// Client is the backend matching port.
	Client MatchingClient

	// Interval overrides the narrative cadence; zero means DefaultInterval.
	Interval time.Duration

	// Publisher receives discovery events; optional.
	Publisher shared.EventPublisher

	// OnNarrative is invoked for each line; optional.
	OnNarrative func(line string)

	// Enabled gates the matching request; nil means always on. When it
	// reports false the narrative still plays but no request is sent and
	// the run degrades, same as a backend failure.
	Enabled func() bool

	// Logger for structured logging; optional.
	Logger *zap.Logger
}

// NewTrigger creates a Trigger.
func NewTrigger(opts Options) *Trigger {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Trigger{
		client:      opts.Client,
		interval:    opts.Interval,
		publisher:   opts.Publisher,
		logger:      opts.Logger,
		enabled:     opts.Enabled,
		onNarrative: opts.OnNarrative,
	}
}

// Run fires the matching request and plays the narrative concurrently, then
// joins on both. It returns once the narrative is exhausted AND the request
// has settled, whichever order that happens in.
//
// A failed or rejected request degrades instead of failing: Run reports
// degraded=true and the caller shows the Advisory. The only error Run itself
// returns is context cancellation.
func (t *Trigger) Run(ctx context.Context, userID string, draft *profile.ProfileDraft) (bool, error) {
	if t.enabled != nil && !t.enabled() {
		// Discovery is switched off: keep the user experience intact but
		// send nothing. The flow completes degraded with the Advisory.
		if err := t.playNarrative(ctx); err != nil {
			return false, err
		}
		t.publishEvent(shared.NewBaseEvent(shared.EventDiscoveryDegraded, userID))
		t.logger.Info("discovery disabled, completing degraded", zap.String("user_id", userID))
		return true, nil
	}

	t.publishEvent(shared.NewBaseEvent(shared.EventDiscoveryRequested, userID))

	requestDone := make(chan error, 1)
	go func() {
		requestDone <- t.client.DiscoverScholarships(ctx, userID, draft)
	}()

	if err := t.playNarrative(ctx); err != nil {
		// Cancelled mid-narrative; drain the request in the background so the
		// goroutine does not leak.
		go func() { <-requestDone }()
		return false, err
	}

	select {
	case <-ctx.Done():
		go func() { <-requestDone }()
		return false, ctx.Err()
	case err := <-requestDone:
		if err != nil {
			t.publishEvent(shared.NewBaseEvent(shared.EventDiscoveryDegraded, userID))
			t.logger.Warn("discovery request failed, completing degraded",
				zap.String("user_id", userID),
				zap.Error(err))
			return true, nil
		}
	}

	t.logger.Info("discovery request settled", zap.String("user_id", userID))
	return false, nil
}

// playNarrative emits each line, holding it for one interval. The ticker is
// released on cancellation.
func (t *Trigger) playNarrative(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for _, line := range NarrativeLines {
		t.emit(line)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (t *Trigger) emit(line string) {
	if t.onNarrative != nil {
		t.onNarrative(line)
	}
	t.logger.Debug("narrative", zap.String("line", line))
}

func (t *Trigger) publishEvent(event shared.Event) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(event); err != nil {
		t.logger.Warn("failed to publish event", zap.Error(err))
	}
}
