package eventhandler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/application/tracker"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON ONBOARDING COMPLETED HANDLER
//
// Warms the application portfolio right after the terminal submission
// settles, so the tracker screen opens with data instead of a first-load
// spinner. A failed warm-up is logged and forgotten: the tracker falls back
// to loading on first access.
// ══════════════════════════════════════════════════════════════════════════════

// warmupTimeout bounds the background portfolio load.
const warmupTimeout = 30 * time.Second

// OnOnboardingCompletedHandler preloads the portfolio after onboarding.
type OnOnboardingCompletedHandler struct {
	tracker *tracker.Store
	logger  *zap.Logger
}

// NewOnOnboardingCompletedHandler creates the handler.
func NewOnOnboardingCompletedHandler(store *tracker.Store, logger *zap.Logger) *OnOnboardingCompletedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnOnboardingCompletedHandler{tracker: store, logger: logger}
}

// Handle implements shared.EventHandler.
func (h *OnOnboardingCompletedHandler) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
	defer cancel()

	if err := h.tracker.Load(ctx); err != nil {
		h.logger.Warn("portfolio warm-up after onboarding failed",
			zap.String("aggregate_id", event.AggregateID()),
			zap.Error(err))
		return err
	}

	h.logger.Info("portfolio warmed after onboarding",
		zap.String("aggregate_id", event.AggregateID()))
	return nil
}

// Interests implements shared.EventHandler.
func (h *OnOnboardingCompletedHandler) Interests() []shared.EventType {
	return []shared.EventType{shared.EventOnboardingCompleted}
}
