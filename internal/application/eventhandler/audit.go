// Package eventhandler contains subscribers for domain events.
package eventhandler

import (
	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUDIT HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AuditHandler writes every published domain event to the structured log, so
// the event stream is observable without any external sink.
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{logger: logger}
}

// Handle implements shared.EventHandler.
func (h *AuditHandler) Handle(event shared.Event) error {
	h.logger.Info("domain event",
		zap.String("type", string(event.EventType())),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.Any("payload", event.Payload()))
	return nil
}

// Interests implements shared.EventHandler; empty means every event type.
func (h *AuditHandler) Interests() []shared.EventType {
	return nil
}
