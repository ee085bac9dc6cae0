package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Onboarding events
	EventOnboardingStarted   EventType = "onboarding.started"
	EventOnboardingAdvanced  EventType = "onboarding.step_advanced"
	EventOnboardingAbandoned EventType = "onboarding.abandoned"
	EventOnboardingCompleted EventType = "onboarding.completed"

	// Discovery events
	EventDiscoveryRequested EventType = "discovery.requested"
	EventDiscoveryDegraded  EventType = "discovery.degraded"

	// Application portfolio events
	EventPortfolioRefreshed  EventType = "portfolio.refreshed"
	EventApplicationDeleted  EventType = "portfolio.application_deleted"
	EventPortfolioLoadFailed EventType = "portfolio.load_failed"

	// Session events
	EventSessionResolved EventType = "session.resolved"
	EventSignedOut       EventType = "session.signed_out"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// Payload implements Event interface with an empty payload.
func (e BaseEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewBaseEvent creates a BaseEvent stamped with the current UTC time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// EventHandler processes a published domain event.
type EventHandler interface {
	Handle(event Event) error
	// Interests returns the event types this handler wants; empty means all.
	Interests() []EventType
}

// ─────────────────────────────────────────────────────────────────────────────
// Concrete events
// ─────────────────────────────────────────────────────────────────────────────

// OnboardingCompletedEvent is published once the terminal submission settles,
// regardless of whether the discovery request succeeded.
type OnboardingCompletedEvent struct {
	BaseEvent
	UserID   string
	Degraded bool
}

// Payload implements Event interface.
func (e OnboardingCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"degraded": e.Degraded,
	}
}

// NewOnboardingCompletedEvent creates an OnboardingCompletedEvent.
func NewOnboardingCompletedEvent(userID string, degraded bool) OnboardingCompletedEvent {
	return OnboardingCompletedEvent{
		BaseEvent: NewBaseEvent(EventOnboardingCompleted, userID),
		UserID:    userID,
		Degraded:  degraded,
	}
}

// ApplicationDeletedEvent is published after the backend of record
// acknowledged a draft deletion.
type ApplicationDeletedEvent struct {
	BaseEvent
	UserID        string
	ApplicationID string
}

// Payload implements Event interface.
func (e ApplicationDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"application_id": e.ApplicationID,
	}
}

// NewApplicationDeletedEvent creates an ApplicationDeletedEvent.
func NewApplicationDeletedEvent(userID, applicationID string) ApplicationDeletedEvent {
	return ApplicationDeletedEvent{
		BaseEvent:     NewBaseEvent(EventApplicationDeleted, applicationID),
		UserID:        userID,
		ApplicationID: applicationID,
	}
}

// PortfolioRefreshedEvent is published after a successful full load of the
// application collection.
type PortfolioRefreshedEvent struct {
	BaseEvent
	UserID string
	Total  int
}

// Payload implements Event interface.
func (e PortfolioRefreshedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"total":   e.Total,
	}
}

// NewPortfolioRefreshedEvent creates a PortfolioRefreshedEvent.
func NewPortfolioRefreshedEvent(userID string, total int) PortfolioRefreshedEvent {
	return PortfolioRefreshedEvent{
		BaseEvent: NewBaseEvent(EventPortfolioRefreshed, userID),
		UserID:    userID,
		Total:     total,
	}
}

// SessionResolvedEvent is published once the identity provider hands us a
// user identifier. NewAccount marks a fresh signup, whose local state
// (completion flag, stale snapshots) has already been reset.
type SessionResolvedEvent struct {
	BaseEvent
	UserID     string
	NewAccount bool
}

// Payload implements Event interface.
func (e SessionResolvedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     e.UserID,
		"new_account": e.NewAccount,
	}
}

// NewSessionResolvedEvent creates a SessionResolvedEvent.
func NewSessionResolvedEvent(userID string, newAccount bool) SessionResolvedEvent {
	return SessionResolvedEvent{
		BaseEvent:  NewBaseEvent(EventSessionResolved, userID),
		UserID:     userID,
		NewAccount: newAccount,
	}
}

// SignedOutEvent is published after the session is torn down.
type SignedOutEvent struct {
	BaseEvent
	UserID string
}

// Payload implements Event interface.
func (e SignedOutEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
	}
}

// NewSignedOutEvent creates a SignedOutEvent.
func NewSignedOutEvent(userID string) SignedOutEvent {
	return SignedOutEvent{
		BaseEvent: NewBaseEvent(EventSignedOut, userID),
		UserID:    userID,
	}
}
