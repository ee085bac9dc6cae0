// Package application contains the scholarship application lifecycle model:
// backend-owned records, the status state machine the client classifies
// against, portfolio statistics derived as a pure fold, and the
// order-preserving filters behind the tracking view.
// This is core business logic - there are no external dependencies here.
package application

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// Status is the lifecycle state of an application. Transitions happen
// server-side; the client never synthesizes one - it only reflects what the
// backend of record reports.
type Status string

const (
	// StatusDraft - started but not yet submitted. The only status a user
	// may unilaterally delete.
	StatusDraft Status = "draft"
	// StatusSubmitted - handed to the scholarship provider.
	StatusSubmitted Status = "submitted"
	// StatusUnderReview - the provider is evaluating the submission.
	StatusUnderReview Status = "under_review"
	// StatusFinalist - shortlisted for the award.
	StatusFinalist Status = "finalist"
	// StatusAwarded - the scholarship was won.
	StatusAwarded Status = "awarded"
	// StatusDeclined - not selected.
	StatusDeclined Status = "declined"
	// StatusExpired - the deadline passed before submission was decided.
	StatusExpired Status = "expired"
)

// KnownStatuses lists the enumerated taxonomy in lifecycle order.
var KnownStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusFinalist,
	StatusAwarded,
	StatusDeclined,
	StatusExpired,
}

// IsKnown reports whether the status belongs to the enumerated taxonomy.
// The backend's vocabulary may evolve independently of this client, so an
// unknown status is data, not an error.
func (s Status) IsKnown() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusFinalist,
		StatusAwarded, StatusDeclined, StatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the lifecycle can move no further.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusAwarded, StatusDeclined, StatusExpired:
		return true
	default:
		return false
	}
}

// IsSubmittedOrLater reports whether the application has left draft, which is
// when a confirmation number may be present.
func (s Status) IsSubmittedOrLater() bool {
	return s.IsKnown() && s != StatusDraft
}

// validTransitions encodes the server-side lifecycle:
// draft → submitted → under_review → {finalist, declined, expired};
// finalist → {awarded, declined}. Draft may also terminate via delete,
// which is a removal rather than a status.
var validTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusFinalist, StatusDeclined, StatusExpired},
	StatusFinalist:    {StatusAwarded, StatusDeclined},
}

// CanTransition reports whether from → to is a valid lifecycle transition.
// The client uses this only to sanity-check backend-reported sequences; it
// never drives a transition itself.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record is one scholarship application as reported by the backend of record.
// The client store is a read-mostly cache of these.
type Record struct {
	ApplicationID string `json:"application_id"`
	ScholarshipID string `json:"scholarship_id"`

	ScholarshipName   string  `json:"scholarship_name"`
	ScholarshipAmount float64 `json:"scholarship_amount"`

	Status Status `json:"status"`

	// SubmittedAt is set only at or after submission.
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	// AwardAmount is present if and only if Status is awarded.
	AwardAmount *float64 `json:"award_amount,omitempty"`

	// ConfirmationNumber is present only once the application left draft.
	ConfirmationNumber string `json:"confirmation_number,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Record validation errors.
var (
	ErrMissingID           = errors.New("application: application_id is required")
	ErrNegativeAmount      = errors.New("application: scholarship_amount cannot be negative")
	ErrAwardMismatch       = errors.New("application: award_amount is present iff status is awarded")
	ErrConfirmationInDraft = errors.New("application: confirmation_number is not allowed in draft")
)

// Validate checks the record invariants the backend contract promises.
func (r Record) Validate() error {
	if r.ApplicationID == "" {
		return ErrMissingID
	}
	if r.ScholarshipAmount < 0 {
		return fmt.Errorf("%w: got %.2f", ErrNegativeAmount, r.ScholarshipAmount)
	}
	if (r.AwardAmount != nil) != (r.Status == StatusAwarded) {
		return fmt.Errorf("%w: status=%s", ErrAwardMismatch, r.Status)
	}
	if r.ConfirmationNumber != "" && !r.Status.IsSubmittedOrLater() {
		return fmt.Errorf("%w: status=%s", ErrConfirmationInDraft, r.Status)
	}
	return nil
}

// IsDraft reports whether the record is still a deletable draft.
func (r Record) IsDraft() bool {
	return r.Status == StatusDraft
}

// WonAmount returns the award amount, zero when not awarded.
func (r Record) WonAmount() float64 {
	if r.Status == StatusAwarded && r.AwardAmount != nil {
		return *r.AwardAmount
	}
	return 0
}
