// Package scholar implements the HTTP client for the scholarship backend of
// record, which owns durable application data and fronts the matching
// (discovery) service. The exact response schema is owned externally; DTOs
// here are the anti-corruption layer between that schema and our domain.
package scholar

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DTOs
// ══════════════════════════════════════════════════════════════════════════════

// ProfilePayload is the flattened profile sent to the discovery endpoint.
// Keys are fixed by the backend contract.
type ProfilePayload struct {
	Name           string   `json:"name"`
	AcademicStatus string   `json:"academic_status"`
	Year           string   `json:"year,omitempty"`
	School         string   `json:"school,omitempty"`
	GPA            *float64 `json:"gpa,omitempty"`
	Major          string   `json:"major,omitempty"`
	GraduationYear *int     `json:"graduation_year,omitempty"`
	Background     []string `json:"background,omitempty"`
	FinancialNeed  *bool    `json:"financial_need,omitempty"`
	Interests      []string `json:"interests,omitempty"`
}

// DiscoverRequest wraps the discovery call body.
type DiscoverRequest struct {
	UserID  string         `json:"user_id"`
	Profile ProfilePayload `json:"profile"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// AckDTO is the acknowledgement returned by fire-and-forget endpoints.
// Discovery acknowledges the request before matching finishes computing.
type AckDTO struct {
	Accepted  bool   `json:"accepted"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ApplicationDTO is one application record as the backend reports it.
type ApplicationDTO struct {
	ApplicationID      string     `json:"application_id"`
	ScholarshipID      string     `json:"scholarship_id"`
	ScholarshipName    string     `json:"scholarship_name"`
	ScholarshipAmount  float64    `json:"scholarship_amount"`
	Status             string     `json:"status"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	AwardAmount        *float64   `json:"award_amount,omitempty"`
	ConfirmationNumber string     `json:"confirmation_number,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}

// StatsDTO is the backend's precomputed portfolio aggregate.
type StatsDTO struct {
	Total      int     `json:"total"`
	Draft      int     `json:"draft"`
	Submitted  int     `json:"submitted"`
	Awarded    int     `json:"awarded"`
	TotalValue float64 `json:"total_value"`
	TotalWon   float64 `json:"total_won"`
}

// ApplicationsResponseDTO is the full payload of getUserApplications.
type ApplicationsResponseDTO struct {
	Applications []ApplicationDTO `json:"applications"`
	Stats        StatsDTO         `json:"stats"`
}

// APIErrorDTO is the backend's structured error body.
type APIErrorDTO struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
