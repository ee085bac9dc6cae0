// Package profile contains the onboarding domain model: the in-progress
// profile draft, the wizard state machine over its six steps, and the
// persistence port that makes the flow resumable across reloads.
// This is core business logic - there are no external dependencies here.
package profile

import (
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// AcademicStatus enumerates where the student is in their education.
type AcademicStatus string

const (
	// StatusHighSchool - currently in high school.
	StatusHighSchool AcademicStatus = "high-school"
	// StatusUndergraduate - enrolled in an undergraduate program.
	StatusUndergraduate AcademicStatus = "undergraduate"
	// StatusGraduate - enrolled in a graduate program.
	StatusGraduate AcademicStatus = "graduate"
	// StatusOther - anything else (gap year, returning student, ...).
	StatusOther AcademicStatus = "other"
)

// IsValid reports whether the status is one of the enumerated values.
func (s AcademicStatus) IsValid() bool {
	switch s {
	case StatusHighSchool, StatusUndergraduate, StatusGraduate, StatusOther:
		return true
	default:
		return false
	}
}

// ImpliesEnrollment reports whether the status carries a class year with it.
// A year is collected for enrolled students and skipped for "other".
func (s AcademicStatus) ImpliesEnrollment() bool {
	switch s {
	case StatusHighSchool, StatusUndergraduate, StatusGraduate:
		return true
	default:
		return false
	}
}

// Display returns the human-readable form ("high-school" -> "High School").
func (s AcademicStatus) Display() string {
	words := strings.Split(string(s), "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// GPA is a grade point average on the 0.0-4.0 scale.
type GPA float64

// IsValid reports whether the GPA is within the 0.0-4.0 range inclusive.
func (g GPA) IsValid() bool {
	return g >= 0.0 && g <= 4.0
}

// String formats the GPA to one decimal place, the way it is displayed.
func (g GPA) String() string {
	return fmt.Sprintf("%.1f", float64(g))
}

// GraduationYear is the expected year of graduation.
type GraduationYear int

// IsValid performs a sanity check on the year.
func (y GraduationYear) IsValid() bool {
	return y >= 1950 && y <= 2100
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE DRAFT
// ══════════════════════════════════════════════════════════════════════════════

// ProfileDraft is the in-progress onboarding record. It has a single writer
// (the wizard controller) for the duration of onboarding and is append-only
// across steps: a later step never clears a field populated by an earlier
// step unless the user explicitly re-submits that field.
type ProfileDraft struct {
	// Identity
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Academic
	AcademicStatus AcademicStatus  `json:"academic_status"`
	Year           string          `json:"year,omitempty"`
	School         string          `json:"school,omitempty"`
	Major          string          `json:"major,omitempty"`
	GPA            *GPA            `json:"gpa,omitempty"`
	GraduationYear *GraduationYear `json:"graduation_year,omitempty"`

	// Preferences
	Background    []string `json:"background,omitempty"`
	FinancialNeed *bool    `json:"financial_need,omitempty"`
	// Interests preserve insertion order; display truncates to the first three.
	Interests []string `json:"interests,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfileDraft creates an empty draft, stamped with the current time.
func NewProfileDraft() *ProfileDraft {
	now := time.Now().UTC()
	return &ProfileDraft{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Merge applies the provided step data onto the draft. Only fields the user
// actually supplied (non-nil pointers, non-nil slices) are written, which is
// what keeps the draft append-only across steps.
func (d *ProfileDraft) Merge(data StepData) {
	if data.FirstName != nil {
		d.FirstName = strings.TrimSpace(*data.FirstName)
	}
	if data.LastName != nil {
		d.LastName = strings.TrimSpace(*data.LastName)
	}
	if data.AcademicStatus != nil {
		d.AcademicStatus = *data.AcademicStatus
	}
	if data.Year != nil {
		d.Year = strings.TrimSpace(*data.Year)
	}
	if data.School != nil {
		d.School = strings.TrimSpace(*data.School)
	}
	if data.Major != nil {
		d.Major = strings.TrimSpace(*data.Major)
	}
	if data.GPA != nil {
		gpa := *data.GPA
		d.GPA = &gpa
	}
	if data.GraduationYear != nil {
		year := *data.GraduationYear
		d.GraduationYear = &year
	}
	if data.Background != nil {
		d.Background = append([]string(nil), data.Background...)
	}
	if data.FinancialNeed != nil {
		need := *data.FinancialNeed
		d.FinancialNeed = &need
	}
	if data.Interests != nil {
		d.Interests = append([]string(nil), data.Interests...)
	}
	d.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy of the draft.
func (d *ProfileDraft) Clone() *ProfileDraft {
	if d == nil {
		return nil
	}
	c := *d
	if d.GPA != nil {
		gpa := *d.GPA
		c.GPA = &gpa
	}
	if d.GraduationYear != nil {
		year := *d.GraduationYear
		c.GraduationYear = &year
	}
	if d.FinancialNeed != nil {
		need := *d.FinancialNeed
		c.FinancialNeed = &need
	}
	if d.Background != nil {
		c.Background = append([]string(nil), d.Background...)
	}
	if d.Interests != nil {
		c.Interests = append([]string(nil), d.Interests...)
	}
	return &c
}

// FullName returns "First Last" for display and for the flattened payload.
func (d *ProfileDraft) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// ValidateForSubmission checks the invariants a draft must satisfy before it
// may be handed to the discovery trigger.
func (d *ProfileDraft) ValidateForSubmission() ValidationErrors {
	errs := ValidationErrors{}
	if d.FirstName == "" {
		errs[FieldFirstName] = "first name is required"
	}
	if d.LastName == "" {
		errs[FieldLastName] = "last name is required"
	}
	if !d.AcademicStatus.IsValid() {
		errs[FieldAcademicStatus] = "academic status is required"
	}
	if d.GPA != nil && !d.GPA.IsValid() {
		errs[FieldGPA] = "gpa must be between 0.0 and 4.0"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY
// ══════════════════════════════════════════════════════════════════════════════

// Summary is the read model shown on the completion screen.
type Summary struct {
	Name           string   `json:"name"`
	AcademicStatus string   `json:"academic_status"`
	School         string   `json:"school,omitempty"`
	Major          string   `json:"major,omitempty"`
	GPA            string   `json:"gpa,omitempty"`
	Interests      []string `json:"interests,omitempty"`
}

// maxSummaryInterests caps the interests shown on the completion screen.
const maxSummaryInterests = 3

// BuildSummary flattens the draft into its display summary. Interests are
// truncated to the first three in insertion order.
func (d *ProfileDraft) BuildSummary() Summary {
	s := Summary{
		Name:   d.FullName(),
		School: d.School,
		Major:  d.Major,
	}
	status := d.AcademicStatus.Display()
	if d.Year != "" {
		status = fmt.Sprintf("%s (%s)", status, d.Year)
	}
	s.AcademicStatus = status
	if d.GPA != nil {
		s.GPA = d.GPA.String()
	}
	if len(d.Interests) > 0 {
		n := len(d.Interests)
		if n > maxSummaryInterests {
			n = maxSummaryInterests
		}
		s.Interests = append([]string(nil), d.Interests[:n]...)
	}
	return s
}
