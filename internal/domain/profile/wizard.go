package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// WIZARD STATE
// ══════════════════════════════════════════════════════════════════════════════

// StepIndex identifies one of the six onboarding steps (0-5).
type StepIndex int

// The six onboarding steps, in order.
const (
	StepName       StepIndex = 0
	StepAcademic   StepIndex = 1
	StepSchool     StepIndex = 2
	StepBackground StepIndex = 3
	StepInterests  StepIndex = 4
	StepComplete   StepIndex = 5

	// StepCount is the total number of steps.
	StepCount = 6
)

// IsValid reports whether the index addresses an existing step.
func (s StepIndex) IsValid() bool {
	return s >= 0 && s < StepCount
}

// IsTerminal reports whether this is the final (submission) step.
func (s StepIndex) IsTerminal() bool {
	return s == StepComplete
}

// String returns the step's name for logging.
func (s StepIndex) String() string {
	if schema, ok := stepSchemas[s]; ok {
		return schema.Name
	}
	return fmt.Sprintf("step-%d", int(s))
}

// WizardState tracks the cursor and per-step validity of the onboarding flow.
// The cursor only moves forward past a step whose required fields validated;
// backward navigation is always permitted and never re-validates.
type WizardState struct {
	// Step is the current cursor position.
	Step StepIndex `json:"step"`

	// Valid records which steps have passed validation.
	Valid [StepCount]bool `json:"valid"`

	// Submitting guards the terminal transition: set while the discovery
	// trigger is in flight so submit cannot be invoked twice.
	Submitting bool `json:"submitting"`
}

// NewWizardState returns the initial state, positioned at the first step.
func NewWizardState() WizardState {
	return WizardState{Step: StepName}
}

// ══════════════════════════════════════════════════════════════════════════════
// STEP DATA & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// Field names a draft field in validation errors and step schemas. The names
// match the wire keys of the flattened profile payload.
type Field string

const (
	FieldFirstName      Field = "first_name"
	FieldLastName       Field = "last_name"
	FieldAcademicStatus Field = "academic_status"
	FieldYear           Field = "year"
	FieldSchool         Field = "school"
	FieldMajor          Field = "major"
	FieldGPA            Field = "gpa"
	FieldGraduationYear Field = "graduation_year"
	FieldBackground     Field = "background"
	FieldFinancialNeed  Field = "financial_need"
	FieldInterests      Field = "interests"
)

// StepData carries the fields a user submitted for one step. Nil pointers and
// nil slices mean "not provided"; the wizard merges only provided fields so
// earlier answers are never silently cleared.
type StepData struct {
	FirstName      *string         `json:"first_name,omitempty"`
	LastName       *string         `json:"last_name,omitempty"`
	AcademicStatus *AcademicStatus `json:"academic_status,omitempty"`
	Year           *string         `json:"year,omitempty"`
	School         *string         `json:"school,omitempty"`
	Major          *string         `json:"major,omitempty"`
	GPA            *GPA            `json:"gpa,omitempty"`
	GraduationYear *GraduationYear `json:"graduation_year,omitempty"`
	Background     []string        `json:"background,omitempty"`
	FinancialNeed  *bool           `json:"financial_need,omitempty"`
	Interests      []string        `json:"interests,omitempty"`
}

// has reports whether a field was provided with a non-blank value.
func (d StepData) has(f Field) bool {
	switch f {
	case FieldFirstName:
		return d.FirstName != nil && strings.TrimSpace(*d.FirstName) != ""
	case FieldLastName:
		return d.LastName != nil && strings.TrimSpace(*d.LastName) != ""
	case FieldAcademicStatus:
		return d.AcademicStatus != nil && *d.AcademicStatus != ""
	case FieldYear:
		return d.Year != nil && strings.TrimSpace(*d.Year) != ""
	case FieldSchool:
		return d.School != nil && strings.TrimSpace(*d.School) != ""
	case FieldMajor:
		return d.Major != nil && strings.TrimSpace(*d.Major) != ""
	case FieldGPA:
		return d.GPA != nil
	case FieldGraduationYear:
		return d.GraduationYear != nil
	case FieldBackground:
		return d.Background != nil
	case FieldFinancialNeed:
		return d.FinancialNeed != nil
	case FieldInterests:
		return len(d.Interests) > 0
	default:
		return false
	}
}

// ValidationErrors is a field-keyed set of validation messages. It is local
// and recoverable: it never leaves the client core for the backend.
type ValidationErrors map[Field]string

// Error implements the error interface with a deterministic field order.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[Field(f)]))
	}
	return "profile: validation failed: " + strings.Join(parts, "; ")
}

// ErrStepInvalid is the sentinel wrapped by every ValidationErrors result,
// so callers can branch with errors.Is.
var ErrStepInvalid = errors.New("profile: step validation failed")

// ══════════════════════════════════════════════════════════════════════════════
// STEP SCHEMAS
// ══════════════════════════════════════════════════════════════════════════════

// StepSchema enumerates the required and optional fields of one step.
type StepSchema struct {
	Step     StepIndex
	Name     string
	Required []Field
	Optional []Field
}

var stepSchemas = map[StepIndex]StepSchema{
	StepName: {
		Step:     StepName,
		Name:     "name",
		Required: []Field{FieldFirstName, FieldLastName},
	},
	StepAcademic: {
		Step:     StepAcademic,
		Name:     "academic-status",
		Required: []Field{FieldAcademicStatus},
		Optional: []Field{FieldYear},
	},
	StepSchool: {
		Step:     StepSchool,
		Name:     "school",
		Required: []Field{FieldSchool},
		Optional: []Field{FieldMajor, FieldGPA, FieldGraduationYear},
	},
	StepBackground: {
		Step:     StepBackground,
		Name:     "background",
		Required: []Field{FieldFinancialNeed},
		Optional: []Field{FieldBackground},
	},
	StepInterests: {
		Step:     StepInterests,
		Name:     "interests",
		Required: []Field{FieldInterests},
	},
	StepComplete: {
		Step: StepComplete,
		Name: "complete",
	},
}

// SchemaFor returns the schema of the given step.
func SchemaFor(step StepIndex) (StepSchema, bool) {
	schema, ok := stepSchemas[step]
	return schema, ok
}

// Validate checks the step data against the schema: presence for required
// fields, format for whichever optional fields were actually entered.
// It returns nil when the data is acceptable.
func (s StepSchema) Validate(data StepData, draft *ProfileDraft) ValidationErrors {
	errs := ValidationErrors{}

	for _, f := range s.Required {
		if !data.has(f) && !draftHas(draft, f) {
			errs[f] = fmt.Sprintf("%s is required", f)
		}
	}

	// Conditional requirement: enrolled statuses carry a class year.
	if s.Step == StepAcademic {
		status := draftStatus(draft)
		if data.AcademicStatus != nil {
			status = *data.AcademicStatus
		}
		if data.AcademicStatus != nil && !status.IsValid() {
			errs[FieldAcademicStatus] = "academic status must be one of high-school, undergraduate, graduate, other"
		} else if status.ImpliesEnrollment() && !data.has(FieldYear) && !draftHas(draft, FieldYear) {
			errs[FieldYear] = "year is required for enrolled students"
		}
	}

	// Field-level format checks on whatever was entered, regardless of step.
	if data.GPA != nil && !data.GPA.IsValid() {
		errs[FieldGPA] = "gpa must be between 0.0 and 4.0"
	}
	if data.GraduationYear != nil && !data.GraduationYear.IsValid() {
		errs[FieldGraduationYear] = "graduation year is out of range"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// draftHas reports whether the draft already carries a value for the field,
// so required fields accepted on an earlier pass stay satisfied when the user
// revisits a step without retyping them.
func draftHas(draft *ProfileDraft, f Field) bool {
	if draft == nil {
		return false
	}
	switch f {
	case FieldFirstName:
		return draft.FirstName != ""
	case FieldLastName:
		return draft.LastName != ""
	case FieldAcademicStatus:
		return draft.AcademicStatus.IsValid()
	case FieldYear:
		return draft.Year != ""
	case FieldSchool:
		return draft.School != ""
	case FieldMajor:
		return draft.Major != ""
	case FieldGPA:
		return draft.GPA != nil
	case FieldGraduationYear:
		return draft.GraduationYear != nil
	case FieldBackground:
		return len(draft.Background) > 0
	case FieldFinancialNeed:
		return draft.FinancialNeed != nil
	case FieldInterests:
		return len(draft.Interests) > 0
	default:
		return false
	}
}

func draftStatus(draft *ProfileDraft) AcademicStatus {
	if draft == nil {
		return ""
	}
	return draft.AcademicStatus
}
