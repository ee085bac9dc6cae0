package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepIndex_IsValid(t *testing.T) {
	assert.True(t, StepName.IsValid())
	assert.True(t, StepComplete.IsValid())
	assert.False(t, StepIndex(-1).IsValid())
	assert.False(t, StepIndex(StepCount).IsValid())
}

func TestStepIndex_IsTerminal(t *testing.T) {
	assert.True(t, StepComplete.IsTerminal())
	assert.False(t, StepName.IsTerminal())
	assert.False(t, StepInterests.IsTerminal())
}

func TestNewWizardState(t *testing.T) {
	state := NewWizardState()
	assert.Equal(t, StepName, state.Step)
	assert.False(t, state.Submitting)
	for _, v := range state.Valid {
		assert.False(t, v)
	}
}

func TestStepSchema_Validate_NameStep(t *testing.T) {
	schema, ok := SchemaFor(StepName)
	assert.True(t, ok)

	errs := schema.Validate(StepData{}, NewProfileDraft())
	assert.Contains(t, errs, FieldFirstName)
	assert.Contains(t, errs, FieldLastName)

	// Whitespace-only input does not count as provided.
	errs = schema.Validate(StepData{FirstName: strPtr("   "), LastName: strPtr("Chen")}, NewProfileDraft())
	assert.Contains(t, errs, FieldFirstName)
	assert.NotContains(t, errs, FieldLastName)

	errs = schema.Validate(StepData{FirstName: strPtr("Ava"), LastName: strPtr("Chen")}, NewProfileDraft())
	assert.Nil(t, errs)
}

func TestStepSchema_Validate_DraftSatisfiesRequired(t *testing.T) {
	schema, _ := SchemaFor(StepName)

	// Revisiting a step without retyping keeps earlier answers satisfied.
	draft := NewProfileDraft()
	draft.Merge(StepData{FirstName: strPtr("Ava"), LastName: strPtr("Chen")})

	errs := schema.Validate(StepData{}, draft)
	assert.Nil(t, errs)
}

func TestStepSchema_Validate_YearRequiredWhenEnrolled(t *testing.T) {
	schema, _ := SchemaFor(StepAcademic)

	errs := schema.Validate(StepData{AcademicStatus: statusPtr(StatusUndergraduate)}, NewProfileDraft())
	assert.Contains(t, errs, FieldYear)

	errs = schema.Validate(StepData{
		AcademicStatus: statusPtr(StatusUndergraduate),
		Year:           strPtr("Sophomore"),
	}, NewProfileDraft())
	assert.Nil(t, errs)

	// "other" carries no class year.
	errs = schema.Validate(StepData{AcademicStatus: statusPtr(StatusOther)}, NewProfileDraft())
	assert.Nil(t, errs)
}

func TestStepSchema_Validate_UnknownStatusRejected(t *testing.T) {
	schema, _ := SchemaFor(StepAcademic)

	errs := schema.Validate(StepData{AcademicStatus: statusPtr("postdoc")}, NewProfileDraft())
	assert.Contains(t, errs, FieldAcademicStatus)
}

func TestStepSchema_Validate_OptionalFormatChecks(t *testing.T) {
	schema, _ := SchemaFor(StepSchool)

	errs := schema.Validate(StepData{
		School: strPtr("Stanford University"),
		GPA:    gpaPtr(4.5),
	}, NewProfileDraft())
	assert.Contains(t, errs, FieldGPA)

	badYear := GraduationYear(1800)
	errs = schema.Validate(StepData{
		School:         strPtr("Stanford University"),
		GraduationYear: &badYear,
	}, NewProfileDraft())
	assert.Contains(t, errs, FieldGraduationYear)

	goodYear := GraduationYear(2027)
	errs = schema.Validate(StepData{
		School:         strPtr("Stanford University"),
		GPA:            gpaPtr(3.8),
		GraduationYear: &goodYear,
	}, NewProfileDraft())
	assert.Nil(t, errs)
}

func TestStepSchema_Validate_BackgroundStep(t *testing.T) {
	schema, _ := SchemaFor(StepBackground)

	errs := schema.Validate(StepData{}, NewProfileDraft())
	assert.Contains(t, errs, FieldFinancialNeed)

	// An explicit "no" is still an answer.
	errs = schema.Validate(StepData{FinancialNeed: boolPtr(false)}, NewProfileDraft())
	assert.Nil(t, errs)
}

func TestStepSchema_Validate_CompleteStepHasNoRequirements(t *testing.T) {
	schema, _ := SchemaFor(StepComplete)
	assert.Nil(t, schema.Validate(StepData{}, NewProfileDraft()))
}

func TestValidationErrors_ErrorIsDeterministic(t *testing.T) {
	errs := ValidationErrors{
		FieldLastName:  "last name is required",
		FieldFirstName: "first name is required",
	}
	msg := errs.Error()
	assert.Equal(t, "profile: validation failed: first_name: first name is required; last_name: last name is required", msg)
}
