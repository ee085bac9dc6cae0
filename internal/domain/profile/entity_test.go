package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func gpaPtr(g GPA) *GPA { return &g }

func boolPtr(b bool) *bool { return &b }

func statusPtr(s AcademicStatus) *AcademicStatus { return &s }

func TestAcademicStatus_IsValid(t *testing.T) {
	assert.True(t, StatusHighSchool.IsValid())
	assert.True(t, StatusUndergraduate.IsValid())
	assert.True(t, StatusGraduate.IsValid())
	assert.True(t, StatusOther.IsValid())
	assert.False(t, AcademicStatus("postdoc").IsValid())
	assert.False(t, AcademicStatus("").IsValid())
}

func TestAcademicStatus_ImpliesEnrollment(t *testing.T) {
	assert.True(t, StatusHighSchool.ImpliesEnrollment())
	assert.True(t, StatusUndergraduate.ImpliesEnrollment())
	assert.True(t, StatusGraduate.ImpliesEnrollment())
	assert.False(t, StatusOther.ImpliesEnrollment())
}

func TestAcademicStatus_Display(t *testing.T) {
	assert.Equal(t, "High School", StatusHighSchool.Display())
	assert.Equal(t, "Undergraduate", StatusUndergraduate.Display())
}

func TestGPA_IsValid(t *testing.T) {
	assert.True(t, GPA(0.0).IsValid())
	assert.True(t, GPA(3.8).IsValid())
	assert.True(t, GPA(4.0).IsValid())
	assert.False(t, GPA(4.1).IsValid())
	assert.False(t, GPA(-0.5).IsValid())
}

func TestProfileDraft_Merge_OnlyProvidedFields(t *testing.T) {
	draft := NewProfileDraft()
	draft.Merge(StepData{
		FirstName: strPtr("Ava"),
		LastName:  strPtr("Chen"),
	})

	// A later step that says nothing about the name must not clear it.
	draft.Merge(StepData{
		AcademicStatus: statusPtr(StatusUndergraduate),
		Year:           strPtr("Sophomore"),
	})

	assert.Equal(t, "Ava", draft.FirstName)
	assert.Equal(t, "Chen", draft.LastName)
	assert.Equal(t, StatusUndergraduate, draft.AcademicStatus)
	assert.Equal(t, "Sophomore", draft.Year)
}

func TestProfileDraft_Merge_TrimsWhitespace(t *testing.T) {
	draft := NewProfileDraft()
	draft.Merge(StepData{
		FirstName: strPtr("  Ava "),
		School:    strPtr(" Stanford University "),
	})

	assert.Equal(t, "Ava", draft.FirstName)
	assert.Equal(t, "Stanford University", draft.School)
}

func TestProfileDraft_Merge_ExplicitResubmitWins(t *testing.T) {
	draft := NewProfileDraft()
	draft.Merge(StepData{Interests: []string{"STEM"}})
	draft.Merge(StepData{Interests: []string{"Arts", "Community Service"}})

	assert.Equal(t, []string{"Arts", "Community Service"}, draft.Interests)
}

func TestProfileDraft_Merge_CopiesSlices(t *testing.T) {
	interests := []string{"STEM", "Arts"}
	draft := NewProfileDraft()
	draft.Merge(StepData{Interests: interests})

	interests[0] = "mutated"
	assert.Equal(t, "STEM", draft.Interests[0])
}

func TestProfileDraft_Clone_IsDeep(t *testing.T) {
	draft := NewProfileDraft()
	draft.Merge(StepData{
		FirstName:     strPtr("Ava"),
		GPA:           gpaPtr(3.8),
		FinancialNeed: boolPtr(true),
		Interests:     []string{"STEM"},
	})

	clone := draft.Clone()
	clone.FirstName = "Ben"
	*clone.GPA = 2.0
	clone.Interests[0] = "Arts"

	assert.Equal(t, "Ava", draft.FirstName)
	assert.Equal(t, GPA(3.8), *draft.GPA)
	assert.Equal(t, "STEM", draft.Interests[0])
}

func TestProfileDraft_ValidateForSubmission(t *testing.T) {
	draft := NewProfileDraft()
	errs := draft.ValidateForSubmission()
	assert.NotNil(t, errs)
	assert.Contains(t, errs, FieldFirstName)
	assert.Contains(t, errs, FieldLastName)
	assert.Contains(t, errs, FieldAcademicStatus)

	draft.Merge(StepData{
		FirstName:      strPtr("Ava"),
		LastName:       strPtr("Chen"),
		AcademicStatus: statusPtr(StatusUndergraduate),
	})
	assert.Nil(t, draft.ValidateForSubmission())

	draft.Merge(StepData{GPA: gpaPtr(5.0)})
	errs = draft.ValidateForSubmission()
	assert.Contains(t, errs, FieldGPA)
}

func TestBuildSummary_TruncatesInterests(t *testing.T) {
	draft := NewProfileDraft()
	draft.Merge(StepData{
		FirstName:      strPtr("Ava"),
		LastName:       strPtr("Chen"),
		AcademicStatus: statusPtr(StatusUndergraduate),
		Year:           strPtr("Sophomore"),
		GPA:            gpaPtr(3.8),
		Interests:      []string{"STEM", "Community Service", "Arts", "Athletics", "Music"},
	})

	summary := draft.BuildSummary()
	assert.Equal(t, "Ava Chen", summary.Name)
	assert.Equal(t, "Undergraduate (Sophomore)", summary.AcademicStatus)
	assert.Equal(t, "3.8", summary.GPA)
	assert.Equal(t, []string{"STEM", "Community Service", "Arts"}, summary.Interests)
}

func TestBuildSummary_NoYear(t *testing.T) {
	draft := NewProfileDraft()
	draft.Merge(StepData{
		FirstName:      strPtr("Ava"),
		LastName:       strPtr("Chen"),
		AcademicStatus: statusPtr(StatusOther),
	})

	summary := draft.BuildSummary()
	assert.Equal(t, "Other", summary.AcademicStatus)
	assert.Empty(t, summary.GPA)
	assert.Empty(t, summary.Interests)
}

func TestSearchSchools(t *testing.T) {
	head := SearchSchools("")
	assert.Len(t, head, defaultSuggestionLimit)
	assert.Equal(t, CuratedSchools[0], head[0])

	matches := SearchSchools("california")
	assert.NotEmpty(t, matches)
	for _, school := range matches {
		assert.Contains(t, school, "California")
	}
	assert.LessOrEqual(t, len(matches), searchSuggestionLimit)

	assert.Empty(t, SearchSchools("no such school anywhere"))
}
