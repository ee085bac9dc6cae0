package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_PreservesOrder(t *testing.T) {
	records := []Record{
		{ApplicationID: "app-1", Status: StatusDraft},
		{ApplicationID: "app-2", Status: StatusSubmitted},
		{ApplicationID: "app-3", Status: StatusDraft},
		{ApplicationID: "app-4", Status: StatusAwarded, AwardAmount: floatPtr(1000)},
		{ApplicationID: "app-5", Status: StatusDraft},
	}

	drafts := Filter(records, "draft")
	assert.Len(t, drafts, 3)
	assert.Equal(t, "app-1", drafts[0].ApplicationID)
	assert.Equal(t, "app-3", drafts[1].ApplicationID)
	assert.Equal(t, "app-5", drafts[2].ApplicationID)
}

func TestFilter_AllReturnsFullCollection(t *testing.T) {
	records := samplePortfolio()

	all := Filter(records, "all")
	assert.Equal(t, records, all)

	// Empty selector behaves like "all".
	assert.Equal(t, records, Filter(records, ""))

	// The returned slice is a copy, not an alias.
	all[0].ApplicationID = "mutated"
	assert.Equal(t, "app-1", records[0].ApplicationID)
}

func TestFilterTab_Archived(t *testing.T) {
	records := []Record{
		{ApplicationID: "app-1", Status: StatusDeclined},
		{ApplicationID: "app-2", Status: StatusSubmitted},
		{ApplicationID: "app-3", Status: StatusExpired},
	}

	archived := FilterTab(records, TabArchived)
	assert.Len(t, archived, 2)
	assert.Equal(t, "app-1", archived[0].ApplicationID)
	assert.Equal(t, "app-3", archived[1].ApplicationID)
}

func TestTabCounts_ConsistentWithFilterTab(t *testing.T) {
	records := append(samplePortfolio(), Record{ApplicationID: "app-6", Status: Status("waitlisted")})

	counts := TabCounts(records)
	for _, tab := range Tabs {
		assert.Equal(t, len(FilterTab(records, tab)), counts[tab], string(tab))
	}
	assert.Equal(t, len(records), counts[TabAll])
}

func TestClassify_KnownStatuses(t *testing.T) {
	draft := Classify(StatusDraft)
	assert.Equal(t, "Draft", draft.Label)
	assert.Equal(t, CategoryPending, draft.Category)

	awarded := Classify(StatusAwarded)
	assert.Equal(t, "Award Won!", awarded.Label)
	assert.Equal(t, CategoryPositive, awarded.Category)
	assert.Equal(t, "green", awarded.Accent)

	declined := Classify(StatusDeclined)
	assert.Equal(t, "Not Selected", declined.Label)
	assert.Equal(t, CategoryNegative, declined.Category)
}

func TestClassify_UnknownStatusFallsBack(t *testing.T) {
	d := Classify(Status("waitlisted"))

	assert.Equal(t, "waitlisted", d.Label)
	assert.Equal(t, CategoryNeutral, d.Category)
	assert.Equal(t, "file-text", d.Icon)
	assert.Equal(t, "muted", d.Accent)
}

func TestEmptyStateFor(t *testing.T) {
	es := EmptyStateFor(TabDraft)
	assert.NotEmpty(t, es.Title)
	assert.NotEmpty(t, es.Description)

	// Unknown tabs still render something.
	fallback := EmptyStateFor(Tab("bogus"))
	assert.NotEmpty(t, fallback.Title)
}

func TestHeaderLine(t *testing.T) {
	stats := DeriveStats(samplePortfolio())
	assert.Equal(t, "1 submitted, 1 in progress, 1 won", HeaderLine(stats))
}
