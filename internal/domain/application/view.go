package application

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// TABS
// ══════════════════════════════════════════════════════════════════════════════

// Tab identifies one view of the portfolio list.
type Tab string

const (
	TabAll       Tab = "all"
	TabDraft     Tab = "draft"
	TabSubmitted Tab = "submitted"
	TabAwarded   Tab = "awarded"
	// TabArchived groups the closed-out negative outcomes.
	TabArchived Tab = "archived"
)

// Tabs lists the portfolio tabs in display order.
var Tabs = []Tab{TabAll, TabDraft, TabSubmitted, TabAwarded, TabArchived}

// IsValid reports whether the tab exists.
func (t Tab) IsValid() bool {
	switch t {
	case TabAll, TabDraft, TabSubmitted, TabAwarded, TabArchived:
		return true
	default:
		return false
	}
}

// matches reports whether a record belongs on the tab.
func (t Tab) matches(r Record) bool {
	switch t {
	case TabAll:
		return true
	case TabDraft:
		return r.Status == StatusDraft
	case TabSubmitted:
		return r.Status == StatusSubmitted
	case TabAwarded:
		return r.Status == StatusAwarded
	case TabArchived:
		return r.Status == StatusDeclined || r.Status == StatusExpired
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// FILTERING
// ══════════════════════════════════════════════════════════════════════════════

// Filter returns the subsequence of records matching the status, or the full
// collection for "all". Order-preserving: the filter itself never reorders.
func Filter(records []Record, statusOrAll string) []Record {
	if statusOrAll == "" || statusOrAll == string(TabAll) {
		return append([]Record(nil), records...)
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if string(r.Status) == statusOrAll {
			out = append(out, r)
		}
	}
	return out
}

// FilterTab returns the subsequence of records belonging on the tab,
// preserving order.
func FilterTab(records []Record, tab Tab) []Record {
	if tab == TabAll {
		return append([]Record(nil), records...)
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if tab.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// TabCounts derives the badge count for every tab from the same collection
// that backs the rendered list, guaranteeing badge and list never diverge.
func TabCounts(records []Record) map[Tab]int {
	counts := make(map[Tab]int, len(Tabs))
	for _, t := range Tabs {
		counts[t] = 0
	}
	for _, r := range records {
		for _, t := range Tabs {
			if t.matches(r) {
				counts[t]++
			}
		}
	}
	return counts
}

// ══════════════════════════════════════════════════════════════════════════════
// EMPTY STATES & HEADERS
// ══════════════════════════════════════════════════════════════════════════════

// EmptyState is the copy shown when a tab has no records.
type EmptyState struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	CallToAction string `json:"call_to_action"`
}

var emptyStates = map[Tab]EmptyState{
	TabAll: {
		Title:        "No applications yet",
		Description:  "Start applying to scholarships to see them here",
		CallToAction: "Find Scholarships",
	},
	TabDraft: {
		Title:        "No drafts in progress",
		Description:  "When you start an application, you'll see it here",
		CallToAction: "Find Scholarships",
	},
	TabSubmitted: {
		Title:        "No submitted applications",
		Description:  "Applications you've submitted will appear here",
		CallToAction: "Find Scholarships",
	},
	TabAwarded: {
		Title:        "No awards yet",
		Description:  "Keep applying! Awards will show up here when you win",
		CallToAction: "Find More Opportunities",
	},
	TabArchived: {
		Title:        "No archived applications",
		Description:  "Declined or expired applications will appear here",
		CallToAction: "Find More Opportunities",
	},
}

// EmptyStateFor returns the copy for an empty tab; unknown tabs fall back to
// the "all" copy.
func EmptyStateFor(tab Tab) EmptyState {
	if es, ok := emptyStates[tab]; ok {
		return es
	}
	return emptyStates[TabAll]
}

// HeaderLine renders the portfolio summary line shown above the list.
func HeaderLine(stats PortfolioStats) string {
	return fmt.Sprintf("%d submitted, %d in progress, %d won",
		stats.Submitted, stats.Draft, stats.Awarded)
}
