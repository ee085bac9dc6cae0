package application

// PortfolioStats is the aggregate over a user's application collection.
// It is always the result of DeriveStats over the current collection - the
// struct is never mutated independently, which is what keeps tab badges and
// list contents from diverging.
type PortfolioStats struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Submitted int `json:"submitted"`
	Awarded   int `json:"awarded"`

	// TotalValue sums scholarship amounts across all applications
	// (the "applied for" total).
	TotalValue float64 `json:"total_value"`

	// TotalWon sums award amounts across awarded applications.
	TotalWon float64 `json:"total_won"`
}

// DeriveStats folds the collection into its portfolio statistics.
func DeriveStats(records []Record) PortfolioStats {
	stats := PortfolioStats{Total: len(records)}
	for _, r := range records {
		stats.TotalValue += r.ScholarshipAmount
		switch r.Status {
		case StatusDraft:
			stats.Draft++
		case StatusSubmitted:
			stats.Submitted++
		case StatusAwarded:
			stats.Awarded++
			stats.TotalWon += r.WonAmount()
		}
	}
	return stats
}

// CountByStatus folds the collection into per-status counts for every status
// in the enumerated taxonomy, plus any unknown statuses present.
func CountByStatus(records []Record) map[Status]int {
	counts := make(map[Status]int, len(KnownStatuses))
	for _, s := range KnownStatuses {
		counts[s] = 0
	}
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}

// Equal reports whether two stats aggregates are identical. Used to reconcile
// the backend's precomputed stats against the local fold.
func (s PortfolioStats) Equal(other PortfolioStats) bool {
	return s == other
}
