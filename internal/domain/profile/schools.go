package profile

import "strings"

// CuratedSchools is the suggestion list offered at the school step. The field
// remains free text - a school outside this list is still valid.
var CuratedSchools = []string{
	// Ivy League
	"Harvard University",
	"Yale University",
	"Princeton University",
	"Columbia University",
	"University of Pennsylvania",
	"Brown University",
	"Dartmouth College",
	"Cornell University",

	// Top public universities
	"University of California, Berkeley",
	"University of California, Los Angeles (UCLA)",
	"University of Michigan",
	"University of Virginia",
	"University of North Carolina at Chapel Hill",
	"University of Florida",
	"University of Texas at Austin",
	"University of Wisconsin-Madison",
	"University of Washington",
	"Georgia Institute of Technology",
	"University of Illinois Urbana-Champaign",
	"Ohio State University",
	"Pennsylvania State University",
	"Purdue University",
	"University of Maryland",
	"University of Minnesota",
	"Rutgers University",
	"University of Pittsburgh",

	// Top private universities
	"Stanford University",
	"Massachusetts Institute of Technology (MIT)",
	"Duke University",
	"Northwestern University",
	"University of Chicago",
	"Johns Hopkins University",
	"California Institute of Technology (Caltech)",
	"Rice University",
	"Vanderbilt University",
	"Washington University in St. Louis",
	"Emory University",
	"Georgetown University",
	"Carnegie Mellon University",
	"University of Southern California",
	"New York University",
	"Boston University",
	"Tufts University",
	"Wake Forest University",

	// More UC schools
	"University of California, San Diego",
	"University of California, Davis",
	"University of California, Santa Barbara",
	"University of California, Irvine",
	"University of California, Riverside",
	"University of California, Santa Cruz",
	"University of California, Merced",

	// Other notable universities
	"University of Notre Dame",
	"University of Miami",
	"Boston College",
	"Northeastern University",
	"Syracuse University",
	"University of Rochester",
	"Case Western Reserve University",
	"Tulane University",
	"Lehigh University",
	"Rensselaer Polytechnic Institute",
	"Worcester Polytechnic Institute",
	"University of Connecticut",
	"University of Delaware",
	"George Washington University",
	"American University",
	"Howard University",
	"Spelman College",
	"Morehouse College",

	// Free-text escape hatch
	"Other",
}

// Suggestion list sizes: the empty query shows a short head of the list, a
// non-empty query widens the window.
const (
	defaultSuggestionLimit = 10
	searchSuggestionLimit  = 20
)

// SearchSchools returns curated schools matching the query, case-insensitive
// substring match, capped for display. An empty query returns the head of the
// curated list.
func SearchSchools(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		n := defaultSuggestionLimit
		if n > len(CuratedSchools) {
			n = len(CuratedSchools)
		}
		return append([]string(nil), CuratedSchools[:n]...)
	}

	lower := strings.ToLower(query)
	matches := make([]string, 0, searchSuggestionLimit)
	for _, school := range CuratedSchools {
		if strings.Contains(strings.ToLower(school), lower) {
			matches = append(matches, school)
			if len(matches) == searchSuggestionLimit {
				break
			}
		}
	}
	return matches
}
