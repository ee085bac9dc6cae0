package application

// Category is the semantic bucket a status renders under. It drives color and
// emphasis without the domain knowing about any particular design system.
type Category string

const (
	CategoryPending  Category = "pending"  // draft, not yet in play
	CategoryActive   Category = "active"   // submitted, moving through review
	CategoryPositive Category = "positive" // finalist, awarded
	CategoryNegative Category = "negative" // declined, expired
	CategoryNeutral  Category = "neutral"  // unknown statuses
)

// Descriptor is the fixed presentation mapping for one status: label,
// semantic category, and icon identity.
type Descriptor struct {
	Status   Status   `json:"status"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Icon     string   `json:"icon"`
	Accent   string   `json:"accent"`
}

// Classify maps a status to its presentation descriptor via an exhaustive
// mapping with a mandatory default arm. An unrecognized status falls back to
// a generic descriptor rather than failing, since the backend's status
// vocabulary may evolve independently of this client.
func Classify(status Status) Descriptor {
	switch status {
	case StatusDraft:
		return Descriptor{Status: status, Label: "Draft", Category: CategoryPending, Icon: "edit", Accent: "amber"}
	case StatusSubmitted:
		return Descriptor{Status: status, Label: "Submitted", Category: CategoryActive, Icon: "clock", Accent: "blue"}
	case StatusUnderReview:
		return Descriptor{Status: status, Label: "Under Review", Category: CategoryActive, Icon: "file-text", Accent: "purple"}
	case StatusFinalist:
		return Descriptor{Status: status, Label: "Finalist", Category: CategoryPositive, Icon: "award", Accent: "yellow"}
	case StatusAwarded:
		return Descriptor{Status: status, Label: "Award Won!", Category: CategoryPositive, Icon: "check-circle", Accent: "green"}
	case StatusDeclined:
		return Descriptor{Status: status, Label: "Not Selected", Category: CategoryNegative, Icon: "x-circle", Accent: "gray"}
	case StatusExpired:
		return Descriptor{Status: status, Label: "Deadline Passed", Category: CategoryNegative, Icon: "alert-circle", Accent: "red"}
	default:
		return Descriptor{Status: status, Label: string(status), Category: CategoryNeutral, Icon: "file-text", Accent: "muted"}
	}
}
