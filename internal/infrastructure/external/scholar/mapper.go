package scholar

import (
	"errors"

	"github.com/scholarstream/scholarstream-core/internal/domain/application"
	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
)

// ErrNilDTO indicates a nil DTO was passed to a mapping function.
var ErrNilDTO = errors.New("scholar: nil DTO")

// Mapper transforms between backend DTOs and domain entities. It protects the
// domain from external API changes.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// FlattenProfile converts a complete profile draft into the flattened payload
// the discovery endpoint expects.
func (m *Mapper) FlattenProfile(draft *profile.ProfileDraft) ProfilePayload {
	p := ProfilePayload{
		Name:           draft.FullName(),
		AcademicStatus: string(draft.AcademicStatus),
		Year:           draft.Year,
		School:         draft.School,
		Major:          draft.Major,
		Background:     draft.Background,
		FinancialNeed:  draft.FinancialNeed,
		Interests:      draft.Interests,
	}
	if draft.GPA != nil {
		gpa := float64(*draft.GPA)
		p.GPA = &gpa
	}
	if draft.GraduationYear != nil {
		year := int(*draft.GraduationYear)
		p.GraduationYear = &year
	}
	return p
}

// RecordFromDTO converts one ApplicationDTO into a domain record. Unknown
// statuses are carried through untouched; the view layer classifies them with
// its fallback descriptor.
func (m *Mapper) RecordFromDTO(dto *ApplicationDTO) (application.Record, error) {
	if dto == nil {
		return application.Record{}, ErrNilDTO
	}

	r := application.Record{
		ApplicationID:      dto.ApplicationID,
		ScholarshipID:      dto.ScholarshipID,
		ScholarshipName:    dto.ScholarshipName,
		ScholarshipAmount:  dto.ScholarshipAmount,
		Status:             application.Status(dto.Status),
		ConfirmationNumber: dto.ConfirmationNumber,
		Notes:              dto.Notes,
	}
	if dto.SubmittedAt != nil {
		t := dto.SubmittedAt.UTC()
		r.SubmittedAt = &t
	}
	if dto.AwardAmount != nil {
		amount := *dto.AwardAmount
		r.AwardAmount = &amount
	}
	return r, nil
}

// RecordsFromResponse converts the full applications payload. Records that
// violate the backend contract are dropped rather than poisoning the cache;
// the caller decides whether to log them.
func (m *Mapper) RecordsFromResponse(resp *ApplicationsResponseDTO) ([]application.Record, []error) {
	if resp == nil {
		return nil, []error{ErrNilDTO}
	}

	records := make([]application.Record, 0, len(resp.Applications))
	var dropped []error
	for i := range resp.Applications {
		r, err := m.RecordFromDTO(&resp.Applications[i])
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		if err := r.Validate(); err != nil {
			dropped = append(dropped, err)
			continue
		}
		records = append(records, r)
	}
	return records, dropped
}

// StatsFromDTO converts the precomputed aggregate.
func (m *Mapper) StatsFromDTO(dto StatsDTO) application.PortfolioStats {
	return application.PortfolioStats{
		Total:      dto.Total,
		Draft:      dto.Draft,
		Submitted:  dto.Submitted,
		Awarded:    dto.Awarded,
		TotalValue: dto.TotalValue,
		TotalWon:   dto.TotalWon,
	}
}
