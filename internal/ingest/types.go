package ingest

import (
	"time"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// SponsorRecord is the seed-file representation of a sponsor with its nested
// affiliations and disclosures.
type SponsorRecord struct {
	ID                int64              `json:"id"`
	FullName          string             `json:"fullName"`
	Party             string             `json:"party"`
	District          string             `json:"district"`
	IsActive          bool               `json:"isActive"`
	FinancialExposure float64            `json:"financialExposure"`
	VotingAlignment   *float64           `json:"votingAlignment,omitempty"`
	Affiliations      []AffiliationInput `json:"affiliations"`
	Disclosures       []DisclosureInput  `json:"disclosures"`
}

// AffiliationInput models one declared organization relationship.
type AffiliationInput struct {
	ID             int64      `json:"id"`
	Organization   string     `json:"organization"`
	Role           string     `json:"role"`
	Type           string     `json:"type"`
	ConflictMarker string     `json:"conflictMarker,omitempty"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        *time.Time `json:"endDate,omitempty"`
}

// DisclosureInput models one transparency filing.
type DisclosureInput struct {
	ID             int64     `json:"id"`
	DisclosureType string    `json:"disclosureType"`
	Amount         float64   `json:"amount"`
	Verified       bool      `json:"verified"`
	FiledAt        time.Time `json:"filedAt"`
}

// BillRecord is the seed-file representation of a bill with its sponsorships.
type BillRecord struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Summary        string             `json:"summary"`
	Status         string             `json:"status"`
	IntroducedDate time.Time          `json:"introducedDate"`
	Sponsorships   []SponsorshipInput `json:"sponsorships"`
}

// SponsorshipInput links a seed bill to a sponsor.
type SponsorshipInput struct {
	SponsorID   int64     `json:"sponsorId"`
	Role        string    `json:"role"`
	SponsoredAt time.Time `json:"sponsoredAt"`
}

// ToDomain converts the record into storage models.
func (r SponsorRecord) ToDomain() (domain.Sponsor, []domain.Affiliation, []domain.TransparencyRecord) {
	sponsor := domain.Sponsor{
		ID:                r.ID,
		FullName:          r.FullName,
		Party:             r.Party,
		District:          r.District,
		IsActive:          r.IsActive,
		FinancialExposure: r.FinancialExposure,
		VotingAlignment:   r.VotingAlignment,
	}

	affiliations := make([]domain.Affiliation, 0, len(r.Affiliations))
	for _, a := range r.Affiliations {
		affiliations = append(affiliations, domain.Affiliation{
			ID:             a.ID,
			SponsorID:      r.ID,
			Organization:   a.Organization,
			Role:           a.Role,
			Type:           a.Type,
			ConflictMarker: a.ConflictMarker,
			StartDate:      a.StartDate,
			EndDate:        a.EndDate,
		})
	}

	records := make([]domain.TransparencyRecord, 0, len(r.Disclosures))
	for _, d := range r.Disclosures {
		records = append(records, domain.TransparencyRecord{
			ID:             d.ID,
			SponsorID:      r.ID,
			DisclosureType: d.DisclosureType,
			Amount:         d.Amount,
			Verified:       d.Verified,
			FiledAt:        d.FiledAt,
		})
	}

	return sponsor, affiliations, records
}

// ToDomain converts the record into storage models.
func (r BillRecord) ToDomain() (domain.Bill, []domain.Sponsorship) {
	bill := domain.Bill{
		ID:             r.ID,
		Title:          r.Title,
		Summary:        r.Summary,
		Status:         r.Status,
		IntroducedDate: r.IntroducedDate,
	}
	sponsorships := make([]domain.Sponsorship, 0, len(r.Sponsorships))
	for _, s := range r.Sponsorships {
		sponsorships = append(sponsorships, domain.Sponsorship{
			SponsorID:   s.SponsorID,
			BillID:      r.ID,
			Role:        s.Role,
			SponsoredAt: s.SponsoredAt,
		})
	}
	return bill, sponsorships
}
