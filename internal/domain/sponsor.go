package domain

import "time"

// Sponsor models a legislator node in the graph.
type Sponsor struct {
	ID                int64
	FullName          string
	Party             string
	District          string
	IsActive          bool
	FinancialExposure float64
	// VotingAlignment is the sponsor's party-line alignment percentage
	// (0-100). Nil when no voting record is available.
	VotingAlignment *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Affiliation is a declared relationship between a sponsor and an organization.
type Affiliation struct {
	ID           int64
	SponsorID    int64
	Organization string
	Role         string
	// Type categorizes the affiliation: economic, professional, honorary, family.
	Type string
	// ConflictMarker is an optional editorial flag set during intake:
	// financial_direct, financial_indirect, ownership, influence, representation.
	ConflictMarker string
	StartDate      time.Time
	EndDate        *time.Time
}

// Active reports whether the affiliation has no recorded end date.
func (a Affiliation) Active() bool {
	return a.EndDate == nil
}

// TransparencyRecord is a sponsor's declared interest, optionally verified.
type TransparencyRecord struct {
	ID             int64
	SponsorID      int64
	DisclosureType string
	Amount         float64
	Verified       bool
	FiledAt        time.Time
}

// Sponsorship links a sponsor to a bill they introduced or co-sponsored.
type Sponsorship struct {
	SponsorID   int64
	BillID      string
	Role        string
	SponsoredAt time.Time
}

// Bill models a bill node referenced by sponsorships and conflicts.
type Bill struct {
	ID             string
	Title          string
	Summary        string
	Status         string
	IntroducedDate time.Time
}
