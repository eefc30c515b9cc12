package analysis

import "github.com/chanuka/integrity/backend/internal/domain"

// ImpactThresholds are the financial-impact tiers shared by severity scoring
// and the financial risk ladder.
type ImpactThresholds struct {
	Critical float64
	High     float64
	Medium   float64
	Low      float64
}

// Config carries every tunable the engine uses. It is constructed once and
// never mutated; components receive it by value at creation.
type Config struct {
	// Timing detection windows, in days.
	SuspiciousDays     int
	VerySuspiciousDays int

	// Disclosure completeness thresholds. AdequateDisclosure triggers the
	// conflict; CompleteDisclosure escalates its severity.
	AdequateDisclosure float64
	CompleteDisclosure float64

	// RecentActivityDays bounds the "recent affiliation" context bonus.
	RecentActivityDays int

	Impact ImpactThresholds

	// TypeWeights are the base severity scores per conflict type.
	TypeWeights map[domain.ConflictType]int
	// UnknownTypeWeight applies to conflict types missing from TypeWeights.
	UnknownTypeWeight int

	// LeadershipRoles is matched case-insensitively as substrings of an
	// affiliation role.
	LeadershipRoles []string

	// Node/edge presentation ladders keyed by severity.
	SeverityColors map[domain.Severity]string
	EdgeWeights    map[domain.Severity]int
	NodeSizes      map[domain.Severity]int

	// Fan-out bounds.
	ActiveSponsorLimit int
	SponsorConcurrency int

	// TrendPredictionProbability is the fixed placeholder confidence attached
	// to trend predictions.
	TrendPredictionProbability float64
}

// DefaultConfig returns the engine's baseline thresholds and weights.
func DefaultConfig() Config {
	return Config{
		SuspiciousDays:     30,
		VerySuspiciousDays: 7,
		AdequateDisclosure: 0.7,
		CompleteDisclosure: 0.9,
		RecentActivityDays: 90,
		Impact: ImpactThresholds{
			Critical: 10_000_000,
			High:     5_000_000,
			Medium:   1_000_000,
			Low:      100_000,
		},
		TypeWeights: map[domain.ConflictType]int{
			domain.ConflictTimingSuspicious:     45,
			domain.ConflictFinancialDirect:      40,
			domain.ConflictFamilyBusiness:       35,
			domain.ConflictVotingPattern:        30,
			domain.ConflictFinancialIndirect:    25,
			domain.ConflictOrganizational:       20,
			domain.ConflictDisclosureIncomplete: 15,
		},
		UnknownTypeWeight: 10,
		LeadershipRoles: []string{
			"director", "board", "executive", "chairman",
			"ceo", "president", "cfo", "coo",
		},
		SeverityColors: map[domain.Severity]string{
			domain.SeverityCritical: "#dc2626",
			domain.SeverityHigh:     "#ea580c",
			domain.SeverityMedium:   "#d97706",
			domain.SeverityLow:      "#65a30d",
		},
		EdgeWeights: map[domain.Severity]int{
			domain.SeverityCritical: 5,
			domain.SeverityHigh:     3,
			domain.SeverityMedium:   2,
			domain.SeverityLow:      1,
		},
		NodeSizes: map[domain.Severity]int{
			domain.SeverityCritical: 18,
			domain.SeverityHigh:     14,
			domain.SeverityMedium:   10,
			domain.SeverityLow:      6,
		},
		ActiveSponsorLimit:         1000,
		SponsorConcurrency:         8,
		TrendPredictionProbability: 0.2,
	}
}
