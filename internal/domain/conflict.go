package domain

import "time"

// ConflictType identifies which detection algorithm produced a conflict.
type ConflictType string

const (
	ConflictFinancialDirect      ConflictType = "financial_direct"
	ConflictFinancialIndirect    ConflictType = "financial_indirect"
	ConflictOrganizational       ConflictType = "organizational"
	ConflictFamilyBusiness       ConflictType = "family_business"
	ConflictVotingPattern        ConflictType = "voting_pattern"
	ConflictTimingSuspicious     ConflictType = "timing_suspicious"
	ConflictDisclosureIncomplete ConflictType = "disclosure_incomplete"
)

// Severity buckets a numeric conflict score for presentation and triage.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank maps a severity onto the 1-4 ordinal scale used by trend and cluster
// averaging. Unknown severities rank as low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// SeverityFromRank is the inverse of Rank for rounded averages.
func SeverityFromRank(rank int) Severity {
	switch {
	case rank >= 4:
		return SeverityCritical
	case rank == 3:
		return SeverityHigh
	case rank == 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ConflictDetection is one detected conflict instance. Detections are computed
// values: they are rebuilt from current affiliation, sponsorship and
// transparency state on every call and never persisted.
type ConflictDetection struct {
	ConflictID      string
	SponsorID       int64
	Type            ConflictType
	Severity        Severity
	Description     string
	AffectedBills   []string
	FinancialImpact float64
	DetectedAt      time.Time
	Confidence      float64
	// Evidence holds opaque reference strings such as "affiliation:12" and
	// "org:Acme Corp" that the graph builder resolves into nodes.
	Evidence             []string
	RelatedAffiliationID *int64
}
