package analysis

import (
	"strings"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// ContextFactors carry the circumstances around a detected conflict that
// influence its severity beyond type and financial impact.
type ContextFactors struct {
	RelatedAffiliations int
	// RecentActivity is true when the implicated affiliation started within
	// the recent-activity window.
	RecentActivity    bool
	LeadershipRole    bool
	DirectBeneficiary bool
}

// SeverityScorer converts weighted conflict factors into a numeric score and
// a severity bucket.
type SeverityScorer struct {
	cfg Config
}

// NewSeverityScorer constructs a scorer from the immutable engine config.
func NewSeverityScorer(cfg Config) *SeverityScorer {
	return &SeverityScorer{cfg: cfg}
}

// Score computes the numeric severity score for a conflict.
func (s *SeverityScorer) Score(conflictType domain.ConflictType, financialImpact float64, ctx ContextFactors) int {
	score, ok := s.cfg.TypeWeights[conflictType]
	if !ok {
		score = s.cfg.UnknownTypeWeight
	}

	switch {
	case financialImpact >= s.cfg.Impact.Critical:
		score += 40
	case financialImpact >= s.cfg.Impact.High:
		score += 25
	case financialImpact >= s.cfg.Impact.Medium:
		score += 15
	case financialImpact >= s.cfg.Impact.Low:
		score += 5
	}

	if ctx.RelatedAffiliations > 5 {
		score += 10
	}
	if ctx.RecentActivity {
		score += 15
	}
	if ctx.LeadershipRole {
		score += 12
	}
	if ctx.DirectBeneficiary {
		score += 20
	}

	return score
}

// Classify maps conflict factors straight to a severity bucket.
func (s *SeverityScorer) Classify(conflictType domain.ConflictType, financialImpact float64, ctx ContextFactors) domain.Severity {
	return DetermineSeverity(s.Score(conflictType, financialImpact, ctx))
}

// DetermineSeverity is the single canonical score-to-bucket mapping used for
// both conflict classification and risk profile levels.
func DetermineSeverity(score int) domain.Severity {
	switch {
	case score >= 75:
		return domain.SeverityCritical
	case score >= 55:
		return domain.SeverityHigh
	case score >= 35:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// isLeadershipRole reports whether the role contains any of the configured
// leadership keywords.
func (c Config) isLeadershipRole(role string) bool {
	role = strings.ToLower(role)
	for _, keyword := range c.LeadershipRoles {
		if strings.Contains(role, keyword) {
			return true
		}
	}
	return false
}

// isFinancialAffiliation reports whether an affiliation is financial in
// nature: an economic tie or one carrying a financial conflict marker.
func isFinancialAffiliation(a domain.Affiliation) bool {
	if strings.EqualFold(a.Type, "economic") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(a.ConflictMarker), "financial")
}

// isFinancialDisclosure reports whether a transparency record declares a
// financial interest.
func isFinancialDisclosure(r domain.TransparencyRecord) bool {
	return strings.Contains(strings.ToLower(r.DisclosureType), "financial")
}

// disclosureCompleteness is the ratio of verified financial disclosures to
// financial affiliations. With no financial affiliations there is nothing to
// disclose, so completeness is vacuously 1.
func disclosureCompleteness(affiliations []domain.Affiliation, records []domain.TransparencyRecord) float64 {
	expected := 0
	for _, a := range affiliations {
		if isFinancialAffiliation(a) {
			expected++
		}
	}
	if expected == 0 {
		return 1
	}
	actual := 0
	for _, r := range records {
		if r.Verified && isFinancialDisclosure(r) {
			actual++
		}
	}
	return float64(actual) / float64(expected)
}
