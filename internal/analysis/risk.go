package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// Recommendation texts appended by the rule list in buildRecommendations.
const (
	recManualReview = "Flag for manual review: overall risk level warrants investigator attention."
	recFinancial    = "Audit declared financial exposure against sponsored legislation."
	recAffiliation  = "Review organizational affiliations for undeclared beneficial interests."
	recTransparency = "Request completion of outstanding financial disclosures."
	recBehavioral   = "Examine voting record for alignment anomalies."
	recMonitor      = "No immediate action; monitor ongoing activity."
)

// RiskProfileBuilder aggregates per-sponsor risk dimensions into one profile.
type RiskProfileBuilder struct {
	provider DataProvider
	cfg      Config
}

// NewRiskProfileBuilder constructs a builder over the data provider.
func NewRiskProfileBuilder(provider DataProvider, cfg Config) *RiskProfileBuilder {
	return &RiskProfileBuilder{provider: provider, cfg: cfg}
}

// Build computes the sponsor's risk profile. Returns ErrSponsorNotFound when
// the sponsor does not exist.
func (b *RiskProfileBuilder) Build(ctx context.Context, sponsorID int64) (domain.RiskProfile, error) {
	sponsor, err := b.provider.GetSponsor(ctx, sponsorID)
	if err != nil {
		return domain.RiskProfile{}, err
	}
	affiliations, err := b.provider.ListAffiliations(ctx, sponsorID)
	if err != nil {
		return domain.RiskProfile{}, fmt.Errorf("list affiliations for sponsor %d: %w", sponsorID, err)
	}
	transparency, err := b.provider.ListTransparencyRecords(ctx, sponsorID)
	if err != nil {
		return domain.RiskProfile{}, fmt.Errorf("list transparency records for sponsor %d: %w", sponsorID, err)
	}

	breakdown := domain.RiskBreakdown{
		FinancialRisk:    b.financialRisk(sponsor.FinancialExposure),
		AffiliationRisk:  b.affiliationRisk(affiliations),
		TransparencyRisk: transparencyRisk(affiliations, transparency),
		BehavioralRisk:   behavioralRisk(sponsor.VotingAlignment),
	}

	overall := int(math.Round(
		float64(breakdown.FinancialRisk)*0.35 +
			float64(breakdown.AffiliationRisk)*0.30 +
			float64(breakdown.TransparencyRisk)*0.20 +
			float64(breakdown.BehavioralRisk)*0.15))

	level := DetermineSeverity(overall)

	return domain.RiskProfile{
		SponsorID:       sponsorID,
		OverallScore:    overall,
		Level:           level,
		Breakdown:       breakdown,
		Recommendations: buildRecommendations(level, breakdown),
	}, nil
}

// financialRisk buckets the sponsor's declared exposure against the shared
// impact thresholds.
func (b *RiskProfileBuilder) financialRisk(exposure float64) int {
	switch {
	case exposure >= b.cfg.Impact.Critical:
		return 100
	case exposure >= b.cfg.Impact.High:
		return 85
	case exposure >= b.cfg.Impact.Medium:
		return 60
	case exposure >= b.cfg.Impact.Low:
		return 30
	case exposure > 0:
		return 10
	default:
		return 0
	}
}

// affiliationRisk weighs direct (ownership/financial) ties over indirect
// (influence/representation) ones, with a bonus for sheer count.
func (b *RiskProfileBuilder) affiliationRisk(affiliations []domain.Affiliation) int {
	direct, indirect := 0, 0
	for _, a := range affiliations {
		marker := strings.ToLower(a.ConflictMarker)
		switch {
		case marker == "ownership" || strings.HasPrefix(marker, "financial"):
			direct++
		case marker == "influence" || marker == "representation":
			indirect++
		}
	}

	bonus := 0
	switch {
	case len(affiliations) > 10:
		bonus = 30
	case len(affiliations) > 5:
		bonus = 15
	}

	score := direct*20 + indirect*10 + bonus
	if score > 100 {
		score = 100
	}
	return score
}

func transparencyRisk(affiliations []domain.Affiliation, records []domain.TransparencyRecord) int {
	completeness := disclosureCompleteness(affiliations, records)
	return int(math.Round((1 - completeness) * 100))
}

// behavioralRisk scores voting-alignment extremity: values near 0 or 100 are
// the strongest behavioral signal.
func behavioralRisk(alignment *float64) int {
	if alignment == nil {
		return 10
	}
	extremity := math.Abs(*alignment - 50)
	switch {
	case extremity >= 45:
		return 90
	case extremity >= 40:
		return 70
	case extremity >= 35:
		return 50
	case extremity >= 30:
		return 30
	default:
		return 10
	}
}

func buildRecommendations(level domain.Severity, b domain.RiskBreakdown) []string {
	var recs []string
	if level == domain.SeverityCritical || level == domain.SeverityHigh {
		recs = append(recs, recManualReview)
	}
	if b.FinancialRisk > 70 {
		recs = append(recs, recFinancial)
	}
	if b.AffiliationRisk > 60 {
		recs = append(recs, recAffiliation)
	}
	if b.TransparencyRisk > 50 {
		recs = append(recs, recTransparency)
	}
	if b.BehavioralRisk > 60 {
		recs = append(recs, recBehavioral)
	}
	if len(recs) == 0 {
		recs = append(recs, recMonitor)
	}
	return recs
}
