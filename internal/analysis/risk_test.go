package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanuka/integrity/backend/internal/domain"
)

func newTestRiskBuilder(provider DataProvider) *RiskProfileBuilder {
	return NewRiskProfileBuilder(provider, DefaultConfig())
}

func TestBuildRiskProfileUnknownSponsor(t *testing.T) {
	builder := newTestRiskBuilder(&stubProvider{sponsors: map[int64]domain.Sponsor{}})

	_, err := builder.Build(context.Background(), 404)
	assert.ErrorIs(t, err, ErrSponsorNotFound)
}

func TestBuildRiskProfileCleanSponsor(t *testing.T) {
	// No exposure, no affiliations, no voting record: every dimension bottoms
	// out and only the monitor recommendation remains.
	provider := &stubProvider{
		sponsors: map[int64]domain.Sponsor{1: {ID: 1, FullName: "Kamala Silva", IsActive: true}},
	}
	builder := newTestRiskBuilder(provider)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), profile.SponsorID)
	assert.Equal(t, 0, profile.Breakdown.FinancialRisk)
	assert.Equal(t, 0, profile.Breakdown.AffiliationRisk)
	assert.Equal(t, 0, profile.Breakdown.TransparencyRisk)
	assert.Equal(t, 10, profile.Breakdown.BehavioralRisk)
	assert.Equal(t, 2, profile.OverallScore)
	assert.Equal(t, domain.SeverityLow, profile.Level)
	assert.Equal(t, []string{"No immediate action; monitor ongoing activity."}, profile.Recommendations)
}

func TestBuildRiskProfileHighRiskSponsor(t *testing.T) {
	alignment := 97.0
	affiliations := make([]domain.Affiliation, 0, 6)
	for i := int64(0); i < 6; i++ {
		affiliations = append(affiliations, domain.Affiliation{
			ID: i + 1, SponsorID: 1, Organization: "Org", ConflictMarker: "financial_direct",
		})
	}
	provider := &stubProvider{
		sponsors: map[int64]domain.Sponsor{
			1: {ID: 1, IsActive: true, FinancialExposure: 12_000_000, VotingAlignment: &alignment},
		},
		affiliations: map[int64][]domain.Affiliation{1: affiliations},
	}
	builder := newTestRiskBuilder(provider)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 100, profile.Breakdown.FinancialRisk)
	// 6 direct ties at 20 each plus the >5 count bonus, capped at 100.
	assert.Equal(t, 100, profile.Breakdown.AffiliationRisk)
	// Six financial affiliations with zero disclosures filed.
	assert.Equal(t, 100, profile.Breakdown.TransparencyRisk)
	assert.Equal(t, 90, profile.Breakdown.BehavioralRisk)

	// 35 + 30 + 20 + 13.5 rounds to 99.
	assert.Equal(t, 99, profile.OverallScore)
	assert.Equal(t, domain.SeverityCritical, profile.Level)

	assert.Equal(t, []string{
		"Flag for manual review: overall risk level warrants investigator attention.",
		"Audit declared financial exposure against sponsored legislation.",
		"Review organizational affiliations for undeclared beneficial interests.",
		"Request completion of outstanding financial disclosures.",
		"Examine voting record for alignment anomalies.",
	}, profile.Recommendations)
}

func TestFinancialRiskLadder(t *testing.T) {
	builder := newTestRiskBuilder(&stubProvider{})

	cases := []struct {
		exposure float64
		want     int
	}{
		{0, 0},
		{50_000, 10},
		{100_000, 30},
		{1_000_000, 60},
		{5_000_000, 85},
		{10_000_000, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, builder.financialRisk(tc.exposure), "exposure %.0f", tc.exposure)
	}
}

func TestAffiliationRisk(t *testing.T) {
	builder := newTestRiskBuilder(&stubProvider{})

	assert.Equal(t, 0, builder.affiliationRisk(nil))

	mixed := []domain.Affiliation{
		{ConflictMarker: "ownership"},
		{ConflictMarker: "financial_direct"},
		{ConflictMarker: "influence"},
		{ConflictMarker: "representation"},
		{ConflictMarker: ""},
	}
	// 2 direct, 2 indirect, no count bonus at 5 affiliations.
	assert.Equal(t, 60, builder.affiliationRisk(mixed))

	eleven := make([]domain.Affiliation, 11)
	for i := range eleven {
		eleven[i] = domain.Affiliation{ConflictMarker: "influence"}
	}
	// 11*10 + 30 caps at 100.
	assert.Equal(t, 100, builder.affiliationRisk(eleven))
}

func TestBehavioralRiskCurve(t *testing.T) {
	assert.Equal(t, 10, behavioralRisk(nil))

	cases := []struct {
		alignment float64
		want      int
	}{
		{50, 10},
		{75, 10},
		{80, 30},
		{85, 50},
		{90, 70},
		{95, 90},
		{5, 90},
		{0, 90},
		{100, 90},
	}
	for _, tc := range cases {
		alignment := tc.alignment
		assert.Equal(t, tc.want, behavioralRisk(&alignment), "alignment %.0f", tc.alignment)
	}
}

func TestBuildRecommendationsZeroBreakdown(t *testing.T) {
	recs := buildRecommendations(domain.SeverityLow, domain.RiskBreakdown{})
	assert.Equal(t, []string{"No immediate action; monitor ongoing activity."}, recs)
}
