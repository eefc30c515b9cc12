package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanuka/integrity/backend/internal/domain"
)

func newTestService(provider DataProvider) *Service {
	svc := NewService(provider, DefaultConfig(), discardLogger())
	svc.WithClock(func() time.Time { return testNow })
	return svc
}

func starProvider() *stubProvider {
	introduced := testNow.AddDate(0, -4, 0)
	return &stubProvider{
		sponsors: map[int64]domain.Sponsor{
			1: {ID: 1, FullName: "Nimal Perera", IsActive: true, FinancialExposure: 2_000_000},
		},
		affiliations: map[int64][]domain.Affiliation{
			1: {{ID: 11, SponsorID: 1, Organization: "Acme Corp", Role: "Consultant",
				Type: "economic", StartDate: testNow.AddDate(-2, 0, 0)}},
		},
		transparency: map[int64][]domain.TransparencyRecord{
			1: {{DisclosureType: "financial_interest", Verified: true, FiledAt: testNow}},
		},
		sponsorships: map[int64][]domain.Sponsorship{
			1: {{SponsorID: 1, BillID: "B-100", SponsoredAt: introduced}},
		},
		bills: map[string]domain.Bill{
			"B-100": {ID: "B-100", Title: "Industrial Development Act",
				Summary:        "Grants tax concessions to Acme Corp",
				IntroducedDate: testNow.AddDate(-1, 0, 0)},
		},
	}
}

func TestServiceDetectConflictsSingleSponsor(t *testing.T) {
	svc := newTestService(starProvider())

	conflicts, err := svc.DetectConflicts(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, conflicts)
	for _, c := range conflicts {
		assert.Equal(t, int64(1), c.SponsorID)
	}
}

func TestServiceDetectConflictsAllSponsors(t *testing.T) {
	svc := newTestService(starProvider())

	conflicts, err := svc.DetectConflicts(context.Background(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, conflicts)
}

func TestServiceDetectConflictsUnknownSponsor(t *testing.T) {
	svc := newTestService(&stubProvider{sponsors: map[int64]domain.Sponsor{}})

	_, err := svc.DetectConflicts(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSponsorNotFound)
}

func TestServiceCreateConflictMapping(t *testing.T) {
	svc := newTestService(starProvider())

	graph := svc.CreateConflictMapping(context.Background(), "")
	assert.False(t, graph.Degraded)
	assert.NotEmpty(t, graph.Nodes)
	assert.NotEmpty(t, graph.Edges)
	assert.Equal(t, len(graph.Nodes), graph.Metrics.TotalNodes)
	assert.Equal(t, len(graph.Edges), graph.Metrics.TotalEdges)
}

func TestServiceCreateConflictMappingBillFilter(t *testing.T) {
	svc := newTestService(starProvider())

	graph := svc.CreateConflictMapping(context.Background(), "B-100")
	assert.NotEmpty(t, graph.Nodes)

	// An unrelated bill filters every conflict out, leaving a valid empty graph.
	empty := svc.CreateConflictMapping(context.Background(), "B-999")
	assert.False(t, empty.Degraded)
	assert.Empty(t, empty.Nodes)
	assert.Empty(t, empty.Edges)
	assert.NotNil(t, empty.Clusters)
}

func TestServiceCreateConflictMappingDegradesOnFailure(t *testing.T) {
	provider := &stubProvider{listActiveErr: errors.New("connection refused")}
	svc := newTestService(provider)

	graph := svc.CreateConflictMapping(context.Background(), "")
	assert.True(t, graph.Degraded)
	assert.NotNil(t, graph.Nodes)
	assert.Empty(t, graph.Nodes)
	assert.NotNil(t, graph.Edges)
	assert.NotNil(t, graph.Clusters)
	assert.NotNil(t, graph.Metrics.CentralityScores)
}

func TestServiceGenerateRiskProfile(t *testing.T) {
	svc := newTestService(starProvider())

	profile, err := svc.GenerateRiskProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SponsorID)
	assert.NotEmpty(t, profile.Recommendations)
}

func TestServiceGenerateRiskProfileUnknownSponsor(t *testing.T) {
	svc := newTestService(&stubProvider{sponsors: map[int64]domain.Sponsor{}})

	_, err := svc.GenerateRiskProfile(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSponsorNotFound)
}

func TestServiceAnalyzeConflictTrends(t *testing.T) {
	svc := newTestService(starProvider())

	trends := svc.AnalyzeConflictTrends(context.Background(), 1, 12)
	require.Len(t, trends, 1)
	assert.False(t, trends[0].Degraded)
}

func TestServiceAnalyzeConflictTrendsInvalidSponsor(t *testing.T) {
	svc := newTestService(starProvider())

	assert.Empty(t, svc.AnalyzeConflictTrends(context.Background(), 0, 12))
	assert.Empty(t, svc.AnalyzeConflictTrends(context.Background(), -5, 12))
}

func TestServiceAnalyzeConflictTrendsDegradesOnFailure(t *testing.T) {
	svc := newTestService(&stubProvider{sponsors: map[int64]domain.Sponsor{}})

	trends := svc.AnalyzeConflictTrends(context.Background(), 42, 0)
	require.Len(t, trends, 1)
	assert.True(t, trends[0].Degraded)
	assert.Equal(t, "last_12_months", trends[0].Timeframe)
	assert.Equal(t, domain.TrendStable, trends[0].SeverityTrend)
	assert.Equal(t, 0, trends[0].ConflictCount)
}
