package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	mstats "github.com/montanaflynn/stats"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// defaultTrendMonths is the window applied when the caller does not choose one.
const defaultTrendMonths = 12

// TrendAnalyzer compares the recent half of a time window against the older
// half. History is synthesized by re-running current detection and filtering
// by timestamp; there is no persisted detection timeline. This is a known
// limitation: trends reflect current affiliation state, not a true archive.
type TrendAnalyzer struct {
	detector *ConflictDetector
	provider DataProvider
	cfg      Config
	logger   *slog.Logger
	nowFn    func() time.Time
}

// NewTrendAnalyzer constructs a trend analyzer around the detector.
func NewTrendAnalyzer(detector *ConflictDetector, provider DataProvider, cfg Config, logger *slog.Logger) *TrendAnalyzer {
	return &TrendAnalyzer{
		detector: detector,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		nowFn:    time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (t *TrendAnalyzer) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		t.nowFn = nowFn
	}
}

// Analyze produces a single-element trend list for the sponsor over the
// requested window, in months.
func (t *TrendAnalyzer) Analyze(ctx context.Context, sponsorID int64, months int) ([]domain.ConflictTrend, error) {
	if months <= 0 {
		months = defaultTrendMonths
	}

	conflicts, err := t.detector.DetectForSponsor(ctx, sponsorID)
	if err != nil {
		return nil, err
	}

	now := t.nowFn().UTC()
	windowStart := now.AddDate(0, -months, 0)
	midpoint := now.AddDate(0, -months/2, 0)

	var windowed []domain.ConflictDetection
	var recentRanks, olderRanks []float64
	for _, c := range conflicts {
		if c.DetectedAt.Before(windowStart) {
			continue
		}
		windowed = append(windowed, c)
		if c.DetectedAt.Before(midpoint) {
			olderRanks = append(olderRanks, float64(c.Severity.Rank()))
		} else {
			recentRanks = append(recentRanks, float64(c.Severity.Rank()))
		}
	}

	allRanks := append(append([]float64{}, recentRanks...), olderRanks...)
	meanSeverity := meanOrZero(allRanks)

	riskScore := float64(len(windowed))*10 + meanSeverity*20
	if riskScore > 100 {
		riskScore = 100
	}

	trend := domain.ConflictTrend{
		SponsorID:     sponsorID,
		Timeframe:     fmt.Sprintf("last_%d_months", months),
		ConflictCount: len(windowed),
		SeverityTrend: trendDirection(meanOrZero(recentRanks), meanOrZero(olderRanks)),
		RiskScore:     int(riskScore),
		Predictions:   t.predict(ctx, sponsorID, windowed),
	}
	return []domain.ConflictTrend{trend}, nil
}

func trendDirection(recentMean, olderMean float64) domain.TrendDirection {
	delta := recentMean - olderMean
	switch {
	case delta > 0.5:
		return domain.TrendIncreasing
	case delta < -0.5:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// predict is a best-effort stub: the sponsor's two most common affiliation
// organizations surface as risk factors against a fixed low-confidence
// probability. Callers must not treat this as a calibrated forecast.
func (t *TrendAnalyzer) predict(ctx context.Context, sponsorID int64, windowed []domain.ConflictDetection) []domain.ConflictPrediction {
	sponsorships, err := t.provider.ListBillSponsorships(ctx, sponsorID)
	if err != nil || len(sponsorships) == 0 {
		if err != nil {
			t.logger.Warn("prediction sponsorship lookup failed", "sponsorId", sponsorID, "error", err)
		}
		return nil
	}
	latest := sponsorships[0]
	for _, s := range sponsorships[1:] {
		if s.SponsoredAt.After(latest.SponsoredAt) {
			latest = s
		}
	}

	return []domain.ConflictPrediction{{
		BillID:        latest.BillID,
		PredictedType: dominantType(windowed),
		Probability:   t.cfg.TrendPredictionProbability,
		RiskFactors:   t.topOrganizations(ctx, sponsorID, 2),
	}}
}

func dominantType(conflicts []domain.ConflictDetection) domain.ConflictType {
	if len(conflicts) == 0 {
		return domain.ConflictFinancialIndirect
	}
	counts := make(map[domain.ConflictType]int)
	for _, c := range conflicts {
		counts[c.Type]++
	}
	best := conflicts[0].Type
	for conflictType, count := range counts {
		if count > counts[best] || (count == counts[best] && conflictType < best) {
			best = conflictType
		}
	}
	return best
}

func (t *TrendAnalyzer) topOrganizations(ctx context.Context, sponsorID int64, limit int) []string {
	affiliations, err := t.provider.ListAffiliations(ctx, sponsorID)
	if err != nil {
		t.logger.Warn("prediction affiliation lookup failed", "sponsorId", sponsorID, "error", err)
		return nil
	}

	counts := make(map[string]int)
	for _, a := range affiliations {
		counts[a.Organization]++
	}
	orgs := make([]string, 0, len(counts))
	for org := range counts {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool {
		if counts[orgs[i]] != counts[orgs[j]] {
			return counts[orgs[i]] > counts[orgs[j]]
		}
		return orgs[i] < orgs[j]
	})
	if len(orgs) > limit {
		orgs = orgs[:limit]
	}
	return orgs
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, err := mstats.Mean(values)
	if err != nil {
		return 0
	}
	return mean
}
