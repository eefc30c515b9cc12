package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// Service is the engine facade consumed by the presentation layer. It owns no
// state beyond its collaborators and configuration; every result is computed
// fresh from the provider's current records.
type Service struct {
	provider DataProvider
	detector *ConflictDetector
	risk     *RiskProfileBuilder
	builder  *ConflictGraphBuilder
	analyzer *GraphAnalyzer
	trends   *TrendAnalyzer
	logger   *slog.Logger
}

// NewService wires the engine components over a single data provider.
func NewService(provider DataProvider, cfg Config, logger *slog.Logger) *Service {
	detector := NewConflictDetector(provider, cfg, logger)
	return &Service{
		provider: provider,
		detector: detector,
		risk:     NewRiskProfileBuilder(provider, cfg),
		builder:  NewConflictGraphBuilder(provider, cfg, logger),
		analyzer: NewGraphAnalyzer(cfg),
		trends:   NewTrendAnalyzer(detector, provider, cfg, logger),
		logger:   logger,
	}
}

// WithClock overrides the time provider on every time-sensitive component
// (used primarily in tests).
func (s *Service) WithClock(nowFn func() time.Time) {
	s.detector.WithClock(nowFn)
	s.trends.WithClock(nowFn)
}

// DetectConflicts analyzes one sponsor when sponsorID is positive, otherwise
// every active sponsor within the configured batch limit.
func (s *Service) DetectConflicts(ctx context.Context, sponsorID int64) ([]domain.ConflictDetection, error) {
	if sponsorID > 0 {
		return s.detector.DetectForSponsor(ctx, sponsorID)
	}
	return s.detector.DetectAll(ctx)
}

// GenerateRiskProfile aggregates the sponsor's four risk dimensions. Returns
// ErrSponsorNotFound when the sponsor does not exist.
func (s *Service) GenerateRiskProfile(ctx context.Context, sponsorID int64) (domain.RiskProfile, error) {
	profile, err := s.risk.Build(ctx, sponsorID)
	if err != nil {
		return domain.RiskProfile{}, fmt.Errorf("generate risk profile for sponsor %d: %w", sponsorID, err)
	}
	return profile, nil
}

// CreateConflictMapping builds and analyzes the conflict network, optionally
// restricted to conflicts touching one bill. Internal failures degrade to an
// empty, well-formed graph with Degraded set so dashboards never crash on
// partial data; the cause is available in logs only.
func (s *Service) CreateConflictMapping(ctx context.Context, billID string) domain.ConflictGraph {
	conflicts, err := s.detector.DetectAll(ctx)
	if err != nil {
		s.logger.Error("conflict mapping degraded: detection failed", "error", err)
		return domain.EmptyConflictGraph(true)
	}

	if billID != "" {
		conflicts = filterByBill(conflicts, billID)
	}

	nodes, edges := s.builder.Build(ctx, conflicts)
	clusters, metrics := s.analyzer.Analyze(nodes, edges)

	return domain.ConflictGraph{
		Nodes:    nodes,
		Edges:    edges,
		Clusters: clusters,
		Metrics:  metrics,
	}
}

// AnalyzeConflictTrends produces the sponsor's windowed trend. A non-positive
// sponsorID yields an empty list; internal failures degrade to a single
// zeroed trend flagged Degraded.
func (s *Service) AnalyzeConflictTrends(ctx context.Context, sponsorID int64, months int) []domain.ConflictTrend {
	if sponsorID <= 0 {
		return []domain.ConflictTrend{}
	}

	trends, err := s.trends.Analyze(ctx, sponsorID, months)
	if err != nil {
		s.logger.Error("trend analysis degraded", "sponsorId", sponsorID, "error", err)
		if months <= 0 {
			months = defaultTrendMonths
		}
		return []domain.ConflictTrend{{
			SponsorID:     sponsorID,
			Timeframe:     fmt.Sprintf("last_%d_months", months),
			SeverityTrend: domain.TrendStable,
			Predictions:   []domain.ConflictPrediction{},
			Degraded:      true,
		}}
	}
	return trends
}

func filterByBill(conflicts []domain.ConflictDetection, billID string) []domain.ConflictDetection {
	var filtered []domain.ConflictDetection
	for _, c := range conflicts {
		for _, id := range c.AffectedBills {
			if strings.EqualFold(id, billID) {
				filtered = append(filtered, c)
				break
			}
		}
	}
	return filtered
}
