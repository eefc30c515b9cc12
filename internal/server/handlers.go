package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chanuka/integrity/backend/internal/analysis"
	"github.com/chanuka/integrity/backend/internal/domain"
)

// APIHandlers exposes HTTP handlers for the conflict analysis API.
type APIHandlers struct {
	logger  *slog.Logger
	service *analysis.Service
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *analysis.Service) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

// handleConflicts serves GET /conflicts, optionally scoped to one sponsor via
// ?sponsorId=.
func (h *APIHandlers) handleConflicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	var sponsorID int64
	if raw := r.URL.Query().Get("sponsorId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "sponsorId must be a positive integer")
			return
		}
		sponsorID = parsed
	}

	conflicts, err := h.service.DetectConflicts(r.Context(), sponsorID)
	if err != nil {
		if errors.Is(err, analysis.ErrSponsorNotFound) {
			writeError(w, http.StatusNotFound, "sponsor not found")
			return
		}
		h.logger.Error("conflict detection failed", "error", err, "sponsorId", sponsorID)
		writeError(w, http.StatusInternalServerError, "conflict detection failed")
		return
	}

	response := conflictListResponse{Conflicts: make([]conflictResponse, 0, len(conflicts))}
	for _, c := range conflicts {
		response.Conflicts = append(response.Conflicts, toConflictResponse(c))
	}
	respondJSON(w, http.StatusOK, response)
}

// handleRiskProfile serves GET /risk-profiles/{sponsorId}.
func (h *APIHandlers) handleRiskProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	sponsorID, ok := pathID(w, r.URL.Path, "/risk-profiles/")
	if !ok {
		return
	}

	profile, err := h.service.GenerateRiskProfile(r.Context(), sponsorID)
	if err != nil {
		if errors.Is(err, analysis.ErrSponsorNotFound) {
			writeError(w, http.StatusNotFound, "sponsor not found")
			return
		}
		h.logger.Error("risk profile generation failed", "error", err, "sponsorId", sponsorID)
		writeError(w, http.StatusInternalServerError, "risk profile generation failed")
		return
	}

	respondJSON(w, http.StatusOK, riskProfileResponse{
		SponsorID:    profile.SponsorID,
		OverallScore: profile.OverallScore,
		Level:        string(profile.Level),
		Breakdown: riskBreakdownResponse{
			FinancialRisk:    profile.Breakdown.FinancialRisk,
			AffiliationRisk:  profile.Breakdown.AffiliationRisk,
			TransparencyRisk: profile.Breakdown.TransparencyRisk,
			BehavioralRisk:   profile.Breakdown.BehavioralRisk,
		},
		Recommendations: profile.Recommendations,
	})
}

// handleConflictMap serves GET /conflict-map, optionally filtered via ?billId=.
func (h *APIHandlers) handleConflictMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	graph := h.service.CreateConflictMapping(r.Context(), r.URL.Query().Get("billId"))
	respondJSON(w, http.StatusOK, toGraphResponse(graph))
}

// handleTrends serves GET /trends/{sponsorId}?months=.
func (h *APIHandlers) handleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	sponsorID, ok := pathID(w, r.URL.Path, "/trends/")
	if !ok {
		return
	}

	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		months = parsed
	}

	trends := h.service.AnalyzeConflictTrends(r.Context(), sponsorID, months)
	response := trendListResponse{Trends: make([]trendResponse, 0, len(trends))}
	for _, t := range trends {
		response.Trends = append(response.Trends, toTrendResponse(t))
	}
	respondJSON(w, http.StatusOK, response)
}

func pathID(w http.ResponseWriter, path, prefix string) (int64, bool) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "sponsor ID is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "sponsor ID must be a positive integer")
		return 0, false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type conflictListResponse struct {
	Conflicts []conflictResponse `json:"conflicts"`
}

type conflictResponse struct {
	ConflictID           string   `json:"conflictId"`
	SponsorID            int64    `json:"sponsorId"`
	ConflictType         string   `json:"conflictType"`
	Severity             string   `json:"severity"`
	Description          string   `json:"description"`
	AffectedBills        []string `json:"affectedBills"`
	FinancialImpact      float64  `json:"financialImpact"`
	DetectedAt           string   `json:"detectedAt"`
	Confidence           float64  `json:"confidence"`
	Evidence             []string `json:"evidence"`
	RelatedAffiliationID *int64   `json:"relatedAffiliationId,omitempty"`
}

func toConflictResponse(c domain.ConflictDetection) conflictResponse {
	bills := c.AffectedBills
	if bills == nil {
		bills = []string{}
	}
	return conflictResponse{
		ConflictID:           c.ConflictID,
		SponsorID:            c.SponsorID,
		ConflictType:         string(c.Type),
		Severity:             string(c.Severity),
		Description:          c.Description,
		AffectedBills:        bills,
		FinancialImpact:      c.FinancialImpact,
		DetectedAt:           c.DetectedAt.UTC().Format(time.RFC3339),
		Confidence:           c.Confidence,
		Evidence:             c.Evidence,
		RelatedAffiliationID: c.RelatedAffiliationID,
	}
}

type riskProfileResponse struct {
	SponsorID       int64                 `json:"sponsorId"`
	OverallScore    int                   `json:"overallScore"`
	Level           string                `json:"level"`
	Breakdown       riskBreakdownResponse `json:"breakdown"`
	Recommendations []string              `json:"recommendations"`
}

type riskBreakdownResponse struct {
	FinancialRisk    int `json:"financialRisk"`
	AffiliationRisk  int `json:"affiliationRisk"`
	TransparencyRisk int `json:"transparencyRisk"`
	BehavioralRisk   int `json:"behavioralRisk"`
}

type graphResponse struct {
	Nodes    []nodeResponse    `json:"nodes"`
	Edges    []edgeResponse    `json:"edges"`
	Clusters []clusterResponse `json:"clusters"`
	Metrics  metricsResponse   `json:"metrics"`
	Degraded bool              `json:"degraded"`
}

type nodeResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	ConflictLevel string `json:"conflictLevel"`
	Size          int    `json:"size"`
	Color         string `json:"color"`
}

type edgeResponse struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Type     string `json:"type"`
	Weight   int    `json:"weight"`
	Severity string `json:"severity"`
	Label    string `json:"label,omitempty"`
}

type clusterResponse struct {
	ID              string   `json:"id"`
	Members         []string `json:"members"`
	CenterNode      string   `json:"centerNode"`
	ConflictDensity float64  `json:"conflictDensity"`
	RiskLevel       string   `json:"riskLevel"`
}

type metricsResponse struct {
	TotalNodes       int            `json:"totalNodes"`
	TotalEdges       int            `json:"totalEdges"`
	Density          float64        `json:"density"`
	Clustering       float64        `json:"clustering"`
	CentralityScores map[string]int `json:"centralityScores"`
	RiskDistribution map[string]int `json:"riskDistribution"`
}

func toGraphResponse(g domain.ConflictGraph) graphResponse {
	response := graphResponse{
		Nodes:    make([]nodeResponse, 0, len(g.Nodes)),
		Edges:    make([]edgeResponse, 0, len(g.Edges)),
		Clusters: make([]clusterResponse, 0, len(g.Clusters)),
		Metrics: metricsResponse{
			TotalNodes:       g.Metrics.TotalNodes,
			TotalEdges:       g.Metrics.TotalEdges,
			Density:          g.Metrics.Density,
			Clustering:       g.Metrics.Clustering,
			CentralityScores: g.Metrics.CentralityScores,
			RiskDistribution: make(map[string]int, len(g.Metrics.RiskDistribution)),
		},
		Degraded: g.Degraded,
	}
	for severity, count := range g.Metrics.RiskDistribution {
		response.Metrics.RiskDistribution[string(severity)] = count
	}
	for _, n := range g.Nodes {
		response.Nodes = append(response.Nodes, nodeResponse{
			ID:            n.ID,
			Type:          string(n.Type),
			Name:          n.Name,
			ConflictLevel: string(n.ConflictLevel),
			Size:          n.Size,
			Color:         n.Color,
		})
	}
	for _, e := range g.Edges {
		response.Edges = append(response.Edges, edgeResponse{
			Source:   e.Source,
			Target:   e.Target,
			Type:     string(e.Type),
			Weight:   e.Weight,
			Severity: string(e.Severity),
			Label:    e.Label,
		})
	}
	for _, c := range g.Clusters {
		response.Clusters = append(response.Clusters, clusterResponse{
			ID:              c.ID,
			Members:         c.Members,
			CenterNode:      c.CenterNode,
			ConflictDensity: c.ConflictDensity,
			RiskLevel:       string(c.RiskLevel),
		})
	}
	return response
}

type trendListResponse struct {
	Trends []trendResponse `json:"trends"`
}

type trendResponse struct {
	SponsorID     int64                `json:"sponsorId"`
	Timeframe     string               `json:"timeframe"`
	ConflictCount int                  `json:"conflictCount"`
	SeverityTrend string               `json:"severityTrend"`
	RiskScore     int                  `json:"riskScore"`
	Predictions   []predictionResponse `json:"predictions"`
	Degraded      bool                 `json:"degraded"`
}

type predictionResponse struct {
	BillID        string   `json:"billId"`
	PredictedType string   `json:"predictedType"`
	Probability   float64  `json:"probability"`
	RiskFactors   []string `json:"riskFactors"`
}

func toTrendResponse(t domain.ConflictTrend) trendResponse {
	response := trendResponse{
		SponsorID:     t.SponsorID,
		Timeframe:     t.Timeframe,
		ConflictCount: t.ConflictCount,
		SeverityTrend: string(t.SeverityTrend),
		RiskScore:     t.RiskScore,
		Predictions:   make([]predictionResponse, 0, len(t.Predictions)),
		Degraded:      t.Degraded,
	}
	for _, p := range t.Predictions {
		factors := p.RiskFactors
		if factors == nil {
			factors = []string{}
		}
		response.Predictions = append(response.Predictions, predictionResponse{
			BillID:        p.BillID,
			PredictedType: string(p.PredictedType),
			Probability:   p.Probability,
			RiskFactors:   factors,
		})
	}
	return response
}
