package analysis

import (
	"fmt"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// GraphAnalyzer computes connected clusters and structural metrics over a
// built conflict graph. All operations are synchronous and CPU-bound; no I/O
// happens here.
type GraphAnalyzer struct {
	cfg Config
}

// NewGraphAnalyzer constructs an analyzer.
func NewGraphAnalyzer(cfg Config) *GraphAnalyzer {
	return &GraphAnalyzer{cfg: cfg}
}

// Analyze partitions the node set into connected clusters and derives network
// metrics. Edges are treated as undirected; parallel edges between the same
// pair collapse for structural purposes.
func (a *GraphAnalyzer) Analyze(nodes []domain.ConflictNode, edges []domain.ConflictEdge) ([]domain.ConflictCluster, domain.NetworkMetrics) {
	adjacency := buildAdjacency(nodes, edges)
	severities := make(map[string]domain.Severity, len(nodes))
	for _, n := range nodes {
		severities[n.ID] = n.ConflictLevel
	}

	components := connectedComponents(nodes, adjacency)

	clusters := make([]domain.ConflictCluster, 0, len(components))
	for i, members := range components {
		clusters = append(clusters, a.buildCluster(i+1, members, adjacency, severities))
	}

	metrics := domain.NetworkMetrics{
		TotalNodes:       len(nodes),
		TotalEdges:       len(edges),
		Density:          globalDensity(len(nodes), adjacency),
		Clustering:       averageClustering(adjacency),
		CentralityScores: degreeCentrality(nodes, adjacency),
		RiskDistribution: riskDistribution(nodes),
	}

	return clusters, metrics
}

// buildAdjacency produces an undirected neighbor map over known node ids.
// Edges referencing unknown nodes are dropped rather than inventing vertices.
func buildAdjacency(nodes []domain.ConflictNode, edges []domain.ConflictEdge) map[string]map[string]struct{} {
	adjacency := make(map[string]map[string]struct{}, len(nodes))
	for _, n := range nodes {
		adjacency[n.ID] = make(map[string]struct{})
	}
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		if _, ok := adjacency[e.Source]; !ok {
			continue
		}
		if _, ok := adjacency[e.Target]; !ok {
			continue
		}
		adjacency[e.Source][e.Target] = struct{}{}
		adjacency[e.Target][e.Source] = struct{}{}
	}
	return adjacency
}

// connectedComponents partitions the node set using an explicit stack so deep
// graphs cannot exhaust goroutine stacks.
func connectedComponents(nodes []domain.ConflictNode, adjacency map[string]map[string]struct{}) [][]string {
	visited := make(map[string]struct{}, len(nodes))
	var components [][]string

	for _, n := range nodes {
		if _, ok := visited[n.ID]; ok {
			continue
		}

		var members []string
		stack := []string{n.ID}
		visited[n.ID] = struct{}{}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, current)
			for neighbor := range adjacency[current] {
				if _, ok := visited[neighbor]; ok {
					continue
				}
				visited[neighbor] = struct{}{}
				stack = append(stack, neighbor)
			}
		}
		sort.Strings(members)
		components = append(components, members)
	}
	return components
}

func (a *GraphAnalyzer) buildCluster(index int, members []string, adjacency map[string]map[string]struct{}, severities map[string]domain.Severity) domain.ConflictCluster {
	inCluster := make(map[string]struct{}, len(members))
	for _, m := range members {
		inCluster[m] = struct{}{}
	}

	// Center node: highest degree counting only edges internal to the cluster.
	center := ""
	bestDegree := -1
	internalEdges := 0
	for _, m := range members {
		degree := 0
		for neighbor := range adjacency[m] {
			if _, ok := inCluster[neighbor]; ok {
				degree++
			}
		}
		internalEdges += degree
		if degree > bestDegree {
			bestDegree = degree
			center = m
		}
	}
	internalEdges /= 2

	density := 0.0
	if len(members) >= 2 {
		possible := float64(len(members)*(len(members)-1)) / 2
		density = float64(internalEdges) / possible
	}

	ranks := make([]float64, 0, len(members))
	for _, m := range members {
		ranks = append(ranks, float64(severities[m].Rank()))
	}
	meanRank, err := mstats.Mean(ranks)
	if err != nil {
		meanRank = 1
	}

	return domain.ConflictCluster{
		ID:              fmt.Sprintf("cluster-%d", index),
		Members:         members,
		CenterNode:      center,
		ConflictDensity: density,
		RiskLevel:       clusterRiskLevel(meanRank),
	}
}

func clusterRiskLevel(meanRank float64) domain.Severity {
	switch {
	case meanRank >= 3.5:
		return domain.SeverityCritical
	case meanRank >= 2.5:
		return domain.SeverityHigh
	case meanRank >= 1.5:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// globalDensity is 2|E| / (|N| (|N|-1)) over collapsed undirected pairs.
func globalDensity(nodeCount int, adjacency map[string]map[string]struct{}) float64 {
	if nodeCount < 2 {
		return 0
	}
	pairs := 0
	for _, neighbors := range adjacency {
		pairs += len(neighbors)
	}
	pairs /= 2
	return 2 * float64(pairs) / float64(nodeCount*(nodeCount-1))
}

// averageClustering is the mean local clustering coefficient over nodes with
// at least two neighbors; nodes below that degree are excluded from the
// average rather than counted as zero.
func averageClustering(adjacency map[string]map[string]struct{}) float64 {
	var coefficients []float64
	for _, neighbors := range adjacency {
		if len(neighbors) < 2 {
			continue
		}
		ids := make([]string, 0, len(neighbors))
		for id := range neighbors {
			ids = append(ids, id)
		}
		linked := 0
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if _, ok := adjacency[ids[i]][ids[j]]; ok {
					linked++
				}
			}
		}
		possible := float64(len(ids)*(len(ids)-1)) / 2
		coefficients = append(coefficients, float64(linked)/possible)
	}
	if len(coefficients) == 0 {
		return 0
	}
	return stat.Mean(coefficients, nil)
}

func degreeCentrality(nodes []domain.ConflictNode, adjacency map[string]map[string]struct{}) map[string]int {
	centrality := make(map[string]int, len(nodes))
	for _, n := range nodes {
		centrality[n.ID] = len(adjacency[n.ID])
	}
	return centrality
}

func riskDistribution(nodes []domain.ConflictNode) map[domain.Severity]int {
	distribution := make(map[domain.Severity]int)
	for _, n := range nodes {
		distribution[n.ConflictLevel]++
	}
	return distribution
}
