package domain

// NodeType discriminates conflict-graph nodes.
type NodeType string

const (
	NodeSponsor      NodeType = "sponsor"
	NodeOrganization NodeType = "organization"
	NodeBill         NodeType = "bill"
)

// ConflictNode is a vertex in the conflict graph. IDs are namespaced:
// "sponsor:<id>", "org:<name>", "bill:<id>".
type ConflictNode struct {
	ID            string
	Type          NodeType
	Name          string
	ConflictLevel Severity
	// Size is the visual weight in pixels derived from severity.
	Size  int
	Color string
}

// ConflictEdge connects a sponsor to an organization or bill implicated in a
// conflict. Edges are deduplicated by (source, target, conflict type).
type ConflictEdge struct {
	Source   string
	Target   string
	Type     ConflictType
	Weight   int
	Severity Severity
	Label    string
}

// ConflictCluster is one connected component of the conflict graph.
type ConflictCluster struct {
	ID              string
	Members         []string
	CenterNode      string
	ConflictDensity float64
	RiskLevel       Severity
}

// NetworkMetrics summarizes the structure of a conflict graph.
type NetworkMetrics struct {
	TotalNodes       int
	TotalEdges       int
	Density          float64
	Clustering       float64
	CentralityScores map[string]int
	RiskDistribution map[Severity]int
}

// ConflictGraph is the full investigative network: nodes, edges, connected
// clusters and structural metrics.
type ConflictGraph struct {
	Nodes    []ConflictNode
	Edges    []ConflictEdge
	Clusters []ConflictCluster
	Metrics  NetworkMetrics
	// Degraded is set when analysis failed internally and an empty,
	// well-formed graph was returned instead of an error.
	Degraded bool
}

// EmptyConflictGraph returns a zero-valued but fully initialized graph, used
// by the graceful-degradation path so dashboards never receive nil slices.
func EmptyConflictGraph(degraded bool) ConflictGraph {
	return ConflictGraph{
		Nodes:    []ConflictNode{},
		Edges:    []ConflictEdge{},
		Clusters: []ConflictCluster{},
		Metrics: NetworkMetrics{
			CentralityScores: map[string]int{},
			RiskDistribution: map[Severity]int{},
		},
		Degraded: degraded,
	}
}
