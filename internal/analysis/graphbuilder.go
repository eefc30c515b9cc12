package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// ConflictGraphBuilder turns a flat conflict list into deduplicated nodes and
// edges connecting sponsors, organizations and bills.
type ConflictGraphBuilder struct {
	provider DataProvider
	cfg      Config
	logger   *slog.Logger
}

// NewConflictGraphBuilder constructs a graph builder.
func NewConflictGraphBuilder(provider DataProvider, cfg Config, logger *slog.Logger) *ConflictGraphBuilder {
	return &ConflictGraphBuilder{provider: provider, cfg: cfg, logger: logger}
}

// Build emits one node per distinct sponsor, organization and bill touched by
// the conflicts, and one edge per (source, target, conflict type) triple.
func (b *ConflictGraphBuilder) Build(ctx context.Context, conflicts []domain.ConflictDetection) ([]domain.ConflictNode, []domain.ConflictEdge) {
	sponsorNames := b.sponsorNames(ctx, conflicts)

	nodes := make(map[string]domain.ConflictNode)
	edges := make(map[string]domain.ConflictEdge)

	for _, conflict := range conflicts {
		sponsorID := fmt.Sprintf("sponsor:%d", conflict.SponsorID)
		b.upsertNode(nodes, sponsorID, domain.NodeSponsor,
			sponsorNames[conflict.SponsorID], conflict.Severity)

		for _, org := range organizationsFromEvidence(conflict.Evidence) {
			orgID := "org:" + org
			b.upsertNode(nodes, orgID, domain.NodeOrganization, org, conflict.Severity)
			b.upsertEdge(edges, sponsorID, orgID, conflict)
		}

		for _, billID := range conflict.AffectedBills {
			nodeID := "bill:" + billID
			b.upsertNode(nodes, nodeID, domain.NodeBill, billID, conflict.Severity)
			b.upsertEdge(edges, sponsorID, nodeID, conflict)
		}
	}

	nodeList := make([]domain.ConflictNode, 0, len(nodes))
	for _, n := range nodes {
		nodeList = append(nodeList, n)
	}
	sort.Slice(nodeList, func(i, j int) bool { return nodeList[i].ID < nodeList[j].ID })

	edgeList := make([]domain.ConflictEdge, 0, len(edges))
	for _, e := range edges {
		edgeList = append(edgeList, e)
	}
	sort.Slice(edgeList, func(i, j int) bool {
		if edgeList[i].Source != edgeList[j].Source {
			return edgeList[i].Source < edgeList[j].Source
		}
		if edgeList[i].Target != edgeList[j].Target {
			return edgeList[i].Target < edgeList[j].Target
		}
		return edgeList[i].Type < edgeList[j].Type
	})

	return nodeList, edgeList
}

// sponsorNames batch-fetches display names, falling back to "Sponsor <id>"
// when the fetch fails or a sponsor is missing.
func (b *ConflictGraphBuilder) sponsorNames(ctx context.Context, conflicts []domain.ConflictDetection) map[int64]string {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, c := range conflicts {
		if _, ok := seen[c.SponsorID]; ok {
			continue
		}
		seen[c.SponsorID] = struct{}{}
		ids = append(ids, c.SponsorID)
	}

	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		names[id] = fmt.Sprintf("Sponsor %d", id)
	}
	if len(ids) == 0 {
		return names
	}

	sponsors, err := b.provider.GetSponsorsByIDs(ctx, ids)
	if err != nil {
		b.logger.Warn("sponsor name lookup failed, using fallback labels", "error", err)
		return names
	}
	for _, s := range sponsors {
		if s.FullName != "" {
			names[s.ID] = s.FullName
		}
	}
	return names
}

// upsertNode records the node, keeping the highest severity seen for it.
func (b *ConflictGraphBuilder) upsertNode(nodes map[string]domain.ConflictNode, id string, nodeType domain.NodeType, name string, severity domain.Severity) {
	if existing, ok := nodes[id]; ok {
		if severity.Rank() <= existing.ConflictLevel.Rank() {
			return
		}
	}
	nodes[id] = domain.ConflictNode{
		ID:            id,
		Type:          nodeType,
		Name:          name,
		ConflictLevel: severity,
		Size:          b.cfg.NodeSizes[severity],
		Color:         b.cfg.SeverityColors[severity],
	}
}

// upsertEdge deduplicates on (source, target, type), keeping the highest
// severity when the same edge is produced by multiple conflicts.
func (b *ConflictGraphBuilder) upsertEdge(edges map[string]domain.ConflictEdge, source, target string, conflict domain.ConflictDetection) {
	key := source + "|" + target + "|" + string(conflict.Type)
	if existing, ok := edges[key]; ok {
		if conflict.Severity.Rank() <= existing.Severity.Rank() {
			return
		}
	}
	edges[key] = domain.ConflictEdge{
		Source:   source,
		Target:   target,
		Type:     conflict.Type,
		Weight:   b.cfg.EdgeWeights[conflict.Severity],
		Severity: conflict.Severity,
		Label:    strings.ReplaceAll(string(conflict.Type), "_", " "),
	}
}

// organizationsFromEvidence extracts "org:<name>" references.
func organizationsFromEvidence(evidence []string) []string {
	var orgs []string
	for _, ref := range evidence {
		if name, ok := strings.CutPrefix(ref, "org:"); ok && name != "" {
			orgs = append(orgs, name)
		}
	}
	return orgs
}
