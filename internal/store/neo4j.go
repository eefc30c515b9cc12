package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/chanuka/integrity/backend/internal/analysis"
	"github.com/chanuka/integrity/backend/internal/domain"
)

var (
	// ErrMissingURI indicates the graph URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")
	// ErrBillNotFound indicates the requested bill does not exist.
	ErrBillNotFound = errors.New("bill not found")
)

// Options configures the Neo4j store.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// Neo4jStore implements the engine's DataProvider against a Bolt-compatible
// graph database. Neptune's openCypher endpoint speaks the same protocol, so
// the driver works for both local Neo4j and AWS Neptune.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore establishes a Bolt connection and verifies connectivity.
func NewNeo4jStore(ctx context.Context, opts Options) (*Neo4jStore, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}

	return &Neo4jStore{driver: driver, database: opts.Database}, nil
}

// VerifyConnectivity probes the underlying driver.
func (s *Neo4jStore) VerifyConnectivity(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close releases the driver's connection pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

const upsertSponsorCypher = `
MERGE (s:Sponsor {id: $id})
SET s.fullName = $fullName,
    s.party = $party,
    s.district = $district,
    s.isActive = $isActive,
    s.financialExposure = $financialExposure,
    s.votingAlignment = $votingAlignment,
    s.updatedAt = $updatedAt
WITH s
OPTIONAL MATCH (s)-[old:AFFILIATED_WITH|FILED]->()
DELETE old
WITH DISTINCT s
FOREACH (aff IN $affiliations |
  MERGE (o:Organization {name: aff.organization})
  CREATE (s)-[:AFFILIATED_WITH {
    id: aff.id, role: aff.role, type: aff.type,
    conflictMarker: aff.conflictMarker,
    startDate: aff.startDate, endDate: aff.endDate
  }]->(o))
FOREACH (rec IN $disclosures |
  CREATE (d:Disclosure {
    id: rec.id, disclosureType: rec.disclosureType,
    amount: rec.amount, verified: rec.verified, filedAt: rec.filedAt
  })
  CREATE (s)-[:FILED]->(d))
`

// UpsertSponsor writes the sponsor node and rebuilds its affiliation and
// disclosure edges. Used by the ingest pipeline only; the engine never writes.
func (s *Neo4jStore) UpsertSponsor(ctx context.Context, sponsor domain.Sponsor, affiliations []domain.Affiliation, records []domain.TransparencyRecord) error {
	affParams := make([]map[string]any, 0, len(affiliations))
	for _, a := range affiliations {
		affParams = append(affParams, map[string]any{
			"id":             a.ID,
			"organization":   a.Organization,
			"role":           a.Role,
			"type":           a.Type,
			"conflictMarker": a.ConflictMarker,
			"startDate":      a.StartDate.UTC().Format(time.RFC3339),
			"endDate":        formatTimePtr(a.EndDate),
		})
	}
	recParams := make([]map[string]any, 0, len(records))
	for _, r := range records {
		recParams = append(recParams, map[string]any{
			"id":             r.ID,
			"disclosureType": r.DisclosureType,
			"amount":         r.Amount,
			"verified":       r.Verified,
			"filedAt":        r.FiledAt.UTC().Format(time.RFC3339),
		})
	}

	params := map[string]any{
		"id":                sponsor.ID,
		"fullName":          sponsor.FullName,
		"party":             sponsor.Party,
		"district":          sponsor.District,
		"isActive":          sponsor.IsActive,
		"financialExposure": sponsor.FinancialExposure,
		"votingAlignment":   floatPtrParam(sponsor.VotingAlignment),
		"updatedAt":         time.Now().UTC().Format(time.RFC3339),
		"affiliations":      affParams,
		"disclosures":       recParams,
	}
	if _, err := s.write(ctx, upsertSponsorCypher, params); err != nil {
		return fmt.Errorf("upsert sponsor %d: %w", sponsor.ID, err)
	}
	return nil
}

const upsertBillCypher = `
MERGE (b:Bill {id: $id})
SET b.title = $title,
    b.summary = $summary,
    b.status = $status,
    b.introducedDate = $introducedDate
WITH b
FOREACH (sp IN $sponsorships |
  MERGE (s:Sponsor {id: sp.sponsorId})
  MERGE (s)-[r:SPONSORS]->(b)
  SET r.role = sp.role, r.sponsoredAt = sp.sponsoredAt)
`

// UpsertBill writes the bill node and its sponsorship edges.
func (s *Neo4jStore) UpsertBill(ctx context.Context, bill domain.Bill, sponsorships []domain.Sponsorship) error {
	spParams := make([]map[string]any, 0, len(sponsorships))
	for _, sp := range sponsorships {
		spParams = append(spParams, map[string]any{
			"sponsorId":   sp.SponsorID,
			"role":        sp.Role,
			"sponsoredAt": sp.SponsoredAt.UTC().Format(time.RFC3339),
		})
	}
	params := map[string]any{
		"id":             bill.ID,
		"title":          bill.Title,
		"summary":        bill.Summary,
		"status":         bill.Status,
		"introducedDate": bill.IntroducedDate.UTC().Format(time.RFC3339),
		"sponsorships":   spParams,
	}
	if _, err := s.write(ctx, upsertBillCypher, params); err != nil {
		return fmt.Errorf("upsert bill %s: %w", bill.ID, err)
	}
	return nil
}

func (s *Neo4jStore) GetSponsor(ctx context.Context, id int64) (domain.Sponsor, error) {
	records, err := s.read(ctx, `MATCH (s:Sponsor {id: $id}) RETURN s`, map[string]any{"id": id})
	if err != nil {
		return domain.Sponsor{}, fmt.Errorf("get sponsor %d: %w", id, err)
	}
	if len(records) == 0 {
		return domain.Sponsor{}, analysis.ErrSponsorNotFound
	}
	return sponsorFromRecord(records[0], "s")
}

func (s *Neo4jStore) GetSponsorsByIDs(ctx context.Context, ids []int64) ([]domain.Sponsor, error) {
	records, err := s.read(ctx,
		`MATCH (s:Sponsor) WHERE s.id IN $ids RETURN s`,
		map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("get sponsors by ids: %w", err)
	}
	sponsors := make([]domain.Sponsor, 0, len(records))
	for _, rec := range records {
		sponsor, err := sponsorFromRecord(rec, "s")
		if err != nil {
			return nil, err
		}
		sponsors = append(sponsors, sponsor)
	}
	return sponsors, nil
}

func (s *Neo4jStore) ListActiveSponsors(ctx context.Context, limit int) ([]domain.Sponsor, error) {
	if limit <= 0 {
		limit = 1000
	}
	records, err := s.read(ctx,
		`MATCH (s:Sponsor) WHERE s.isActive = true RETURN s ORDER BY s.id LIMIT $limit`,
		map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list active sponsors: %w", err)
	}
	sponsors := make([]domain.Sponsor, 0, len(records))
	for _, rec := range records {
		sponsor, err := sponsorFromRecord(rec, "s")
		if err != nil {
			return nil, err
		}
		sponsors = append(sponsors, sponsor)
	}
	return sponsors, nil
}

func (s *Neo4jStore) ListAffiliations(ctx context.Context, sponsorID int64) ([]domain.Affiliation, error) {
	records, err := s.read(ctx, `
MATCH (s:Sponsor {id: $id})-[a:AFFILIATED_WITH]->(o:Organization)
RETURN a, o.name AS organization`,
		map[string]any{"id": sponsorID})
	if err != nil {
		return nil, fmt.Errorf("list affiliations for sponsor %d: %w", sponsorID, err)
	}

	affiliations := make([]domain.Affiliation, 0, len(records))
	for _, rec := range records {
		props, err := relationshipProps(rec, "a")
		if err != nil {
			return nil, err
		}
		aff := domain.Affiliation{
			ID:             asInt64(props["id"]),
			SponsorID:      sponsorID,
			Organization:   asString(rec["organization"]),
			Role:           asString(props["role"]),
			Type:           asString(props["type"]),
			ConflictMarker: asString(props["conflictMarker"]),
			StartDate:      asTime(props["startDate"]),
			EndDate:        asTimePtr(props["endDate"]),
		}
		affiliations = append(affiliations, aff)
	}
	return affiliations, nil
}

func (s *Neo4jStore) ListTransparencyRecords(ctx context.Context, sponsorID int64) ([]domain.TransparencyRecord, error) {
	records, err := s.read(ctx,
		`MATCH (s:Sponsor {id: $id})-[:FILED]->(d:Disclosure) RETURN d`,
		map[string]any{"id": sponsorID})
	if err != nil {
		return nil, fmt.Errorf("list transparency records for sponsor %d: %w", sponsorID, err)
	}

	result := make([]domain.TransparencyRecord, 0, len(records))
	for _, rec := range records {
		props, err := nodeProps(rec, "d")
		if err != nil {
			return nil, err
		}
		result = append(result, domain.TransparencyRecord{
			ID:             asInt64(props["id"]),
			SponsorID:      sponsorID,
			DisclosureType: asString(props["disclosureType"]),
			Amount:         asFloat(props["amount"]),
			Verified:       asBool(props["verified"]),
			FiledAt:        asTime(props["filedAt"]),
		})
	}
	return result, nil
}

func (s *Neo4jStore) ListBillSponsorships(ctx context.Context, sponsorID int64) ([]domain.Sponsorship, error) {
	records, err := s.read(ctx, `
MATCH (s:Sponsor {id: $id})-[r:SPONSORS]->(b:Bill)
RETURN b.id AS billId, r.role AS role, r.sponsoredAt AS sponsoredAt`,
		map[string]any{"id": sponsorID})
	if err != nil {
		return nil, fmt.Errorf("list sponsorships for sponsor %d: %w", sponsorID, err)
	}

	sponsorships := make([]domain.Sponsorship, 0, len(records))
	for _, rec := range records {
		sponsorships = append(sponsorships, domain.Sponsorship{
			SponsorID:   sponsorID,
			BillID:      asString(rec["billId"]),
			Role:        asString(rec["role"]),
			SponsoredAt: asTime(rec["sponsoredAt"]),
		})
	}
	return sponsorships, nil
}

func (s *Neo4jStore) FindBillsMentioningOrganization(ctx context.Context, organization string, restrictTo []string) ([]domain.Bill, error) {
	cypher := `
MATCH (b:Bill)
WHERE (toLower(b.title) CONTAINS toLower($org) OR toLower(b.summary) CONTAINS toLower($org))`
	params := map[string]any{"org": organization}
	if len(restrictTo) > 0 {
		cypher += ` AND b.id IN $ids`
		params["ids"] = restrictTo
	}
	cypher += ` RETURN b ORDER BY b.id`

	records, err := s.read(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("find bills mentioning %q: %w", organization, err)
	}
	return billsFromRecords(records)
}

func (s *Neo4jStore) GetBill(ctx context.Context, id string) (domain.Bill, error) {
	records, err := s.read(ctx, `MATCH (b:Bill {id: $id}) RETURN b`, map[string]any{"id": id})
	if err != nil {
		return domain.Bill{}, fmt.Errorf("get bill %s: %w", id, err)
	}
	if len(records) == 0 {
		return domain.Bill{}, ErrBillNotFound
	}
	bills, err := billsFromRecords(records[:1])
	if err != nil {
		return domain.Bill{}, err
	}
	return bills[0], nil
}

func (s *Neo4jStore) GetBillsByIDs(ctx context.Context, ids []string) ([]domain.Bill, error) {
	records, err := s.read(ctx,
		`MATCH (b:Bill) WHERE b.id IN $ids RETURN b`,
		map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("get bills by ids: %w", err)
	}
	return billsFromRecords(records)
}

func (s *Neo4jStore) read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return consumeRecords(ctx, res)
}

func (s *Neo4jStore) write(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return consumeRecords(ctx, res)
}

func consumeRecords(ctx context.Context, res neo4j.ResultWithContext) ([]map[string]any, error) {
	var records []map[string]any
	for res.Next(ctx) {
		rec := res.Record()
		record := make(map[string]any, len(rec.Keys))
		for _, key := range rec.Keys {
			value, _ := rec.Get(key)
			record[key] = value
		}
		records = append(records, record)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func sponsorFromRecord(rec map[string]any, key string) (domain.Sponsor, error) {
	props, err := nodeProps(rec, key)
	if err != nil {
		return domain.Sponsor{}, err
	}
	sponsor := domain.Sponsor{
		ID:                asInt64(props["id"]),
		FullName:          asString(props["fullName"]),
		Party:             asString(props["party"]),
		District:          asString(props["district"]),
		IsActive:          asBool(props["isActive"]),
		FinancialExposure: asFloat(props["financialExposure"]),
		UpdatedAt:         asTime(props["updatedAt"]),
	}
	if v, ok := props["votingAlignment"]; ok && v != nil {
		alignment := asFloat(v)
		sponsor.VotingAlignment = &alignment
	}
	return sponsor, nil
}

func billsFromRecords(records []map[string]any) ([]domain.Bill, error) {
	bills := make([]domain.Bill, 0, len(records))
	for _, rec := range records {
		props, err := nodeProps(rec, "b")
		if err != nil {
			return nil, err
		}
		bills = append(bills, domain.Bill{
			ID:             asString(props["id"]),
			Title:          asString(props["title"]),
			Summary:        asString(props["summary"]),
			Status:         asString(props["status"]),
			IntroducedDate: asTime(props["introducedDate"]),
		})
	}
	return bills, nil
}

func nodeProps(rec map[string]any, key string) (map[string]any, error) {
	node, ok := rec[key].(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("record key %q is not a node", key)
	}
	return node.Props, nil
}

func relationshipProps(rec map[string]any, key string) (map[string]any, error) {
	rel, ok := rec[key].(neo4j.Relationship)
	if !ok {
		return nil, fmt.Errorf("record key %q is not a relationship", key)
	}
	return rel.Props, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}

func asTimePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	t := asTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func floatPtrParam(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
