package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanuka/integrity/backend/internal/analysis"
	"github.com/chanuka/integrity/backend/internal/domain"
)

func seedSponsor(t *testing.T, m *MemoryStore, sponsor domain.Sponsor, affiliations []domain.Affiliation) {
	t.Helper()
	require.NoError(t, m.UpsertSponsor(context.Background(), sponsor, affiliations, nil))
}

func TestMemoryStoreSponsorRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sponsor := domain.Sponsor{ID: 1, FullName: "Nimal Perera", Party: "UNP", IsActive: true}
	affiliations := []domain.Affiliation{
		{ID: 10, SponsorID: 1, Organization: "Acme Corp", Type: "economic", StartDate: start},
	}
	records := []domain.TransparencyRecord{
		{ID: 20, SponsorID: 1, DisclosureType: "financial_interest", Verified: true, FiledAt: start},
	}
	require.NoError(t, m.UpsertSponsor(ctx, sponsor, affiliations, records))

	got, err := m.GetSponsor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Nimal Perera", got.FullName)

	gotAffiliations, err := m.ListAffiliations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, affiliations, gotAffiliations)

	gotRecords, err := m.ListTransparencyRecords(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, records, gotRecords)
}

func TestMemoryStoreUpsertReplacesRelated(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	sponsor := domain.Sponsor{ID: 1, FullName: "A", IsActive: true}

	seedSponsor(t, m, sponsor, []domain.Affiliation{{ID: 1, SponsorID: 1, Organization: "Old Org"}})
	seedSponsor(t, m, sponsor, []domain.Affiliation{{ID: 2, SponsorID: 1, Organization: "New Org"}})

	affiliations, err := m.ListAffiliations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, affiliations, 1)
	assert.Equal(t, "New Org", affiliations[0].Organization)
}

func TestMemoryStoreGetSponsorNotFound(t *testing.T) {
	m := NewMemoryStore()

	_, err := m.GetSponsor(context.Background(), 99)
	assert.ErrorIs(t, err, analysis.ErrSponsorNotFound)
}

func TestMemoryStoreListActiveSponsors(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	seedSponsor(t, m, domain.Sponsor{ID: 3, IsActive: true}, nil)
	seedSponsor(t, m, domain.Sponsor{ID: 1, IsActive: true}, nil)
	seedSponsor(t, m, domain.Sponsor{ID: 2, IsActive: false}, nil)

	sponsors, err := m.ListActiveSponsors(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sponsors, 2)
	assert.Equal(t, int64(1), sponsors[0].ID)
	assert.Equal(t, int64(3), sponsors[1].ID)

	limited, err := m.ListActiveSponsors(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(1), limited[0].ID)
}

func TestMemoryStoreBillRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	sponsoredAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	bill := domain.Bill{ID: "B-1", Title: "Industrial Development Act", Status: "active"}
	sponsorships := []domain.Sponsorship{{SponsorID: 1, BillID: "B-1", Role: "primary", SponsoredAt: sponsoredAt}}
	require.NoError(t, m.UpsertBill(ctx, bill, sponsorships))

	got, err := m.GetBill(ctx, "B-1")
	require.NoError(t, err)
	assert.Equal(t, "Industrial Development Act", got.Title)

	_, err = m.GetBill(ctx, "B-404")
	assert.ErrorIs(t, err, ErrBillNotFound)

	gotSponsorships, err := m.ListBillSponsorships(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sponsorships, gotSponsorships)

	// Re-upserting the same bill does not duplicate sponsorship edges.
	require.NoError(t, m.UpsertBill(ctx, bill, sponsorships))
	gotSponsorships, err = m.ListBillSponsorships(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, gotSponsorships, 1)
}

func TestMemoryStoreFindBillsMentioningOrganization(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.UpsertBill(ctx, domain.Bill{
		ID: "B-1", Title: "Acme Corp Relief Act", Summary: "Relief provisions",
	}, nil))
	require.NoError(t, m.UpsertBill(ctx, domain.Bill{
		ID: "B-2", Title: "Roads Act", Summary: "Funding for ACME CORP projects",
	}, nil))
	require.NoError(t, m.UpsertBill(ctx, domain.Bill{
		ID: "B-3", Title: "Health Act", Summary: "Unrelated",
	}, nil))

	bills, err := m.FindBillsMentioningOrganization(ctx, "acme corp", nil)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "B-1", bills[0].ID)
	assert.Equal(t, "B-2", bills[1].ID)

	restricted, err := m.FindBillsMentioningOrganization(ctx, "Acme Corp", []string{"B-2"})
	require.NoError(t, err)
	require.Len(t, restricted, 1)
	assert.Equal(t, "B-2", restricted[0].ID)

	none, err := m.FindBillsMentioningOrganization(ctx, "", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreGetBillsByIDs(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.UpsertBill(ctx, domain.Bill{ID: "B-1"}, nil))
	require.NoError(t, m.UpsertBill(ctx, domain.Bill{ID: "B-2"}, nil))

	bills, err := m.GetBillsByIDs(ctx, []string{"B-2", "B-404", "B-1"})
	require.NoError(t, err)
	assert.Len(t, bills, 2)
}

func TestMemoryStoreConnectivity(t *testing.T) {
	m := NewMemoryStore()
	assert.NoError(t, m.VerifyConnectivity(context.Background()))
	assert.NoError(t, m.Close(context.Background()))
}
