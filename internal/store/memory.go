package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/chanuka/integrity/backend/internal/analysis"
	"github.com/chanuka/integrity/backend/internal/domain"
)

// MemoryStore is an in-memory DataProvider used for unit tests and for
// running the service without a graph database.
type MemoryStore struct {
	mu           sync.RWMutex
	sponsors     map[int64]domain.Sponsor
	affiliations map[int64][]domain.Affiliation
	transparency map[int64][]domain.TransparencyRecord
	sponsorships map[int64][]domain.Sponsorship
	bills        map[string]domain.Bill
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sponsors:     make(map[int64]domain.Sponsor),
		affiliations: make(map[int64][]domain.Affiliation),
		transparency: make(map[int64][]domain.TransparencyRecord),
		sponsorships: make(map[int64][]domain.Sponsorship),
		bills:        make(map[string]domain.Bill),
	}
}

// UpsertSponsor stores the sponsor and replaces its affiliations and
// transparency records.
func (m *MemoryStore) UpsertSponsor(_ context.Context, sponsor domain.Sponsor, affiliations []domain.Affiliation, records []domain.TransparencyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sponsors[sponsor.ID] = sponsor
	m.affiliations[sponsor.ID] = append([]domain.Affiliation(nil), affiliations...)
	m.transparency[sponsor.ID] = append([]domain.TransparencyRecord(nil), records...)
	return nil
}

// UpsertBill stores the bill and replaces the sponsorships attached to it.
func (m *MemoryStore) UpsertBill(_ context.Context, bill domain.Bill, sponsorships []domain.Sponsorship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bills[bill.ID] = bill
	for _, s := range sponsorships {
		kept := m.sponsorships[s.SponsorID][:0]
		for _, existing := range m.sponsorships[s.SponsorID] {
			if existing.BillID != bill.ID {
				kept = append(kept, existing)
			}
		}
		m.sponsorships[s.SponsorID] = append(kept, s)
	}
	return nil
}

func (m *MemoryStore) GetSponsor(_ context.Context, id int64) (domain.Sponsor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sponsor, ok := m.sponsors[id]
	if !ok {
		return domain.Sponsor{}, analysis.ErrSponsorNotFound
	}
	return sponsor, nil
}

func (m *MemoryStore) GetSponsorsByIDs(_ context.Context, ids []int64) ([]domain.Sponsor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sponsors []domain.Sponsor
	for _, id := range ids {
		if sponsor, ok := m.sponsors[id]; ok {
			sponsors = append(sponsors, sponsor)
		}
	}
	return sponsors, nil
}

func (m *MemoryStore) ListActiveSponsors(_ context.Context, limit int) ([]domain.Sponsor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sponsors []domain.Sponsor
	for _, sponsor := range m.sponsors {
		if sponsor.IsActive {
			sponsors = append(sponsors, sponsor)
		}
	}
	sort.Slice(sponsors, func(i, j int) bool { return sponsors[i].ID < sponsors[j].ID })
	if limit > 0 && len(sponsors) > limit {
		sponsors = sponsors[:limit]
	}
	return sponsors, nil
}

func (m *MemoryStore) ListAffiliations(_ context.Context, sponsorID int64) ([]domain.Affiliation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Affiliation(nil), m.affiliations[sponsorID]...), nil
}

func (m *MemoryStore) ListTransparencyRecords(_ context.Context, sponsorID int64) ([]domain.TransparencyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.TransparencyRecord(nil), m.transparency[sponsorID]...), nil
}

func (m *MemoryStore) ListBillSponsorships(_ context.Context, sponsorID int64) ([]domain.Sponsorship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Sponsorship(nil), m.sponsorships[sponsorID]...), nil
}

func (m *MemoryStore) FindBillsMentioningOrganization(_ context.Context, organization string, restrictTo []string) ([]domain.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	allowed := map[string]struct{}{}
	for _, id := range restrictTo {
		allowed[id] = struct{}{}
	}

	needle := strings.ToLower(organization)
	var bills []domain.Bill
	for _, bill := range m.bills {
		if len(restrictTo) > 0 {
			if _, ok := allowed[bill.ID]; !ok {
				continue
			}
		}
		text := strings.ToLower(bill.Title + " " + bill.Summary)
		if needle != "" && strings.Contains(text, needle) {
			bills = append(bills, bill)
		}
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].ID < bills[j].ID })
	return bills, nil
}

func (m *MemoryStore) GetBill(_ context.Context, id string) (domain.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bill, ok := m.bills[id]
	if !ok {
		return domain.Bill{}, ErrBillNotFound
	}
	return bill, nil
}

func (m *MemoryStore) GetBillsByIDs(_ context.Context, ids []string) ([]domain.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var bills []domain.Bill
	for _, id := range ids {
		if bill, ok := m.bills[id]; ok {
			bills = append(bills, bill)
		}
	}
	return bills, nil
}

// VerifyConnectivity always succeeds for the in-memory store.
func (m *MemoryStore) VerifyConnectivity(context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close(context.Context) error { return nil }
