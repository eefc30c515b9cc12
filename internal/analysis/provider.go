package analysis

import (
	"context"
	"errors"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// ErrSponsorNotFound indicates the requested sponsor does not exist. It is
// the only fetch error surfaced directly to callers of the engine.
var ErrSponsorNotFound = errors.New("sponsor not found")

// DataProvider is the read contract the engine requires from the data-access
// collaborator. All methods are read-only; the engine never writes.
type DataProvider interface {
	GetSponsor(ctx context.Context, id int64) (domain.Sponsor, error)
	GetSponsorsByIDs(ctx context.Context, ids []int64) ([]domain.Sponsor, error)
	ListActiveSponsors(ctx context.Context, limit int) ([]domain.Sponsor, error)
	ListAffiliations(ctx context.Context, sponsorID int64) ([]domain.Affiliation, error)
	ListTransparencyRecords(ctx context.Context, sponsorID int64) ([]domain.TransparencyRecord, error)
	ListBillSponsorships(ctx context.Context, sponsorID int64) ([]domain.Sponsorship, error)
	// FindBillsMentioningOrganization returns bills whose title or summary
	// mentions the organization. When restrictTo is non-empty the search is
	// limited to those bill ids.
	FindBillsMentioningOrganization(ctx context.Context, organization string, restrictTo []string) ([]domain.Bill, error)
	GetBill(ctx context.Context, id string) (domain.Bill, error)
	GetBillsByIDs(ctx context.Context, ids []string) ([]domain.Bill, error)
}
