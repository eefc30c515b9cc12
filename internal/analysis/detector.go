package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chanuka/integrity/backend/internal/domain"
)

// ConflictDetector runs the four detection algorithms over sponsor data
// fetched through the DataProvider. Detections are recomputed on every call.
type ConflictDetector struct {
	provider DataProvider
	scorer   *SeverityScorer
	cfg      Config
	logger   *slog.Logger
	nowFn    func() time.Time
	newID    func() string
}

// NewConflictDetector constructs a detector with the provided collaborators.
func NewConflictDetector(provider DataProvider, cfg Config, logger *slog.Logger) *ConflictDetector {
	return &ConflictDetector{
		provider: provider,
		scorer:   NewSeverityScorer(cfg),
		cfg:      cfg,
		logger:   logger,
		nowFn:    time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (d *ConflictDetector) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		d.nowFn = nowFn
	}
}

// DetectAll analyzes every active sponsor, bounded by the configured limit.
// Per-sponsor failures are logged and skipped; they never abort the batch.
func (d *ConflictDetector) DetectAll(ctx context.Context) ([]domain.ConflictDetection, error) {
	sponsors, err := d.provider.ListActiveSponsors(ctx, d.cfg.ActiveSponsorLimit)
	if err != nil {
		return nil, fmt.Errorf("list active sponsors: %w", err)
	}

	perSponsor := make([][]domain.ConflictDetection, len(sponsors))
	g := &errgroup.Group{}
	g.SetLimit(d.cfg.SponsorConcurrency)

	for i, sponsor := range sponsors {
		i, sponsor := i, sponsor
		g.Go(func() error {
			conflicts, err := d.DetectForSponsor(ctx, sponsor.ID)
			if err != nil {
				// Settle-all semantics: record the failure, keep siblings running.
				d.logger.Error("sponsor analysis failed",
					"sponsorId", sponsor.ID, "error", err)
				return nil
			}
			perSponsor[i] = conflicts
			return nil
		})
	}
	_ = g.Wait()

	flattened := make([]domain.ConflictDetection, 0)
	for _, conflicts := range perSponsor {
		flattened = append(flattened, conflicts...)
	}
	return flattened, nil
}

// DetectForSponsor fetches the sponsor's related records and runs the four
// detection algorithms concurrently. A failing algorithm contributes zero
// conflicts and does not cancel the other three.
func (d *ConflictDetector) DetectForSponsor(ctx context.Context, sponsorID int64) ([]domain.ConflictDetection, error) {
	bundle, err := d.fetchBundle(ctx, sponsorID)
	if err != nil {
		return nil, err
	}

	type algorithmResult struct {
		name      string
		conflicts []domain.ConflictDetection
		err       error
	}

	algorithms := []struct {
		name string
		run  func(context.Context, sponsorBundle) ([]domain.ConflictDetection, error)
	}{
		{"financial", d.detectFinancial},
		{"organizational", d.detectOrganizational},
		{"timing", d.detectTiming},
		{"disclosure", d.detectDisclosure},
	}

	results := make(chan algorithmResult, len(algorithms))
	for _, alg := range algorithms {
		alg := alg
		go func() {
			res := algorithmResult{name: alg.name}
			defer func() {
				if r := recover(); r != nil {
					res.err = fmt.Errorf("algorithm panic: %v", r)
					res.conflicts = nil
				}
				results <- res
			}()
			res.conflicts, res.err = alg.run(ctx, bundle)
		}()
	}

	var conflicts []domain.ConflictDetection
	for range algorithms {
		res := <-results
		if res.err != nil {
			d.logger.Error("detection algorithm failed",
				"sponsorId", sponsorID, "algorithm", res.name, "error", res.err)
			continue
		}
		conflicts = append(conflicts, res.conflicts...)
	}
	return conflicts, nil
}

// sponsorBundle holds everything the four algorithms need, fetched once.
type sponsorBundle struct {
	sponsor       domain.Sponsor
	affiliations  []domain.Affiliation
	transparency  []domain.TransparencyRecord
	sponsorships  []domain.Sponsorship
	sponsoredIDs  []string
	bills         []domain.Bill
	billsByID     map[string]domain.Bill
}

func (d *ConflictDetector) fetchBundle(ctx context.Context, sponsorID int64) (sponsorBundle, error) {
	sponsor, err := d.provider.GetSponsor(ctx, sponsorID)
	if err != nil {
		return sponsorBundle{}, err
	}

	affiliations, err := d.provider.ListAffiliations(ctx, sponsorID)
	if err != nil {
		return sponsorBundle{}, fmt.Errorf("list affiliations for sponsor %d: %w", sponsorID, err)
	}
	transparency, err := d.provider.ListTransparencyRecords(ctx, sponsorID)
	if err != nil {
		return sponsorBundle{}, fmt.Errorf("list transparency records for sponsor %d: %w", sponsorID, err)
	}
	sponsorships, err := d.provider.ListBillSponsorships(ctx, sponsorID)
	if err != nil {
		return sponsorBundle{}, fmt.Errorf("list sponsorships for sponsor %d: %w", sponsorID, err)
	}

	sponsoredIDs := make([]string, 0, len(sponsorships))
	for _, s := range sponsorships {
		sponsoredIDs = append(sponsoredIDs, s.BillID)
	}

	var bills []domain.Bill
	if len(sponsoredIDs) > 0 {
		bills, err = d.provider.GetBillsByIDs(ctx, sponsoredIDs)
		if err != nil {
			return sponsorBundle{}, fmt.Errorf("fetch sponsored bills for sponsor %d: %w", sponsorID, err)
		}
	}
	billsByID := make(map[string]domain.Bill, len(bills))
	for _, b := range bills {
		billsByID[b.ID] = b
	}

	return sponsorBundle{
		sponsor:      sponsor,
		affiliations: affiliations,
		transparency: transparency,
		sponsorships: sponsorships,
		sponsoredIDs: sponsoredIDs,
		bills:        bills,
		billsByID:    billsByID,
	}, nil
}

// detectFinancial flags economic or financially marked affiliations whose
// organization is mentioned by bills the sponsor sponsors.
func (d *ConflictDetector) detectFinancial(ctx context.Context, b sponsorBundle) ([]domain.ConflictDetection, error) {
	var conflicts []domain.ConflictDetection
	for _, aff := range b.affiliations {
		if !isFinancialAffiliation(aff) {
			continue
		}
		matched, err := d.matchBills(ctx, aff.Organization, b.sponsoredIDs)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			continue
		}

		conflictType := domain.ConflictFinancialIndirect
		confidence := 0.65
		if strings.EqualFold(aff.Type, "economic") ||
			strings.EqualFold(aff.ConflictMarker, string(domain.ConflictFinancialDirect)) {
			conflictType = domain.ConflictFinancialDirect
			confidence = 0.75
		}

		impact := d.estimateImpact(b.sponsor, aff, len(matched))
		factors := d.contextFor(aff, b.affiliations)
		conflicts = append(conflicts, d.newConflict(b.sponsor.ID, conflictType, aff,
			fmt.Sprintf("Sponsor holds a %s affiliation with %s referenced by %d sponsored bill(s)",
				strings.ToLower(aff.Type), aff.Organization, len(matched)),
			matched, impact, confidence, factors))
	}
	return conflicts, nil
}

// detectOrganizational flags leadership roles in organizations mentioned by
// the sponsor's own bills.
func (d *ConflictDetector) detectOrganizational(ctx context.Context, b sponsorBundle) ([]domain.ConflictDetection, error) {
	var conflicts []domain.ConflictDetection
	for _, aff := range b.affiliations {
		if !d.cfg.isLeadershipRole(aff.Role) {
			continue
		}
		matched, err := d.matchBills(ctx, aff.Organization, b.sponsoredIDs)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			continue
		}

		factors := d.contextFor(aff, b.affiliations)
		factors.LeadershipRole = true
		conflicts = append(conflicts, d.newConflict(b.sponsor.ID, domain.ConflictOrganizational, aff,
			fmt.Sprintf("Sponsor serves as %s at %s, an organization referenced by %d sponsored bill(s)",
				aff.Role, aff.Organization, len(matched)),
			matched, 0, 0.7, factors))
	}
	return conflicts, nil
}

// detectTiming flags bills introduced close to an affiliation's start date.
func (d *ConflictDetector) detectTiming(_ context.Context, b sponsorBundle) ([]domain.ConflictDetection, error) {
	if len(b.affiliations) == 0 {
		return nil, nil
	}

	var conflicts []domain.ConflictDetection
	for _, bill := range b.bills {
		closest := -1
		var closestAff domain.Affiliation
		for _, aff := range b.affiliations {
			days := daysBetween(bill.IntroducedDate, aff.StartDate)
			if days <= d.cfg.SuspiciousDays && (closest < 0 || days < closest) {
				closest = days
				closestAff = aff
			}
		}
		if closest < 0 {
			continue
		}

		severity := domain.SeverityMedium
		confidence := 0.6
		if closest <= d.cfg.VerySuspiciousDays {
			severity = domain.SeverityHigh
			confidence = 0.8
		}

		affID := closestAff.ID
		conflicts = append(conflicts, domain.ConflictDetection{
			ConflictID: d.newID(),
			SponsorID:  b.sponsor.ID,
			Type:       domain.ConflictTimingSuspicious,
			Severity:   severity,
			Description: fmt.Sprintf("Bill %s introduced %d day(s) from the start of the sponsor's affiliation with %s",
				bill.ID, closest, closestAff.Organization),
			AffectedBills:        []string{bill.ID},
			FinancialImpact:      0,
			DetectedAt:           d.nowFn().UTC(),
			Confidence:           confidence,
			Evidence:             affiliationEvidence(closestAff),
			RelatedAffiliationID: &affID,
		})
	}
	return conflicts, nil
}

// detectDisclosure compares verified financial disclosures against financial
// affiliations. Thresholds follow the reference behavior: the conflict
// triggers below AdequateDisclosure and escalates below CompleteDisclosure,
// even though the escalation bar is the looser of the two.
func (d *ConflictDetector) detectDisclosure(_ context.Context, b sponsorBundle) ([]domain.ConflictDetection, error) {
	completeness := disclosureCompleteness(b.affiliations, b.transparency)
	if completeness >= d.cfg.AdequateDisclosure {
		return nil, nil
	}

	severity := domain.SeverityMedium
	if completeness < d.cfg.CompleteDisclosure {
		severity = domain.SeverityHigh
	}

	expected := 0
	for _, a := range b.affiliations {
		if isFinancialAffiliation(a) {
			expected++
		}
	}
	actual := 0
	for _, r := range b.transparency {
		if r.Verified && isFinancialDisclosure(r) {
			actual++
		}
	}

	return []domain.ConflictDetection{{
		ConflictID: d.newID(),
		SponsorID:  b.sponsor.ID,
		Type:       domain.ConflictDisclosureIncomplete,
		Severity:   severity,
		Description: fmt.Sprintf("Only %d of %d financial affiliations are covered by verified disclosures (%.0f%% complete)",
			actual, expected, completeness*100),
		AffectedBills:   []string{},
		FinancialImpact: 0,
		DetectedAt:      d.nowFn().UTC(),
		Confidence:      0.85,
		Evidence:        []string{fmt.Sprintf("disclosures:%d/%d", actual, expected)},
	}}, nil
}

// matchBills finds bills among the sponsor's own sponsorships that mention
// the organization.
func (d *ConflictDetector) matchBills(ctx context.Context, organization string, sponsoredIDs []string) ([]string, error) {
	if len(sponsoredIDs) == 0 {
		return nil, nil
	}
	bills, err := d.provider.FindBillsMentioningOrganization(ctx, organization, sponsoredIDs)
	if err != nil {
		return nil, fmt.Errorf("find bills mentioning %q: %w", organization, err)
	}
	ids := make([]string, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

// estimateImpact derives a financial impact figure from the sponsor's
// declared exposure, scaled by how many bills touch the affiliation.
func (d *ConflictDetector) estimateImpact(sponsor domain.Sponsor, aff domain.Affiliation, matchedBills int) float64 {
	if matchedBills < 1 {
		matchedBills = 1
	}
	impact := math.Round(sponsor.FinancialExposure / 10 * float64(matchedBills))
	if strings.EqualFold(aff.Type, "economic") {
		impact *= 2
	}
	if strings.HasPrefix(strings.ToLower(aff.ConflictMarker), "financial") {
		impact *= 3
	}
	if d.cfg.isLeadershipRole(aff.Role) {
		impact *= 1.5
	}
	return impact
}

func (d *ConflictDetector) contextFor(aff domain.Affiliation, all []domain.Affiliation) ContextFactors {
	recentCutoff := d.nowFn().AddDate(0, 0, -d.cfg.RecentActivityDays)
	marker := strings.ToLower(aff.ConflictMarker)
	return ContextFactors{
		RelatedAffiliations: len(all),
		RecentActivity:      aff.StartDate.After(recentCutoff),
		LeadershipRole:      d.cfg.isLeadershipRole(aff.Role),
		DirectBeneficiary:   marker == string(domain.ConflictFinancialDirect) || marker == "ownership",
	}
}

func (d *ConflictDetector) newConflict(sponsorID int64, conflictType domain.ConflictType,
	aff domain.Affiliation, description string, bills []string,
	impact, confidence float64, factors ContextFactors) domain.ConflictDetection {

	affID := aff.ID
	return domain.ConflictDetection{
		ConflictID:           d.newID(),
		SponsorID:            sponsorID,
		Type:                 conflictType,
		Severity:             d.scorer.Classify(conflictType, impact, factors),
		Description:          description,
		AffectedBills:        bills,
		FinancialImpact:      impact,
		DetectedAt:           d.nowFn().UTC(),
		Confidence:           confidence,
		Evidence:             affiliationEvidence(aff),
		RelatedAffiliationID: &affID,
	}
}

func affiliationEvidence(aff domain.Affiliation) []string {
	return []string{
		fmt.Sprintf("affiliation:%d", aff.ID),
		fmt.Sprintf("org:%s", aff.Organization),
	}
}

// daysBetween returns the absolute whole-day distance between two dates.
func daysBetween(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
