package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/chanuka/integrity/backend/internal/ingest"
)

// Dataset contains the generated sponsors and bills.
type Dataset struct {
	Sponsors []ingest.SponsorRecord `json:"sponsors"`
	Bills    []ingest.BillRecord    `json:"bills"`
}

// Generator produces synthetic legislative data aligned with the conflict
// engine schema.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumSponsors <= 0 {
		cfg.NumSponsors = defaults.NumSponsors
	}
	if cfg.NumBills <= 0 {
		cfg.NumBills = defaults.NumBills
	}
	if cfg.EconomicAffiliationChance <= 0 {
		cfg.EconomicAffiliationChance = defaults.EconomicAffiliationChance
	}
	if cfg.LeadershipChance <= 0 {
		cfg.LeadershipChance = defaults.LeadershipChance
	}
	if cfg.MentionChance <= 0 {
		cfg.MentionChance = defaults.MentionChance
	}
	if cfg.TimingConflictChance <= 0 {
		cfg.TimingConflictChance = defaults.TimingConflictChance
	}
	if cfg.DisclosureGapChance <= 0 {
		cfg.DisclosureGapChance = defaults.DisclosureGapChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

var (
	firstNames = []string{"Amara", "Brian", "Chandima", "Dilshan", "Erandi", "Farzana", "Gayan", "Harini", "Ishara", "Janaka", "Kasun", "Lakmini", "Mahesh", "Nadeesha", "Oshan", "Priyanka", "Ruwan", "Sachini", "Tharindu", "Upeksha"}
	lastNames  = []string{"Perera", "Fernando", "Silva", "Jayawardena", "Gunasekara", "Wickramasinghe", "Bandara", "Rajapaksha", "Dissanayake", "Herath", "Senanayake", "Weerasinghe"}
	orgStems   = []string{"Lanka Holdings", "Ceylon Energy", "National Agro", "Island Telecom", "Harbor Logistics", "Summit Capital", "Coastal Minerals", "Metro Construction", "Highland Tea", "Unity Pharma", "Apex Textiles", "Granite Infrastructure"}
	orgSuffix  = []string{"PLC", "Group", "Partners", "Ltd", "Corporation"}
	roles      = []string{"advisor", "consultant", "member", "shareholder", "trustee", "patron"}
	leadRoles  = []string{"director", "board member", "executive officer", "chairman", "CEO", "president", "CFO"}
	affTypes   = []string{"professional", "honorary", "family"}
	parties    = []string{"Unity Alliance", "Progressive Front", "National Coalition", "Independent"}
	billTopics = []string{"tax relief", "energy procurement", "land reform", "public health funding", "transport modernization", "export incentives", "digital services regulation", "education grants"}
)

// Generate synthesises sponsors and bills. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	now := time.Now().UTC()
	affiliationSeq := int64(1)
	disclosureSeq := int64(1)

	sponsors := make([]ingest.SponsorRecord, g.cfg.NumSponsors)
	// sponsorOrgs remembers each sponsor's affiliated organizations so bills
	// can mention them deliberately.
	sponsorOrgs := make([][]string, g.cfg.NumSponsors)
	affiliationStarts := make([][]time.Time, g.cfg.NumSponsors)

	for i := 0; i < g.cfg.NumSponsors; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		sponsorID := int64(i + 1)
		numAffiliations := g.rand.Intn(8)

		var affiliations []ingest.AffiliationInput
		for n := 0; n < numAffiliations; n++ {
			org := g.randomOrganization()
			start := now.AddDate(0, 0, -g.rand.Intn(900))
			economic := g.rand.Float64() < g.cfg.EconomicAffiliationChance

			affType := affTypes[g.rand.Intn(len(affTypes))]
			marker := ""
			if economic {
				affType = "economic"
				if g.rand.Float64() < 0.5 {
					marker = "financial_direct"
				} else {
					marker = "financial_indirect"
				}
			} else if g.rand.Float64() < 0.3 {
				marker = []string{"ownership", "influence", "representation"}[g.rand.Intn(3)]
			}

			role := roles[g.rand.Intn(len(roles))]
			if g.rand.Float64() < g.cfg.LeadershipChance {
				role = leadRoles[g.rand.Intn(len(leadRoles))]
			}

			affiliations = append(affiliations, ingest.AffiliationInput{
				ID:             affiliationSeq,
				Organization:   org,
				Role:           role,
				Type:           affType,
				ConflictMarker: marker,
				StartDate:      start,
			})
			affiliationSeq++
			sponsorOrgs[i] = append(sponsorOrgs[i], org)
			affiliationStarts[i] = append(affiliationStarts[i], start)
		}

		var disclosures []ingest.DisclosureInput
		for _, aff := range affiliations {
			financial := aff.Type == "economic" || aff.ConflictMarker == "financial_direct" || aff.ConflictMarker == "financial_indirect"
			if !financial || g.rand.Float64() < g.cfg.DisclosureGapChance {
				continue
			}
			disclosures = append(disclosures, ingest.DisclosureInput{
				ID:             disclosureSeq,
				DisclosureType: "financial_interest",
				Amount:         float64(g.rand.Intn(5_000_000)),
				Verified:       g.rand.Float64() < 0.8,
				FiledAt:        aff.StartDate.AddDate(0, 0, g.rand.Intn(60)),
			})
			disclosureSeq++
		}

		alignment := g.rand.Float64() * 100
		sponsors[i] = ingest.SponsorRecord{
			ID:                sponsorID,
			FullName:          g.randomFullName(),
			Party:             parties[g.rand.Intn(len(parties))],
			District:          fmt.Sprintf("District %02d", 1+g.rand.Intn(25)),
			IsActive:          g.rand.Float64() < 0.9,
			FinancialExposure: float64(g.rand.Intn(20_000_000)),
			VotingAlignment:   &alignment,
			Affiliations:      affiliations,
			Disclosures:       disclosures,
		}
	}

	bills := make([]ingest.BillRecord, g.cfg.NumBills)
	for i := 0; i < g.cfg.NumBills; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		billID := fmt.Sprintf("BILL-%05d", i+1)
		sponsorIdx := g.rand.Intn(g.cfg.NumSponsors)
		sponsor := sponsors[sponsorIdx]
		topic := billTopics[g.rand.Intn(len(billTopics))]

		title := fmt.Sprintf("An Act on %s", topic)
		summary := fmt.Sprintf("Provisions concerning %s and related administrative matters.", topic)
		if len(sponsorOrgs[sponsorIdx]) > 0 && g.rand.Float64() < g.cfg.MentionChance {
			org := sponsorOrgs[sponsorIdx][g.rand.Intn(len(sponsorOrgs[sponsorIdx]))]
			summary = fmt.Sprintf("Provisions concerning %s, including contracts involving %s.", topic, org)
		}

		introduced := now.AddDate(0, 0, -g.rand.Intn(720))
		if len(affiliationStarts[sponsorIdx]) > 0 && g.rand.Float64() < g.cfg.TimingConflictChance {
			start := affiliationStarts[sponsorIdx][g.rand.Intn(len(affiliationStarts[sponsorIdx]))]
			introduced = start.AddDate(0, 0, g.rand.Intn(25))
		}

		sponsorships := []ingest.SponsorshipInput{{
			SponsorID:   sponsor.ID,
			Role:        "primary",
			SponsoredAt: introduced,
		}}
		// Occasionally add a co-sponsor to connect clusters.
		if g.rand.Float64() < 0.2 {
			coIdx := g.rand.Intn(g.cfg.NumSponsors)
			if coIdx != sponsorIdx {
				sponsorships = append(sponsorships, ingest.SponsorshipInput{
					SponsorID:   sponsors[coIdx].ID,
					Role:        "cosponsor",
					SponsoredAt: introduced.AddDate(0, 0, g.rand.Intn(10)),
				})
			}
		}

		bills[i] = ingest.BillRecord{
			ID:             billID,
			Title:          title,
			Summary:        summary,
			Status:         []string{"introduced", "committee", "passed", "rejected"}[g.rand.Intn(4)],
			IntroducedDate: introduced,
			Sponsorships:   sponsorships,
		}
	}

	return Dataset{Sponsors: sponsors, Bills: bills}, nil
}

func (g *Generator) randomFullName() string {
	return firstNames[g.rand.Intn(len(firstNames))] + " " + lastNames[g.rand.Intn(len(lastNames))]
}

func (g *Generator) randomOrganization() string {
	return orgStems[g.rand.Intn(len(orgStems))] + " " + orgSuffix[g.rand.Intn(len(orgSuffix))]
}
