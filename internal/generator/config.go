package generator

// Config drives the synthetic legislative data generator.
type Config struct {
	NumSponsors int
	NumBills    int
	// EconomicAffiliationChance is the probability an affiliation is economic
	// rather than professional or honorary.
	EconomicAffiliationChance float64
	// LeadershipChance is the probability an affiliation carries a leadership role.
	LeadershipChance float64
	// MentionChance is the probability a sponsored bill mentions one of the
	// sponsor's affiliated organizations, seeding financial conflicts.
	MentionChance float64
	// TimingConflictChance is the probability a bill is introduced within the
	// suspicious window of an affiliation start date.
	TimingConflictChance float64
	// DisclosureGapChance is the probability a financial affiliation goes
	// without a verified disclosure, seeding disclosure conflicts.
	DisclosureGapChance float64
	Seed                int64
}

// DefaultConfig returns baseline settings that produce a dataset with a
// realistic mix of clean sponsors and seeded conflict patterns.
func DefaultConfig() Config {
	return Config{
		NumSponsors:               200,
		NumBills:                  1500,
		EconomicAffiliationChance: 0.4,
		LeadershipChance:          0.25,
		MentionChance:             0.3,
		TimingConflictChance:      0.15,
		DisclosureGapChance:       0.35,
		Seed:                      42,
	}
}
