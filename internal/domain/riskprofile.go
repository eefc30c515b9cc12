package domain

// RiskBreakdown decomposes a sponsor's risk score into its four dimensions,
// each on a 0-100 scale.
type RiskBreakdown struct {
	FinancialRisk    int
	AffiliationRisk  int
	TransparencyRisk int
	BehavioralRisk   int
}

// RiskProfile is the per-sponsor aggregate produced on demand by the risk
// builder. Profiles are not persisted.
type RiskProfile struct {
	SponsorID       int64
	OverallScore    int
	Level           Severity
	Breakdown       RiskBreakdown
	Recommendations []string
}
