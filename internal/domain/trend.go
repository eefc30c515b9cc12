package domain

// TrendDirection labels how conflict severity is moving across the window.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// ConflictPrediction is a best-effort forward signal. Probability is a fixed
// low-confidence placeholder; callers must not treat it as calibrated.
type ConflictPrediction struct {
	BillID        string
	PredictedType ConflictType
	Probability   float64
	RiskFactors   []string
}

// ConflictTrend compares the recent half of a time window against the older
// half for one sponsor.
type ConflictTrend struct {
	SponsorID     int64
	Timeframe     string
	ConflictCount int
	SeverityTrend TrendDirection
	RiskScore     int
	Predictions   []ConflictPrediction
	// Degraded is set when trend analysis failed internally and a zeroed
	// trend was returned instead of an error.
	Degraded bool
}
