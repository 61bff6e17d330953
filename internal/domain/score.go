package domain

// RiskCategory is the coarse risk tier derived from a predicted score.
type RiskCategory string

const (
	RiskLow    RiskCategory = "Low"
	RiskMedium RiskCategory = "Medium"
	RiskHigh   RiskCategory = "High"
)

// Score bounds and tier thresholds.
const (
	MinScore = 0.0
	MaxScore = 1000.0

	LowRiskThreshold    = 700.0 // score >= 700 → Low
	MediumRiskThreshold = 400.0 // 400 <= score < 700 → Medium
)

// String returns the string representation of RiskCategory.
func (c RiskCategory) String() string {
	return string(c)
}

// IsValid checks if the category is a valid value.
func (c RiskCategory) IsValid() bool {
	return c == RiskLow || c == RiskMedium || c == RiskHigh
}

// RiskCategories lists all tiers from lowest to highest risk.
func RiskCategories() []RiskCategory {
	return []RiskCategory{RiskLow, RiskMedium, RiskHigh}
}

// ScoredWallet is the final output row for one wallet. Terminal: written to
// the result sink and never mutated.
type ScoredWallet struct {
	Wallet         string
	PredictedScore float64 // clamped to [0, 1000], 2 decimals
	RiskCategory   RiskCategory
}

// HeuristicScore is the output row of the heuristic-only variant.
type HeuristicScore struct {
	Wallet string
	Score  int
}
