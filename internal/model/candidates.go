package model

// Candidate names.
const (
	NameLinearRegression = "LinearRegression"
	NameGradientBoosting = "GradientBoosting"
	NameRandomForest     = "RandomForest"
)

// CandidateParams configures the default candidate set.
type CandidateParams struct {
	Seed             uint64
	GradientBoosting GradientBoostingParams
	RandomForest     RandomForestParams
}

// DefaultCandidateParams returns default parameters for all candidates.
func DefaultCandidateParams() CandidateParams {
	return CandidateParams{
		Seed:             DefaultSeed,
		GradientBoosting: DefaultGradientBoostingParams(),
		RandomForest:     DefaultRandomForestParams(),
	}
}

// NewCandidates builds fresh, unfitted candidates in comparison order:
// linear, gradient boosting, random forest. The seed is propagated to the
// stochastic models.
func NewCandidates(params CandidateParams) []Candidate {
	gb := params.GradientBoosting
	gb.Seed = params.Seed
	rf := params.RandomForest
	rf.Seed = params.Seed

	return []Candidate{
		{Name: NameLinearRegression, Model: NewLinearRegression()},
		{Name: NameGradientBoosting, Model: NewGradientBoosting(gb)},
		{Name: NameRandomForest, Model: NewRandomForest(rf)},
	}
}
