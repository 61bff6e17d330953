package model

import "math/rand/v2"

// RandomForestParams configures a random forest.
type RandomForestParams struct {
	Estimators     int    `yaml:"estimators" env:"ESTIMATORS"`
	MaxDepth       int    `yaml:"max_depth" env:"MAX_DEPTH"`               // 0 = unlimited
	MinSamplesLeaf int    `yaml:"min_samples_leaf" env:"MIN_SAMPLES_LEAF"` // default 1
	MaxFeatures    int    `yaml:"max_features" env:"MAX_FEATURES"`         // 0 = all features
	Seed           uint64 `yaml:"-"`
}

// DefaultRandomForestParams returns 100 fully grown trees over all features.
func DefaultRandomForestParams() RandomForestParams {
	return RandomForestParams{
		Estimators:     100,
		MinSamplesLeaf: 1,
		Seed:           DefaultSeed,
	}
}

// RandomForest averages CART trees grown on bootstrap samples.
type RandomForest struct {
	params RandomForestParams
	trees  []*regressionTree
	width  int
}

// NewRandomForest creates a random forest regressor.
func NewRandomForest(params RandomForestParams) *RandomForest {
	if params.Estimators <= 0 {
		params.Estimators = DefaultRandomForestParams().Estimators
	}
	return &RandomForest{params: params}
}

// Fit grows Estimators trees. Bootstrap draws come from a generator seeded
// with params.Seed, so repeated fits on the same data are identical.
func (m *RandomForest) Fit(x [][]float64, y []float64) error {
	width, err := validateTrainingData(x, y)
	if err != nil {
		return err
	}

	rng := newRand(m.params.Seed)
	opts := treeOptions{
		maxDepth:       m.params.MaxDepth,
		minSamplesLeaf: m.params.MinSamplesLeaf,
		maxFeatures:    m.params.MaxFeatures,
	}

	n := len(x)
	trees := make([]*regressionTree, m.params.Estimators)
	for t := range trees {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		trees[t] = fitTree(x, y, sample, width, opts, rng)
	}

	m.trees = trees
	m.width = width
	return nil
}

// Predict returns the mean prediction of all trees.
func (m *RandomForest) Predict(x [][]float64) ([]float64, error) {
	if len(m.trees) == 0 {
		return nil, ErrNotFitted
	}
	if err := validatePredictData(x, m.width); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i, row := range x {
		sum := 0.0
		for _, t := range m.trees {
			sum += t.predictRow(row)
		}
		out[i] = sum / float64(len(m.trees))
	}
	return out, nil
}

// newRand returns a deterministic generator for seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var _ Regressor = (*RandomForest)(nil)
