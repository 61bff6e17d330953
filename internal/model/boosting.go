package model

import "math/rand/v2"

// GradientBoostingParams configures squared-error gradient boosting.
type GradientBoostingParams struct {
	Estimators     int     `yaml:"estimators" env:"ESTIMATORS"`
	LearningRate   float64 `yaml:"learning_rate" env:"LEARNING_RATE"`
	MaxDepth       int     `yaml:"max_depth" env:"MAX_DEPTH"`
	Lambda         float64 `yaml:"lambda" env:"LAMBDA"`                     // L2 shrinkage on leaf values
	Subsample      float64 `yaml:"subsample" env:"SUBSAMPLE"`               // row fraction per tree, (0, 1]
	MinSamplesLeaf int     `yaml:"min_samples_leaf" env:"MIN_SAMPLES_LEAF"` // default 1
	Seed           uint64  `yaml:"-"`
}

// DefaultGradientBoostingParams mirrors common boosted-tree defaults:
// 100 trees, learning rate 0.3, depth 6, lambda 1, no subsampling.
func DefaultGradientBoostingParams() GradientBoostingParams {
	return GradientBoostingParams{
		Estimators:     100,
		LearningRate:   0.3,
		MaxDepth:       6,
		Lambda:         1,
		Subsample:      1,
		MinSamplesLeaf: 1,
		Seed:           DefaultSeed,
	}
}

// GradientBoosting fits trees sequentially on the residuals of the ensemble.
type GradientBoosting struct {
	params GradientBoostingParams
	base   float64
	trees  []*regressionTree
	width  int
}

// NewGradientBoosting creates a gradient-boosted tree regressor.
// Zero-valued params fall back to defaults.
func NewGradientBoosting(params GradientBoostingParams) *GradientBoosting {
	def := DefaultGradientBoostingParams()
	if params.Estimators <= 0 {
		params.Estimators = def.Estimators
	}
	if params.LearningRate <= 0 {
		params.LearningRate = def.LearningRate
	}
	if params.MaxDepth <= 0 {
		params.MaxDepth = def.MaxDepth
	}
	if params.Lambda < 0 {
		params.Lambda = def.Lambda
	}
	if params.Subsample <= 0 || params.Subsample > 1 {
		params.Subsample = def.Subsample
	}
	return &GradientBoosting{params: params}
}

// Fit starts from the target mean and adds LearningRate × tree(residuals)
// per round.
func (m *GradientBoosting) Fit(x [][]float64, y []float64) error {
	width, err := validateTrainingData(x, y)
	if err != nil {
		return err
	}

	n := len(x)
	base := 0.0
	for _, v := range y {
		base += v
	}
	base /= float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}

	rng := newRand(m.params.Seed)
	opts := treeOptions{
		maxDepth:       m.params.MaxDepth,
		minSamplesLeaf: m.params.MinSamplesLeaf,
		lambda:         m.params.Lambda,
	}

	residual := make([]float64, n)
	trees := make([]*regressionTree, 0, m.params.Estimators)
	for round := 0; round < m.params.Estimators; round++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}

		tree := fitTree(x, residual, m.sampleRows(n, rng), width, opts, nil)
		for i, row := range x {
			pred[i] += m.params.LearningRate * tree.predictRow(row)
		}
		trees = append(trees, tree)
	}

	m.base = base
	m.trees = trees
	m.width = width
	return nil
}

// sampleRows returns the row indices used by one boosting round.
func (m *GradientBoosting) sampleRows(n int, rng *rand.Rand) []int {
	if m.params.Subsample >= 1 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	k := int(float64(n) * m.params.Subsample)
	if k < 1 {
		k = 1
	}
	return rng.Perm(n)[:k]
}

// Predict returns base + Σ LearningRate × tree(x).
func (m *GradientBoosting) Predict(x [][]float64) ([]float64, error) {
	if m.trees == nil {
		return nil, ErrNotFitted
	}
	if err := validatePredictData(x, m.width); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i, row := range x {
		v := m.base
		for _, t := range m.trees {
			v += m.params.LearningRate * t.predictRow(row)
		}
		out[i] = v
	}
	return out, nil
}

var _ Regressor = (*GradientBoosting)(nil)
