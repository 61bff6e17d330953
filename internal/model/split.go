package model

import "math"

// Split defaults.
const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// Split holds the row indices of the training and held-out partitions.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles row indices with a generator seeded by seed and
// holds out ceil(n × testFraction) of them, clamped so that both partitions
// keep at least one row. Requires n >= 2.
func TrainTestSplit(n int, testFraction float64, seed uint64) (Split, error) {
	if n < MinRows {
		return Split{}, &InsufficientDataError{Rows: n, Required: MinRows}
	}

	testSize := int(math.Ceil(float64(n) * testFraction))
	if testSize < 1 {
		testSize = 1
	}
	if testSize > n-1 {
		testSize = n - 1
	}

	perm := newRand(seed).Perm(n)
	return Split{
		Test:  perm[:testSize],
		Train: perm[testSize:],
	}, nil
}

// takeRows gathers the rows of x and y listed in idx.
func takeRows(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}
