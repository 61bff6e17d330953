// Package metrics provides regression error metrics and descriptive statistics.
package metrics

import "math"

// MAE returns the mean absolute error between yTrue and yPred.
// Returns NaN if the slices are empty or differ in length.
func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return math.NaN()
	}
	sum := 0.0
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue))
}

// R2 returns the coefficient of determination of yPred against yTrue.
//
// When yTrue is constant the ratio is undefined; the finite convention is used:
// 1 for a perfect prediction, 0 otherwise. Returns NaN if the slices are empty
// or differ in length.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return math.NaN()
	}

	mean := computeMean(yTrue)
	ssRes := 0.0
	ssTot := 0.0
	for i := range yTrue {
		res := yTrue[i] - yPred[i]
		ssRes += res * res
		dev := yTrue[i] - mean
		ssTot += dev * dev
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
