// Package model trains candidate regressors and selects the best one on a
// held-out partition.
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFitted is returned when Predict is called before Fit.
	ErrNotFitted = errors.New("model not fitted")

	// ErrEmptyData is returned when Fit receives no rows.
	ErrEmptyData = errors.New("empty training data")

	// ErrDimensionMismatch is returned when row widths or lengths disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Regressor is the common capability of all candidate models.
type Regressor interface {
	// Fit trains the model on x (rows × features) and targets y.
	Fit(x [][]float64, y []float64) error

	// Predict returns one prediction per row of x.
	Predict(x [][]float64) ([]float64, error)
}

// validateTrainingData checks that x is a non-empty rectangular matrix matching y.
// Returns the feature count.
func validateTrainingData(x [][]float64, y []float64) (int, error) {
	if len(x) == 0 {
		return 0, ErrEmptyData
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d targets", ErrDimensionMismatch, len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return 0, fmt.Errorf("%w: rows have no features", ErrDimensionMismatch)
	}
	for i, row := range x {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), width)
		}
	}
	return width, nil
}

// validatePredictData checks that every row of x has the fitted width.
func validatePredictData(x [][]float64, width int) error {
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), width)
		}
	}
	return nil
}
