package model

import (
	"errors"
	"fmt"
	"math"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/metrics"
)

// MinRows is the smallest dataset that can be split into train and test.
const MinRows = 2

var (
	// ErrInsufficientData matches any *InsufficientDataError via errors.Is.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoCandidates is returned when the selector has nothing to compare.
	ErrNoCandidates = errors.New("no candidate models")
)

// InsufficientDataError is returned when there are too few rows to split.
type InsufficientDataError struct {
	Rows     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d wallet(s), need at least %d for a train/test split", e.Rows, e.Required)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// MetricFunc scores predictions against truth. Higher is better.
type MetricFunc func(yTrue, yPred []float64) float64

// Candidate is a named regressor taking part in selection.
type Candidate struct {
	Name  string
	Model Regressor
}

// SelectorOptions configures a Selector.
type SelectorOptions struct {
	TestFraction float64    // held-out fraction, default 0.2
	Seed         uint64     // split seed
	Metric       MetricFunc // selection metric, default R²
}

// Selection is the outcome of comparing candidates.
type Selection struct {
	Best        Candidate
	BestIndex   int
	Evaluations []domain.ModelEvaluation // one per candidate, in candidate order
	Split       Split
}

// Selector trains every candidate on the same split and keeps the best one.
type Selector struct {
	candidates []Candidate
	opts       SelectorOptions
}

// NewSelector creates a selector over candidates, compared in the given order.
func NewSelector(candidates []Candidate, opts SelectorOptions) *Selector {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = DefaultTestFraction
	}
	if opts.Metric == nil {
		opts.Metric = metrics.R2
	}
	return &Selector{candidates: candidates, opts: opts}
}

// Candidates returns the candidate names in comparison order.
func (s *Selector) Candidates() []string {
	names := make([]string, len(s.candidates))
	for i, c := range s.candidates {
		names[i] = c.Name
	}
	return names
}

// Select fits each candidate on the training partition, evaluates it on the
// held-out partition, and returns the candidate with the highest metric.
// Ties keep the earlier candidate. NaN scores never win; if every score is
// NaN the first candidate is selected.
func (s *Selector) Select(x [][]float64, y []float64) (*Selection, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrDimensionMismatch, len(x), len(y))
	}
	if len(s.candidates) == 0 {
		return nil, ErrNoCandidates
	}

	split, err := TrainTestSplit(len(x), s.opts.TestFraction, s.opts.Seed)
	if err != nil {
		return nil, err
	}
	xTrain, yTrain := takeRows(x, y, split.Train)
	xTest, yTest := takeRows(x, y, split.Test)

	evals := make([]domain.ModelEvaluation, 0, len(s.candidates))
	bestIdx := -1
	bestScore := math.Inf(-1)

	for i, c := range s.candidates {
		if err := c.Model.Fit(xTrain, yTrain); err != nil {
			return nil, fmt.Errorf("fit %s: %w", c.Name, err)
		}
		preds, err := c.Model.Predict(xTest)
		if err != nil {
			return nil, fmt.Errorf("predict %s: %w", c.Name, err)
		}

		evals = append(evals, domain.ModelEvaluation{
			Model: c.Name,
			MAE:   metrics.MAE(yTest, preds),
			R2:    metrics.R2(yTest, preds),
		})

		score := s.opts.Metric(yTest, preds)
		if math.IsNaN(score) {
			continue
		}
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx < 0 {
		bestIdx = 0
	}
	evals[bestIdx].Selected = true

	return &Selection{
		Best:        s.candidates[bestIdx],
		BestIndex:   bestIdx,
		Evaluations: evals,
		Split:       split,
	}, nil
}
