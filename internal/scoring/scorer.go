// Package scoring turns model predictions into final scored wallets.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/model"
)

// ErrPredictionCount is returned when a model returns the wrong number of predictions.
var ErrPredictionCount = errors.New("prediction count mismatch")

// Scorer applies a fitted model to every feature row.
type Scorer struct {
	model      model.Regressor
	featureSet domain.FeatureSet
}

// NewScorer creates a scorer for a fitted model trained on featureSet columns.
func NewScorer(m model.Regressor, featureSet domain.FeatureSet) *Scorer {
	return &Scorer{model: m, featureSet: featureSet}
}

// Score predicts all rows and returns one ScoredWallet per row, in row order.
func (s *Scorer) Score(rows []*domain.WalletFeatureRow) ([]*domain.ScoredWallet, error) {
	if len(rows) == 0 {
		return []*domain.ScoredWallet{}, nil
	}

	preds, err := s.model.Predict(domain.FeatureMatrix(rows, s.featureSet))
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(preds) != len(rows) {
		return nil, fmt.Errorf("%w: %d rows, %d predictions", ErrPredictionCount, len(rows), len(preds))
	}

	out := make([]*domain.ScoredWallet, len(rows))
	for i, r := range rows {
		score := Normalize(preds[i])
		out[i] = &domain.ScoredWallet{
			Wallet:         r.Wallet,
			PredictedScore: score,
			RiskCategory:   Classify(score),
		}
	}
	return out, nil
}

// Normalize clamps a raw prediction to [0, 1000] and rounds it to 2 decimals.
// NaN maps to the lower bound.
func Normalize(v float64) float64 {
	switch {
	case math.IsNaN(v), v < domain.MinScore:
		return domain.MinScore
	case v > domain.MaxScore:
		return domain.MaxScore
	}
	return math.Round(v*100) / 100
}

// Classify maps a score to its risk tier. Lower bounds are inclusive.
func Classify(score float64) domain.RiskCategory {
	switch {
	case score >= domain.LowRiskThreshold:
		return domain.RiskLow
	case score >= domain.MediumRiskThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// Breakdown counts wallets per risk tier. Every tier is present in the result.
func Breakdown(scored []*domain.ScoredWallet) map[domain.RiskCategory]int {
	counts := make(map[domain.RiskCategory]int, 3)
	for _, c := range domain.RiskCategories() {
		counts[c] = 0
	}
	for _, s := range scored {
		counts[s.RiskCategory]++
	}
	return counts
}
