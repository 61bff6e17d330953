package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-lab/internal/domain"
)

type fixedModel struct {
	preds []float64
	err   error
}

func (m *fixedModel) Fit(_ [][]float64, _ []float64) error { return nil }

func (m *fixedModel) Predict(_ [][]float64) ([]float64, error) {
	return m.preds, m.err
}

func rows(wallets ...string) []*domain.WalletFeatureRow {
	out := make([]*domain.WalletFeatureRow, len(wallets))
	for i, w := range wallets {
		out[i] = &domain.WalletFeatureRow{Wallet: w, Deposits: i}
	}
	return out
}

func TestClassify_Boundaries(t *testing.T) {
	scores := []float64{0, 399.99, 400, 699.99, 700, 1000}
	want := []domain.RiskCategory{
		domain.RiskHigh, domain.RiskHigh,
		domain.RiskMedium, domain.RiskMedium,
		domain.RiskLow, domain.RiskLow,
	}

	for i, s := range scores {
		assert.Equal(t, want[i], Classify(s), "score %v", s)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{123.456, 123.46},
		{123.454, 123.45},
		{999.999, 1000},
		{1500, 1000},
		{math.Inf(1), 1000},
		{math.Inf(-1), 0},
		{math.NaN(), 0},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Normalize(tc.in), "in=%v", tc.in)
	}
}

func TestScorer_ClampsAndClassifies(t *testing.T) {
	m := &fixedModel{preds: []float64{-20, 450.126, 2000, 699.996}}
	s := NewScorer(m, domain.FeatureSetCounts)

	out, err := s.Score(rows("a", "b", "c", "d"))
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, "a", out[0].Wallet)
	assert.Equal(t, 0.0, out[0].PredictedScore)
	assert.Equal(t, domain.RiskHigh, out[0].RiskCategory)

	assert.Equal(t, 450.13, out[1].PredictedScore)
	assert.Equal(t, domain.RiskMedium, out[1].RiskCategory)

	assert.Equal(t, 1000.0, out[2].PredictedScore)
	assert.Equal(t, domain.RiskLow, out[2].RiskCategory)

	// Rounding happens before classification.
	assert.Equal(t, 700.0, out[3].PredictedScore)
	assert.Equal(t, domain.RiskLow, out[3].RiskCategory)

	for _, w := range out {
		assert.GreaterOrEqual(t, w.PredictedScore, domain.MinScore)
		assert.LessOrEqual(t, w.PredictedScore, domain.MaxScore)
	}
}

func TestScorer_Empty(t *testing.T) {
	out, err := NewScorer(&fixedModel{}, domain.FeatureSetCounts).Score(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestScorer_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewScorer(&fixedModel{err: boom}, domain.FeatureSetCounts).Score(rows("a"))
	assert.ErrorIs(t, err, boom)

	_, err = NewScorer(&fixedModel{preds: []float64{1}}, domain.FeatureSetCounts).Score(rows("a", "b"))
	assert.ErrorIs(t, err, ErrPredictionCount)
}

func TestBreakdown(t *testing.T) {
	counts := Breakdown([]*domain.ScoredWallet{
		{Wallet: "a", RiskCategory: domain.RiskLow},
		{Wallet: "b", RiskCategory: domain.RiskHigh},
		{Wallet: "c", RiskCategory: domain.RiskHigh},
	})

	assert.Equal(t, map[domain.RiskCategory]int{
		domain.RiskLow:    1,
		domain.RiskMedium: 0,
		domain.RiskHigh:   2,
	}, counts)
}
