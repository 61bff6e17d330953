// Package labeling derives synthetic training targets from feature rows.
//
// There is no ground-truth credit score for wallets. The heuristic below is a
// fixed, deterministic placeholder: more deposits, repays and redeems raise the
// label; more borrows and liquidations lower it. It is bounded to [0, 1000].
package labeling

import (
	"math"

	"wallet-credit-lab/internal/domain"
)

// Heuristic weights per action count.
const (
	DepositWeight     = 2.0
	RepayWeight       = 1.5
	BorrowWeight      = -1.0
	RedeemWeight      = 1.2
	LiquidationWeight = -10.0

	// Scale is applied to the weighted sum before rounding.
	Scale = 10.0
)

// RawScore returns the unscaled weighted sum for a row.
func RawScore(r *domain.WalletFeatureRow) float64 {
	return float64(r.Deposits)*DepositWeight +
		float64(r.Repays)*RepayWeight +
		float64(r.Borrows)*BorrowWeight +
		float64(r.Redeems)*RedeemWeight +
		float64(r.Liquidations)*LiquidationWeight
}

// Label returns clamp(round(RawScore × 10), 0, 1000).
func Label(r *domain.WalletFeatureRow) int {
	score := math.Round(RawScore(r) * Scale)
	switch {
	case score < domain.MinScore:
		return int(domain.MinScore)
	case score > domain.MaxScore:
		return int(domain.MaxScore)
	default:
		return int(score)
	}
}

// LabelAll returns the label vector for rows, in row order.
func LabelAll(rows []*domain.WalletFeatureRow) []float64 {
	y := make([]float64, len(rows))
	for i, r := range rows {
		y[i] = float64(Label(r))
	}
	return y
}

// HeuristicScores returns the labels as output rows for the heuristic-only variant.
func HeuristicScores(rows []*domain.WalletFeatureRow) []*domain.HeuristicScore {
	out := make([]*domain.HeuristicScore, len(rows))
	for i, r := range rows {
		out[i] = &domain.HeuristicScore{Wallet: r.Wallet, Score: Label(r)}
	}
	return out
}
