package labeling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wallet-credit-lab/internal/domain"
)

func TestLabel_KnownWallets(t *testing.T) {
	// A: 2 deposits, 1 borrow → (4 - 1) × 10 = 30
	a := &domain.WalletFeatureRow{Wallet: "A", Deposits: 2, Borrows: 1}
	// B: 1 liquidation → -100 → clamped to 0
	b := &domain.WalletFeatureRow{Wallet: "B", Liquidations: 1}

	assert.Equal(t, 30, Label(a))
	assert.Equal(t, 0, Label(b))
}

func TestLabel_Bounds(t *testing.T) {
	huge := &domain.WalletFeatureRow{Deposits: 1000}
	assert.Equal(t, 1000, Label(huge))

	negative := &domain.WalletFeatureRow{Borrows: 50}
	assert.Equal(t, 0, Label(negative))
}

func TestLabel_Rounding(t *testing.T) {
	// 1 redeem → 1.2 × 10 = 12
	assert.Equal(t, 12, Label(&domain.WalletFeatureRow{Redeems: 1}))
	// 1 repay → 15
	assert.Equal(t, 15, Label(&domain.WalletFeatureRow{Repays: 1}))
	// 3 redeems + 1 repay → (3.6 + 1.5) × 10 = 51
	assert.Equal(t, 51, Label(&domain.WalletFeatureRow{Redeems: 3, Repays: 1}))
}

func TestLabel_Monotonic(t *testing.T) {
	base := domain.WalletFeatureRow{Deposits: 10, Borrows: 5, Repays: 5, Redeems: 5, Liquidations: 1}
	baseLabel := Label(&base)

	up := []func(r *domain.WalletFeatureRow){
		func(r *domain.WalletFeatureRow) { r.Deposits++ },
		func(r *domain.WalletFeatureRow) { r.Repays++ },
		func(r *domain.WalletFeatureRow) { r.Redeems++ },
	}
	for i, f := range up {
		r := base
		f(&r)
		assert.GreaterOrEqual(t, Label(&r), baseLabel, "increase %d", i)
	}

	down := []func(r *domain.WalletFeatureRow){
		func(r *domain.WalletFeatureRow) { r.Borrows++ },
		func(r *domain.WalletFeatureRow) { r.Liquidations++ },
	}
	for i, f := range down {
		r := base
		f(&r)
		assert.LessOrEqual(t, Label(&r), baseLabel, "decrease %d", i)
	}
}

func TestLabelAll_PreservesOrder(t *testing.T) {
	rows := []*domain.WalletFeatureRow{
		{Wallet: "x", Deposits: 1},
		{Wallet: "y", Repays: 2},
	}
	assert.Equal(t, []float64{20, 30}, LabelAll(rows))

	scores := HeuristicScores(rows)
	assert.Equal(t, "x", scores[0].Wallet)
	assert.Equal(t, 20, scores[0].Score)
	assert.Equal(t, 30, scores[1].Score)
}
