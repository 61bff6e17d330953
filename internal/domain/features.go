package domain

// FeatureSet selects which WalletFeatureRow columns form the model input.
type FeatureSet string

const (
	// FeatureSetCounts uses the five raw action counters.
	FeatureSetCounts FeatureSet = "counts"
	// FeatureSetExtended adds USD aggregates, ratios and active days to the counters.
	FeatureSetExtended FeatureSet = "extended"
)

// String returns the string representation of FeatureSet.
func (fs FeatureSet) String() string {
	return string(fs)
}

// IsValid checks if the feature set is a valid value.
func (fs FeatureSet) IsValid() bool {
	return fs == FeatureSetCounts || fs == FeatureSetExtended
}

var (
	countFeatureNames = []string{
		"deposits", "borrows", "repays", "redeems", "liquidations",
	}
	extendedFeatureNames = []string{
		"deposits", "borrows", "repays", "redeems", "liquidations",
		"total_deposit", "total_borrow", "total_repay",
		"repay_ratio", "borrow_deposit_ratio", "active_days",
	}
)

// FeatureNames returns the column names of the given feature set, in Vector order.
func FeatureNames(fs FeatureSet) []string {
	if fs == FeatureSetExtended {
		return append([]string(nil), extendedFeatureNames...)
	}
	return append([]string(nil), countFeatureNames...)
}

// WalletFeatureRow holds the aggregated behavior of one wallet.
// Built once by the feature aggregator and never updated afterwards.
type WalletFeatureRow struct {
	Wallet string

	// Action counters
	Deposits     int
	Borrows      int
	Repays       int
	Redeems      int
	Liquidations int

	// USD-denominated aggregates (amount × price / scale)
	TotalDepositUSD float64
	TotalBorrowUSD  float64
	TotalRepayUSD   float64

	// Derived
	RepayRatio         float64 // total_repay / total_borrow, 1 when total_borrow is 0
	BorrowDepositRatio float64 // total_borrow / total_deposit, 0 when total_deposit is 0
	LiquidationCount   int
	ActiveDays         int // distinct day buckets with activity
}

// Vector returns the numeric model input for the given feature set.
func (r *WalletFeatureRow) Vector(fs FeatureSet) []float64 {
	counts := []float64{
		float64(r.Deposits),
		float64(r.Borrows),
		float64(r.Repays),
		float64(r.Redeems),
		float64(r.Liquidations),
	}
	if fs != FeatureSetExtended {
		return counts
	}
	return append(counts,
		r.TotalDepositUSD,
		r.TotalBorrowUSD,
		r.TotalRepayUSD,
		r.RepayRatio,
		r.BorrowDepositRatio,
		float64(r.ActiveDays),
	)
}

// FeatureMatrix stacks the vectors of all rows in row order.
func FeatureMatrix(rows []*WalletFeatureRow, fs FeatureSet) [][]float64 {
	x := make([][]float64, len(rows))
	for i, r := range rows {
		x[i] = r.Vector(fs)
	}
	return x
}
