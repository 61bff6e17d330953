// Package features turns a transaction log into one feature row per wallet.
package features

import (
	"github.com/shopspring/decimal"

	"wallet-credit-lab/internal/domain"
)

// Aggregation defaults.
const (
	DefaultDecimals       = 6 // token precision assumed for amounts (USDC)
	DefaultDayPrefixWidth = 8 // leading timestamp characters forming a day bucket
)

// Options configures aggregation.
type Options struct {
	// Decimals is the token precision used to scale amounts: usd = amount × price / 10^Decimals.
	Decimals int32
	// DayPrefixWidth is the number of leading timestamp characters used as a day bucket.
	DayPrefixWidth int
}

// DefaultOptions returns the documented aggregation defaults.
func DefaultOptions() Options {
	return Options{
		Decimals:       DefaultDecimals,
		DayPrefixWidth: DefaultDayPrefixWidth,
	}
}

// AggregationStats summarizes one aggregation pass.
type AggregationStats struct {
	Transactions   int // transactions seen
	Dropped        int // transactions without a resolvable wallet
	UnknownActions int // transactions with an action outside the vocabulary
	Wallets        int // distinct wallets emitted
}

// Aggregator builds WalletFeatureRows from transactions.
type Aggregator struct {
	opts  Options
	scale decimal.Decimal
}

// NewAggregator creates a new feature aggregator. Zero option values fall back to defaults.
func NewAggregator(opts Options) *Aggregator {
	if opts.Decimals <= 0 {
		opts.Decimals = DefaultDecimals
	}
	if opts.DayPrefixWidth <= 0 {
		opts.DayPrefixWidth = DefaultDayPrefixWidth
	}
	return &Aggregator{
		opts:  opts,
		scale: decimal.New(1, opts.Decimals),
	}
}

// walletAccumulator holds the running totals of one wallet during a pass.
type walletAccumulator struct {
	deposits     int
	borrows      int
	repays       int
	redeems      int
	liquidations int

	totalDeposit decimal.Decimal
	totalBorrow  decimal.Decimal
	totalRepay   decimal.Decimal

	days map[string]struct{}
}

func newWalletAccumulator() *walletAccumulator {
	return &walletAccumulator{days: make(map[string]struct{})}
}

// Aggregate groups transactions by wallet and returns one row per wallet,
// in order of first appearance. Transactions without a wallet are dropped.
func (a *Aggregator) Aggregate(txs []domain.Transaction) ([]*domain.WalletFeatureRow, AggregationStats) {
	stats := AggregationStats{Transactions: len(txs)}

	accs := make(map[string]*walletAccumulator)
	var order []string

	for i := range txs {
		tx := &txs[i]

		wallet, ok := ResolveWallet(tx)
		if !ok {
			stats.Dropped++
			continue
		}

		acc, exists := accs[wallet]
		if !exists {
			acc = newWalletAccumulator()
			accs[wallet] = acc
			order = append(order, wallet)
		}

		action := domain.ParseAction(tx.Action)
		if !action.IsKnown() {
			stats.UnknownActions++
		}
		a.accumulate(acc, action, tx)
	}

	rows := make([]*domain.WalletFeatureRow, 0, len(order))
	for _, wallet := range order {
		rows = append(rows, freeze(wallet, accs[wallet]))
	}
	stats.Wallets = len(rows)

	return rows, stats
}

// accumulate applies one transaction to a wallet accumulator.
func (a *Aggregator) accumulate(acc *walletAccumulator, action domain.Action, tx *domain.Transaction) {
	switch action {
	case domain.ActionDeposit:
		acc.deposits++
		acc.totalDeposit = acc.totalDeposit.Add(a.usdValue(tx))
	case domain.ActionBorrow:
		acc.borrows++
		acc.totalBorrow = acc.totalBorrow.Add(a.usdValue(tx))
	case domain.ActionRepay:
		acc.repays++
		acc.totalRepay = acc.totalRepay.Add(a.usdValue(tx))
	case domain.ActionRedeemUnderlying:
		acc.redeems++
	case domain.ActionLiquidationCall:
		acc.liquidations++
	}

	// Day tracking only needs a timestamp, so unknown actions count too.
	if tx.Timestamp.Valid {
		acc.days[dayBucket(tx.Timestamp.Text, a.opts.DayPrefixWidth)] = struct{}{}
	}
}

// usdValue computes amount × price / scale. Missing amount is 0, missing price is 1.
func (a *Aggregator) usdValue(tx *domain.Transaction) decimal.Decimal {
	amount := decimal.Zero
	if tx.ActionData.Amount.Valid {
		amount = tx.ActionData.Amount.Decimal
	}
	price := decimal.NewFromInt(1)
	if tx.ActionData.AssetPriceUSD.Valid {
		price = tx.ActionData.AssetPriceUSD.Decimal
	}
	return amount.Mul(price).Div(a.scale)
}

// freeze converts an accumulator into an immutable feature row.
func freeze(wallet string, acc *walletAccumulator) *domain.WalletFeatureRow {
	totalDeposit := acc.totalDeposit.InexactFloat64()
	totalBorrow := acc.totalBorrow.InexactFloat64()
	totalRepay := acc.totalRepay.InexactFloat64()

	return &domain.WalletFeatureRow{
		Wallet:             wallet,
		Deposits:           acc.deposits,
		Borrows:            acc.borrows,
		Repays:             acc.repays,
		Redeems:            acc.redeems,
		Liquidations:       acc.liquidations,
		TotalDepositUSD:    totalDeposit,
		TotalBorrowUSD:     totalBorrow,
		TotalRepayUSD:      totalRepay,
		RepayRatio:         ratio(acc.totalRepay, acc.totalBorrow, 1),
		BorrowDepositRatio: ratio(acc.totalBorrow, acc.totalDeposit, 0),
		LiquidationCount:   acc.liquidations,
		ActiveDays:         len(acc.days),
	}
}

// ratio returns num/den, or fallback when den is not positive.
func ratio(num, den decimal.Decimal, fallback float64) float64 {
	if !den.IsPositive() {
		return fallback
	}
	return num.Div(den).InexactFloat64()
}

// dayBucket truncates a timestamp string to its leading width characters.
func dayBucket(ts string, width int) string {
	if len(ts) <= width {
		return ts
	}
	return ts[:width]
}
