package clickhouse

import (
	"context"
	"fmt"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds all feature rows of a run. Fails entire batch on duplicate.
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
func (s *FeatureStore) InsertBulk(ctx context.Context, runID string, rows []*domain.WalletFeatureRow) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Wallet == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.Wallet]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.Wallet] = struct{}{}
	}

	// Check for an existing run
	exists, err := s.exists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO wallet_features (
			run_id, position, wallet,
			deposits, borrows, repays, redeems, liquidations,
			total_deposit_usd, total_borrow_usd, total_repay_usd,
			repay_ratio, borrow_deposit_ratio,
			liquidation_count, active_days
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i, r := range rows {
		err = batch.Append(
			runID, uint32(i), r.Wallet,
			uint32(r.Deposits), uint32(r.Borrows), uint32(r.Repays), uint32(r.Redeems), uint32(r.Liquidations),
			r.TotalDepositUSD, r.TotalBorrowUSD, r.TotalRepayUSD,
			r.RepayRatio, r.BorrowDepositRatio,
			uint32(r.LiquidationCount), uint32(r.ActiveDays),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRun retrieves all feature rows of a run in insertion order.
func (s *FeatureStore) GetByRun(ctx context.Context, runID string) ([]*domain.WalletFeatureRow, error) {
	query := `
		SELECT
			wallet,
			deposits, borrows, repays, redeems, liquidations,
			total_deposit_usd, total_borrow_usd, total_repay_usd,
			repay_ratio, borrow_deposit_ratio,
			liquidation_count, active_days
		FROM wallet_features
		WHERE run_id = ?
		ORDER BY position ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	result, err := scanFeatureRows(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

// exists checks if any row for the run exists.
func (s *FeatureStore) exists(ctx context.Context, runID string) (bool, error) {
	query := `SELECT count(*) FROM wallet_features WHERE run_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanFeatureRows scans multiple rows.
func scanFeatureRows(rows chRows) ([]*domain.WalletFeatureRow, error) {
	var result []*domain.WalletFeatureRow

	for rows.Next() {
		var r domain.WalletFeatureRow
		var deposits, borrows, repays, redeems, liquidations, liquidationCount, activeDays uint32

		err := rows.Scan(
			&r.Wallet,
			&deposits, &borrows, &repays, &redeems, &liquidations,
			&r.TotalDepositUSD, &r.TotalBorrowUSD, &r.TotalRepayUSD,
			&r.RepayRatio, &r.BorrowDepositRatio,
			&liquidationCount, &activeDays,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet features row: %w", err)
		}

		r.Deposits = int(deposits)
		r.Borrows = int(borrows)
		r.Repays = int(repays)
		r.Redeems = int(redeems)
		r.Liquidations = int(liquidations)
		r.LiquidationCount = int(liquidationCount)
		r.ActiveDays = int(activeDays)

		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet features rows: %w", err)
	}

	return result, nil
}
