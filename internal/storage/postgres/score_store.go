package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/storage"
)

// ScoreStore implements storage.ScoreStore using PostgreSQL.
type ScoreStore struct {
	pool *Pool
}

// NewScoreStore creates a new ScoreStore.
func NewScoreStore(pool *Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)

// InsertBulk adds all scored wallets of a run atomically via COPY.
// Fails the entire batch if the run exists or a wallet repeats.
func (s *ScoreStore) InsertBulk(ctx context.Context, runID string, scored []*domain.ScoredWallet) (err error) {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(scored) == 0 {
		return nil
	}
	for _, w := range scored {
		if w == nil || w.Wallet == "" {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() { s.pool.observe("insert_scored_wallets", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM scored_wallets WHERE run_id = $1)`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("check run: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	rows := make([][]any, len(scored))
	for i, w := range scored {
		rows[i] = []any{runID, i, w.Wallet, w.PredictedScore, string(w.RiskCategory)}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"scored_wallets"},
		[]string{"run_id", "position", "wallet", "predicted_score", "risk_category"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy scored wallets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRun retrieves all scored wallets of a run in insertion order.
func (s *ScoreStore) GetByRun(ctx context.Context, runID string) (result []*domain.ScoredWallet, err error) {
	start := time.Now()
	defer func() { s.pool.observe("select_scored_wallets", start, err) }()

	query := `
		SELECT wallet, predicted_score, risk_category
		FROM scored_wallets
		WHERE run_id = $1
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query scored wallets: %w", err)
	}
	defer rows.Close()

	result, err = scanScoredWallets(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

// GetByWallet retrieves one wallet of a run. Returns ErrNotFound if not exists.
func (s *ScoreStore) GetByWallet(ctx context.Context, runID, wallet string) (*domain.ScoredWallet, error) {
	query := `
		SELECT wallet, predicted_score, risk_category
		FROM scored_wallets
		WHERE run_id = $1 AND wallet = $2
	`

	var w domain.ScoredWallet
	var risk string
	err := s.pool.QueryRow(ctx, query, runID, wallet).Scan(&w.Wallet, &w.PredictedScore, &risk)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scored wallet: %w", err)
	}
	w.RiskCategory = domain.RiskCategory(risk)
	return &w, nil
}

// scanScoredWallets scans multiple rows into a slice of ScoredWallet.
func scanScoredWallets(rows pgx.Rows) ([]*domain.ScoredWallet, error) {
	var result []*domain.ScoredWallet

	for rows.Next() {
		var w domain.ScoredWallet
		var risk string
		if err := rows.Scan(&w.Wallet, &w.PredictedScore, &risk); err != nil {
			return nil, fmt.Errorf("scan scored wallet row: %w", err)
		}
		w.RiskCategory = domain.RiskCategory(risk)
		result = append(result, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scored wallet rows: %w", err)
	}
	return result, nil
}
