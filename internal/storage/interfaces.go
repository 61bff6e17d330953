package storage

import (
	"context"

	"wallet-credit-lab/internal/domain"
)

// Stores are append-only and keyed by run_id. A run is written once, in a
// single batch, after the pipeline has succeeded. Rows come back in the order
// they were inserted.

// ScoreStore provides access to scored_wallets storage.
type ScoreStore interface {
	// InsertBulk adds all scored wallets of a run atomically.
	// Returns ErrDuplicateKey if the run already has rows or the batch repeats a wallet.
	InsertBulk(ctx context.Context, runID string, scored []*domain.ScoredWallet) error

	// GetByRun retrieves all scored wallets of a run in insertion order.
	// Returns ErrNotFound if the run does not exist.
	GetByRun(ctx context.Context, runID string) ([]*domain.ScoredWallet, error)

	// GetByWallet retrieves one wallet of a run. Returns ErrNotFound if not exists.
	GetByWallet(ctx context.Context, runID, wallet string) (*domain.ScoredWallet, error)
}

// FeatureStore provides access to wallet_features storage.
type FeatureStore interface {
	// InsertBulk adds all feature rows of a run atomically.
	// Returns ErrDuplicateKey if the run already has rows or the batch repeats a wallet.
	InsertBulk(ctx context.Context, runID string, rows []*domain.WalletFeatureRow) error

	// GetByRun retrieves all feature rows of a run in insertion order.
	// Returns ErrNotFound if the run does not exist.
	GetByRun(ctx context.Context, runID string) ([]*domain.WalletFeatureRow, error)
}

// EvaluationStore provides access to model_evaluations storage.
type EvaluationStore interface {
	// InsertBulk adds all candidate evaluations of a run atomically.
	// Returns ErrDuplicateKey if the run already has rows or the batch repeats a model.
	InsertBulk(ctx context.Context, runID string, evals []domain.ModelEvaluation) error

	// GetByRun retrieves all evaluations of a run in candidate order.
	// Returns ErrNotFound if the run does not exist.
	GetByRun(ctx context.Context, runID string) ([]domain.ModelEvaluation, error)
}
