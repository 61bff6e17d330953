package postgres

import (
	"context"
	"fmt"
	"time"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/storage"
)

// EvaluationStore implements storage.EvaluationStore using PostgreSQL.
type EvaluationStore struct {
	pool *Pool
}

// NewEvaluationStore creates a new EvaluationStore.
func NewEvaluationStore(pool *Pool) *EvaluationStore {
	return &EvaluationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

// InsertBulk adds all evaluations of a run atomically. Fails entire batch on any duplicate.
func (s *EvaluationStore) InsertBulk(ctx context.Context, runID string, evals []domain.ModelEvaluation) (err error) {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(evals) == 0 {
		return nil
	}
	for _, e := range evals {
		if e.Model == "" {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() { s.pool.observe("insert_model_evaluations", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM model_evaluations WHERE run_id = $1)`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("check run: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO model_evaluations (run_id, position, model, mae, r2, selected)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, e := range evals {
		_, err := tx.Exec(ctx, query, runID, i, e.Model, e.MAE, e.R2, e.Selected)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert model evaluation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRun retrieves all evaluations of a run in candidate order.
func (s *EvaluationStore) GetByRun(ctx context.Context, runID string) ([]domain.ModelEvaluation, error) {
	query := `
		SELECT model, mae, r2, selected
		FROM model_evaluations
		WHERE run_id = $1
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query model evaluations: %w", err)
	}
	defer rows.Close()

	var result []domain.ModelEvaluation
	for rows.Next() {
		var e domain.ModelEvaluation
		if err := rows.Scan(&e.Model, &e.MAE, &e.R2, &e.Selected); err != nil {
			return nil, fmt.Errorf("scan model evaluation row: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model evaluation rows: %w", err)
	}

	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result, nil
}
