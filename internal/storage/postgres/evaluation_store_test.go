package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/storage"
)

func TestEvaluationStore_InsertAndGetByRun(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEvaluationStore(pool)

	evals := []domain.ModelEvaluation{
		{Model: "LinearRegression", MAE: 12.5, R2: 0.87},
		{Model: "GradientBoosting", MAE: 3.25, R2: 0.99, Selected: true},
		{Model: "RandomForest", MAE: 4.0, R2: 0.97},
	}
	require.NoError(t, store.InsertBulk(ctx, "run-1", evals))

	got, err := store.GetByRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, evals, got)

	err = store.InsertBulk(ctx, "run-1", evals)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByRun(ctx, "run-2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
