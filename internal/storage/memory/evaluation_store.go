package memory

import (
	"context"
	"sync"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/storage"
)

// EvaluationStore is an in-memory implementation of storage.EvaluationStore.
type EvaluationStore struct {
	mu   sync.RWMutex
	runs map[string][]domain.ModelEvaluation // keyed by run_id, candidate order
}

// NewEvaluationStore creates a new in-memory evaluation store.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{
		runs: make(map[string][]domain.ModelEvaluation),
	}
}

// InsertBulk adds all candidate evaluations of a run atomically.
func (s *EvaluationStore) InsertBulk(_ context.Context, runID string, evals []domain.ModelEvaluation) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(evals) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return storage.ErrDuplicateKey
	}

	batchKeys := make(map[string]struct{}, len(evals))
	for _, e := range evals {
		if e.Model == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := batchKeys[e.Model]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[e.Model] = struct{}{}
	}

	s.runs[runID] = append([]domain.ModelEvaluation(nil), evals...)
	return nil
}

// GetByRun retrieves all evaluations of a run in candidate order.
func (s *EvaluationStore) GetByRun(_ context.Context, runID string) ([]domain.ModelEvaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evals, exists := s.runs[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return append([]domain.ModelEvaluation(nil), evals...), nil
}

var _ storage.EvaluationStore = (*EvaluationStore)(nil)
