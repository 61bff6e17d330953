package memory

import (
	"context"
	"sync"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	runs map[string][]*domain.WalletFeatureRow // keyed by run_id, insertion order
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		runs: make(map[string][]*domain.WalletFeatureRow),
	}
}

// InsertBulk adds all feature rows of a run atomically.
func (s *FeatureStore) InsertBulk(_ context.Context, runID string, rows []*domain.WalletFeatureRow) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return storage.ErrDuplicateKey
	}

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Wallet == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := batchKeys[r.Wallet]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.Wallet] = struct{}{}
	}

	stored := make([]*domain.WalletFeatureRow, len(rows))
	for i, r := range rows {
		copy := *r
		stored[i] = &copy
	}
	s.runs[runID] = stored
	return nil
}

// GetByRun retrieves all feature rows of a run in insertion order.
func (s *FeatureStore) GetByRun(_ context.Context, runID string) ([]*domain.WalletFeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, exists := s.runs[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	result := make([]*domain.WalletFeatureRow, len(rows))
	for i, r := range rows {
		copy := *r
		result[i] = &copy
	}
	return result, nil
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
