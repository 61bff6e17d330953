package memory

import (
	"context"
	"sync"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/storage"
)

// ScoreStore is an in-memory implementation of storage.ScoreStore.
type ScoreStore struct {
	mu   sync.RWMutex
	runs map[string][]*domain.ScoredWallet // keyed by run_id, insertion order
}

// NewScoreStore creates a new in-memory score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		runs: make(map[string][]*domain.ScoredWallet),
	}
}

// InsertBulk adds all scored wallets of a run atomically.
func (s *ScoreStore) InsertBulk(_ context.Context, runID string, scored []*domain.ScoredWallet) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(scored) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return storage.ErrDuplicateKey
	}

	// First pass: validate and check intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(scored))
	for _, w := range scored {
		if w == nil || w.Wallet == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := batchKeys[w.Wallet]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[w.Wallet] = struct{}{}
	}

	// Second pass: insert all
	rows := make([]*domain.ScoredWallet, len(scored))
	for i, w := range scored {
		copy := *w
		rows[i] = &copy
	}
	s.runs[runID] = rows
	return nil
}

// GetByRun retrieves all scored wallets of a run in insertion order.
func (s *ScoreStore) GetByRun(_ context.Context, runID string) ([]*domain.ScoredWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, exists := s.runs[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	result := make([]*domain.ScoredWallet, len(rows))
	for i, w := range rows {
		copy := *w
		result[i] = &copy
	}
	return result, nil
}

// GetByWallet retrieves one wallet of a run. Returns ErrNotFound if not exists.
func (s *ScoreStore) GetByWallet(_ context.Context, runID, wallet string) (*domain.ScoredWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.runs[runID] {
		if w.Wallet == wallet {
			copy := *w
			return &copy, nil
		}
	}
	return nil, storage.ErrNotFound
}

var _ storage.ScoreStore = (*ScoreStore)(nil)
