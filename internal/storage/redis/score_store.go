package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/storage"
)

// DefaultKeyPrefix namespaces every key written by ScoreStore.
const DefaultKeyPrefix = "creditscore"

// scoreRecord is the JSON form of a ScoredWallet.
type scoreRecord struct {
	Wallet         string  `json:"wallet"`
	PredictedScore float64 `json:"predicted_score"`
	RiskCategory   string  `json:"risk_category"`
}

// ScoreStore implements storage.ScoreStore using Redis.
//
// Each run is a list (insertion order) plus a hash keyed by wallet:
//
//	<prefix>:run:<run_id>:scores   LIST of JSON records
//	<prefix>:run:<run_id>:wallets  HASH wallet -> JSON record
type ScoreStore struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewScoreStore creates a new ScoreStore. A ttl of 0 keeps runs forever.
func NewScoreStore(client *Client, prefix string, ttl time.Duration) *ScoreStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &ScoreStore{client: client, prefix: prefix, ttl: ttl}
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)

func (s *ScoreStore) listKey(runID string) string {
	return fmt.Sprintf("%s:run:%s:scores", s.prefix, runID)
}

func (s *ScoreStore) hashKey(runID string) string {
	return fmt.Sprintf("%s:run:%s:wallets", s.prefix, runID)
}

// InsertBulk adds all scored wallets of a run in one MULTI/EXEC, guarded by
// WATCH so a concurrent writer of the same run fails instead of interleaving.
func (s *ScoreStore) InsertBulk(ctx context.Context, runID string, scored []*domain.ScoredWallet) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(scored) == 0 {
		return nil
	}

	list := make([]interface{}, 0, len(scored))
	hash := make(map[string]interface{}, len(scored))
	for _, w := range scored {
		if w == nil || w.Wallet == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := hash[w.Wallet]; exists {
			return storage.ErrDuplicateKey
		}
		data, err := json.Marshal(scoreRecord{
			Wallet:         w.Wallet,
			PredictedScore: w.PredictedScore,
			RiskCategory:   string(w.RiskCategory),
		})
		if err != nil {
			return fmt.Errorf("marshal scored wallet: %w", err)
		}
		list = append(list, data)
		hash[w.Wallet] = data
	}

	listKey, hashKey := s.listKey(runID), s.hashKey(runID)

	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		n, err := tx.Exists(ctx, listKey).Result()
		if err != nil {
			return fmt.Errorf("check run: %w", err)
		}
		if n > 0 {
			return storage.ErrDuplicateKey
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.RPush(ctx, listKey, list...)
			pipe.HSet(ctx, hashKey, hash)
			if s.ttl > 0 {
				pipe.Expire(ctx, listKey, s.ttl)
				pipe.Expire(ctx, hashKey, s.ttl)
			}
			return nil
		})
		return err
	}, listKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrDuplicateKey):
		return storage.ErrDuplicateKey
	case errors.Is(err, goredis.TxFailedErr):
		// Another writer touched the run between WATCH and EXEC
		return storage.ErrDuplicateKey
	default:
		return fmt.Errorf("insert scored wallets: %w", err)
	}
}

// GetByRun retrieves all scored wallets of a run in insertion order.
func (s *ScoreStore) GetByRun(ctx context.Context, runID string) ([]*domain.ScoredWallet, error) {
	items, err := s.client.LRange(ctx, s.listKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read scored wallets: %w", err)
	}
	if len(items) == 0 {
		return nil, storage.ErrNotFound
	}

	result := make([]*domain.ScoredWallet, len(items))
	for i, item := range items {
		w, err := decodeRecord(item)
		if err != nil {
			return nil, err
		}
		result[i] = w
	}
	return result, nil
}

// GetByWallet retrieves one wallet of a run. Returns ErrNotFound if not exists.
func (s *ScoreStore) GetByWallet(ctx context.Context, runID, wallet string) (*domain.ScoredWallet, error) {
	item, err := s.client.HGet(ctx, s.hashKey(runID), wallet).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read scored wallet: %w", err)
	}
	return decodeRecord(item)
}

func decodeRecord(item string) (*domain.ScoredWallet, error) {
	var rec scoreRecord
	if err := json.Unmarshal([]byte(item), &rec); err != nil {
		return nil, fmt.Errorf("decode scored wallet: %w", err)
	}
	return &domain.ScoredWallet{
		Wallet:         rec.Wallet,
		PredictedScore: rec.PredictedScore,
		RiskCategory:   domain.RiskCategory(rec.RiskCategory),
	}, nil
}
