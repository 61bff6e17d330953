package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wallet-credit-lab/internal/config"
	"wallet-credit-lab/internal/observability"
	"wallet-credit-lab/internal/pipeline"
	"wallet-credit-lab/internal/storage"
	chstore "wallet-credit-lab/internal/storage/clickhouse"
	"wallet-credit-lab/internal/storage/migrations"
	pgstore "wallet-credit-lab/internal/storage/postgres"
	redisstore "wallet-credit-lab/internal/storage/redis"
)

// sinks holds the optional external stores configured for a run.
type sinks struct {
	scores      []storage.ScoreStore
	features    []storage.FeatureStore
	evaluations []storage.EvaluationStore
	closers     []func()
}

func (s *sinks) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// attach registers every sink with the pipeline.
func (s *sinks) attach(p *pipeline.Pipeline) *pipeline.Pipeline {
	return p.WithScoreStores(s.scores...).
		WithFeatureStores(s.features...).
		WithEvaluationStores(s.evaluations...)
}

// openSinks connects to every store with a configured DSN. Connections opened
// before a failure are closed again.
func openSinks(ctx context.Context, cfg config.StorageConfig, m *observability.Metrics, logger *zap.Logger) (*sinks, error) {
	s := &sinks{}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		pool.SetMetrics(m)

		if cfg.Migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				s.close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}

		s.scores = append(s.scores, pgstore.NewScoreStore(pool))
		s.evaluations = append(s.evaluations, pgstore.NewEvaluationStore(pool))
		logger.Info("postgres sink enabled")
	}

	if cfg.ClickhouseDSN != "" {
		var (
			conn *chstore.Conn
			err  error
		)
		if cfg.Migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.ClickhouseDSN)
		}
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect clickhouse: %w", err)
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })

		s.features = append(s.features, chstore.NewFeatureStore(conn))
		logger.Info("clickhouse sink enabled")
	}

	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })

		s.scores = append(s.scores, redisstore.NewScoreStore(client, cfg.RedisPrefix, cfg.RedisTTL))
		logger.Info("redis sink enabled")
	}

	return s, nil
}

// openScoreSource returns the store a dashboard reads a persisted run from.
// Redis is preferred over Postgres.
func openScoreSource(ctx context.Context, cfg config.StorageConfig) (storage.ScoreStore, func(), error) {
	switch {
	case cfg.RedisURL != "":
		client, err := redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewScoreStore(client, cfg.RedisPrefix, cfg.RedisTTL), func() { _ = client.Close() }, nil
	case cfg.PostgresDSN != "":
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return pgstore.NewScoreStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("--run-id needs storage.redis_url or storage.postgres_dsn")
	}
}
