// Package config loads run configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"wallet-credit-lab/internal/dashboard"
	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/features"
	"wallet-credit-lab/internal/model"
	"wallet-credit-lab/internal/pipeline"
	"wallet-credit-lab/internal/plotting"
	"wallet-credit-lab/internal/reporting"
	"wallet-credit-lab/internal/storage/redis"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CREDITSCORE_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	Input        string  `yaml:"input" env:"INPUT"`
	OutputDir    string  `yaml:"output_dir" env:"OUTPUT_DIR"`
	FeatureSet   string  `yaml:"feature_set" env:"FEATURE_SET"`
	Seed         uint64  `yaml:"seed" env:"SEED"`
	TestFraction float64 `yaml:"test_fraction" env:"TEST_FRACTION"`

	Aggregation AggregationConfig `yaml:"aggregation" envPrefix:"AGG_"`
	Model       ModelConfig       `yaml:"model" envPrefix:"MODEL_"`
	Storage     StorageConfig     `yaml:"storage" envPrefix:"STORAGE_"`
	Dashboard   DashboardConfig   `yaml:"dashboard" envPrefix:"DASHBOARD_"`
	Log         LogConfig         `yaml:"log" envPrefix:"LOG_"`
	Metrics     MetricsConfig     `yaml:"metrics" envPrefix:"METRICS_"`
}

// AggregationConfig configures the feature aggregator.
type AggregationConfig struct {
	Decimals       int32 `yaml:"decimals" env:"DECIMALS"`
	DayPrefixWidth int   `yaml:"day_prefix_width" env:"DAY_PREFIX_WIDTH"`
}

// ModelConfig configures the stochastic candidates.
type ModelConfig struct {
	GradientBoosting model.GradientBoostingParams `yaml:"gradient_boosting" envPrefix:"GB_"`
	RandomForest     model.RandomForestParams     `yaml:"random_forest" envPrefix:"RF_"`
}

// StorageConfig holds optional external sinks. Empty values disable a sink.
type StorageConfig struct {
	PostgresDSN   string        `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	ClickhouseDSN string        `yaml:"clickhouse_dsn" env:"CLICKHOUSE_DSN"`
	RedisURL      string        `yaml:"redis_url" env:"REDIS_URL"`
	RedisPrefix   string        `yaml:"redis_prefix" env:"REDIS_PREFIX"`
	RedisTTL      time.Duration `yaml:"redis_ttl" env:"REDIS_TTL"`
	Migrate       bool          `yaml:"migrate" env:"MIGRATE"`
}

// DashboardConfig configures the HTTP dashboard.
type DashboardConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	Scores          string        `yaml:"scores" env:"SCORES"`
	ScoreColumn     string        `yaml:"score_column" env:"SCORE_COLUMN"`
	Bins            int           `yaml:"bins" env:"BINS"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // json | console
}

// MetricsConfig configures prometheus metrics.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Input:        "user-wallet-transactions.json",
		OutputDir:    "output",
		FeatureSet:   string(domain.FeatureSetCounts),
		Seed:         model.DefaultSeed,
		TestFraction: model.DefaultTestFraction,
		Aggregation: AggregationConfig{
			Decimals:       features.DefaultDecimals,
			DayPrefixWidth: features.DefaultDayPrefixWidth,
		},
		Model: ModelConfig{
			GradientBoosting: model.DefaultGradientBoostingParams(),
			RandomForest:     model.DefaultRandomForestParams(),
		},
		Storage: StorageConfig{
			RedisPrefix: redis.DefaultKeyPrefix,
			RedisTTL:    24 * time.Hour,
		},
		Dashboard: DashboardConfig{
			Addr:            ":8501",
			Scores:          "output/" + pipeline.ScoresFileML,
			ScoreColumn:     reporting.ColumnPredictedScore,
			Bins:            plotting.DefaultBins,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Namespace: "wallet_credit_lab",
		},
	}
}

// Load reads the YAML file at path over Default, then applies CREDITSCORE_*
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error

	if !domain.FeatureSet(c.FeatureSet).IsValid() {
		errs = append(errs, fmt.Errorf("feature_set must be %q or %q, got %q",
			domain.FeatureSetCounts, domain.FeatureSetExtended, c.FeatureSet))
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		errs = append(errs, fmt.Errorf("test_fraction must be in (0, 1), got %v", c.TestFraction))
	}
	if c.Aggregation.Decimals <= 0 {
		errs = append(errs, fmt.Errorf("aggregation.decimals must be > 0, got %d", c.Aggregation.Decimals))
	}
	if c.Aggregation.DayPrefixWidth <= 0 {
		errs = append(errs, fmt.Errorf("aggregation.day_prefix_width must be > 0, got %d", c.Aggregation.DayPrefixWidth))
	}
	if gb := c.Model.GradientBoosting; gb.Subsample <= 0 || gb.Subsample > 1 {
		errs = append(errs, fmt.Errorf("model.gradient_boosting.subsample must be in (0, 1], got %v", gb.Subsample))
	}
	if c.Dashboard.Bins < 1 || c.Dashboard.Bins > dashboard.MaxHistogramBins {
		errs = append(errs, fmt.Errorf("dashboard.bins must be in [1, %d], got %d", dashboard.MaxHistogramBins, c.Dashboard.Bins))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// PipelineOptions maps the configuration onto pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.InputPath = c.Input
	opts.OutputDir = c.OutputDir
	opts.FeatureSet = domain.FeatureSet(c.FeatureSet)
	opts.Seed = c.Seed
	opts.TestFraction = c.TestFraction
	opts.Aggregation = features.Options{
		Decimals:       c.Aggregation.Decimals,
		DayPrefixWidth: c.Aggregation.DayPrefixWidth,
	}
	opts.Candidates = model.CandidateParams{
		Seed:             c.Seed,
		GradientBoosting: c.Model.GradientBoosting,
		RandomForest:     c.Model.RandomForest,
	}
	return opts
}
