package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-lab/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "counts", cfg.FeatureSet)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 0.2, cfg.TestFraction)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
input: data/txs.json
feature_set: extended
seed: 7
model:
  random_forest:
    estimators: 25
storage:
  redis_ttl: 1h
log:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/txs.json", cfg.Input)
	assert.Equal(t, "extended", cfg.FeatureSet)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 25, cfg.Model.RandomForest.Estimators)
	assert.Equal(t, time.Hour, cfg.Storage.RedisTTL)
	assert.Equal(t, "json", cfg.Log.Format)

	// untouched values keep their defaults
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, Default().Model.GradientBoosting, cfg.Model.GradientBoosting)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "seed: 7\nfeature_set: extended\n")
	t.Setenv("CREDITSCORE_SEED", "99")
	t.Setenv("CREDITSCORE_MODEL_GB_ESTIMATORS", "10")
	t.Setenv("CREDITSCORE_STORAGE_POSTGRES_DSN", "postgres://localhost/credit")
	t.Setenv("CREDITSCORE_DASHBOARD_ADDR", ":9000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, "extended", cfg.FeatureSet)
	assert.Equal(t, 10, cfg.Model.GradientBoosting.Estimators)
	assert.Equal(t, "postgres://localhost/credit", cfg.Storage.PostgresDSN)
	assert.Equal(t, ":9000", cfg.Dashboard.Addr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "no_such_field: 1\n"))
	assert.Error(t, err)

	t.Setenv("CREDITSCORE_SEED", "not-a-number")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"feature set", func(c *Config) { c.FeatureSet = "all" }},
		{"test fraction zero", func(c *Config) { c.TestFraction = 0 }},
		{"test fraction one", func(c *Config) { c.TestFraction = 1 }},
		{"decimals", func(c *Config) { c.Aggregation.Decimals = 0 }},
		{"day prefix", func(c *Config) { c.Aggregation.DayPrefixWidth = -1 }},
		{"subsample", func(c *Config) { c.Model.GradientBoosting.Subsample = 1.5 }},
		{"bins", func(c *Config) { c.Dashboard.Bins = 0 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.FeatureSet = "extended"
	cfg.Seed = 5
	cfg.Model.RandomForest.Estimators = 3

	opts := cfg.PipelineOptions()
	assert.Equal(t, domain.FeatureSetExtended, opts.FeatureSet)
	assert.Equal(t, uint64(5), opts.Seed)
	assert.Equal(t, uint64(5), opts.Candidates.Seed)
	assert.Equal(t, 3, opts.Candidates.RandomForest.Estimators)
	assert.Equal(t, cfg.Input, opts.InputPath)
}
