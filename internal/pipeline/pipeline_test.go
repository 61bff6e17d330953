package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/ingestion"
	"wallet-credit-lab/internal/model"
	"wallet-credit-lab/internal/observability"
	"wallet-credit-lab/internal/storage"
	"wallet-credit-lab/internal/storage/memory"
)

func TestPipeline_Run(t *testing.T) {
	input := writeInput(t, 12)
	outDir := filepath.Join(t.TempDir(), "output")

	res, err := New(testOptions(input, outDir)).WithClock(fixedClock).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, res.Stats.Wallets)
	assert.Equal(t, 1, res.Stats.Dropped)
	assert.Len(t, res.Scored, 12)
	assert.Len(t, res.Evaluations, 3)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.DataVersion, 64)

	selected := 0
	for _, e := range res.Evaluations {
		if e.Selected {
			selected++
			assert.Equal(t, res.Selected, e.Model)
		}
	}
	assert.Equal(t, 1, selected)

	for _, s := range res.Scored {
		assert.GreaterOrEqual(t, s.PredictedScore, domain.MinScore)
		assert.LessOrEqual(t, s.PredictedScore, domain.MaxScore)
		assert.True(t, s.RiskCategory.IsValid())
	}

	csv := readFile(t, outDir, ScoresFileML)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, "wallet,predicted_score,risk_category", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], fmt.Sprintf("0x%040x,", 1)))

	report := readFile(t, outDir, ReportFile)
	assert.Contains(t, report, "# Wallet Credit Score Report")
	assert.Contains(t, report, res.RunID)
	assert.Contains(t, report, "1 transaction(s) had no wallet id and were dropped")

	evals := readFile(t, outDir, EvaluationsFile)
	assert.True(t, strings.HasPrefix(evals, "model,mae,r2,selected\n"))

	// no temp files left behind
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestPipeline_Deterministic(t *testing.T) {
	input := writeInput(t, 15)

	var outputs [][2]string
	for i := 0; i < 2; i++ {
		outDir := t.TempDir()
		_, err := New(testOptions(input, outDir)).WithClock(fixedClock).Run(context.Background())
		require.NoError(t, err)
		outputs = append(outputs, [2]string{
			readFile(t, outDir, ScoresFileML),
			readFile(t, outDir, ReportFile),
		})
	}

	assert.Equal(t, outputs[0][0], outputs[1][0], "scores differ between runs")
	assert.Equal(t, outputs[0][1], outputs[1][1], "report differs between runs")
}

func TestPipeline_ExtendedFeatureSet(t *testing.T) {
	input := writeInput(t, 10)
	opts := testOptions(input, t.TempDir())
	opts.FeatureSet = domain.FeatureSetExtended

	res, err := New(opts).WithClock(fixedClock).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Report.DataSummary.FeatureNames, 11)

	counts, err := New(testOptions(input, t.TempDir())).WithClock(fixedClock).Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, counts.RunID, res.RunID, "feature set must be part of the run id")
}

func TestPipeline_IdempotentPersistence(t *testing.T) {
	input := writeInput(t, 12)
	outDir := t.TempDir()

	scores := memory.NewScoreStore()
	featureRows := memory.NewFeatureStore()
	evals := memory.NewEvaluationStore()

	var runIDs []string
	for i := 0; i < 2; i++ {
		res, err := New(testOptions(input, outDir)).
			WithClock(fixedClock).
			WithScoreStores(scores).
			WithFeatureStores(featureRows).
			WithEvaluationStores(evals).
			Run(context.Background())
		require.NoError(t, err, "run %d", i)
		runIDs = append(runIDs, res.RunID)
	}
	require.Equal(t, runIDs[0], runIDs[1])

	ctx := context.Background()
	stored, err := scores.GetByRun(ctx, runIDs[0])
	require.NoError(t, err)
	assert.Len(t, stored, 12)

	rows, err := featureRows.GetByRun(ctx, runIDs[0])
	require.NoError(t, err)
	assert.Len(t, rows, 12)

	storedEvals, err := evals.GetByRun(ctx, runIDs[0])
	require.NoError(t, err)
	assert.Len(t, storedEvals, 3)
}

type failingScoreStore struct {
	storage.ScoreStore
}

func (failingScoreStore) InsertBulk(context.Context, string, []*domain.ScoredWallet) error {
	return errors.New("connection refused")
}

func TestPipeline_NoPartialOutput(t *testing.T) {
	tests := []struct {
		name    string
		input   func(t *testing.T) string
		stores  []storage.ScoreStore
		wantErr error
	}{
		{
			name:    "missing input",
			input:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
			wantErr: ingestion.ErrInputNotFound,
		},
		{
			name: "invalid schema",
			input: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "bad.json")
				require.NoError(t, os.WriteFile(path, []byte(`{"userWallet":"0x1"}`), 0644))
				return path
			},
			wantErr: ingestion.ErrInvalidInputSchema,
		},
		{
			name:    "single wallet",
			input:   func(t *testing.T) string { return writeInput(t, 1) },
			wantErr: model.ErrInsufficientData,
		},
		{
			name:   "store failure",
			input:  func(t *testing.T) string { return writeInput(t, 12) },
			stores: []storage.ScoreStore{failingScoreStore{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "output")

			_, err := New(testOptions(tt.input(t), outDir)).
				WithClock(fixedClock).
				WithScoreStores(tt.stores...).
				Run(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			_, statErr := os.Stat(outDir)
			assert.True(t, os.IsNotExist(statErr), "output dir must not be created on failure")
		})
	}
}

func TestPipeline_InsufficientDataDetails(t *testing.T) {
	_, err := New(testOptions(writeInput(t, 1), t.TempDir())).Run(context.Background())

	var insufficient *model.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 1, insufficient.Rows)
	assert.Equal(t, model.MinRows, insufficient.Required)
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testOptions(writeInput(t, 5), t.TempDir())).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics("test", reg)

	_, err := New(testOptions(writeInput(t, 12), t.TempDir())).
		WithClock(fixedClock).
		WithMetrics(m).
		Run(context.Background())
	require.NoError(t, err)

	_, err = New(testOptions(writeInput(t, 1), t.TempDir())).
		WithMetrics(m).
		Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRunsTotal.WithLabelValues(VariantML, observability.StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRunsTotal.WithLabelValues(VariantML, observability.StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsGenerated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransactionsDropped))
}

func TestPipeline_StaticSource(t *testing.T) {
	src := &ingestion.StaticSource{Transactions: []domain.Transaction{
		{UserWallet: "0xA", Action: "deposit"},
		{UserWallet: "0xA", Action: "deposit"},
		{UserWallet: "0xB", Action: "borrow"},
		{UserWallet: "0xC", Action: "repay"},
		{UserWallet: "0xD", Action: "deposit"},
	}}

	res, err := New(testOptions("", t.TempDir())).WithSource(src).WithClock(fixedClock).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Scored, 4)
	assert.Equal(t, []string{"0xA", "0xB", "0xC", "0xD"}, []string{
		res.Scored[0].Wallet, res.Scored[1].Wallet, res.Scored[2].Wallet, res.Scored[3].Wallet,
	})
}
