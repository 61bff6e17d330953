package reporting

import (
	"context"
	"fmt"
	"time"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/metrics"
	"wallet-credit-lab/internal/storage"
)

// Generator produces reports from stored run data.
type Generator struct {
	scoreStore      storage.ScoreStore
	evaluationStore storage.EvaluationStore
	now             func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(scoreStore storage.ScoreStore, evalStore storage.EvaluationStore) *Generator {
	return &Generator{
		scoreStore:      scoreStore,
		evaluationStore: evalStore,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report for one run.
func (g *Generator) Generate(ctx context.Context, meta RunMetadata, quality DataQualitySection) (*Report, error) {
	scored, err := g.scoreStore.GetByRun(ctx, meta.RunID)
	if err != nil {
		return nil, fmt.Errorf("load scored wallets: %w", err)
	}

	evals, err := g.evaluationStore.GetByRun(ctx, meta.RunID)
	if err != nil {
		return nil, fmt.Errorf("load model evaluations: %w", err)
	}

	selected := ""
	for _, e := range evals {
		if e.Selected {
			selected = e.Model
			break
		}
	}

	scores := make([]float64, len(scored))
	for i, s := range scored {
		scores[i] = s.PredictedScore
	}

	return &Report{
		GeneratedAt:   g.now(),
		SelectedModel: selected,
		DataSummary: DataSummary{
			InputPath:      meta.InputPath,
			Transactions:   meta.Transactions,
			Dropped:        meta.Dropped,
			UnknownActions: meta.Unknown,
			Wallets:        len(scored),
			FeatureSet:     meta.FeatureSet,
			FeatureNames:   domain.FeatureNames(meta.FeatureSet),
			TrainRows:      meta.TrainRows,
			TestRows:       meta.TestRows,
		},
		DataQuality:     quality,
		ModelComparison: evals,
		RiskTiers:       riskTiers(scored),
		ScoreSummary:    metrics.Describe(scores),
		Reproducibility: ReproducibilityMetadata{
			DataVersion:      meta.DataVersion,
			RunID:            meta.RunID,
			Seed:             meta.Seed,
			TestFraction:     meta.TestFraction,
			GeneratorVersion: GeneratorVersion,
			Command:          meta.Command,
		},
	}, nil
}

// riskTiers counts wallets per category in Low, Medium, High order.
func riskTiers(scored []*domain.ScoredWallet) []RiskTierRow {
	counts := make(map[domain.RiskCategory]int, 3)
	for _, s := range scored {
		counts[s.RiskCategory]++
	}

	rows := make([]RiskTierRow, 0, 3)
	for _, c := range domain.RiskCategories() {
		row := RiskTierRow{Category: c, Count: counts[c]}
		if len(scored) > 0 {
			row.Share = float64(row.Count) / float64(len(scored))
		}
		rows = append(rows, row)
	}
	return rows
}
