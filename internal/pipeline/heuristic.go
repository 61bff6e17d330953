package pipeline

import (
	"context"

	"go.uber.org/zap"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/labeling"
	"wallet-credit-lab/internal/reporting"
)

// HeuristicResult describes a successful heuristic-only run.
type HeuristicResult struct {
	DataVersion string
	Scores      []*domain.HeuristicScore
}

// RunHeuristic loads, aggregates and labels, then writes the labels
// themselves to wallet_scores.csv. No model is trained.
func (p *Pipeline) RunHeuristic(ctx context.Context) (*HeuristicResult, error) {
	start := p.clock()
	res, err := p.runHeuristic(ctx)
	p.finish(VariantHeuristic, start, err)
	return res, err
}

func (p *Pipeline) runHeuristic(ctx context.Context) (*HeuristicResult, error) {
	batch, rows, _, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	scores := labeling.HeuristicScores(rows)

	if err := publish(p.opts.OutputDir, []outputFile{
		{name: ScoresFileHeuristic, data: []byte(reporting.RenderHeuristicScoresCSV(scores))},
	}); err != nil {
		return nil, err
	}

	p.logger.Info("heuristic scores written",
		zap.Int("wallets", len(scores)),
		zap.String("output_dir", p.opts.OutputDir),
	)

	return &HeuristicResult{DataVersion: batch.DataVersion, Scores: scores}, nil
}
