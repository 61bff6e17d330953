// Package pipeline runs the end-to-end batch: load, aggregate, label, select,
// score, then publish the scored table and the model report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/features"
	"wallet-credit-lab/internal/idhash"
	"wallet-credit-lab/internal/ingestion"
	"wallet-credit-lab/internal/labeling"
	"wallet-credit-lab/internal/model"
	"wallet-credit-lab/internal/observability"
	"wallet-credit-lab/internal/reporting"
	"wallet-credit-lab/internal/scoring"
	"wallet-credit-lab/internal/storage"
	"wallet-credit-lab/internal/storage/memory"
)

// Pipeline variants, used as metric labels.
const (
	VariantML        = "ml"
	VariantHeuristic = "heuristic"
)

// Options configures a run.
type Options struct {
	InputPath    string
	OutputDir    string
	FeatureSet   domain.FeatureSet
	Seed         uint64
	TestFraction float64
	Aggregation  features.Options
	Candidates   model.CandidateParams
	Sufficiency  SufficiencyThresholds
	Command      string // recorded in the report
}

// DefaultOptions returns options for the canonical run.
func DefaultOptions() Options {
	return Options{
		InputPath:    "user-wallet-transactions.json",
		OutputDir:    "output",
		FeatureSet:   domain.FeatureSetCounts,
		Seed:         model.DefaultSeed,
		TestFraction: model.DefaultTestFraction,
		Aggregation:  features.DefaultOptions(),
		Candidates:   model.DefaultCandidateParams(),
		Sufficiency:  DefaultSufficiencyThresholds(),
	}
}

// Result describes a successful ML run.
type Result struct {
	RunID       string
	DataVersion string
	Stats       features.AggregationStats
	Selected    string
	Evaluations []domain.ModelEvaluation
	Scored      []*domain.ScoredWallet
	Report      *reporting.Report
}

// Pipeline orchestrates one batch run.
type Pipeline struct {
	opts    Options
	source  ingestion.TransactionSource
	logger  *zap.Logger
	metrics *observability.Metrics
	clock   func() time.Time

	scoreStores      []storage.ScoreStore
	featureStores    []storage.FeatureStore
	evaluationStores []storage.EvaluationStore
}

// New creates a pipeline reading opts.InputPath.
func New(opts Options) *Pipeline {
	if !opts.FeatureSet.IsValid() {
		opts.FeatureSet = domain.FeatureSetCounts
	}
	return &Pipeline{
		opts:   opts,
		source: ingestion.NewFileSource(opts.InputPath),
		logger: zap.NewNop(),
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// WithSource replaces the file source.
func (p *Pipeline) WithSource(src ingestion.TransactionSource) *Pipeline {
	p.source = src
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func (p *Pipeline) WithLogger(logger *zap.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithMetrics enables prometheus instrumentation.
func (p *Pipeline) WithMetrics(m *observability.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// WithScoreStores adds sinks for scored wallets.
func (p *Pipeline) WithScoreStores(stores ...storage.ScoreStore) *Pipeline {
	p.scoreStores = append(p.scoreStores, stores...)
	return p
}

// WithFeatureStores adds sinks for aggregated feature rows.
func (p *Pipeline) WithFeatureStores(stores ...storage.FeatureStore) *Pipeline {
	p.featureStores = append(p.featureStores, stores...)
	return p
}

// WithEvaluationStores adds sinks for candidate evaluations.
func (p *Pipeline) WithEvaluationStores(stores ...storage.EvaluationStore) *Pipeline {
	p.evaluationStores = append(p.evaluationStores, stores...)
	return p
}

// Run executes the ML variant and writes, into the output directory:
// - wallet_scores_ml.csv
// - model_evaluations.csv
// - MODEL_REPORT.md
//
// Files are published only after every stage, including persistence to the
// configured stores, has succeeded.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.clock()
	res, err := p.run(ctx)
	p.finish(VariantML, start, err)
	return res, err
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	batch, rows, stats, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	// 1. Label
	y := labeling.LabelAll(rows)
	suff := NewSufficiencyChecker(p.opts.Sufficiency).Check(stats, y)
	if !suff.AllPass {
		p.logger.Warn("data sufficiency checks raised warnings", zap.Strings("warnings", suff.Warnings))
	}

	// 2. Select
	x := domain.FeatureMatrix(rows, p.opts.FeatureSet)
	params := p.opts.Candidates
	params.Seed = p.opts.Seed
	selector := model.NewSelector(model.NewCandidates(params), model.SelectorOptions{
		TestFraction: p.opts.TestFraction,
		Seed:         p.opts.Seed,
	})

	sel, err := selector.Select(x, y)
	if err != nil {
		return nil, fmt.Errorf("select model: %w", err)
	}
	for _, e := range sel.Evaluations {
		p.metrics.RecordModelEvaluation(e.Model, e.MAE, e.R2, e.Selected)
		p.logger.Info("candidate evaluated",
			zap.String("model", e.Model),
			zap.Float64("mae", e.MAE),
			zap.Float64("r2", e.R2),
			zap.Bool("selected", e.Selected),
		)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Score
	scored, err := scoring.NewScorer(sel.Best.Model, p.opts.FeatureSet).Score(rows)
	if err != nil {
		return nil, fmt.Errorf("score wallets: %w", err)
	}
	p.metrics.RecordRiskCounts(riskCounts(scored))

	runID := idhash.ComputeRunID(batch.DataVersion, p.opts.Seed, p.opts.FeatureSet.String())

	// 4. Report, from a staged in-memory copy of the run
	report, err := p.buildReport(ctx, runID, batch, stats, sel, scored, convertToDataQuality(suff))
	if err != nil {
		return nil, err
	}

	// 5. Persist
	if err := p.persist(ctx, runID, rows, scored, sel.Evaluations); err != nil {
		return nil, err
	}

	// 6. Publish
	if err := publish(p.opts.OutputDir, []outputFile{
		{name: ScoresFileML, data: []byte(reporting.RenderScoresCSV(scored))},
		{name: EvaluationsFile, data: []byte(reporting.RenderEvaluationsCSV(sel.Evaluations))},
		{name: ReportFile, data: []byte(reporting.RenderMarkdown(report))},
	}); err != nil {
		return nil, err
	}
	p.metrics.RecordReport()

	p.logger.Info("scores written",
		zap.String("run_id", runID),
		zap.String("model", sel.Best.Name),
		zap.Int("wallets", len(scored)),
		zap.String("output_dir", p.opts.OutputDir),
	)

	return &Result{
		RunID:       runID,
		DataVersion: batch.DataVersion,
		Stats:       stats,
		Selected:    sel.Best.Name,
		Evaluations: sel.Evaluations,
		Scored:      scored,
		Report:      report,
	}, nil
}

// load reads the source and aggregates it into feature rows.
func (p *Pipeline) load(ctx context.Context) (*ingestion.Batch, []*domain.WalletFeatureRow, features.AggregationStats, error) {
	batch, err := p.source.Load(ctx)
	if err != nil {
		return nil, nil, features.AggregationStats{}, fmt.Errorf("load transactions: %w", err)
	}

	rows, stats := features.NewAggregator(p.opts.Aggregation).Aggregate(batch.Transactions)
	p.metrics.RecordIngestion(stats.Transactions, stats.Dropped, stats.UnknownActions, stats.Wallets)
	p.logger.Info("transactions aggregated",
		zap.Int("transactions", stats.Transactions),
		zap.Int("dropped", stats.Dropped),
		zap.Int("unknown_actions", stats.UnknownActions),
		zap.Int("wallets", stats.Wallets),
		zap.String("data_version", batch.DataVersion),
	)

	if err := ctx.Err(); err != nil {
		return nil, nil, features.AggregationStats{}, err
	}
	return batch, rows, stats, nil
}

func (p *Pipeline) buildReport(
	ctx context.Context,
	runID string,
	batch *ingestion.Batch,
	stats features.AggregationStats,
	sel *model.Selection,
	scored []*domain.ScoredWallet,
	quality reporting.DataQualitySection,
) (*reporting.Report, error) {
	scoreStore := memory.NewScoreStore()
	evalStore := memory.NewEvaluationStore()
	if err := scoreStore.InsertBulk(ctx, runID, scored); err != nil {
		return nil, fmt.Errorf("stage scores: %w", err)
	}
	if err := evalStore.InsertBulk(ctx, runID, sel.Evaluations); err != nil {
		return nil, fmt.Errorf("stage evaluations: %w", err)
	}

	meta := reporting.RunMetadata{
		RunID:        runID,
		DataVersion:  batch.DataVersion,
		InputPath:    p.opts.InputPath,
		Seed:         p.opts.Seed,
		TestFraction: p.opts.TestFraction,
		FeatureSet:   p.opts.FeatureSet,
		Transactions: stats.Transactions,
		Dropped:      stats.Dropped,
		Unknown:      stats.UnknownActions,
		TrainRows:    len(sel.Split.Train),
		TestRows:     len(sel.Split.Test),
		Command:      p.opts.Command,
	}

	report, err := reporting.NewGenerator(scoreStore, evalStore).WithClock(p.clock).Generate(ctx, meta, quality)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	return report, nil
}

// persist writes the run to every configured store. A store that already
// holds the run is left as is, so re-running the same input is idempotent.
func (p *Pipeline) persist(
	ctx context.Context,
	runID string,
	rows []*domain.WalletFeatureRow,
	scored []*domain.ScoredWallet,
	evals []domain.ModelEvaluation,
) error {
	for _, s := range p.featureStores {
		if err := p.checkInsert("wallet_features", runID, s.InsertBulk(ctx, runID, rows)); err != nil {
			return err
		}
	}
	for _, s := range p.evaluationStores {
		if err := p.checkInsert("model_evaluations", runID, s.InsertBulk(ctx, runID, evals)); err != nil {
			return err
		}
	}
	for _, s := range p.scoreStores {
		if err := p.checkInsert("scored_wallets", runID, s.InsertBulk(ctx, runID, scored)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) checkInsert(table, runID string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrDuplicateKey) {
		p.logger.Info("run already persisted", zap.String("table", table), zap.String("run_id", runID))
		return nil
	}
	return fmt.Errorf("persist %s: %w", table, err)
}

// finish records the outcome of a run.
func (p *Pipeline) finish(variant string, start time.Time, err error) {
	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusFailure
		p.logger.Error("pipeline failed", zap.String("variant", variant), zap.Error(err))
	}
	p.metrics.RecordPipelineRun(variant, status, p.clock().Sub(start))
}

func riskCounts(scored []*domain.ScoredWallet) map[string]int {
	counts := make(map[string]int, 3)
	for c, n := range scoring.Breakdown(scored) {
		counts[c.String()] = n
	}
	return counts
}
