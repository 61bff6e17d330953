package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wallet-credit-lab/internal/dashboard"
	"wallet-credit-lab/internal/observability"
	"wallet-credit-lab/internal/pipeline"
	"wallet-credit-lab/internal/plotting"
	"wallet-credit-lab/internal/reporting"
)

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "transaction log (JSON array)"},
		&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "directory for output files"},
	}
}

// applyInputFlags lets flags override the loaded configuration.
func (a *app) applyInputFlags(cmd *cli.Command) {
	if cmd.IsSet("input") {
		a.cfg.Input = cmd.String("input")
	}
	if cmd.IsSet("output-dir") {
		a.cfg.OutputDir = cmd.String("output-dir")
	}
}

func (a *app) scoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "train, select and score; writes wallet_scores_ml.csv and MODEL_REPORT.md",
		Flags: append(inputFlags(),
			&cli.StringFlag{Name: "feature-set", Usage: "counts or extended"},
			&cli.Uint64Flag{Name: "seed", Usage: "split and model seed"},
			&cli.FloatFlag{Name: "test-fraction", Usage: "held-out fraction in (0, 1)"},
			&cli.BoolFlag{Name: "migrate", Usage: "apply storage migrations before writing"},
		),
		Action: a.runScore,
	}
}

func (a *app) runScore(ctx context.Context, cmd *cli.Command) error {
	a.applyInputFlags(cmd)
	if cmd.IsSet("feature-set") {
		a.cfg.FeatureSet = cmd.String("feature-set")
	}
	if cmd.IsSet("seed") {
		a.cfg.Seed = cmd.Uint64("seed")
	}
	if cmd.IsSet("test-fraction") {
		a.cfg.TestFraction = cmd.Float("test-fraction")
	}
	if cmd.IsSet("migrate") {
		a.cfg.Storage.Migrate = cmd.Bool("migrate")
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	m := observability.NewMetrics(a.cfg.Metrics.Namespace, prometheus.DefaultRegisterer)

	sinks, err := openSinks(ctx, a.cfg.Storage, m, a.logger)
	if err != nil {
		return err
	}
	defer sinks.close()

	opts := a.cfg.PipelineOptions()
	opts.Command = strings.Join(os.Args, " ")

	p := pipeline.New(opts).WithLogger(a.logger).WithMetrics(m)
	res, err := sinks.attach(p).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Selected model: %s\n", res.Selected)
	for _, e := range res.Evaluations {
		fmt.Printf("  %-18s MAE=%.4f R2=%.4f\n", e.Model, e.MAE, e.R2)
	}
	fmt.Printf("Scored %d wallets (run %s)\n", len(res.Scored), res.RunID)
	fmt.Printf("Wrote %s and %s to %s\n", pipeline.ScoresFileML, pipeline.ReportFile, a.cfg.OutputDir)
	return nil
}

func (a *app) heuristicCommand() *cli.Command {
	return &cli.Command{
		Name:   "heuristic",
		Usage:  "write heuristic labels to wallet_scores.csv without training",
		Flags:  inputFlags(),
		Action: a.runHeuristic,
	}
}

func (a *app) runHeuristic(ctx context.Context, cmd *cli.Command) error {
	a.applyInputFlags(cmd)
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	m := observability.NewMetrics(a.cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	res, err := pipeline.New(a.cfg.PipelineOptions()).
		WithLogger(a.logger).
		WithMetrics(m).
		RunHeuristic(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d wallets to %s\n", len(res.Scores), filepath.Join(a.cfg.OutputDir, pipeline.ScoresFileHeuristic))
	return nil
}

func (a *app) analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "print score statistics and write score_distribution.png",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Value: filepath.Join("output", pipeline.ScoresFileHeuristic), Usage: "score table (CSV)"},
			&cli.StringFlag{Name: "column", Value: reporting.ColumnScore, Usage: "score column"},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "directory for the PNG, default next to the input"},
			&cli.IntFlag{Name: "bins", Value: plotting.DefaultBins, Usage: "histogram bins"},
		},
		Action: a.runAnalyze,
	}
}

func (a *app) runAnalyze(_ context.Context, cmd *cli.Command) error {
	res, err := plotting.Analyze(cmd.String("input"), plotting.Options{
		Column:    cmd.String("column"),
		OutputDir: cmd.String("output-dir"),
		Bins:      int(cmd.Int("bins")),
	})
	if err != nil {
		return err
	}

	fmt.Print(plotting.RenderSummary(res.Column, res.Summary))
	a.logger.Info("histogram written", zap.String("path", res.ImagePath))
	return nil
}

func scoreTableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "scores", Usage: "scored wallet table (CSV)"},
		&cli.StringFlag{Name: "column", Usage: "score column"},
		&cli.StringFlag{Name: "run-id", Usage: "read a persisted run from redis or postgres instead of a file"},
	}
}

// loadTable reads the dashboard table from a file or a persisted run.
func (a *app) loadTable(ctx context.Context, cmd *cli.Command) (*dashboard.Table, error) {
	if cmd.IsSet("scores") {
		a.cfg.Dashboard.Scores = cmd.String("scores")
	}
	if cmd.IsSet("column") {
		a.cfg.Dashboard.ScoreColumn = cmd.String("column")
	}

	if runID := cmd.String("run-id"); runID != "" {
		store, closeStore, err := openScoreSource(ctx, a.cfg.Storage)
		if err != nil {
			return nil, err
		}
		defer closeStore()
		return dashboard.LoadFromStore(ctx, store, runID)
	}

	return dashboard.Load(a.cfg.Dashboard.Scores, a.cfg.Dashboard.ScoreColumn)
}

func (a *app) dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "serve the anonymized score dashboard",
		Flags: append(scoreTableFlags(),
			&cli.StringFlag{Name: "addr", Usage: "listen address"},
			&cli.StringFlag{Name: "named-dir", Usage: "where wallet_scores_named.csv goes, default next to the scores"},
		),
		Action: a.runDashboard,
	}
}

func (a *app) runDashboard(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("addr") {
		a.cfg.Dashboard.Addr = cmd.String("addr")
	}

	table, err := a.loadTable(ctx, cmd)
	if err != nil {
		return err
	}

	namedDir := cmd.String("named-dir")
	if namedDir == "" {
		namedDir = filepath.Dir(a.cfg.Dashboard.Scores)
	}
	path, err := table.WriteNamedCSV(namedDir)
	if err != nil {
		return err
	}
	a.logger.Info("named table written", zap.String("path", path), zap.Int("wallets", table.Len()))

	m := observability.NewMetrics(a.cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	s := dashboard.NewServer(table, m, prometheus.DefaultGatherer, a.logger).WithBins(a.cfg.Dashboard.Bins)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("dashboard listening", zap.String("addr", a.cfg.Dashboard.Addr))
		if err := s.Start(a.cfg.Dashboard.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down dashboard")
		return s.ShutdownWithTimeout(a.cfg.Dashboard.ShutdownTimeout)
	}
}

func (a *app) lookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "look up one wallet by display name (User_N)",
		ArgsUsage: "NAME",
		Flags:     scoreTableFlags(),
		Action:    a.runLookup,
	}
}

func (a *app) runLookup(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("lookup needs a display name, e.g. User_7")
	}

	table, err := a.loadTable(ctx, cmd)
	if err != nil {
		return err
	}

	res := table.Lookup(name)
	if !res.Found {
		fmt.Println(res.Notice)
		return nil
	}
	fmt.Printf("Name:          %s\n", res.Row.Name)
	fmt.Printf("Wallet:        %s\n", res.Row.Wallet)
	fmt.Printf("Score:         %.2f\n", res.Row.Score)
	fmt.Printf("Risk category: %s\n", res.Row.RiskCategory)
	return nil
}
