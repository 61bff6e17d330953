// Package main provides the creditscore CLI:
// - score: ML pipeline (wallet_scores_ml.csv, MODEL_REPORT.md)
// - heuristic: heuristic labels only (wallet_scores.csv)
// - analyze: summary statistics and histogram of a score table
// - dashboard: anonymized lookup dashboard over HTTP
// - lookup: one display-name lookup from the terminal
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wallet-credit-lab/internal/config"
	"wallet-credit-lab/internal/logging"
)

// app carries state shared by all subcommands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	ready  bool // logger built from config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{logger: zap.NewNop()}
	cmd := a.command()

	if err := cmd.Run(ctx, os.Args); err != nil {
		if a.ready {
			a.logger.Error("command failed", zap.Error(err))
			_ = a.logger.Sync()
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	_ = a.logger.Sync()
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "creditscore",
		Usage: "behavioral credit scores for lending-protocol wallets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "json or console",
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			a.scoreCommand(),
			a.heuristicCommand(),
			a.analyzeCommand(),
			a.dashboardCommand(),
			a.lookupCommand(),
		},
	}
}

// setup loads configuration and builds the logger before any subcommand runs.
func (a *app) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return ctx, err
	}

	a.cfg = cfg
	a.logger = logger
	a.ready = true
	return ctx, nil
}
