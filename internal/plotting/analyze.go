package plotting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wallet-credit-lab/internal/metrics"
	"wallet-credit-lab/internal/reporting"
)

// OutputFile is the histogram image written by Analyze.
const OutputFile = "score_distribution.png"

// ErrNoScores is returned when the table has a header but no rows.
var ErrNoScores = errors.New("score table has no rows")

// Options configures Analyze.
type Options struct {
	Column    string // score column, default "score"
	OutputDir string // where the PNG goes, default the table's directory
	Bins      int
	Width     int
	Height    int
}

// Result is the outcome of Analyze.
type Result struct {
	Column    string
	Summary   metrics.Summary
	Histogram Histogram
	ImagePath string
}

// Analyze reads a wallet score table, summarizes its score column and writes
// the histogram PNG. A missing file yields an error matching
// ingestion.ErrInputNotFound.
func Analyze(path string, opts Options) (*Result, error) {
	if opts.Column == "" {
		opts.Column = reporting.ColumnScore
	}
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Dir(path)
	}
	if opts.Width == 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height == 0 {
		opts.Height = DefaultHeight
	}

	table, err := reporting.ReadScoreTableFile(path, opts.Column)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoScores, path)
	}

	scores := table.Scores()
	res := &Result{
		Column:    opts.Column,
		Summary:   metrics.Describe(scores),
		Histogram: NewHistogram(scores, opts.Bins),
		ImagePath: filepath.Join(opts.OutputDir, OutputFile),
	}

	if err := writePNG(res.ImagePath, res.Histogram, opts.Width, opts.Height); err != nil {
		return nil, err
	}
	return res, nil
}

func writePNG(path string, h Histogram, width, height int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := RenderPNG(f, h, width, height); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("render histogram: %w", err)
	}
	return f.Close()
}

// RenderSummary formats s the way a describe() table reads: one statistic per line.
func RenderSummary(column string, s metrics.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", column))
	sb.WriteString(fmt.Sprintf("count %12d\n", s.Count))
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"mean", s.Mean},
		{"std", s.Stddev},
		{"min", s.Min},
		{"25%", s.P25},
		{"50%", s.Median},
		{"75%", s.P75},
		{"max", s.Max},
	} {
		sb.WriteString(fmt.Sprintf("%-5s %12.6f\n", row.name, row.value))
	}
	return sb.String()
}
