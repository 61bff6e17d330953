package reporting

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/ingestion"
)

var (
	// ErrTableNotFound is returned when a score table file does not exist.
	// It matches ingestion.ErrInputNotFound.
	ErrTableNotFound = fmt.Errorf("score table: %w", ingestion.ErrInputNotFound)

	// ErrInvalidTable is returned when a score table lacks required columns or has bad values.
	ErrInvalidTable = errors.New("invalid score table")
)

// ScoreRow is one row read back from a score table.
type ScoreRow struct {
	Wallet       string
	Score        float64
	RiskCategory domain.RiskCategory // empty when the table has no risk_category column
}

// ScoreTable is a score table read from CSV.
type ScoreTable struct {
	ScoreColumn string
	HasRisk     bool
	Rows        []ScoreRow
}

// Scores returns the score column as a slice.
func (t *ScoreTable) Scores() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Score
	}
	return out
}

// ReadScoreTableFile reads a score table from path. A missing file is ErrTableNotFound.
func ReadScoreTableFile(path, scoreColumn string) (*ScoreTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, path)
		}
		return nil, fmt.Errorf("open score table: %w", err)
	}
	defer f.Close()

	return ReadScoreTable(f, scoreColumn)
}

// ReadScoreTable reads a CSV with a header containing wallet and scoreColumn.
// risk_category is read when present. Extra columns are ignored.
func ReadScoreTable(r io.Reader, scoreColumn string) (*ScoreTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidTable)
		}
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidTable, err)
	}

	walletIdx, scoreIdx, riskIdx := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnWallet:
			walletIdx = i
		case scoreColumn:
			scoreIdx = i
		case ColumnRiskCategory:
			riskIdx = i
		}
	}
	if walletIdx < 0 || scoreIdx < 0 {
		return nil, fmt.Errorf("%w: need columns %q and %q", ErrInvalidTable, ColumnWallet, scoreColumn)
	}

	table := &ScoreTable{ScoreColumn: scoreColumn, HasRisk: riskIdx >= 0}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidTable, line, err)
		}

		score, err := strconv.ParseFloat(strings.TrimSpace(rec[scoreIdx]), 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("%w: line %d: %s %q is not a finite number", ErrInvalidTable, line, scoreColumn, rec[scoreIdx])
		}

		row := ScoreRow{Wallet: rec[walletIdx], Score: score}
		if riskIdx >= 0 {
			row.RiskCategory = domain.RiskCategory(rec[riskIdx])
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
