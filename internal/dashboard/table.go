// Package dashboard serves an anonymized, read-only view of a scored wallet table.
package dashboard

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/plotting"
	"wallet-credit-lab/internal/reporting"
	"wallet-credit-lab/internal/scoring"
	"wallet-credit-lab/internal/storage"
)

// NamedFile is the anonymized table written next to the source table.
const NamedFile = "wallet_scores_named.csv"

// NotFoundNotice is shown when a lookup matches no display name.
const NotFoundNotice = "Wallet not found."

// ColumnName is the display name column of the named table.
const ColumnName = "name"

// NamedScore is one wallet row with its display name.
type NamedScore struct {
	Name         string
	Wallet       string
	Score        float64
	RiskCategory domain.RiskCategory
}

// LookupResult is the outcome of a display-name lookup.
// A miss is a normal result, not an error.
type LookupResult struct {
	Found  bool
	Row    NamedScore
	Notice string
}

// TierCount is one row of the risk breakdown.
type TierCount struct {
	Category domain.RiskCategory
	Count    int
}

// Table is an immutable anonymized score table.
type Table struct {
	scoreColumn string
	rows        []NamedScore
	byName      map[string]int // lowercased name -> first row index
}

// Anonymize assigns User_1..User_N to wallets in order of first appearance.
// Repeated wallets keep the name of their first row. Rows without a risk
// category are classified from their score.
func Anonymize(rows []reporting.ScoreRow) []NamedScore {
	names := make(map[string]string, len(rows))
	out := make([]NamedScore, len(rows))

	for i, r := range rows {
		name, ok := names[r.Wallet]
		if !ok {
			name = fmt.Sprintf("User_%d", len(names)+1)
			names[r.Wallet] = name
		}

		risk := r.RiskCategory
		if !risk.IsValid() {
			risk = scoring.Classify(r.Score)
		}

		out[i] = NamedScore{
			Name:         name,
			Wallet:       r.Wallet,
			Score:        r.Score,
			RiskCategory: risk,
		}
	}
	return out
}

// NewTable anonymizes a score table.
func NewTable(t *reporting.ScoreTable) *Table {
	rows := Anonymize(t.Rows)
	byName := make(map[string]int, len(rows))
	for i, r := range rows {
		key := strings.ToLower(r.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = i
		}
	}
	return &Table{scoreColumn: t.ScoreColumn, rows: rows, byName: byName}
}

// Load reads and anonymizes the score table at path.
func Load(path, scoreColumn string) (*Table, error) {
	t, err := reporting.ReadScoreTableFile(path, scoreColumn)
	if err != nil {
		return nil, err
	}
	return NewTable(t), nil
}

// LoadFromStore builds the table from a persisted run.
func LoadFromStore(ctx context.Context, store storage.ScoreStore, runID string) (*Table, error) {
	scored, err := store.GetByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	rows := make([]reporting.ScoreRow, len(scored))
	for i, s := range scored {
		rows[i] = reporting.ScoreRow{Wallet: s.Wallet, Score: s.PredictedScore, RiskCategory: s.RiskCategory}
	}
	return NewTable(&reporting.ScoreTable{
		ScoreColumn: reporting.ColumnPredictedScore,
		HasRisk:     true,
		Rows:        rows,
	}), nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of all rows in table order.
func (t *Table) Rows() []NamedScore {
	out := make([]NamedScore, len(t.rows))
	copy(out, t.rows)
	return out
}

// Lookup finds a row by display name, ignoring case and surrounding spaces.
func (t *Table) Lookup(name string) LookupResult {
	i, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return LookupResult{Notice: NotFoundNotice}
	}
	return LookupResult{Found: true, Row: t.rows[i]}
}

// RiskBreakdown counts rows per tier, by count descending then tier name.
// Tiers with no rows are omitted.
func (t *Table) RiskBreakdown() []TierCount {
	counts := make(map[domain.RiskCategory]int, 3)
	for _, r := range t.rows {
		counts[r.RiskCategory]++
	}

	out := make([]TierCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, TierCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Scores returns the score column in table order.
func (t *Table) Scores() []float64 {
	scores := make([]float64, len(t.rows))
	for i, r := range t.rows {
		scores[i] = r.Score
	}
	return scores
}

// Histogram bins the score column into equal-width buckets.
func (t *Table) Histogram(bins int) plotting.Histogram {
	return plotting.NewHistogram(t.Scores(), bins)
}

// RenderNamedCSV renders name,wallet,<score column>,risk_category.
func (t *Table) RenderNamedCSV() string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{ColumnName, reporting.ColumnWallet, t.scoreColumn, reporting.ColumnRiskCategory})
	for _, r := range t.rows {
		_ = w.Write([]string{
			r.Name,
			r.Wallet,
			strconv.FormatFloat(r.Score, 'f', 2, 64),
			r.RiskCategory.String(),
		})
	}

	w.Flush()
	return sb.String()
}

// WriteNamedCSV writes the anonymized table into dir.
func (t *Table) WriteNamedCSV(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, NamedFile)
	if err := os.WriteFile(path, []byte(t.RenderNamedCSV()), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", NamedFile, err)
	}
	return path, nil
}
