package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/ingestion"
	"wallet-credit-lab/internal/reporting"
	"wallet-credit-lab/internal/storage"
	"wallet-credit-lab/internal/storage/memory"
)

func sampleTable() *reporting.ScoreTable {
	return &reporting.ScoreTable{
		ScoreColumn: reporting.ColumnPredictedScore,
		HasRisk:     true,
		Rows: []reporting.ScoreRow{
			{Wallet: "0xaaa", Score: 812.5, RiskCategory: domain.RiskLow},
			{Wallet: "0xbbb", Score: 120, RiskCategory: domain.RiskHigh},
			{Wallet: "0xccc", Score: 450, RiskCategory: domain.RiskMedium},
			{Wallet: "0xddd", Score: 90, RiskCategory: domain.RiskHigh},
		},
	}
}

func TestAnonymize(t *testing.T) {
	rows := Anonymize([]reporting.ScoreRow{
		{Wallet: "0xb", Score: 10},
		{Wallet: "0xa", Score: 800},
		{Wallet: "0xb", Score: 10},
		{Wallet: "0xc", Score: 500},
	})

	require.Len(t, rows, 4)
	assert.Equal(t, "User_1", rows[0].Name)
	assert.Equal(t, "User_2", rows[1].Name)
	assert.Equal(t, "User_1", rows[2].Name, "repeated wallet keeps its name")
	assert.Equal(t, "User_3", rows[3].Name)

	// missing risk column is derived from the score
	assert.Equal(t, domain.RiskHigh, rows[0].RiskCategory)
	assert.Equal(t, domain.RiskLow, rows[1].RiskCategory)
	assert.Equal(t, domain.RiskMedium, rows[3].RiskCategory)
}

func TestTable_Lookup(t *testing.T) {
	table := NewTable(sampleTable())

	for _, name := range []string{"User_3", "user_3", "USER_3", " User_3 "} {
		res := table.Lookup(name)
		require.True(t, res.Found, name)
		assert.Equal(t, "0xccc", res.Row.Wallet)
		assert.Empty(t, res.Notice)
	}

	miss := table.Lookup("User_99")
	assert.False(t, miss.Found)
	assert.Equal(t, NotFoundNotice, miss.Notice)

	assert.False(t, table.Lookup("0xaaa").Found, "lookup is by display name only")
}

func TestTable_RiskBreakdown(t *testing.T) {
	got := NewTable(sampleTable()).RiskBreakdown()

	assert.Equal(t, []TierCount{
		{Category: domain.RiskHigh, Count: 2},
		{Category: domain.RiskLow, Count: 1},
		{Category: domain.RiskMedium, Count: 1},
	}, got)
}

func TestTable_Histogram(t *testing.T) {
	table := NewTable(sampleTable())
	h := table.Histogram(10)

	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	assert.Equal(t, table.Len(), total)
	assert.Equal(t, 90.0, h.Min)
	assert.Equal(t, 812.5, h.Max)
}

func TestTable_WriteNamedCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := NewTable(sampleTable()).WriteNamedCSV(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, NamedFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "name,wallet,predicted_score,risk_category", lines[0])
	assert.Equal(t, "User_1,0xaaa,812.50,Low", lines[1])
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wallet_scores.csv")
	require.NoError(t, os.WriteFile(path, []byte("wallet,score\n0xa,30\n0xb,0\n"), 0644))

	table, err := Load(path, reporting.ColumnScore)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "User_2", table.Rows()[1].Name)

	_, err = Load(filepath.Join(dir, "missing.csv"), reporting.ColumnScore)
	assert.ErrorIs(t, err, ingestion.ErrInputNotFound)
}

func TestLoadFromStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScoreStore()
	require.NoError(t, store.InsertBulk(ctx, "run-1", []*domain.ScoredWallet{
		{Wallet: "0xa", PredictedScore: 701, RiskCategory: domain.RiskLow},
		{Wallet: "0xb", PredictedScore: 12.5, RiskCategory: domain.RiskHigh},
	}))

	table, err := LoadFromStore(ctx, store, "run-1")
	require.NoError(t, err)

	res := table.Lookup("user_2")
	require.True(t, res.Found)
	assert.Equal(t, 12.5, res.Row.Score)

	_, err = LoadFromStore(ctx, store, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
