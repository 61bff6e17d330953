package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Postgres(t *testing.T) {
	files, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "001_scored_wallets.sql", files[0].Name)
	assert.Equal(t, "002_model_evaluations.sql", files[1].Name)
	assert.Contains(t, files[0].SQL, "CREATE TABLE IF NOT EXISTS scored_wallets")
}

func TestLoad_Clickhouse(t *testing.T) {
	files, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.Len(t, files, 1)

	for _, f := range files {
		assert.NoError(t, validateNoSemicolonInStrings(f.SQL), f.Name)
		stmts := splitStatements(f.SQL)
		require.Len(t, stmts, 1)
		assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS wallet_features"))
	}
}

func TestSplitStatements(t *testing.T) {
	sql := "-- comment\nCREATE TABLE a (x UInt8);\n\nCREATE TABLE b (y UInt8);\n"
	assert.Equal(t, []string{"CREATE TABLE a (x UInt8)", "CREATE TABLE b (y UInt8)"}, splitStatements(sql))
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings("SELECT 'it''s'; SELECT 1;"))
	assert.Error(t, validateNoSemicolonInStrings("SELECT 'a;b';"))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/credit")
	require.NoError(t, err)
	assert.Equal(t, "credit", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}
