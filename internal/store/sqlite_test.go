package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_SeedAndLookupTickers(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	n, err := s.SeedTickers(ctx, perf.KindFund, []string{"VTSAX", "VFIAX"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Re-seeding is idempotent.
	_, err = s.SeedTickers(ctx, perf.KindFund, []string{"VTSAX"})
	require.NoError(t, err)

	set, err := s.LookupKnownTickers(ctx, perf.KindFund)
	require.NoError(t, err)
	assert.Len(t, set, 2)

	// Kinds are separate namespaces.
	other, err := s.LookupKnownTickers(ctx, perf.KindBenchmark)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLite_UpsertIsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	v1, v2 := 1.0, 2.5
	row := perf.Row{Kind: perf.KindFund, Ticker: "VTSAX", Date: "2025-01-31",
		Metrics: map[string]*float64{"ytd_return": &v1}}

	_, err := s.UpsertPerformanceRows(ctx, []perf.Row{row})
	require.NoError(t, err)

	// Second write with the same natural key overwrites, not duplicates.
	row.Metrics["ytd_return"] = &v2
	_, err = s.UpsertPerformanceRows(ctx, []perf.Row{row})
	require.NoError(t, err)

	var count int
	var ytd float64
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*), MAX(ytd_return) FROM performance WHERE ticker = 'VTSAX'`).
		Scan(&count, &ytd))
	assert.Equal(t, 1, count)
	assert.Equal(t, 2.5, ytd)
}

func TestSQLite_ProbeExisting(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	row := perf.Row{Kind: perf.KindFund, Ticker: "VTSAX", Date: "2025-01-31"}
	_, err := s.UpsertPerformanceRows(ctx, []perf.Row{row})
	require.NoError(t, err)

	existing, err := s.ProbeExisting(ctx, perf.KindFund, []perf.Key{
		{Ticker: "VTSAX", Date: "2025-01-31"},
		{Ticker: "SPY", Date: "2025-01-31"},
	})
	require.NoError(t, err)
	assert.True(t, existing[perf.Key{Ticker: "VTSAX", Date: "2025-01-31"}])
	assert.False(t, existing[perf.Key{Ticker: "SPY", Date: "2025-01-31"}])
}

func TestSQLite_ImportLog(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.StartImport(ctx, "id-1", perf.KindFund, "jan.csv"))
	require.NoError(t, s.CompleteImport(ctx, "id-1", 900, 100, true, "chunk 2 failed"))

	entries, err := s.ListImports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "id-1", entries[0].ID)
	assert.Equal(t, ImportComplete, entries[0].Status)
	assert.Equal(t, int64(900), entries[0].RowsSucceeded)
	assert.True(t, entries[0].Partial)
	assert.NotNil(t, entries[0].CompletedAt)
}
