package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundperf-cli/internal/perf"
	"github.com/sells-group/fundperf-cli/internal/store"
)

func TestBuildPicker(t *testing.T) {
	tests := []struct {
		name    string
		month   int
		year    int
		wantErr string
	}{
		{name: "unset", month: 0, year: 0},
		{name: "month without year", month: 6, wantErr: "must be given together"},
		{name: "year without month", year: 2025, wantErr: "must be given together"},
		{name: "month out of range", month: 13, year: 2025, wantErr: "invalid picker date"},
		{name: "year out of range", month: 6, year: 1800, wantErr: "invalid picker date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := buildPicker(tt.month, tt.year)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, p)
		})
	}

	p, err := buildPicker(3, 2025)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "2025-03-31", p.EndOfMonth())
}

func TestKnownTickersOfflineSkipsCatalog(t *testing.T) {
	known, err := knownTickers(context.Background(), nil, []string{"date", "fund_ticker"})
	require.NoError(t, err)
	assert.Nil(t, known)
}

func TestKnownTickersFetchesBothKindsForMixed(t *testing.T) {
	ms := newMemStore()
	_, err := ms.SeedTickers(context.Background(), perf.KindFund, []string{"VFIAX"})
	require.NoError(t, err)
	_, err = ms.SeedTickers(context.Background(), perf.KindBenchmark, []string{"SPX"})
	require.NoError(t, err)

	known, err := knownTickers(context.Background(), ms,
		[]string{"date", "fund_ticker", "benchmark_ticker", "month_return"})
	require.NoError(t, err)
	require.Contains(t, known, perf.KindFund)
	require.Contains(t, known, perf.KindBenchmark)
	assert.Contains(t, known[perf.KindFund], "VFIAX")
	assert.Contains(t, known[perf.KindBenchmark], "SPX")
}

func TestKnownTickersUnknownHeader(t *testing.T) {
	known, err := knownTickers(context.Background(), newMemStore(), []string{"date", "something"})
	require.NoError(t, err)
	assert.Nil(t, known)
}

func TestDescribeStatus(t *testing.T) {
	assert.Equal(t, "running", describeStatus(store.ImportEntry{Status: store.ImportRunning}))
	assert.Equal(t, "complete", describeStatus(store.ImportEntry{Status: store.ImportComplete}))
	assert.Equal(t, "partial", describeStatus(store.ImportEntry{Status: store.ImportComplete, Partial: true}))
	assert.Equal(t, "failed", describeStatus(store.ImportEntry{Status: store.ImportFailed}))
}
