package catalog

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

func TestKnownMemoizesPerKind(t *testing.T) {
	calls := 0
	cache := New(func(_ context.Context, kind perf.Kind) (map[string]struct{}, error) {
		calls++
		return map[string]struct{}{"VFIAX": {}}, nil
	})

	for i := 0; i < 3; i++ {
		set, err := cache.Known(context.Background(), perf.KindFund)
		require.NoError(t, err)
		assert.Contains(t, set, "VFIAX")
	}
	assert.Equal(t, 1, calls, "lookup should run once per kind per session")

	_, err := cache.Known(context.Background(), perf.KindBenchmark)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestKnownLookupError(t *testing.T) {
	cache := New(func(_ context.Context, _ perf.Kind) (map[string]struct{}, error) {
		return nil, eris.New("connection refused")
	})

	_, err := cache.Known(context.Background(), perf.KindFund)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup fund tickers")
}

func TestInvalidateDropsSnapshotAndFiresHook(t *testing.T) {
	calls := 0
	cache := New(func(_ context.Context, _ perf.Kind) (map[string]struct{}, error) {
		calls++
		return map[string]struct{}{"SPX": {}}, nil
	})

	var invalidated []perf.Kind
	cache.OnInvalidate(func(kind perf.Kind) {
		invalidated = append(invalidated, kind)
	})

	_, err := cache.Known(context.Background(), perf.KindBenchmark)
	require.NoError(t, err)

	cache.Invalidate(perf.KindBenchmark)
	assert.Equal(t, []perf.Kind{perf.KindBenchmark}, invalidated)

	_, err = cache.Known(context.Background(), perf.KindBenchmark)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "invalidated kind should be refetched")
}
