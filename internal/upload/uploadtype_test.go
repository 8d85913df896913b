package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

func TestDetermineUploadType(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   perf.Kind
	}{
		{"fund", []string{"fund_ticker", "date"}, perf.KindFund},
		{"benchmark", []string{"benchmark_ticker", "date"}, perf.KindBenchmark},
		{"mixed", []string{"fund_ticker", "benchmark_ticker", "date"}, perf.KindMixed},
		{"unknown", []string{"ticker", "date"}, perf.KindUnknown},
		{"empty header", nil, perf.KindUnknown},
		{"fund with metrics", []string{"fund_ticker", "date", "ytd_return", "aum"}, perf.KindFund},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineUploadType(tt.header))
		})
	}
}
