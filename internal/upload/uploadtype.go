// Package upload implements validation of monthly performance CSV uploads:
// upload-type detection, per-row reference checks, duplicate and coverage
// analysis, effective-date resolution, and the aggregate validation report.
package upload

import "github.com/sells-group/fundperf-cli/internal/perf"

// DetermineUploadType classifies a file by its header set: fund iff the fund
// ticker column is present and the benchmark one is not (and symmetrically),
// mixed if both are present, unknown if neither.
func DetermineUploadType(header []string) perf.Kind {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	hasFund := present[perf.TickerColumn(perf.KindFund)]
	hasBenchmark := present[perf.TickerColumn(perf.KindBenchmark)]

	switch {
	case hasFund && hasBenchmark:
		return perf.KindMixed
	case hasFund:
		return perf.KindFund
	case hasBenchmark:
		return perf.KindBenchmark
	default:
		return perf.KindUnknown
	}
}
