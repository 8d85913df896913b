package upload

import "github.com/sells-group/fundperf-cli/internal/perf"

// CalculateCoverage computes per-metric fill ratios across the parsed rows.
// Total counts rows where the column was present in the file at all
// (including explicit nulls); NonNull counts rows whose normalized value is
// non-null. Coverage is informational only and never blocks validity.
func CalculateCoverage(rows []perf.Row, metrics []string) map[string]Coverage {
	cov := make(map[string]Coverage, len(metrics))

	for _, m := range metrics {
		var total, nonNull int
		for _, row := range rows {
			v, present := row.Metrics[m]
			if !present {
				continue
			}
			total++
			if v != nil {
				nonNull++
			}
		}

		c := Coverage{Total: total, NonNull: nonNull}
		if total > 0 {
			c.Coverage = float64(nonNull) / float64(total)
		}
		cov[m] = c
	}

	return cov
}
