package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

func TestReport_SuppressedWhenClean(t *testing.T) {
	res := &Result{
		IsValid:    true,
		UploadType: perf.KindFund,
		Coverage: map[string]Coverage{
			"ytd_return": {Total: 10, NonNull: 10, Coverage: 1},
		},
	}
	assert.Empty(t, res.Report()) // coverage alone never triggers a report
}

func TestReport_ErrorsAndWarnings(t *testing.T) {
	res := &Result{
		UploadType: perf.KindFund,
		Errors:     []string{"row 1: missing fund_ticker", "row 4: invalid date \"x\""},
		Warnings:   []string{"row 2: unknown ticker \"NEW\" not found in fund catalog"},
		Coverage: map[string]Coverage{
			"ytd_return": {Total: 3, NonNull: 2, Coverage: 2.0 / 3.0},
		},
	}

	report := res.Report()
	require.NotEmpty(t, report)

	assert.Contains(t, report, "VALIDATION REPORT")
	assert.Contains(t, report, "ERRORS:\n  1. row 1: missing fund_ticker\n  2. row 4:")
	assert.Contains(t, report, "WARNINGS:\n  1. row 2: unknown ticker")
	assert.Contains(t, report, "DATA COVERAGE SUMMARY:\n  ytd_return: 2/3 rows (66.7%)")
	assert.Contains(t, report, "Please correct the errors above and re-upload the file.")
}

func TestReport_WarningsOnly(t *testing.T) {
	res := &Result{
		IsValid:    true,
		UploadType: perf.KindFund,
		Warnings:   []string{"row 1: date 2025-01-15 is not end-of-month; it will be imported as 2025-01-31"},
	}

	report := res.Report()
	assert.NotContains(t, report, "ERRORS:")
	assert.Contains(t, report, "WARNINGS:")
	assert.Contains(t, report, "Review the warnings above before importing.")
}

func TestReport_Deterministic(t *testing.T) {
	res := &Result{
		UploadType: perf.KindFund,
		Errors:     []string{"row 1: missing date"},
		Coverage: map[string]Coverage{
			"aum":          {Total: 2, NonNull: 1, Coverage: 0.5},
			"ytd_return":   {Total: 2, NonNull: 2, Coverage: 1},
			"month_return": {Total: 2, NonNull: 0, Coverage: 0},
		},
	}
	assert.Equal(t, res.Report(), res.Report())
	// Canonical vocabulary order, not map iteration order.
	report := res.Report()
	assert.Regexp(t, `(?s)month_return.*ytd_return.*aum`, report)
}
