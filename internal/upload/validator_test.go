package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

var fundHeader = []string{"fund_ticker", "date", "ytd_return", "aum"}

func fundRaw(ticker, date, ytd, aum string) map[string]string {
	return map[string]string{
		"fund_ticker": ticker,
		"date":        date,
		"ytd_return":  ytd,
		"aum":         aum,
	}
}

func knownFunds(tickers ...string) map[perf.Kind]TickerSet {
	set := TickerSet{}
	for _, tk := range tickers {
		set[tk] = struct{}{}
	}
	return map[perf.Kind]TickerSet{perf.KindFund: set}
}

func TestValidate_CleanFundFile(t *testing.T) {
	raws := []map[string]string{
		fundRaw("vtsax", "2025-01-31", "12.5%", "$1,200,000"),
		fundRaw("SPY", "2025-01-31", "(0.8)", ""),
	}

	res := Validate(fundHeader, raws, knownFunds("VTSAX", "SPY"), Options{})
	require.Empty(t, res.Errors)
	assert.True(t, res.IsValid)
	assert.Equal(t, perf.KindFund, res.UploadType)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, "VTSAX", res.Rows[0].Ticker)
	assert.Equal(t, "2025-01-31", res.Rows[0].Date)
	require.NotNil(t, res.Rows[0].Metrics["ytd_return"])
	assert.InDelta(t, 12.5, *res.Rows[0].Metrics["ytd_return"], 1e-9)

	require.NotNil(t, res.Rows[1].Metrics["ytd_return"])
	assert.InDelta(t, -0.8, *res.Rows[1].Metrics["ytd_return"], 1e-9)
	assert.Nil(t, res.Rows[1].Metrics["aum"]) // empty cell is null, not an error
}

func TestValidate_UnknownTickerIsWarningNotError(t *testing.T) {
	raws := []map[string]string{fundRaw("NEWFUND", "2025-01-31", "1.0", "")}

	res := Validate(fundHeader, raws, knownFunds("VTSAX"), Options{})
	assert.True(t, res.IsValid) // warnings never affect validity
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `unknown ticker "NEWFUND"`)
	assert.Len(t, res.Rows, 1)
}

func TestValidate_NilCatalogSkipsMembershipCheck(t *testing.T) {
	raws := []map[string]string{fundRaw("ANYTHING", "2025-01-31", "", "")}
	res := Validate(fundHeader, raws, nil, Options{})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Warnings)
}

func TestValidate_RowErrors(t *testing.T) {
	raws := []map[string]string{
		fundRaw("", "2025-01-31", "1.0", ""),         // missing ticker
		fundRaw("BRK.B", "2025-01-31", "1.0", ""),    // malformed ticker
		fundRaw("VTSAX", "", "1.0", ""),              // missing date
		fundRaw("VTSAX", "01/31/2025", "1.0", ""),    // malformed date
		fundRaw("VTSAX", "2025-01-31", "abc", ""),    // present but unparseable metric
		fundRaw("SPY", "2025-01-31", "2.0", "1000"),  // clean
	}

	res := Validate(fundHeader, raws, nil, Options{})
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 5)
	assert.Contains(t, res.Errors[0], "row 1: missing fund_ticker")
	assert.Contains(t, res.Errors[1], `row 2: invalid ticker "BRK.B"`)
	assert.Contains(t, res.Errors[2], "row 3: missing date")
	assert.Contains(t, res.Errors[3], `row 4: invalid date "01/31/2025"`)
	assert.Contains(t, res.Errors[4], `row 5: invalid ytd_return value "abc"`)

	// Only the clean row survives; scanning never stops early.
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 6, res.Rows[0].RowIndex)
	assert.Equal(t, "SPY", res.Rows[0].Ticker)
}

func TestValidate_NonEOMDate(t *testing.T) {
	raws := []map[string]string{fundRaw("VTSAX", "2025-01-15", "1.0", "")}

	res := Validate(fundHeader, raws, nil, Options{})
	assert.True(t, res.IsValid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "not end-of-month")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2025-01-31", res.Rows[0].Date) // auto-corrected downstream

	res = Validate(fundHeader, raws, nil, Options{RequireEOM: true})
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "not an end-of-month date")
	assert.Empty(t, res.Rows)
}

func TestValidate_PickerOverridesFileDates(t *testing.T) {
	raws := []map[string]string{
		fundRaw("VTSAX", "2025-01-15", "1.0", ""),
		fundRaw("SPY", "2024-11-30", "2.0", ""),
	}

	res := Validate(fundHeader, raws, nil, Options{
		Picker: &PickerDate{Year: 2025, Month: time.March},
	})
	require.True(t, res.IsValid)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "2025-03-31", res.Rows[0].Date)
	assert.Equal(t, "2025-03-31", res.Rows[1].Date)
	// Picker discards file dates, so no EOM warnings either.
	assert.Empty(t, res.Warnings)
}

func TestValidate_PickerAllowsMissingDateColumn(t *testing.T) {
	header := []string{"fund_ticker", "ytd_return"}
	raws := []map[string]string{{"fund_ticker": "VTSAX", "ytd_return": "3.2"}}

	res := Validate(header, raws, nil, Options{Picker: &PickerDate{Year: 2025, Month: time.June}})
	require.True(t, res.IsValid)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2025-06-30", res.Rows[0].Date)

	// Without the picker the same file is rejected before row scanning.
	res = Validate(header, raws, nil, Options{})
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "missing required column: date")
	assert.Empty(t, res.Rows)
}

func TestValidate_FileLevelShortCircuits(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		res := Validate([]string{"ticker", "date"}, []map[string]string{{"ticker": "X"}}, nil, Options{})
		assert.False(t, res.IsValid)
		assert.Equal(t, perf.KindUnknown, res.UploadType)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "unrecognized upload type")
	})

	t.Run("mixed without opt-in", func(t *testing.T) {
		header := []string{"fund_ticker", "benchmark_ticker", "date"}
		res := Validate(header, []map[string]string{{"fund_ticker": "X"}}, nil, Options{})
		assert.False(t, res.IsValid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "mixed upload")
	})

	t.Run("empty file", func(t *testing.T) {
		res := Validate(fundHeader, nil, nil, Options{})
		assert.False(t, res.IsValid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "no data rows")
	})
}

func TestValidate_MixedWithOptIn(t *testing.T) {
	header := []string{"fund_ticker", "benchmark_ticker", "date", "ytd_return"}
	raws := []map[string]string{
		{"fund_ticker": "VTSAX", "benchmark_ticker": "", "date": "2025-01-31", "ytd_return": "1.0"},
		{"fund_ticker": "", "benchmark_ticker": "SPX", "date": "2025-01-31", "ytd_return": "2.0"},
		{"fund_ticker": "VFIAX", "benchmark_ticker": "NDX", "date": "2025-01-31", "ytd_return": "3.0"},
	}

	res := Validate(header, raws, nil, Options{AllowMixed: true})
	assert.False(t, res.IsValid) // row 3 populates both namespaces
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "row 3: both")

	require.Len(t, res.Rows, 2)
	assert.Equal(t, perf.KindFund, res.Rows[0].Kind)
	assert.Equal(t, perf.KindBenchmark, res.Rows[1].Kind)
}

func TestValidate_DuplicateWarning(t *testing.T) {
	raws := []map[string]string{
		fundRaw("VTSAX", "2025-01-31", "1.0", ""),
		fundRaw("SPY", "2025-01-31", "1.0", ""),
		fundRaw("VTSAX", "2025-01-31", "2.0", ""),
	}

	res := Validate(fundHeader, raws, nil, Options{})
	assert.True(t, res.IsValid)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, 3, res.Duplicates[0].RowIndex)
	assert.Equal(t, 1, res.Duplicates[0].FirstOccurrence)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "duplicate entry for VTSAX on 2025-01-31")
}

func TestValidate_CoverageComputed(t *testing.T) {
	raws := []map[string]string{
		fundRaw("VTSAX", "2025-01-31", "1.0", "100"),
		fundRaw("SPY", "2025-01-31", "", "200"),
		fundRaw("VFIAX", "2025-01-31", "2.0", "N/A"),
	}

	res := Validate(fundHeader, raws, nil, Options{})
	require.True(t, res.IsValid)
	assert.Equal(t, Coverage{Total: 3, NonNull: 2, Coverage: 2.0 / 3.0}, res.Coverage["ytd_return"])
	assert.Equal(t, Coverage{Total: 3, NonNull: 2, Coverage: 2.0 / 3.0}, res.Coverage["aum"])
	// Metric columns not in the file are not reported.
	assert.NotContains(t, res.Coverage, "month_return")
}
