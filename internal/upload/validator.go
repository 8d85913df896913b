package upload

import (
	"fmt"
	"strings"

	"github.com/sells-group/fundperf-cli/internal/normalize"
	"github.com/sells-group/fundperf-cli/internal/perf"
)

// TickerSet is a catalog snapshot of known tickers, uppercased. A nil set
// skips the membership check entirely (catalog unavailable is not the same as
// every ticker being unknown).
type TickerSet map[string]struct{}

// Options control the blocking/non-blocking policy knobs of a validation run.
type Options struct {
	// RequireEOM upgrades non-end-of-month file dates from warning to error.
	RequireEOM bool
	// AllowMixed permits files carrying both ticker columns.
	AllowMixed bool
	// Picker, when set and valid, pins every row to its end-of-month date.
	Picker *PickerDate
}

func (o Options) pickerSet() bool {
	return o.Picker != nil && o.Picker.Valid()
}

// Validate runs the full validation pass over one parsed upload: file-level
// checks, per-row reference checks, duplicate detection, and coverage. Row
// diagnostics are collected, never thrown; the whole file is diagnosed in one
// pass even when every row is broken. File-level errors short-circuit before
// row scanning.
func Validate(header []string, raws []map[string]string, known map[perf.Kind]TickerSet, opts Options) *Result {
	res := &Result{
		UploadType: DetermineUploadType(header),
		Coverage:   map[string]Coverage{},
	}

	headerSet := make(map[string]bool, len(header))
	for _, h := range header {
		headerSet[h] = true
	}
	hasDateCol := headerSet[perf.DateColumn()]

	switch {
	case res.UploadType == perf.KindUnknown:
		res.Errors = append(res.Errors,
			"unrecognized upload type: file must contain a fund_ticker or benchmark_ticker column")
	case res.UploadType == perf.KindMixed && !opts.AllowMixed:
		res.Errors = append(res.Errors,
			"mixed upload: file contains both fund_ticker and benchmark_ticker columns")
	case !hasDateCol && !opts.pickerSet():
		res.Errors = append(res.Errors,
			"missing required column: date (or select a batch month/year)")
	case len(raws) == 0:
		res.Errors = append(res.Errors, "file contains no data rows")
	}
	if len(res.Errors) > 0 {
		return res
	}

	var picker *PickerDate
	if opts.pickerSet() {
		picker = opts.Picker
	}

	for i, raw := range raws {
		rowIdx := i + 1
		errsBefore := len(res.Errors)

		kind, ticker := validateTicker(res, rowIdx, raw, res.UploadType, known)
		fileDate := validateDate(res, rowIdx, raw, hasDateCol, picker, opts.RequireEOM)

		var metrics map[string]*float64
		if kind.Importable() {
			metrics = parseMetrics(res, rowIdx, raw, headerSet, kind)
		}

		if len(res.Errors) > errsBefore {
			continue
		}

		effective, err := ResolveEffectiveDate(fileDate, picker, hasDateCol)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"row %d: no usable date and no batch month/year selected", rowIdx))
			continue
		}

		res.Rows = append(res.Rows, perf.Row{
			RowIndex: rowIdx,
			Kind:     kind,
			Ticker:   ticker,
			Date:     effective,
			Metrics:  metrics,
		})
	}

	res.Duplicates = FindDuplicates(res.Rows)
	for _, d := range res.Duplicates {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"row %d: duplicate entry for %s on %s (first seen at row %d)",
			d.RowIndex, d.Ticker, d.Date, d.FirstOccurrence))
	}

	res.Coverage = CalculateCoverage(res.Rows, coverageMetrics(res.UploadType, headerSet))
	res.IsValid = len(res.Errors) == 0

	return res
}

// validateTicker resolves the row's kind and normalized ticker, appending
// errors and warnings as it goes. Returns KindUnknown when the row carries no
// usable ticker.
func validateTicker(res *Result, rowIdx int, raw map[string]string, uploadType perf.Kind, known map[perf.Kind]TickerSet) (perf.Kind, string) {
	kind := uploadType
	if uploadType == perf.KindMixed {
		fundRaw := strings.TrimSpace(raw[perf.TickerColumn(perf.KindFund)])
		benchRaw := strings.TrimSpace(raw[perf.TickerColumn(perf.KindBenchmark)])
		switch {
		case fundRaw != "" && benchRaw != "":
			res.Errors = append(res.Errors, fmt.Sprintf(
				"row %d: both fund_ticker and benchmark_ticker are populated", rowIdx))
			return perf.KindUnknown, ""
		case fundRaw != "":
			kind = perf.KindFund
		case benchRaw != "":
			kind = perf.KindBenchmark
		default:
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: missing ticker", rowIdx))
			return perf.KindUnknown, ""
		}
	}

	col := perf.TickerColumn(kind)
	rawTicker := strings.TrimSpace(raw[col])
	if rawTicker == "" {
		res.Errors = append(res.Errors, fmt.Sprintf("row %d: missing %s", rowIdx, col))
		return perf.KindUnknown, ""
	}

	ticker, ok := normalize.NormalizeTicker(rawTicker)
	if !ok {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"row %d: invalid ticker %q: expected 1-20 characters A-Z or 0-9", rowIdx, rawTicker))
		return perf.KindUnknown, ""
	}

	if set := known[kind]; set != nil {
		if _, found := set[ticker]; !found {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"row %d: unknown ticker %q not found in %s catalog", rowIdx, ticker, kind))
		}
	}

	return kind, ticker
}

// validateDate checks the row's file-provided date, if any. Presence and
// format problems are errors; a non-end-of-month date is a warning (or an
// error under RequireEOM) only when no picker is set, since a picker discards
// the file date entirely. Returns the normalized file date or "".
func validateDate(res *Result, rowIdx int, raw map[string]string, hasDateCol bool, picker *PickerDate, requireEOM bool) string {
	if !hasDateCol {
		return ""
	}

	rawDate := strings.TrimSpace(raw[perf.DateColumn()])
	if rawDate == "" {
		if picker == nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: missing date", rowIdx))
		}
		return ""
	}

	d, err := normalize.ParseDate(rawDate)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"row %d: invalid date %q (expected YYYY-MM-DD)", rowIdx, rawDate))
		return ""
	}

	if picker == nil && !normalize.IsEndOfMonth(d) {
		if requireEOM {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"row %d: date %s is not an end-of-month date", rowIdx, d))
		} else {
			eom, _ := normalize.ConvertToEndOfMonth(d)
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"row %d: date %s is not end-of-month; it will be imported as %s", rowIdx, d, eom))
		}
	}

	return d
}

// parseMetrics normalizes every metric column of the row's kind that is
// present in the file. A present-but-unparseable cell is an error; an absent
// column never is.
func parseMetrics(res *Result, rowIdx int, raw map[string]string, headerSet map[string]bool, kind perf.Kind) map[string]*float64 {
	metrics := make(map[string]*float64)
	for _, m := range perf.MetricColumns(kind) {
		if !headerSet[m] {
			continue
		}
		val, err := normalize.ParseMetricNumber(raw[m])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"row %d: invalid %s value %q", rowIdx, m, raw[m]))
			continue
		}
		metrics[m] = val
	}
	return metrics
}

// coverageMetrics lists the metric columns coverage should be reported for:
// the kind's closed set intersected with the file's header (both kinds' sets
// for an allowed mixed upload).
func coverageMetrics(uploadType perf.Kind, headerSet map[string]bool) []string {
	var candidates []string
	if uploadType == perf.KindMixed {
		candidates = perf.AllMetricColumns()
	} else {
		candidates = perf.MetricColumns(uploadType)
	}

	var out []string
	for _, m := range candidates {
		if headerSet[m] {
			out = append(out, m)
		}
	}
	return out
}
