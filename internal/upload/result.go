package upload

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

// Coverage summarizes how populated one metric column is across the file.
type Coverage struct {
	Total    int     `json:"total"`
	NonNull  int     `json:"non_null"`
	Coverage float64 `json:"coverage"`
}

// Duplicate records a repeated (ticker, date) natural key. Only the second
// and later occurrences are flagged; indexes are 1-based data row numbers.
type Duplicate struct {
	RowIndex        int    `json:"row_index"`
	Ticker          string `json:"ticker"`
	Date            string `json:"date"`
	FirstOccurrence int    `json:"first_occurrence"`
}

// Result is the aggregate outcome of validating one upload. It is built once
// per validation call and never mutated afterwards.
type Result struct {
	IsValid    bool                `json:"is_valid"`
	UploadType perf.Kind           `json:"upload_type"`
	Rows       []perf.Row          `json:"rows"`
	Errors     []string            `json:"errors"`
	Warnings   []string            `json:"warnings"`
	Coverage   map[string]Coverage `json:"coverage"`
	Duplicates []Duplicate         `json:"duplicates"`
}

// Report renders the deterministic operator-facing text report. It returns
// the empty string when there are no errors and no warnings, regardless of
// coverage content.
func (r *Result) Report() string {
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("VALIDATION REPORT\n")
	b.WriteString("=================\n")

	if len(r.Errors) > 0 {
		b.WriteString("\nERRORS:\n")
		for i, e := range r.Errors {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, e)
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\nWARNINGS:\n")
		for i, w := range r.Warnings {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, w)
		}
	}

	if len(r.Coverage) > 0 {
		b.WriteString("\nDATA COVERAGE SUMMARY:\n")
		for _, m := range coverageOrder(r.UploadType, r.Coverage) {
			c := r.Coverage[m]
			fmt.Fprintf(&b, "  %s: %d/%d rows (%.1f%%)\n", m, c.NonNull, c.Total, c.Coverage*100)
		}
	}

	if len(r.Errors) > 0 {
		b.WriteString("\nPlease correct the errors above and re-upload the file.\n")
	} else {
		b.WriteString("\nReview the warnings above before importing.\n")
	}

	return b.String()
}

// coverageOrder lists coverage keys in the canonical vocabulary order for the
// upload kind, with any remaining keys sorted alphabetically after them.
func coverageOrder(kind perf.Kind, cov map[string]Coverage) []string {
	seen := make(map[string]bool, len(cov))
	var out []string
	for _, m := range perf.MetricColumns(kind) {
		if _, ok := cov[m]; ok {
			out = append(out, m)
			seen[m] = true
		}
	}
	var rest []string
	for m := range cov {
		if !seen[m] {
			rest = append(rest, m)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
