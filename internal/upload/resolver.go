package upload

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fundperf-cli/internal/normalize"
)

// PickerDate is the operator-selected batch month. When set, it pins every row
// of the upload to that month's end-of-month date, overriding whatever the
// file's own date column says.
type PickerDate struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Valid reports whether the picker holds a plausible month and year.
func (p PickerDate) Valid() bool {
	return p.Month >= time.January && p.Month <= time.December && p.Year >= 1900 && p.Year <= 2200
}

// EndOfMonth returns the picker's ISO end-of-month date.
func (p PickerDate) EndOfMonth() string {
	return normalize.EndOfMonth(p.Year, p.Month)
}

// ResolveEffectiveDate determines the authoritative date for one row.
// Priority: a valid picker beats the file's own date; otherwise the row's
// normalized date is snapped to end-of-month; a row with neither is
// undateable. fileDate must be empty or a well-formed ISO date. The function
// is pure: the same inputs always yield the same date, and changing only the
// picker never requires re-parsing the file.
func ResolveEffectiveDate(fileDate string, picker *PickerDate, hasDateColumn bool) (string, error) {
	if picker != nil && picker.Valid() {
		return picker.EndOfMonth(), nil
	}
	if hasDateColumn && fileDate != "" {
		return normalize.ConvertToEndOfMonth(fileDate)
	}
	return "", eris.New("no date available: file has no usable date and no month/year was selected")
}
