package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const isoDate = "2006-01-02"

var (
	fullDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// ParseDate parses a raw date cell into an ISO-8601 date-only string. Only two
// shapes are accepted: strict YYYY-MM-DD, and YYYY-MM which expands to that
// month's last calendar day. All date math is done in UTC so month boundaries
// don't drift with the local timezone.
func ParseDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	switch {
	case fullDateRe.MatchString(s):
		t, err := time.ParseInLocation(isoDate, s, time.UTC)
		if err != nil {
			return "", eris.Errorf("invalid date: %q", raw)
		}
		return t.Format(isoDate), nil

	case yearMonthRe.MatchString(s):
		t, err := time.ParseInLocation("2006-01", s, time.UTC)
		if err != nil {
			return "", eris.Errorf("invalid date: %q", raw)
		}
		return lastDayOfMonth(t).Format(isoDate), nil

	default:
		return "", eris.Errorf("invalid date: %q (expected YYYY-MM-DD or YYYY-MM)", raw)
	}
}

// IsEndOfMonth reports whether an ISO date falls on the last calendar day of
// its month, using the UTC calendar (Feb 29 in leap years is end-of-month).
func IsEndOfMonth(iso string) bool {
	t, err := time.ParseInLocation(isoDate, iso, time.UTC)
	if err != nil {
		return false
	}
	return t.Day() == lastDayOfMonth(t).Day()
}

// ConvertToEndOfMonth snaps an ISO date to the last day of its month.
func ConvertToEndOfMonth(iso string) (string, error) {
	t, err := time.ParseInLocation(isoDate, iso, time.UTC)
	if err != nil {
		return "", eris.Errorf("invalid date: %q", iso)
	}
	return lastDayOfMonth(t).Format(isoDate), nil
}

// EndOfMonth returns the ISO date of the last day of the given month.
func EndOfMonth(year int, month time.Month) string {
	return lastDayOfMonth(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)).Format(isoDate)
}

// lastDayOfMonth computes (first of next month) - 1 day in UTC.
func lastDayOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}
