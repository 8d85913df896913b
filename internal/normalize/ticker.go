package normalize

import "strings"

// maxTickerLen bounds ticker length; anything longer is almost certainly a
// name pasted into the wrong column.
const maxTickerLen = 20

// NormalizeTicker uppercases and trims a raw ticker cell. It returns ok=false
// for empty tickers, tickers longer than 20 characters, and tickers containing
// anything outside [A-Z0-9] (periods and hyphens are rejected, not stripped).
func NormalizeTicker(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || len(s) > maxTickerLen {
		return "", false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", false
		}
	}
	return s, true
}
