// Package normalize converts raw CSV cell strings into typed values: nullable
// metric numbers, ISO-8601 end-of-month dates, and canonical tickers. All
// functions are total; invalidity is reported through return values so callers
// can keep scanning the rest of the file.
package normalize

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// nullSentinels are cell values that mean "no data" rather than a parse error.
// The last entry is the UTF-8/Latin-1 mis-decoding of an em dash that some
// spreadsheet exports produce.
var nullSentinels = map[string]bool{
	"":         true,
	"-":        true,
	"NA":       true,
	"N/A":      true,
	"—":   true, // em dash
	"â€”": true, // mojibake em dash ("â€”")
}

var numberCleaner = strings.NewReplacer(
	",", "",
	"$", "",
	"€", "",
	"£", "",
	"%", "",
	" ", "",
)

// ParseMetricNumber parses a raw metric cell. It returns (nil, nil) for the
// null sentinels, a value for anything that parses as a decimal number after
// stripping currency symbols, percent signs, and thousands separators, and an
// error for any other non-empty string. Parenthesized values are negative:
// "(1.2)" parses to -1.2. Zero is a value, not a sentinel.
func ParseMetricNumber(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if nullSentinels[s] || nullSentinels[strings.ToUpper(s)] {
		return nil, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = numberCleaner.Replace(s)
	if s == "" {
		return nil, eris.Errorf("not a number: %q", raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, eris.Errorf("not a number: %q", raw)
	}
	if negative {
		d = d.Neg()
	}

	f, _ := d.Float64()
	return &f, nil
}
