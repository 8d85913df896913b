package upload

import "github.com/sells-group/fundperf-cli/internal/perf"

// FindDuplicates detects repeated (ticker, date) natural keys in file order.
// The first occurrence of a key is not itself flagged; every later occurrence
// is reported against it.
func FindDuplicates(rows []perf.Row) []Duplicate {
	firstSeen := make(map[perf.Key]int, len(rows))
	var dups []Duplicate

	for _, row := range rows {
		key := row.Key()
		if first, ok := firstSeen[key]; ok {
			dups = append(dups, Duplicate{
				RowIndex:        row.RowIndex,
				Ticker:          row.Ticker,
				Date:            row.Date,
				FirstOccurrence: first,
			})
			continue
		}
		firstSeen[key] = row.RowIndex
	}

	return dups
}
