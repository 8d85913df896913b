package perf

// Key is the natural key of one performance record. Upserts and duplicate
// detection are keyed on it, never on row identity.
type Key struct {
	Ticker string `json:"ticker"`
	Date   string `json:"date"` // ISO-8601 date-only
}

// Row is one normalized performance row. Produced by validation, immutable
// afterwards; Date is always a well-formed ISO-8601 date-only string.
type Row struct {
	RowIndex int                 `json:"row_index"` // 1-based data row index
	Kind     Kind                `json:"kind"`
	Ticker   string              `json:"ticker"`
	Date     string              `json:"date"`
	Metrics  map[string]*float64 `json:"metrics"`
}

// Key returns the row's natural key.
func (r Row) Key() Key {
	return Key{Ticker: r.Ticker, Date: r.Date}
}
