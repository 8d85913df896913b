// Package store persists performance rows, the ticker catalog, and the import
// audit log. Two backends implement the same interface: Postgres for the
// hosted deployment and SQLite for local work.
package store

import (
	"context"
	"time"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

// Import session statuses.
const (
	ImportRunning  = "running"
	ImportComplete = "complete"
	ImportFailed   = "failed"
)

// ImportEntry is one row of the import audit log.
type ImportEntry struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	Filename      string     `json:"filename,omitempty"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	RowsSucceeded int64      `json:"rows_succeeded"`
	RowsFailed    int64      `json:"rows_failed"`
	Partial       bool       `json:"partial"`
	Error         string     `json:"error,omitempty"`
}

// Store is the persistence interface the import engine depends on. Writes are
// idempotent upserts keyed on the (kind, ticker, date) natural key; the engine
// is agnostic to transport and schema beyond that.
type Store interface {
	// Catalog
	LookupKnownTickers(ctx context.Context, kind perf.Kind) (map[string]struct{}, error)
	SeedTickers(ctx context.Context, kind perf.Kind, tickers []string) (int64, error)

	// Performance rows
	UpsertPerformanceRows(ctx context.Context, rows []perf.Row) (int64, error)
	ProbeExisting(ctx context.Context, kind perf.Kind, keys []perf.Key) (map[perf.Key]bool, error)

	// Import audit log
	StartImport(ctx context.Context, id string, kind perf.Kind, filename string) error
	CompleteImport(ctx context.Context, id string, succeeded, failed int64, partial bool, errMsg string) error
	ListImports(ctx context.Context, limit int) ([]ImportEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// performanceColumns is the column list for performance upserts: the natural
// key followed by the metric superset and the bookkeeping timestamp.
func performanceColumns() []string {
	cols := []string{"kind", "ticker", "as_of_date"}
	cols = append(cols, perf.AllMetricColumns()...)
	return append(cols, "updated_at")
}

// performanceValues flattens a normalized row into the column order of
// performanceColumns. Absent or null metrics become SQL NULLs.
func performanceValues(row perf.Row, now time.Time) []any {
	vals := []any{string(row.Kind), row.Ticker, row.Date}
	for _, m := range perf.AllMetricColumns() {
		if v, ok := row.Metrics[m]; ok && v != nil {
			vals = append(vals, *v)
		} else {
			vals = append(vals, nil)
		}
	}
	return append(vals, now)
}
