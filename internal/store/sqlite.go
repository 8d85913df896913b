package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

// SQLite implements Store on modernc.org/sqlite. It is the local/dev backend;
// the semantics match Postgres but batches are written row by row inside one
// transaction instead of via COPY.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) LookupKnownTickers(ctx context.Context, kind perf.Kind) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker FROM tickers WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: lookup %s tickers", kind)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ticker")
		}
		set[t] = struct{}{}
	}
	return set, rows.Err()
}

func (s *SQLite) SeedTickers(ctx context.Context, kind perf.Kind, tickers []string) (int64, error) {
	if len(tickers) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin seed tx")
	}
	defer tx.Rollback()

	var n int64
	for _, t := range tickers {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tickers (kind, ticker) VALUES (?, ?)
			 ON CONFLICT (kind, ticker) DO NOTHING`, string(kind), t)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: seed ticker %s", t)
		}
		if added, err := res.RowsAffected(); err == nil {
			n += added
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit seed tx")
	}
	return n, nil
}

func (s *SQLite) UpsertPerformanceRows(ctx context.Context, rows []perf.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	cols := performanceColumns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	var sets []string
	for _, c := range cols[3:] { // everything after the natural key
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	stmtSQL := fmt.Sprintf(
		`INSERT INTO performance (%s) VALUES (%s)
		 ON CONFLICT (kind, ticker, as_of_date) DO UPDATE SET %s`,
		strings.Join(cols, ", "), placeholders, strings.Join(sets, ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, performanceValues(row, now)...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert %s %s", row.Ticker, row.Date)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert tx")
	}
	return int64(len(rows)), nil
}

func (s *SQLite) ProbeExisting(ctx context.Context, kind perf.Kind, keys []perf.Key) (map[perf.Key]bool, error) {
	existing := make(map[perf.Key]bool, len(keys))
	for _, k := range keys {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM performance WHERE kind = ? AND ticker = ? AND as_of_date = ?`,
			string(kind), k.Ticker, k.Date).Scan(&one)
		switch {
		case err == sql.ErrNoRows:
			continue
		case err != nil:
			return nil, eris.Wrapf(err, "sqlite: probe %s %s", k.Ticker, k.Date)
		default:
			existing[k] = true
		}
	}
	return existing, nil
}

func (s *SQLite) StartImport(ctx context.Context, id string, kind perf.Kind, filename string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_log (id, kind, filename, status, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, string(kind), filename, ImportRunning, time.Now().UTC())
	if err != nil {
		return eris.Wrapf(err, "sqlite: start import %s", id)
	}
	return nil
}

func (s *SQLite) CompleteImport(ctx context.Context, id string, succeeded, failed int64, partial bool, errMsg string) error {
	status := ImportComplete
	if errMsg != "" && succeeded == 0 {
		status = ImportFailed
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_log
		 SET status = ?, completed_at = ?, rows_succeeded = ?, rows_failed = ?, partial = ?, error = ?
		 WHERE id = ?`,
		status, time.Now().UTC(), succeeded, failed, partial, errMsg, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete import %s", id)
	}
	return nil
}

func (s *SQLite) ListImports(ctx context.Context, limit int) ([]ImportEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, COALESCE(filename, ''), status, started_at, completed_at,
		        rows_succeeded, rows_failed, partial, COALESCE(error, '')
		 FROM import_log ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list imports")
	}
	defer rows.Close()

	var entries []ImportEntry
	for rows.Next() {
		var e ImportEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Filename, &e.Status, &e.StartedAt,
			&e.CompletedAt, &e.RowsSucceeded, &e.RowsFailed, &e.Partial, &e.Error); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS tickers (
	kind   TEXT NOT NULL,
	ticker TEXT NOT NULL,
	PRIMARY KEY (kind, ticker)
);

CREATE TABLE IF NOT EXISTS performance (
	kind                   TEXT NOT NULL,
	ticker                 TEXT NOT NULL,
	as_of_date             TEXT NOT NULL,
	month_return           REAL,
	qtd_return             REAL,
	ytd_return             REAL,
	one_year_return        REAL,
	three_year_return      REAL,
	five_year_return       REAL,
	ten_year_return        REAL,
	since_inception_return REAL,
	expense_ratio          REAL,
	aum                    REAL,
	manager_tenure         REAL,
	updated_at             DATETIME NOT NULL,
	PRIMARY KEY (kind, ticker, as_of_date)
);

CREATE TABLE IF NOT EXISTS import_log (
	id             TEXT PRIMARY KEY,
	kind           TEXT NOT NULL,
	filename       TEXT,
	status         TEXT NOT NULL,
	started_at     DATETIME NOT NULL,
	completed_at   DATETIME,
	rows_succeeded INTEGER NOT NULL DEFAULT 0,
	rows_failed    INTEGER NOT NULL DEFAULT 0,
	partial        BOOLEAN NOT NULL DEFAULT 0,
	error          TEXT
);
`

func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
