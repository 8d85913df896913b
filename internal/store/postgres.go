package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fundperf-cli/internal/db"
	"github.com/sells-group/fundperf-cli/internal/perf"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a Postgres store with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*Postgres, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &Postgres{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests to inject pgxmock.
func NewPostgresFromPool(pool db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) LookupKnownTickers(ctx context.Context, kind perf.Kind) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ticker FROM perf.tickers WHERE kind = $1`, string(kind))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: lookup %s tickers", kind)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, eris.Wrap(err, "postgres: scan ticker")
		}
		set[t] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate tickers")
	}
	return set, nil
}

func (s *Postgres) SeedTickers(ctx context.Context, kind perf.Kind, tickers []string) (int64, error) {
	if len(tickers) == 0 {
		return 0, nil
	}
	batch := make([][]any, len(tickers))
	for i, t := range tickers {
		batch[i] = []any{string(kind), t}
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "perf.tickers",
		Columns:      []string{"kind", "ticker"},
		ConflictKeys: []string{"kind", "ticker"},
		UpdateCols:   []string{"ticker"},
	}, batch)
}

func (s *Postgres) UpsertPerformanceRows(ctx context.Context, rows []perf.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	batch := make([][]any, len(rows))
	for i, row := range rows {
		batch[i] = performanceValues(row, now)
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "perf.performance",
		Columns:      performanceColumns(),
		ConflictKeys: []string{"kind", "ticker", "as_of_date"},
	}, batch)
}

func (s *Postgres) ProbeExisting(ctx context.Context, kind perf.Kind, keys []perf.Key) (map[perf.Key]bool, error) {
	existing := make(map[perf.Key]bool, len(keys))
	if len(keys) == 0 {
		return existing, nil
	}

	tickers := make([]string, len(keys))
	dates := make([]string, len(keys))
	for i, k := range keys {
		tickers[i] = k.Ticker
		dates[i] = k.Date
	}

	rows, err := s.pool.Query(ctx,
		`SELECT ticker, to_char(as_of_date, 'YYYY-MM-DD')
		 FROM perf.performance
		 WHERE kind = $1 AND (ticker, as_of_date) IN (
		     SELECT unnest($2::text[]), unnest($3::date[])
		 )`,
		string(kind), tickers, dates)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: probe existing %s rows", kind)
	}
	defer rows.Close()

	for rows.Next() {
		var k perf.Key
		if err := rows.Scan(&k.Ticker, &k.Date); err != nil {
			return nil, eris.Wrap(err, "postgres: scan existing key")
		}
		existing[k] = true
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate existing keys")
	}
	return existing, nil
}

func (s *Postgres) StartImport(ctx context.Context, id string, kind perf.Kind, filename string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO perf.import_log (id, kind, filename, status, started_at)
		 VALUES ($1, $2, $3, $4, now())`,
		id, string(kind), filename, ImportRunning)
	if err != nil {
		return eris.Wrapf(err, "postgres: start import %s", id)
	}
	return nil
}

func (s *Postgres) CompleteImport(ctx context.Context, id string, succeeded, failed int64, partial bool, errMsg string) error {
	status := ImportComplete
	if errMsg != "" && succeeded == 0 {
		status = ImportFailed
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE perf.import_log
		 SET status = $1, completed_at = now(), rows_succeeded = $2, rows_failed = $3,
		     partial = $4, error = NULLIF($5, '')
		 WHERE id = $6`,
		status, succeeded, failed, partial, errMsg, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete import %s", id)
	}
	return nil
}

func (s *Postgres) ListImports(ctx context.Context, limit int) ([]ImportEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, COALESCE(filename, ''), status, started_at, completed_at,
		        rows_succeeded, rows_failed, partial, COALESCE(error, '')
		 FROM perf.import_log ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list imports")
	}
	defer rows.Close()

	var entries []ImportEntry
	for rows.Next() {
		var e ImportEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Filename, &e.Status, &e.StartedAt,
			&e.CompletedAt, &e.RowsSucceeded, &e.RowsFailed, &e.Partial, &e.Error); err != nil {
			return nil, eris.Wrap(err, "postgres: scan import entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate imports")
	}
	return entries, nil
}

func (s *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range postgresMigration {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "postgres: migrate")
		}
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

var postgresMigration = []string{
	`CREATE SCHEMA IF NOT EXISTS perf`,
	`CREATE TABLE IF NOT EXISTS perf.tickers (
		kind   TEXT NOT NULL,
		ticker TEXT NOT NULL,
		PRIMARY KEY (kind, ticker)
	)`,
	`CREATE TABLE IF NOT EXISTS perf.performance (
		kind                   TEXT NOT NULL,
		ticker                 TEXT NOT NULL,
		as_of_date             DATE NOT NULL,
		month_return           DOUBLE PRECISION,
		qtd_return             DOUBLE PRECISION,
		ytd_return             DOUBLE PRECISION,
		one_year_return        DOUBLE PRECISION,
		three_year_return      DOUBLE PRECISION,
		five_year_return       DOUBLE PRECISION,
		ten_year_return        DOUBLE PRECISION,
		since_inception_return DOUBLE PRECISION,
		expense_ratio          DOUBLE PRECISION,
		aum                    DOUBLE PRECISION,
		manager_tenure         DOUBLE PRECISION,
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (kind, ticker, as_of_date)
	)`,
	`CREATE TABLE IF NOT EXISTS perf.import_log (
		id             UUID PRIMARY KEY,
		kind           TEXT NOT NULL,
		filename       TEXT,
		status         TEXT NOT NULL,
		started_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at   TIMESTAMPTZ,
		rows_succeeded BIGINT NOT NULL DEFAULT 0,
		rows_failed    BIGINT NOT NULL DEFAULT 0,
		partial        BOOLEAN NOT NULL DEFAULT FALSE,
		error          TEXT
	)`,
}
