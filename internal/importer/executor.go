// Package importer commits validated performance rows to the store in
// fixed-size chunks. Chunks are independent round-trips: a failed chunk is
// recorded and skipped, earlier chunks stay committed, and later chunks are
// still attempted, so one bad batch never voids an entire import.
package importer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/fundperf-cli/internal/perf"
	"github.com/sells-group/fundperf-cli/internal/resilience"
	"github.com/sells-group/fundperf-cli/internal/store"
)

// DefaultChunkSize is the number of rows committed per round-trip.
const DefaultChunkSize = 500

// ChunkResult records the outcome of one chunk round-trip.
type ChunkResult struct {
	ChunkIndex    int    `json:"chunk_index"`
	RowsAttempted int    `json:"rows_attempted"`
	RowsSucceeded int64  `json:"rows_succeeded"`
	Error         string `json:"error,omitempty"`
}

// Outcome summarizes an import run across all chunks.
type Outcome struct {
	ImportID     string        `json:"import_id"`
	SuccessCount int64         `json:"success_count"`
	FailedCount  int64         `json:"failed_count"`
	Partial      bool          `json:"partial"`
	Chunks       []ChunkResult `json:"chunks"`
	Duration     time.Duration `json:"duration"`
}

// Failed reports whether nothing was committed at all.
func (o *Outcome) Failed() bool {
	return o.SuccessCount == 0 && o.FailedCount > 0
}

// errorSummary joins the per-chunk errors for the audit log.
func (o *Outcome) errorSummary() string {
	var msgs []string
	for _, c := range o.Chunks {
		if c.Error != "" {
			msgs = append(msgs, c.Error)
		}
	}
	return strings.Join(msgs, "; ")
}

// Executor runs chunked imports against a store.
type Executor struct {
	store     store.Store
	chunkSize int
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
	log       *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithChunkSize overrides the default chunk size. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithRateLimit throttles chunk round-trips to n per second. Useful when the
// target database is shared with the live dashboard.
func WithRateLimit(n float64) Option {
	return func(e *Executor) {
		if n > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// WithRetry overrides the per-chunk retry policy. Transient store faults are
// retried within a chunk before the chunk is counted as failed.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(e *Executor) {
		e.retry = cfg
	}
}

// New creates an Executor over the given store.
func New(s store.Store, opts ...Option) *Executor {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("upsert chunk")
	e := &Executor{
		store:     s,
		chunkSize: DefaultChunkSize,
		retry:     retry,
		log:       zap.L().With(zap.String("component", "importer")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run imports rows in sequential chunks and records the session in the import
// audit log. Rows must already be validated and normalized; Run does not
// re-check them. A context cancellation stops before the next chunk and
// returns the cumulative outcome alongside the error.
func (e *Executor) Run(ctx context.Context, kind perf.Kind, filename string, rows []perf.Row) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{ImportID: uuid.NewString()}

	if len(rows) == 0 {
		return out, eris.New("importer: no rows to import")
	}

	if err := e.store.StartImport(ctx, out.ImportID, kind, filename); err != nil {
		return out, eris.Wrap(err, "importer: start import session")
	}

	e.log.Info("import started",
		zap.String("import_id", out.ImportID),
		zap.String("kind", string(kind)),
		zap.String("filename", filename),
		zap.Int("rows", len(rows)),
		zap.Int("chunk_size", e.chunkSize))

	var runErr error
	for i := 0; i < len(rows); i += e.chunkSize {
		if err := ctx.Err(); err != nil {
			runErr = eris.Wrap(err, "importer: canceled")
			break
		}
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				runErr = eris.Wrap(err, "importer: canceled")
				break
			}
		}

		end := i + e.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[i:end]

		res := ChunkResult{
			ChunkIndex:    len(out.Chunks) + 1,
			RowsAttempted: len(chunk),
		}
		n, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (int64, error) {
			return e.store.UpsertPerformanceRows(ctx, chunk)
		})
		if err != nil {
			res.Error = err.Error()
			out.FailedCount += int64(len(chunk))
			e.log.Warn("chunk failed, continuing",
				zap.String("import_id", out.ImportID),
				zap.Int("chunk", res.ChunkIndex),
				zap.Error(err))
		} else {
			res.RowsSucceeded = n
			out.SuccessCount += n
		}
		out.Chunks = append(out.Chunks, res)
	}

	out.Partial = out.SuccessCount > 0 && out.FailedCount > 0
	out.Duration = time.Since(start)

	// Completion is recorded even when the run was canceled, so the audit
	// log reflects what actually got committed.
	if err := e.store.CompleteImport(context.WithoutCancel(ctx), out.ImportID,
		out.SuccessCount, out.FailedCount, out.Partial, out.errorSummary()); err != nil {
		e.log.Warn("failed to finalize import log entry",
			zap.String("import_id", out.ImportID), zap.Error(err))
	}

	e.log.Info("import finished",
		zap.String("import_id", out.ImportID),
		zap.Int64("succeeded", out.SuccessCount),
		zap.Int64("failed", out.FailedCount),
		zap.Bool("partial", out.Partial),
		zap.Duration("duration", out.Duration))

	if runErr != nil {
		return out, runErr
	}
	if out.Failed() {
		return out, eris.New("importer: all chunks failed")
	}
	return out, nil
}
