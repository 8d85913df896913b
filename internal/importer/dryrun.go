package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

// DryRunSampleSize caps how many rows a dry run probes against the store.
// Probing is one IN-list query per kind, so a bounded sample keeps the
// preview cheap even for very large files.
const DryRunSampleSize = 200

// Preview is the result of a dry run: nothing is written, the store is only
// probed for which natural keys already exist.
type Preview struct {
	TotalRows   int `json:"total_rows"`
	SampledRows int `json:"sampled_rows"`
	WouldInsert int `json:"would_insert"`
	WouldUpdate int `json:"would_update"`
}

// DryRun probes the first DryRunSampleSize rows and reports how many would be
// fresh inserts versus overwrites of existing (ticker, date) entries. Counts
// are for the sample only; TotalRows is the full file.
func (e *Executor) DryRun(ctx context.Context, kind perf.Kind, rows []perf.Row) (*Preview, error) {
	p := &Preview{TotalRows: len(rows)}
	if len(rows) == 0 {
		return p, nil
	}

	sample := rows
	if len(sample) > DryRunSampleSize {
		sample = sample[:DryRunSampleSize]
	}
	p.SampledRows = len(sample)

	byKind := make(map[perf.Kind][]perf.Key)
	for _, row := range sample {
		byKind[row.Kind] = append(byKind[row.Kind], row.Key())
	}

	for k, keys := range byKind {
		existing, err := e.store.ProbeExisting(ctx, k, keys)
		if err != nil {
			return nil, eris.Wrapf(err, "importer: probe existing %s rows", k)
		}
		for _, key := range keys {
			if existing[key] {
				p.WouldUpdate++
			} else {
				p.WouldInsert++
			}
		}
	}

	e.log.Info("dry run complete",
		zap.String("kind", string(kind)),
		zap.Int("total_rows", p.TotalRows),
		zap.Int("sampled", p.SampledRows),
		zap.Int("would_insert", p.WouldInsert),
		zap.Int("would_update", p.WouldUpdate))
	return p, nil
}
