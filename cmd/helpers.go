package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fundperf-cli/internal/catalog"
	"github.com/sells-group/fundperf-cli/internal/csvfile"
	"github.com/sells-group/fundperf-cli/internal/fetcher"
	"github.com/sells-group/fundperf-cli/internal/perf"
	"github.com/sells-group/fundperf-cli/internal/store"
	"github.com/sells-group/fundperf-cli/internal/upload"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "fundperf.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func fetchOptions() (fetcher.HTTPOptions, fetcher.FTPOptions) {
	httpOpts := fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	}
	ftpOpts := fetcher.FTPOptions{
		Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
	}
	return httpOpts, ftpOpts
}

// buildPicker turns the --month/--year flags into a picker date. Both flags
// must be given together; zero values mean no picker.
func buildPicker(month, year int) (*upload.PickerDate, error) {
	if month == 0 && year == 0 {
		return nil, nil
	}
	if month == 0 || year == 0 {
		return nil, eris.New("--month and --year must be given together")
	}
	p := &upload.PickerDate{Year: year, Month: time.Month(month)}
	if !p.Valid() {
		return nil, eris.Errorf("invalid picker date %d-%02d", year, month)
	}
	return p, nil
}

// knownTickers loads the catalog snapshots the file's header calls for.
// A nil store (offline mode) returns nil, which skips membership checks.
func knownTickers(ctx context.Context, s store.Store, header []string) (map[perf.Kind]upload.TickerSet, error) {
	if s == nil {
		return nil, nil
	}
	kind := upload.DetermineUploadType(header)
	if kind == perf.KindUnknown {
		// Validation will report the header problem; no catalog needed.
		return nil, nil
	}

	cache := catalog.New(s.LookupKnownTickers)
	kinds := []perf.Kind{kind}
	if kind == perf.KindMixed {
		kinds = []perf.Kind{perf.KindFund, perf.KindBenchmark}
	}

	known := make(map[perf.Kind]upload.TickerSet, len(kinds))
	for _, k := range kinds {
		set, err := cache.Known(ctx, k)
		if err != nil {
			return nil, err
		}
		known[k] = set
	}
	return known, nil
}

// validateFile reads a local path or URL and runs full validation against the
// catalog in s (which may be nil for offline use).
func validateFile(ctx context.Context, path string, s store.Store, opts upload.Options) (*upload.Result, error) {
	httpOpts, ftpOpts := fetchOptions()
	rc, err := fetcher.Open(ctx, path, httpOpts, ftpOpts)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	file, err := csvfile.Read(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}

	known, err := knownTickers(ctx, s, file.Header)
	if err != nil {
		return nil, err
	}

	return upload.Validate(file.Header, file.Rows, known, opts), nil
}
