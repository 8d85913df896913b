package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fundperf-cli/internal/importer"
	"github.com/sells-group/fundperf-cli/internal/store"
	"github.com/sells-group/fundperf-cli/internal/upload"
)

var (
	importMonth     int
	importYear      int
	importEOM       bool
	importMixed     bool
	importDryRun    bool
	importChunkSize int
	importRate      float64
)

var importCmd = &cobra.Command{
	Use:   "import <files-or-urls...>",
	Short: "Validate and import performance CSVs",
	Long:  "Validates each file against the ticker catalog, then commits rows in chunks. Warnings never block an import; a file with errors is skipped. Partial chunk failures are recorded and do not abort the rest of the file.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}
		picker, err := buildPicker(importMonth, importYear)
		if err != nil {
			return err
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		chunkSize := importChunkSize
		if chunkSize == 0 {
			chunkSize = cfg.Import.ChunkSize
		}
		exec := importer.New(s,
			importer.WithChunkSize(chunkSize),
			importer.WithRateLimit(importRate))

		opts := upload.Options{
			RequireEOM: importEOM || cfg.Import.RequireEOM,
			AllowMixed: importMixed,
			Picker:     picker,
		}

		zap.L().Info("starting import",
			zap.Int("files", len(args)),
			zap.Int("chunk_size", chunkSize),
			zap.Bool("dry_run", importDryRun))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Import.MaxConcurrency)

		var failed atomic.Int64
		for _, path := range args {
			g.Go(func() error {
				if err := importOne(gctx, cmd, s, exec, path, opts); err != nil {
					failed.Add(1)
					zap.L().Error("import failed", zap.String("file", path), zap.Error(err))
				}
				return nil // one bad file does not abort the batch
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "import batch")
		}

		if n := failed.Load(); n > 0 {
			return eris.Errorf("%d of %d file(s) failed", n, len(args))
		}
		return nil
	},
}

// importOne validates a single file and, when clean, runs the chunked import
// (or the dry-run probe).
func importOne(ctx context.Context, cmd *cobra.Command, s store.Store, exec *importer.Executor, path string, opts upload.Options) error {
	res, err := validateFile(ctx, path, s, opts)
	if err != nil {
		return err
	}

	if report := res.Report(); report != "" {
		fmt.Fprintln(cmd.OutOrStdout(), report)
	}
	if !res.IsValid {
		return eris.Errorf("validation failed with %d error(s)", len(res.Errors))
	}

	if importDryRun {
		preview, err := exec.DryRun(ctx, res.UploadType, res.Rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"%s: dry run: %d rows total, sampled %d: %d would insert, %d would update\n",
			path, preview.TotalRows, preview.SampledRows, preview.WouldInsert, preview.WouldUpdate)
		return nil
	}

	out, err := exec.Run(ctx, res.UploadType, filepath.Base(path), res.Rows)
	if err != nil {
		return err
	}

	status := "imported"
	if out.Partial {
		status = "partially imported"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %d rows succeeded, %d failed (%d chunks, %s)\n",
		path, status, out.SuccessCount, out.FailedCount, len(out.Chunks), out.Duration.Round(time.Millisecond))

	if out.Partial {
		return eris.Errorf("partial import: %d row(s) failed", out.FailedCount)
	}
	return nil
}

func init() {
	importCmd.Flags().IntVar(&importMonth, "month", 0, "batch month (1-12), overrides file dates")
	importCmd.Flags().IntVar(&importYear, "year", 0, "batch year, overrides file dates")
	importCmd.Flags().BoolVar(&importEOM, "require-eom", false, "treat non-end-of-month dates as errors")
	importCmd.Flags().BoolVar(&importMixed, "allow-mixed", false, "permit files with both ticker columns")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "probe the store without writing")
	importCmd.Flags().IntVar(&importChunkSize, "chunk-size", 0, "rows per upsert chunk (default from config)")
	importCmd.Flags().Float64Var(&importRate, "rate", 0, "max chunk writes per second (0 = unlimited)")
	rootCmd.AddCommand(importCmd)
}
