package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundperf-cli/internal/normalize"
	"github.com/sells-group/fundperf-cli/internal/perf"
)

var (
	catalogKind     string
	catalogSeedFile string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and seed the ticker catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known tickers for a kind",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		kind, err := perf.ParseKind(catalogKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		known, err := s.LookupKnownTickers(ctx, kind)
		if err != nil {
			return err
		}

		tickers := make([]string, 0, len(known))
		for t := range known {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		for _, t := range tickers {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		zap.L().Info("catalog listed", zap.String("kind", string(kind)), zap.Int("tickers", len(tickers)))
		return nil
	},
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog from a file of tickers, one per line",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		kind, err := perf.ParseKind(catalogKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		f, err := os.Open(catalogSeedFile)
		if err != nil {
			return eris.Wrapf(err, "open %s", catalogSeedFile)
		}
		defer f.Close() //nolint:errcheck

		var tickers []string
		scanner := bufio.NewScanner(f)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			ticker, ok := normalize.NormalizeTicker(line)
			if !ok {
				return eris.Errorf("line %d: invalid ticker %q", lineNo, line)
			}
			tickers = append(tickers, ticker)
		}
		if err := scanner.Err(); err != nil {
			return eris.Wrapf(err, "read %s", catalogSeedFile)
		}
		if len(tickers) == 0 {
			return eris.Errorf("%s contains no tickers", catalogSeedFile)
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		added, err := s.SeedTickers(ctx, kind, tickers)
		if err != nil {
			return err
		}

		zap.L().Info("catalog seeded",
			zap.String("kind", string(kind)),
			zap.Int("read", len(tickers)),
			zap.Int64("added", added))
		fmt.Fprintf(cmd.OutOrStdout(), "%d ticker(s) read, %d added\n", len(tickers), added)
		return nil
	},
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogKind, "kind", "fund", "catalog kind: fund or benchmark")
	catalogSeedCmd.Flags().StringVar(&catalogSeedFile, "file", "", "path to ticker list (required)")
	_ = catalogSeedCmd.MarkFlagRequired("file")
	catalogCmd.AddCommand(catalogListCmd, catalogSeedCmd)
	rootCmd.AddCommand(catalogCmd)
}
