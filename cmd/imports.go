package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/fundperf-cli/internal/store"
)

var importsLimit int

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "Show recent entries from the import audit log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		entries, err := s.ListImports(ctx, importsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no imports recorded")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tKIND\tFILE\tSTATUS\tSUCCEEDED\tFAILED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
				e.StartedAt.Format("2006-01-02 15:04"),
				e.Kind, e.Filename, describeStatus(e), e.RowsSucceeded, e.RowsFailed)
		}
		return w.Flush()
	},
}

func describeStatus(e store.ImportEntry) string {
	if e.Status == store.ImportComplete && e.Partial {
		return "partial"
	}
	return e.Status
}

func init() {
	importsCmd.Flags().IntVar(&importsLimit, "limit", 20, "max entries to show")
	rootCmd.AddCommand(importsCmd)
}
