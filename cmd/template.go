package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundperf-cli/internal/csvfile"
	"github.com/sells-group/fundperf-cli/internal/perf"
)

var (
	templateKind   string
	templateFormat string
	templateOut    string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an upload template with the expected columns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind, err := perf.ParseKind(templateKind)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if templateOut != "" {
			f, err := os.Create(templateOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", templateOut)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		switch templateFormat {
		case "csv":
			err = csvfile.WriteCSVTemplate(out, kind)
		case "xlsx":
			if templateOut == "" {
				return eris.New("xlsx templates require --out")
			}
			err = csvfile.WriteXLSXTemplate(out, kind)
		default:
			return eris.Errorf("unsupported format %q: expected csv or xlsx", templateFormat)
		}
		if err != nil {
			return err
		}

		if templateOut != "" {
			zap.L().Info("template written",
				zap.String("kind", string(kind)),
				zap.String("format", templateFormat),
				zap.String("path", templateOut))
		}
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateKind, "kind", "fund", "template kind: fund or benchmark")
	templateCmd.Flags().StringVar(&templateFormat, "format", "csv", "output format: csv or xlsx")
	templateCmd.Flags().StringVar(&templateOut, "out", "", "output path (default stdout for csv)")
	rootCmd.AddCommand(templateCmd)
}
