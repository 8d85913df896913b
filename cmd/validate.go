package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundperf-cli/internal/store"
	"github.com/sells-group/fundperf-cli/internal/upload"
)

var (
	validateMonth   int
	validateYear    int
	validateEOM     bool
	validateMixed   bool
	validateOffline bool
	validateJSON    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file-or-url>",
	Short: "Validate a performance CSV without importing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		picker, err := buildPicker(validateMonth, validateYear)
		if err != nil {
			return err
		}

		s, err := initValidationStore(ctx)
		if err != nil {
			return err
		}
		if s != nil {
			defer s.Close() //nolint:errcheck
		}

		res, err := validateFile(ctx, args[0], s, upload.Options{
			RequireEOM: validateEOM || cfg.Import.RequireEOM,
			AllowMixed: validateMixed,
			Picker:     picker,
		})
		if err != nil {
			return err
		}

		if validateJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(res), "encode result")
		}

		if report := res.Report(); report != "" {
			fmt.Fprintln(cmd.OutOrStdout(), report)
		}
		zap.L().Info("validation complete",
			zap.String("file", args[0]),
			zap.String("upload_type", string(res.UploadType)),
			zap.Bool("valid", res.IsValid),
			zap.Int("rows", len(res.Rows)),
			zap.Int("errors", len(res.Errors)),
			zap.Int("warnings", len(res.Warnings)))

		if !res.IsValid {
			return eris.Errorf("%s failed validation with %d error(s)", args[0], len(res.Errors))
		}
		return nil
	},
}

// initValidationStore opens the store for catalog checks, or returns nil when
// running offline or without a configured database.
func initValidationStore(ctx context.Context) (store.Store, error) {
	if validateOffline || cfg.Store.DatabaseURL == "" {
		return nil, nil
	}
	if err := cfg.Validate("import"); err != nil {
		return nil, err
	}
	return initStore(ctx)
}

func init() {
	validateCmd.Flags().IntVar(&validateMonth, "month", 0, "batch month (1-12), overrides file dates")
	validateCmd.Flags().IntVar(&validateYear, "year", 0, "batch year, overrides file dates")
	validateCmd.Flags().BoolVar(&validateEOM, "require-eom", false, "treat non-end-of-month dates as errors")
	validateCmd.Flags().BoolVar(&validateMixed, "allow-mixed", false, "permit files with both ticker columns")
	validateCmd.Flags().BoolVar(&validateOffline, "offline", false, "skip catalog membership checks")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit the full result as JSON")
	rootCmd.AddCommand(validateCmd)
}
