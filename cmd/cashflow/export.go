package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/report"
)

// defaultReportName is the export file name used when --output is not given.
const defaultReportName = "cash-flow-report"

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cash flow report",
		Long: `Export salary, expenses, total and balance as a document. Reports are always
in INR regardless of the display currency.

Use --output - to write the report to standard output.`,
		Example: `  cashflow export
  cashflow export --format json --output - | jq .balance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			if format == "" {
				format = a.cfg.Export.Format
			}

			renderer, err := report.New(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = defaultReportName + "." + renderer.Extension()
			}

			svc, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			action := ledger.Action{Kind: ledger.ActionRequestExport, Renderer: renderer}
			if output == "-" {
				action.Output = cmd.OutOrStdout()
				_, err := svc.Dispatch(cmd.Context(), action)
				return err
			}

			f, err := os.Create(output) //nolint:gosec // user-chosen output path
			if err != nil {
				return fmt.Errorf("%w: %w", common.ErrExportFailure, err)
			}
			action.Output = f

			res, err := svc.Dispatch(cmd.Context(), action)
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("%w: %w", common.ErrExportFailure, closeErr)
			}
			if err != nil {
				if removeErr := os.Remove(output); removeErr != nil {
					slog.Warn("Failed to remove partial report", "path", output, "error", removeErr)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d expense(s) to %s",
				len(res.Report.Expenses), output)))
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "", "report format: "+strings.Join(report.Formats, ", ")+" (default: export.format)")
	cmd.Flags().StringP("output", "o", "", "output file, or - for stdout (default: "+defaultReportName+".<ext>)")
	return cmd
}
