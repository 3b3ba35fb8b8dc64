package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashflow/internal/report"
	"github.com/Veraticus/cashflow/internal/tui"
	"github.com/Veraticus/cashflow/internal/tui/themes"
)

func tuiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive cash flow view",
		Long: `Open a full screen view with the salary and expense form, the expense list,
the expenses/remaining chart and the low balance alert.

Keys: tab/shift+tab move between fields, enter submits, d deletes the selected
expense, ctrl+e exports the report, ctrl+h toggles help, esc quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			themeName, _ := cmd.Flags().GetString("theme")
			code, _ := cmd.Flags().GetString("currency")
			dir, _ := cmd.Flags().GetString("export-dir")
			if code == "" {
				code = a.cfg.Currency.Default
			}

			renderer, err := report.New(a.cfg.Export.Format)
			if err != nil {
				return err
			}

			svc, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			return tui.Run(cmd.Context(),
				tui.WithService(svc),
				tui.WithTheme(themes.GetTheme(themeName)),
				tui.WithCurrency(code),
				tui.WithExporter(renderer, dir),
			)
		},
	}

	cmd.Flags().String("theme", "default", fmt.Sprintf("color theme (%s)", strings.Join(themes.Names, ", ")))
	cmd.Flags().StringP("currency", "c", "", "initial display currency (default: currency.default)")
	cmd.Flags().String("export-dir", ".", "directory ctrl+e writes the report to")
	return cmd
}
