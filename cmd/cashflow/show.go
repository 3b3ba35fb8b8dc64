package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashflow/internal/cli"
)

func showCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show salary, expenses, balance and the expense chart",
		Long: `Show the current ledger converted to a display currency. Amounts are stored in
INR; any other currency is converted with the configured rate provider. If the
rate cannot be fetched the summary is shown in INR with a warning.`,
		Example: `  cashflow show
  cashflow show --currency usd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, _ := cmd.Flags().GetString("currency")
			if code == "" {
				code = a.cfg.Currency.Default
			}

			svc, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			snap, err := selectCurrency(cmd.Context(), cmd.ErrOrStderr(), svc, code)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Cash Flow"))
			fmt.Fprintln(out, cli.RenderSnapshot(snap))
			return nil
		},
	}

	cmd.Flags().StringP("currency", "c", "", "display currency (default: currency.default)")
	return cmd
}
