package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/model"
)

func salaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Manage the monthly salary",
	}

	setCmd := &cobra.Command{
		Use:   "set AMOUNT",
		Short: "Set the monthly salary",
		Long: `Set the monthly salary in INR. The balance and the low balance alert are
recomputed immediately.`,
		Example: "  cashflow salary set 85000",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			salary, err := parseAmount(args[0], "salary")
			if err != nil {
				return err
			}

			svc, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.Dispatch(cmd.Context(), ledger.Action{Kind: ledger.ActionSetSalary, Salary: salary})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Salary set to "+cli.FormatAmount(res.Snapshot.Salary, res.Snapshot.Currency)))
			printAlert(out, res.Snapshot)
			return nil
		},
	}
	setCmd.SetFlagErrorFunc(negativeAmountFlagError("salary"))
	cmd.AddCommand(setCmd)

	return cmd
}

func expenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses"},
		Short:   "Add, list and delete expenses",
	}

	cmd.AddCommand(expenseAddCmd(a))
	cmd.AddCommand(expenseListCmd(a))
	cmd.AddCommand(expenseDeleteCmd(a))

	return cmd
}

func expenseAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME AMOUNT",
		Short: "Record an expense",
		Long: `Record an expense in INR. The name may contain spaces when quoted; leading and
trailing whitespace is dropped.`,
		Example: `  cashflow expense add Rent 25000
  cashflow expense add "Phone bill" 799.50`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1], "amount")
			if err != nil {
				return err
			}

			svc, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.Dispatch(cmd.Context(), ledger.Action{
				Kind:   ledger.ActionAddExpense,
				Name:   args[0],
				Amount: amount,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %s (%s) with id %d",
				res.Expense.Name, cli.FormatAmount(res.Expense.Amount, model.BaseCurrency), res.Expense.ID)))
			printAlert(out, res.Snapshot)
			return nil
		},
	}
	cmd.SetFlagErrorFunc(negativeAmountFlagError("expense amount"))
	return cmd
}

func expenseListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			l := svc.Ledger()
			if len(l.Expenses) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No expenses yet. Use 'cashflow expense add' to record one."))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tAMOUNT")
			for _, e := range l.Expenses {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Name, cli.FormatAmount(e.Amount, model.BaseCurrency))
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("failed to write expenses: %w", err)
			}
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d expense(s), total %s",
				len(l.Expenses), cli.FormatAmount(svc.Totals().TotalExpenses, model.BaseCurrency))))
			return nil
		},
	}
}

func expenseDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an expense by id",
		Long: `Delete an expense by the id shown in 'cashflow expense list'. Deleting an id
that does not exist changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return common.InvalidInput("expense id %q is not a number", args[0])
			}

			svc, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			_, found := svc.Ledger().Find(id)
			res, err := svc.Dispatch(cmd.Context(), ledger.Action{Kind: ledger.ActionDeleteExpense, ID: id})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if found {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted expense %d", id)))
			} else {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No expense with id %d", id)))
			}
			printAlert(out, res.Snapshot)
			return nil
		},
	}
}
