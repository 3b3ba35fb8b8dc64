package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/ofx"
)

func importCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import expenses from OFX/QFX statements",
		Long: `Import the debits of OFX or QFX (Quicken) statements exported from your bank
or credit card as expenses. Credits are ignored and a transaction that appears
in several files is imported once.

With --interactive every debit is shown for review: accept it, skip it, rename
it, accept the rest, or stop.

Examples:
  # Import one statement
  cashflow import ~/Downloads/statement_jan.qfx

  # Review every debit of several statements
  cashflow import --interactive ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args)
		},
	}

	cmd.Flags().BoolP("interactive", "i", false, "review each debit before adding it")
	cmd.Flags().BoolP("dry-run", "d", false, "list the debits without adding them")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(out, "Import")
	ctx := handler.HandleInterrupts(cmd.Context())

	parser := ofx.NewParser(slog.Default())
	var candidates []ofx.Candidate
	seen := make(map[string]bool)
	for _, path := range files {
		found, err := parseStatement(ctx, parser, path)
		if err != nil {
			slog.Error("Failed to parse statement", "file", path, "error", err)
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("Skipping %s: %s", filepath.Base(path), common.UserMessage(err))))
			continue
		}

		added := 0
		for _, c := range found {
			key := c.Account + "/" + c.FitID
			if c.FitID != "" && seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, c)
			added++
		}
		slog.Info("Processed statement",
			"file", filepath.Base(path),
			"debits", len(found),
			"duplicates", len(found)-added)
	}

	if len(candidates) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No debits found to import"))
		return nil
	}

	if dryRun {
		for _, c := range candidates {
			fmt.Fprintf(out, "%s  %-30s %s\n", c.Posted.Format("2006-01-02"), c.Name, cli.FormatAmount(c.Amount, model.BaseCurrency))
		}
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d debit(s) would be imported", len(candidates))))
		return nil
	}

	a.autoCheckpoint(ctx, "import")

	svc, closeFn, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	prompter := cli.NewImportPrompter(cmd.InOrStdin(), out, interactive)
	prompter.SetTotal(len(candidates))

	for _, c := range candidates {
		reviewed, accept, err := prompter.Review(ctx, c)
		if err != nil {
			if errors.Is(err, cli.ErrImportStopped) || ctx.Err() != nil {
				break
			}
			return err
		}
		if !accept {
			prompter.Record(reviewed, false)
			continue
		}

		_, err = svc.Dispatch(ctx, ledger.Action{
			Kind:   ledger.ActionAddExpense,
			Name:   reviewed.Name,
			Amount: reviewed.Amount,
		})
		switch {
		case errors.Is(err, common.ErrInvalidInput):
			slog.Warn("Skipping invalid debit", "name", reviewed.Name, "amount", reviewed.Amount, "error", err)
			prompter.Record(reviewed, false)
		case err != nil:
			return err
		default:
			prompter.Record(reviewed, true)
		}
	}

	prompter.ShowCompletion(model.BaseCurrency)
	printAlert(out, svc.Snapshot())
	return nil
}

func parseStatement(ctx context.Context, parser *ofx.Parser, path string) ([]ofx.Candidate, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied statement path
	if err != nil {
		return nil, fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close statement", "file", path, "error", closeErr)
		}
	}()
	return parser.ParseFile(ctx, f)
}

// expandFiles resolves glob patterns. Patterns without matches are kept when
// they name an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, common.InvalidInput("invalid pattern %s: %v", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, common.InvalidInput("no files found to import")
	}
	return files, nil
}
