package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/storage"
)

func checkpointCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints save the current salary and expenses so you can go back to them
later. An automatic checkpoint is taken before every import; the five newest
automatic checkpoints are kept.`,
		Example: `  # Save the ledger before a clean-up
  cashflow checkpoint create --tag before-cleanup

  # Go back to it
  cashflow checkpoint restore before-cleanup`,
	}

	cmd.AddCommand(createCheckpointCmd(a))
	cmd.AddCommand(listCheckpointsCmd(a))
	cmd.AddCommand(restoreCheckpointCmd(a))
	cmd.AddCommand(deleteCheckpointCmd(a))

	return cmd
}

// withCheckpoints runs fn with a checkpoint manager for the configured
// database. The store is closed afterwards even if fn restored over it.
func (a *app) withCheckpoints(ctx context.Context, fn func(*storage.CheckpointManager) error) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	manager, err := store.NewCheckpointManager()
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return fn(manager)
}

// autoCheckpoint saves the database before operation. Failures are logged
// and do not stop the operation.
func (a *app) autoCheckpoint(ctx context.Context, operation string) {
	err := a.withCheckpoints(ctx, func(m *storage.CheckpointManager) error {
		info, err := m.AutoCheckpoint(ctx, operation)
		if err != nil {
			return err
		}
		slog.Debug("Saved automatic checkpoint", "id", info.ID)
		return nil
	})
	if err != nil {
		slog.Warn("Could not save automatic checkpoint", "operation", operation, "error", err)
	}
}

func createCheckpointCmd(a *app) *cobra.Command {
	var tag string
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Long:  `Save a copy of the current ledger database.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCheckpoints(cmd.Context(), func(m *storage.CheckpointManager) error {
				info, err := m.Create(cmd.Context(), tag, description)
				if err != nil {
					return fmt.Errorf("failed to create checkpoint: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s Created checkpoint %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					formatFileSize(info.FileSize))
				if info.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "checkpoint name (generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the checkpoint")
	return cmd
}

func listCheckpointsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCheckpoints(cmd.Context(), func(m *storage.CheckpointManager) error {
				checkpoints, err := m.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(checkpoints) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("No checkpoints found."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tCREATED\tSIZE\tSALARY\tEXPENSES\tTYPE")
				for _, cp := range checkpoints {
					typeLabel := "manual"
					if cp.IsAuto {
						typeLabel = "auto"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
						cp.ID,
						formatRelativeTime(cp.CreatedAt),
						formatFileSize(cp.FileSize),
						cp.Salary,
						cp.Expenses,
						typeLabel)
				}
				return w.Flush()
			})
		},
	}
}

func restoreCheckpointCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore the ledger from a checkpoint",
		Long:  `Replace the current ledger database with a checkpoint.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			out := cmd.OutOrStdout()

			return a.withCheckpoints(cmd.Context(), func(m *storage.CheckpointManager) error {
				info, err := m.Get(cmd.Context(), id)
				if err != nil {
					return err
				}

				if !force {
					fmt.Fprintln(out, cli.FormatWarning("This will replace your current ledger with checkpoint "+id+"."))
					fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
					fmt.Fprintf(out, "  Salary: %s, expenses: %d\n", info.Salary, info.Expenses)
					if !confirm(cmd.InOrStdin(), out) {
						fmt.Fprintln(out, cli.SubtleStyle.Render("Restore cancelled."))
						return nil
					}
				}

				if err := m.Restore(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to restore checkpoint: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess("Restored from checkpoint "+id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func deleteCheckpointCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			out := cmd.OutOrStdout()

			return a.withCheckpoints(cmd.Context(), func(m *storage.CheckpointManager) error {
				info, err := m.Get(cmd.Context(), id)
				if err != nil {
					return err
				}

				if !force {
					fmt.Fprintln(out, cli.FormatWarning("This will permanently delete checkpoint "+id+"."))
					fmt.Fprintf(out, "  Size: %s\n", formatFileSize(info.FileSize))
					if !confirm(cmd.InOrStdin(), out) {
						fmt.Fprintln(out, cli.SubtleStyle.Render("Deletion cancelled."))
						return nil
					}
				}

				if err := m.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete checkpoint: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess("Deleted checkpoint "+id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "\nContinue? (y/N) ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y")
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if minutes := int(duration.Minutes()); minutes > 1 {
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if hours := int(duration.Hours()); hours > 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	case duration < 7*24*time.Hour:
		if days := int(duration.Hours() / 24); days > 1 {
			return fmt.Sprintf("%d days ago", days)
		}
		return "yesterday"
	default:
		return t.Format("2006-01-02 15:04")
	}
}
