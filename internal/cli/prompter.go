package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/cashflow/internal/ofx"
	"github.com/schollz/progressbar/v3"
)

// ErrImportStopped is returned by Review when the user quits the import.
var ErrImportStopped = errors.New("import stopped by user")

// ImportStats summarizes an import session.
type ImportStats struct {
	Duration time.Duration
	Total    int
	Reviewed int
	Added    int
	Skipped  int
	Renamed  int
	Amount   float64
}

// ImportPrompter asks the user which statement debits become expenses. In
// non-interactive mode every candidate is accepted and only progress is shown.
type ImportPrompter struct {
	startTime   time.Time
	writer      io.Writer
	reader      *NonBlockingReader
	progressBar *progressbar.ProgressBar
	stats       ImportStats
	interactive bool
	acceptAll   bool
}

// NewImportPrompter creates a prompter reading answers from reader.
func NewImportPrompter(reader io.Reader, writer io.Writer, interactive bool) *ImportPrompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &ImportPrompter{
		reader:      NewNonBlockingReader(reader),
		writer:      writer,
		interactive: interactive,
		startTime:   time.Now(),
	}
}

// SetTotal sets the number of candidates and starts the progress bar.
func (p *ImportPrompter) SetTotal(total int) {
	p.stats.Total = total
	if p.interactive {
		return
	}
	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing expenses...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Review decides whether c becomes an expense, possibly under a new name.
func (p *ImportPrompter) Review(ctx context.Context, c ofx.Candidate) (ofx.Candidate, bool, error) {
	if err := ctx.Err(); err != nil {
		return c, false, err
	}
	p.stats.Reviewed++
	p.advance()

	if !p.interactive || p.acceptAll {
		return c, true, nil
	}

	if _, err := fmt.Fprintf(p.writer, "\n%s\n", formatCandidate(c)); err != nil {
		return c, false, fmt.Errorf("failed to write candidate: %w", err)
	}

	choice, err := p.promptChoice(ctx, "[y]es, [n]o, [r]ename, [a]ll, [q]uit", []string{"y", "n", "r", "a", "q"})
	if err != nil {
		return c, false, err
	}

	switch choice {
	case "y":
		return c, true, nil
	case "n":
		return c, false, nil
	case "a":
		p.acceptAll = true
		return c, true, nil
	case "q":
		return c, false, ErrImportStopped
	case "r":
		name, err := p.promptName(ctx)
		if err != nil {
			return c, false, err
		}
		c.Name = name
		p.stats.Renamed++
		return c, true, nil
	}

	return c, false, fmt.Errorf("unexpected choice: %s", choice)
}

// Record counts the outcome of one reviewed candidate.
func (p *ImportPrompter) Record(c ofx.Candidate, added bool) {
	if !added {
		p.stats.Skipped++
		return
	}
	p.stats.Added++
	p.stats.Amount += c.Amount
}

// Stats returns statistics about the import session.
func (p *ImportPrompter) Stats() ImportStats {
	stats := p.stats
	stats.Duration = time.Since(p.startTime)
	return stats
}

// ShowCompletion displays the import summary.
func (p *ImportPrompter) ShowCompletion(currency string) {
	if p.progressBar != nil {
		if err := p.progressBar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
	}

	stats := p.Stats()
	summary := fmt.Sprintf("  • Debits found: %d\n", stats.Total) +
		fmt.Sprintf("  • Added: %d (%s)\n", stats.Added, FormatAmount(stats.Amount, currency)) +
		fmt.Sprintf("  • Skipped: %d\n", stats.Skipped) +
		fmt.Sprintf("  • Renamed: %d\n", stats.Renamed) +
		fmt.Sprintf("  • Time taken: %s", stats.Duration.Round(time.Second))

	if _, err := fmt.Fprintln(p.writer, RenderBox(ImportIcon+" Import Complete", summary)); err != nil {
		slog.Warn("Failed to write completion box", "error", err)
	}
}

func (p *ImportPrompter) advance() {
	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

func formatCandidate(c ofx.Candidate) string {
	date := "unknown date"
	if !c.Posted.IsZero() {
		date = c.Posted.Format("Jan 2, 2006")
	}
	return BoldStyle.Render(c.Name) + "  " +
		SubtleStyle.Render(date) + "  " +
		fmt.Sprintf("%.2f", c.Amount)
}

func (p *ImportPrompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

func (p *ImportPrompter) promptName(ctx context.Context) (string, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt("Expense name")); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		name, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}
		if name != "" {
			return name, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Name cannot be empty.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}
