package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/cashflow/internal/model"
)

// TextRenderer writes the report as plain text.
type TextRenderer struct{}

// Extension implements service.ReportRenderer.
func (TextRenderer) Extension() string { return "txt" }

// Render implements service.ReportRenderer.
func (TextRenderer) Render(w io.Writer, r model.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, Title)
	fmt.Fprintln(bw, strings.Repeat("=", len(Title)))
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(bw, "Generated: %s (%s)\n", r.GeneratedAt.Format("2006-01-02 15:04"), r.Currency)
	}
	fmt.Fprintln(bw)

	for _, line := range lines(r) {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
