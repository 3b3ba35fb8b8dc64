// Package report renders the cash flow report in several document formats.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/service"
)

// Title heads every rendered report.
const Title = "Cash Flow Report"

// Formats lists the supported format names.
var Formats = []string{"pdf", "text", "json"}

// New returns the renderer for format.
func New(format string) (service.ReportRenderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "pdf":
		return NewPDFRenderer(), nil
	case "text", "txt":
		return TextRenderer{}, nil
	case "json":
		return JSONRenderer{}, nil
	default:
		return nil, common.InvalidInput("unknown report format %q (want one of %s)",
			format, strings.Join(Formats, ", "))
	}
}

// lines is the textual body shared by the text and PDF renderers.
func lines(r model.Report) []string {
	out := []string{
		fmt.Sprintf("Total Salary: %s", formatAmount(r.Salary)),
		"Expenses:",
	}
	if len(r.Expenses) == 0 {
		out = append(out, "No expenses added.")
	}
	for i, e := range r.Expenses {
		out = append(out, fmt.Sprintf("%d. %s - %s", i+1, e.Name, formatAmount(e.Amount)))
	}
	return append(out,
		fmt.Sprintf("Total Expenses: %s", formatAmount(r.TotalExpenses)),
		fmt.Sprintf("Remaining Balance: %s", formatAmount(r.Balance)),
	)
}

// formatAmount prints the shortest representation of v, e.g. 2000 or 12.5.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
