package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/cashflow/internal/model"
)

// JSONRenderer writes the report as indented JSON.
type JSONRenderer struct{}

// Extension implements service.ReportRenderer.
func (JSONRenderer) Extension() string { return "json" }

// Render implements service.ReportRenderer.
func (JSONRenderer) Render(w io.Writer, r model.Report) error {
	if r.Expenses == nil {
		r.Expenses = []model.Expense{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
