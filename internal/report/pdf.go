package report

import (
	"fmt"
	"io"

	"github.com/Veraticus/cashflow/internal/model"
	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 10.0
	pdfPageBottom = 280.0
	pdfLineHeight = 8.0
)

// PDFRenderer lays the report out on A4 pages.
type PDFRenderer struct {
	font string
}

// NewPDFRenderer creates a renderer using the Helvetica core font.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{font: "Helvetica"}
}

// Extension implements service.ReportRenderer.
func (p *PDFRenderer) Extension() string { return "pdf" }

// Render implements service.ReportRenderer.
func (p *PDFRenderer) Render(w io.Writer, r model.Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	if !r.GeneratedAt.IsZero() {
		pdf.SetCreationDate(r.GeneratedAt)
	}
	// Core fonts are cp1252; translate so names like "Café" survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	y := pdfMargin

	pdf.SetFont(p.font, "B", 16)
	pdf.Text(pdfMargin, y, Title)
	y += 10

	pdf.SetFont(p.font, "", 12)
	body := lines(r)
	for i, line := range body {
		if y > pdfPageBottom {
			pdf.AddPage()
			y = pdfMargin
		}
		pdf.Text(pdfMargin, y, tr(line))

		switch {
		case i == 0:
			y += 10
		case i == len(body)-3:
			// Gap between the last expense line and the totals.
			y += pdfLineHeight + 5
		default:
			y += pdfLineHeight
		}
	}

	if pdf.Err() {
		return fmt.Errorf("failed to lay out PDF: %w", pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
