package render

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

// PDF writes an A4 report with the summary followed by every detail property.
func PDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Battery Runtime Estimate", true)
	// Core fonts are cp1252, this converts "°" and friends.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Battery Runtime Estimate")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(5)
	if r.ID != "" {
		pdf.Cell(0, 5, fmt.Sprintf("Estimate: %s", r.ID))
		pdf.Ln(5)
	}
	if r.CurveChecksum != "" {
		pdf.Cell(0, 5, fmt.Sprintf("Reference curves: %s", r.CurveChecksum))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, r.Headline())
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range r.Lines() {
		pdf.Cell(0, 6, tr(fmt.Sprintf("- %s: %s", l.Label, l.Value)))
		pdf.Ln(6)
	}
	if note := r.LimitNote(); note != "" {
		pdf.Ln(2)
		pdf.SetTextColor(200, 90, 0)
		pdf.MultiCell(0, 6, tr(note), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Details")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	for _, p := range r.Details {
		pdf.CellFormat(110, 6, tr(p.Label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(formatValue(p.Value)), "B", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, Caveat, "", "L", false)

	return pdf.Output(w)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
