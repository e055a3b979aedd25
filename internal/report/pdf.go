package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

type pdfColumn struct {
	title string
	width float64
	align string
}

var pdfColumns = []pdfColumn{
	{"Item", 62, "L"},
	{"Category", 36, "L"},
	{"Room", 32, "L"},
	{"Value", 26, "R"},
	{"Serial", 36, "L"},
	{"Purchased", 24, "L"},
	{"Score", 16, "R"},
	{"Missing", 45, "L"},
}

const pdfRowHeight = 6

// WritePDF renders a landscape A4 table. Text is translated to the
// cp1252 encoding the core fonts support.
func (r *Report) WritePDF(w io.Writer) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetTitle("Home Inventory Report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, pdfRowHeight+1, col.title, "1", 0, col.align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, "Home Inventory Report", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, "Generated "+r.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for _, row := range r.Rows {
		value := formatValue(row.Value)
		if value != "" && row.CurrencyCode != "" {
			value = row.CurrencyCode + " " + value
		}
		cells := []string{
			row.Name,
			row.Category,
			row.Room,
			value,
			row.SerialNumber,
			formatDate(row.PurchaseDate),
			formatPercent(row.Score.Score),
			formatMissing(row.Score.Missing),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, pdfRowHeight, fit(pdf, tr(cells[i]), col.width), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, fmt.Sprintf("Items: %d", r.Totals.Items), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Total value: "+r.Totals.TotalValue.StringFixed(2), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Average documentation score: "+formatPercent(r.Totals.AverageScore), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Fully documented: %d", r.Totals.FullyDocumented), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// fit truncates s with an ellipsis so it stays inside a cell of width w.
// s is already cp1252, one byte per glyph.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	const padding = 2
	if pdf.GetStringWidth(s) <= w-padding {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w-padding {
		s = s[:len(s)-1]
	}
	return s + "..."
}
