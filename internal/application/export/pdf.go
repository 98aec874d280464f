package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfRowHeight    = 7.0
	pdfHeaderHeight = 8.0
	// minRowsPerPage keeps a table section from leaving a lone row or
	// two stranded at the bottom of a page.
	minRowsPerPage = 3
)

// renderPDF writes the dataset as a landscape A4 table report: title,
// summary block, repeated column headers on every page and page-number
// footers.
func renderPDF(dataset *Dataset) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(dataset.Title, false)
	pdf.AliasNbPages("")
	pdf.SetAutoPageBreak(false, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, dataset.Title, "", 1, "L", false, 0, "")

	if len(dataset.Summary) > 0 {
		pdf.SetFont("Helvetica", "", 9)
		for _, item := range dataset.Summary {
			pdf.CellFormat(0, 5, fmt.Sprintf("%s: %s", item.Label, item.Value), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(3)

	widths := columnWidths(pdf, dataset.Columns)

	if dataset.IsEmpty() {
		drawTableHeader(pdf, dataset.Columns, widths)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, pdfRowHeight, "No data available", "", 1, "L", false, 0, "")
		return pdfBytes(pdf)
	}

	drawTableHeader(pdf, dataset.Columns, widths)
	pdf.SetFont("Helvetica", "", 8)

	_, pageHeight := pdf.GetPageSize()
	bottom := pageHeight - 18

	for i, row := range dataset.Rows {
		if needsPageBreak(pdf, bottom, len(dataset.Rows)-i) {
			pdf.AddPage()
			drawTableHeader(pdf, dataset.Columns, widths)
			pdf.SetFont("Helvetica", "", 8)
		}
		for colIdx, col := range dataset.Columns {
			text := ""
			if colIdx < len(row) {
				text = cellText(row[colIdx])
			}
			align := "L"
			if col.Kind == KindNumber {
				align = "R"
			}
			pdf.CellFormat(widths[colIdx], pdfRowHeight, clipText(pdf, text, widths[colIdx]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdfBytes(pdf)
}

// needsPageBreak decides whether the next row should start a new page.
// It breaks early when the rows left on this page would fall below the
// orphan minimum while more rows remain.
func needsPageBreak(pdf *fpdf.Fpdf, bottom float64, remaining int) bool {
	if pdf.GetY()+pdfRowHeight > bottom {
		return true
	}
	rowsLeft := int((bottom - pdf.GetY()) / pdfRowHeight)
	return rowsLeft < minRowsPerPage && remaining > rowsLeft
}

func drawTableHeader(pdf *fpdf.Fpdf, columns []Column, widths []float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(224, 224, 224)
	for i, col := range columns {
		pdf.CellFormat(widths[i], pdfHeaderHeight, col.Title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

// columnWidths scales the column width hints to fill the printable
// page width
func columnWidths(pdf *fpdf.Fpdf, columns []Column) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	total := 0.0
	hints := make([]float64, len(columns))
	for i, col := range columns {
		hints[i] = col.Width
		if hints[i] <= 0 {
			hints[i] = 12
		}
		total += hints[i]
	}

	widths := make([]float64, len(columns))
	for i := range hints {
		widths[i] = usable * hints[i] / total
	}
	return widths
}

// clipText trims cell text that cannot fit its column, appending an
// ellipsis so truncation is visible
func clipText(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width-2 {
		return text
	}
	runes := []rune(text)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		if pdf.GetStringWidth(string(runes)+"...") <= width-2 {
			break
		}
	}
	return string(runes) + "..."
}

func pdfBytes(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
