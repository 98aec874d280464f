package export

import (
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	minColWidth = 8
	maxColWidth = 40
)

// renderExcel writes the dataset as an xlsx workbook with a styled
// header row. Number and date cells are written natively so the values
// sort and sum correctly in spreadsheet tools.
func renderExcel(dataset *Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := dataset.Title
	if sheetName == "" {
		sheetName = "Export"
	}
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	numberStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2})
	dateStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 14})

	for i, col := range dataset.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col.Title)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range dataset.Rows {
		for colIdx, col := range dataset.Columns {
			if colIdx >= len(row) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			switch col.Kind {
			case KindNumber:
				if num, ok := row[colIdx].(float64); ok {
					f.SetCellValue(sheetName, cell, num)
					f.SetCellStyle(sheetName, cell, cell, numberStyle)
					continue
				}
			case KindDate:
				if ts, ok := row[colIdx].(time.Time); ok {
					f.SetCellValue(sheetName, cell, ts)
					f.SetCellStyle(sheetName, cell, cell, dateStyle)
					continue
				}
			}
			f.SetCellValue(sheetName, cell, cellText(row[colIdx]))
		}
	}

	for i, width := range contentWidths(dataset) {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, name, name, width)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// contentWidths sizes every column to its longest cell, header
// included, clamped to the min/max bounds.
func contentWidths(dataset *Dataset) []float64 {
	widths := make([]float64, len(dataset.Columns))
	for i, col := range dataset.Columns {
		widths[i] = float64(utf8.RuneCountInString(col.Title))
	}
	for _, row := range dataset.Rows {
		for i := range dataset.Columns {
			if i >= len(row) {
				continue
			}
			if n := float64(utf8.RuneCountInString(cellText(row[i]))); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		// Padding so the widest value is not flush with the border.
		widths[i] += 2
		if widths[i] < minColWidth {
			widths[i] = minColWidth
		}
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	return widths
}
