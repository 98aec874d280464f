package bulkfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Row is one parsed data row. Index is 1-based and counts data rows
// only (the header row is excluded), matching how users address rows
// in error reports. Rows are immutable once produced.
type Row struct {
	Index int
	Data  map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Table is the tabular form of a parsed upload: the header row plus
// all non-empty data rows. Structural oddities that did not prevent
// parsing (ragged rows, unreadable trailing sections) surface as
// warnings, not failures.
type Table struct {
	Headers  []string
	Rows     []*Row
	Warnings []RowWarning
}

// HasHeader checks whether a column is present
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// MissingHeaders returns the required headers absent from the table
func (t *Table) MissingHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !t.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// ApplyColumnMapping renames source columns to canonical field names.
// Unmapped columns keep their original names.
func (t *Table) ApplyColumnMapping(mapping map[string]string) {
	if len(mapping) == 0 {
		return
	}
	for i, h := range t.Headers {
		if canonical, ok := mapping[h]; ok {
			t.Headers[i] = canonical
		}
	}
	for _, row := range t.Rows {
		for source, canonical := range mapping {
			if source == canonical {
				continue
			}
			if val, ok := row.Data[source]; ok {
				row.Data[canonical] = val
				delete(row.Data, source)
			}
		}
	}
}

// Parse turns validated file bytes into a Table using the format and
// encoding reported by Validate. Completely empty rows are skipped
// but still consume their source row index, so reported row numbers
// always match the file.
func Parse(data []byte, info FileInfo) (*Table, error) {
	switch info.Type {
	case FileTypeCSV:
		return parseCSV(Decode(data, info.Encoding))
	case FileTypeXLSX:
		return parseXLSX(data)
	case FileTypeXLS:
		return parseXLS(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, info.Type)
	}
}

func parseCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // ragged rows surface as warnings, not failures

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}
	if len(headers) == 0 {
		return nil, ErrMissingHeader
	}

	table := &Table{Headers: headers}
	dataRow := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		dataRow++
		if err != nil {
			// An unterminated quote poisons the stream; report what we
			// could not read and keep the rows parsed so far.
			table.Warnings = append(table.Warnings, RowWarning{
				Row:     dataRow,
				Message: fmt.Sprintf("unparseable content: %v", err),
			})
			break
		}
		appendRecord(table, dataRow, record)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return table, nil
}

func parseXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheets[0], err)
	}
	return tableFromGrid(rows)
}

func parseXLS(data []byte) (*Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}

	grid := wb.ReadAllCells(1 << 20)
	return tableFromGrid(grid)
}

// tableFromGrid builds a Table from a cell grid whose first row is the header
func tableFromGrid(grid [][]string) (*Table, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, ErrMissingHeader
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{Headers: headers}
	for i, record := range grid[1:] {
		appendRecord(table, i+1, record)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return table, nil
}

// appendRecord maps a raw record onto the table headers, skipping
// rows with no values. Short records pad with empty strings; extra
// cells beyond the header width are noted as a warning.
func appendRecord(table *Table, index int, record []string) {
	row := &Row{
		Index: index,
		Data:  make(map[string]string, len(table.Headers)),
	}
	for i, h := range table.Headers {
		if i < len(record) {
			row.Data[h] = strings.TrimSpace(record[i])
		} else {
			row.Data[h] = ""
		}
	}
	if row.IsEmpty() {
		return
	}
	if len(record) > len(table.Headers) {
		table.Warnings = append(table.Warnings, RowWarning{
			Row:     row.Index,
			Message: fmt.Sprintf("row has %d fields, header has %d", len(record), len(table.Headers)),
		})
	}
	table.Rows = append(table.Rows, row)
}
