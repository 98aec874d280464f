package export

import (
	"bytes"
	"encoding/csv"
)

// renderCSV writes the dataset as RFC 4180 CSV. An empty dataset
// produces a single placeholder line with no header, so spreadsheet
// tools never open a zero-byte download.
func renderCSV(dataset *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if dataset.IsEmpty() {
		if err := w.Write([]string{"No data available"}); err != nil {
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	header := make([]string, len(dataset.Columns))
	for i, col := range dataset.Columns {
		header[i] = col.Title
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	record := make([]string, len(dataset.Columns))
	for _, row := range dataset.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellText(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
