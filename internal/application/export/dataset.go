package export

import (
	"strconv"
	"time"
)

// CellKind tells renderers how to emit a column's values. CSV treats
// everything as text; Excel and PDF use it for native cell types and
// alignment.
type CellKind int

const (
	KindText CellKind = iota
	KindNumber
	KindDate
)

// Column describes one output column
type Column struct {
	Title string
	Kind  CellKind
	// Width is a rendering hint in characters; zero means auto
	Width float64
}

// SummaryItem is one label/value pair in a dataset's summary block
type SummaryItem struct {
	Label string
	Value string
}

// Dataset is the renderer-neutral tabular form every export format
// consumes. Cell values are string, float64 or time.Time, matching the
// column's kind; renderers fall back to text formatting on mismatch.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    [][]interface{}
	Summary []SummaryItem
}

// IsEmpty returns true when there are no data rows
func (d *Dataset) IsEmpty() bool {
	return len(d.Rows) == 0
}

// cellText renders any cell value as display text
func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return formatFloat(val)
	case int:
		return formatInt(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}
