package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() *Dataset {
	return &Dataset{
		Title: "Schedule",
		Columns: []Column{
			{Title: "Date", Kind: KindDate, Width: 12},
			{Title: "Employee", Width: 24},
			{Title: "Hours", Kind: KindNumber, Width: 8},
		},
		Rows: [][]interface{}{
			{time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "O'Brien, Patrick", 8.0},
			{time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), "Alice Chen", 6.5},
		},
		Summary: []SummaryItem{{Label: "Total hours", Value: "14.50"}},
	}
}

func TestRenderCSV(t *testing.T) {
	data, err := renderCSV(sampleDataset())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Date", "Employee", "Hours"}, records[0])
	assert.Equal(t, []string{"2026-03-02", "O'Brien, Patrick", "8.00"}, records[1])
	assert.Equal(t, []string{"2026-03-03", "Alice Chen", "6.50"}, records[2])

	// The comma-bearing name must have been quoted on the wire.
	assert.Contains(t, string(data), `"O'Brien, Patrick"`)
}

func TestRenderCSV_Empty(t *testing.T) {
	data, err := renderCSV(&Dataset{Columns: []Column{{Title: "Name"}, {Title: "Email"}}})
	require.NoError(t, err)

	// No header for an empty result set, just the placeholder line.
	assert.Equal(t, "No data available\n", string(data))
}

func TestRenderExcel(t *testing.T) {
	data, err := renderExcel(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Employee", "Hours"}, rows[0])
	assert.Equal(t, "O'Brien, Patrick", rows[1][1])

	// Hours must be a real numeric cell, not text.
	hours, err := f.GetCellValue("Schedule", "C2")
	require.NoError(t, err)
	assert.Equal(t, "8.00", hours)
	cellType, err := f.GetCellType("Schedule", "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
}

func TestRenderExcel_ColumnWidthsFollowContent(t *testing.T) {
	d := &Dataset{
		Title: "Widths",
		Columns: []Column{
			{Title: "ID"},
			{Title: "Name"},
			{Title: "Notes"},
		},
		Rows: [][]interface{}{
			{"1", "O'Brien, Patrick", strings.Repeat("long note ", 20)},
		},
	}

	data, err := renderExcel(d)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	id, err := f.GetColWidth("Widths", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(minColWidth), id)

	name, err := f.GetColWidth("Widths", "B")
	require.NoError(t, err)
	assert.Equal(t, float64(len("O'Brien, Patrick")+2), name)

	notes, err := f.GetColWidth("Widths", "C")
	require.NoError(t, err)
	assert.Equal(t, float64(maxColWidth), notes)
}

func TestRenderPDF(t *testing.T) {
	data, err := renderPDF(sampleDataset())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderPDF_Empty(t *testing.T) {
	data, err := renderPDF(&Dataset{Title: "Employees", Columns: []Column{{Title: "Name"}}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderPDF_ManyRowsPaginates(t *testing.T) {
	d := sampleDataset()
	for i := 0; i < 200; i++ {
		d.Rows = append(d.Rows, []interface{}{time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "Filler Row", 4.0})
	}
	data, err := renderPDF(d)
	require.NoError(t, err)
	// More than one page object shows pagination happened. A single
	// page document contains "/Type /Page" twice (once via /Pages).
	assert.Greater(t, bytes.Count(data, []byte("/Type /Page")), 2)
}

func TestRenderCalendar(t *testing.T) {
	records := []workforce.AssignmentDetail{
		testAssignment("Alice Chen", "alice@example.com", "Morning", "09:00", "17:00"),
		testAssignment("Bob Diaz", "bob@example.com", "", "15:00", "23:00"),
	}
	records[0].Notes = "bring keys"

	data, err := renderCalendar(records, "Test Rota")
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "BEGIN:VCALENDAR")
	assert.Equal(t, 2, strings.Count(content, "BEGIN:VEVENT"))
	assert.Contains(t, content, "SUMMARY:Morning - Alice Chen")
	assert.Contains(t, content, "SUMMARY:Shift - Bob Diaz")
	assert.Contains(t, content, "X-WR-CALNAME:Test Rota")
	assert.Contains(t, content, "PRODID:"+icalProdID)
	assert.Contains(t, content, "LOCATION:Front")
	assert.Contains(t, content, "@rosterly")

	// Shift times are floating local times, never converted to UTC.
	unfolded := strings.ReplaceAll(content, "\r\n ", "")
	assert.Contains(t, unfolded, "DTSTART:20260302T090000")
	assert.Contains(t, unfolded, "DTEND:20260302T170000")
	assert.NotContains(t, unfolded, "DTSTART:20260302T090000Z")
	assert.NotContains(t, unfolded, "DTEND:20260302T170000Z")

	assert.Contains(t, unfolded,
		`DESCRIPTION:Employee: Alice Chen\nRole: server\nDepartment: Front\nStatus: scheduled\nNotes: bring keys`)
}

func TestRenderCalendar_BadClock(t *testing.T) {
	records := []workforce.AssignmentDetail{
		testAssignment("Alice Chen", "alice@example.com", "Morning", "9am", "17:00"),
	}
	_, err := renderCalendar(records, "Test Rota")
	assert.Error(t, err)
}
