package bulkfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCSVString(t *testing.T, content string) (*Table, error) {
	t.Helper()
	data := []byte(content)
	info, err := Validate(data, "data.csv")
	require.NoError(t, err)
	return Parse(data, info)
}

func TestParse_CSV(t *testing.T) {
	t.Run("basic rows", func(t *testing.T) {
		table, err := parseCSVString(t, "name,email,role\nAlice,alice@example.com,manager\nBob,bob@example.com,server\n")
		require.NoError(t, err)

		assert.Equal(t, []string{"name", "email", "role"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, 1, table.Rows[0].Index)
		assert.Equal(t, 2, table.Rows[1].Index)
		assert.Equal(t, "alice@example.com", table.Rows[0].Get("email"))
		assert.Equal(t, "server", table.Rows[1].Get("role"))
	})

	t.Run("quoted field with comma", func(t *testing.T) {
		table, err := parseCSVString(t, "name,notes\n\"O'Brien, Patrick\",\"line one\nline two\"\n")
		require.NoError(t, err)

		require.Len(t, table.Rows, 1)
		assert.Equal(t, "O'Brien, Patrick", table.Rows[0].Get("name"))
		assert.Equal(t, "line one\nline two", table.Rows[0].Get("notes"))
	})

	t.Run("empty rows keep source indices", func(t *testing.T) {
		table, err := parseCSVString(t, "name,email\nAlice,a@b.co\n,\nCara,c@b.co\n")
		require.NoError(t, err)

		require.Len(t, table.Rows, 2)
		assert.Equal(t, 1, table.Rows[0].Index)
		assert.Equal(t, 3, table.Rows[1].Index)
		assert.Equal(t, "Cara", table.Rows[1].Get("name"))
	})

	t.Run("short row padded with empties", func(t *testing.T) {
		table, err := parseCSVString(t, "name,email,role\nAlice\n")
		require.NoError(t, err)

		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Alice", table.Rows[0].Get("name"))
		assert.Equal(t, "", table.Rows[0].Get("email"))
		assert.Equal(t, "", table.Rows[0].Get("role"))
	})

	t.Run("extra cells produce a warning", func(t *testing.T) {
		table, err := parseCSVString(t, "name,email\nAlice,a@b.co,surplus\n")
		require.NoError(t, err)

		require.Len(t, table.Rows, 1)
		require.Len(t, table.Warnings, 1)
		assert.Equal(t, 1, table.Warnings[0].Row)
		assert.Contains(t, table.Warnings[0].Message, "fields")
	})

	t.Run("values are trimmed", func(t *testing.T) {
		table, err := parseCSVString(t, "name , email\n Alice ,  a@b.co \n")
		require.NoError(t, err)

		assert.Equal(t, []string{"name", "email"}, table.Headers)
		assert.Equal(t, "Alice", table.Rows[0].Get("name"))
		assert.Equal(t, "a@b.co", table.Rows[0].Get("email"))
	})

	t.Run("utf-8 bom stripped from first header", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,email\nAlice,a@b.co\n")...)
		info, err := Validate(data, "data.csv")
		require.NoError(t, err)

		table, err := Parse(data, info)
		require.NoError(t, err)
		assert.Equal(t, "name", table.Headers[0])
	})

	t.Run("header only is no data", func(t *testing.T) {
		_, err := parseCSVString(t, "name,email\n")
		assert.ErrorIs(t, err, ErrNoDataRows)
	})
}

func TestParse_XLSX(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		{"name", "email", "hourly_rate"},
		{"Alice", "alice@example.com", 15.50},
		{"Bob", "bob@example.com", 12},
	})
	info, err := Validate(data, "staff.xlsx")
	require.NoError(t, err)

	table, err := Parse(data, info)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email", "hourly_rate"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Rows[0].Index)
	assert.Equal(t, "alice@example.com", table.Rows[0].Get("email"))
	assert.Equal(t, "15.5", table.Rows[0].Get("hourly_rate"))
	assert.Equal(t, "12", table.Rows[1].Get("hourly_rate"))
}

func TestTable_ApplyColumnMapping(t *testing.T) {
	table, err := parseCSVString(t, "Full Name,E-Mail\nAlice,a@b.co\n")
	require.NoError(t, err)

	table.ApplyColumnMapping(map[string]string{
		"Full Name": "name",
		"E-Mail":    "email",
	})

	assert.Equal(t, []string{"name", "email"}, table.Headers)
	assert.Equal(t, "Alice", table.Rows[0].Get("name"))
	assert.Equal(t, "a@b.co", table.Rows[0].Get("email"))
	assert.Equal(t, "", table.Rows[0].Get("Full Name"))
}

func TestTable_MissingHeaders(t *testing.T) {
	table := &Table{Headers: []string{"name", "email"}}

	assert.Empty(t, table.MissingHeaders([]string{"name", "email"}))
	assert.Equal(t, []string{"role"}, table.MissingHeaders([]string{"name", "role"}))
}

func TestRow_Accessors(t *testing.T) {
	row := &Row{Index: 1, Data: map[string]string{"name": "Alice", "notes": ""}}

	assert.Equal(t, "Alice", row.Get("name"))
	assert.Equal(t, "", row.Get("missing"))
	assert.False(t, row.IsEmpty())
	assert.True(t, (&Row{Index: 2, Data: map[string]string{"name": ""}}).IsEmpty())
}
