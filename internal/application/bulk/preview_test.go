package bulk

import (
	"context"
	"testing"

	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPreviewGenerator(env *testEnv, sampleSize int) *PreviewGenerator {
	return NewPreviewGenerator(env.employees, env.schedules, 0, sampleSize)
}

func TestPreview_ReportsWithoutWriting(t *testing.T) {
	env := newTestEnv(t)
	gen := newPreviewGenerator(env, 0)

	data := csvBytes(
		employeeHeader,
		"Alice Chen,alice@example.com,manager,Kitchen,30,40,",
		"Bob Diaz,not-an-email,chef,Kitchen,25,40,",
	)

	preview, err := gen.Generate(context.Background(), employeeRequest(data))
	require.NoError(t, err)

	assert.Equal(t, "employees", preview.EntityType)
	assert.Equal(t, 2, preview.TotalRows)
	assert.Equal(t, 1, preview.ValidRows)
	assert.Equal(t, 1, preview.InvalidRows)
	require.Len(t, preview.Errors, 1)
	assert.Equal(t, 2, preview.Errors[0].Row)

	require.Len(t, preview.Sample, 2)
	assert.True(t, preview.Sample[0].Valid)
	assert.False(t, preview.Sample[1].Valid)
	assert.Equal(t, "Alice Chen", preview.Sample[0].Values["name"])

	// Previewing never persists anything.
	count, err := env.employees.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestPreview_ColumnDiagnostics(t *testing.T) {
	env := newTestEnv(t)
	gen := newPreviewGenerator(env, 0)

	data := csvBytes(
		"name,email,role,favorite_color",
		"Alice Chen,alice@example.com,manager,blue",
	)

	preview, err := gen.Generate(context.Background(), employeeRequest(data))
	require.NoError(t, err)

	assert.Contains(t, preview.Columns.Missing, "department")
	assert.Contains(t, preview.Columns.Missing, "hourly_rate")
	assert.Equal(t, []string{"favorite_color"}, preview.Columns.Extra)
	assert.NotContains(t, preview.Columns.Missing, "name")
}

func TestPreview_ColumnDiagnosticsIgnoreMapping(t *testing.T) {
	env := newTestEnv(t)
	gen := newPreviewGenerator(env, 0)

	data := csvBytes(
		"full_name,email,role",
		"Alice Chen,alice@example.com,manager",
	)
	req := employeeRequest(data)
	req.ColumnMapping = map[string]string{"full_name": "name"}

	preview, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)

	// The mapping feeds validation but the diagnostics describe the
	// file's own header row.
	assert.Equal(t, []string{"full_name", "email", "role"}, preview.Columns.Found)
	assert.Contains(t, preview.Columns.Missing, "name")
	assert.Contains(t, preview.Columns.Extra, "full_name")
	assert.Equal(t, 1, preview.ValidRows)
}

func TestPreview_SampleBounded(t *testing.T) {
	env := newTestEnv(t)
	gen := newPreviewGenerator(env, 2)

	data := csvBytes(
		employeeHeader,
		"A One,a1@example.com,server,,,,",
		"A Two,a2@example.com,server,,,,",
		"A Three,a3@example.com,server,,,,",
		"A Four,a4@example.com,server,,,,",
	)

	preview, err := gen.Generate(context.Background(), employeeRequest(data))
	require.NoError(t, err)
	assert.Equal(t, 4, preview.TotalRows)
	require.Len(t, preview.Sample, 2)
	assert.Equal(t, 1, preview.Sample[0].Index)
	assert.Equal(t, 2, preview.Sample[1].Index)
}

func TestPreview_SurfacesDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "Alice Chen", "alice@example.com", workforce.RoleManager)
	gen := newPreviewGenerator(env, 0)

	data := csvBytes(
		employeeHeader,
		"Alice Chen,alice@example.com,manager,,,,",
	)

	preview, err := gen.Generate(context.Background(), employeeRequest(data))
	require.NoError(t, err)
	require.NotNil(t, preview.Duplicates)
	require.Len(t, preview.Duplicates.Database, 1)
	assert.Equal(t, 1, preview.Duplicates.Database[0].Row)
}
