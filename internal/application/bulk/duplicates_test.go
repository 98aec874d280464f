package bulk

import (
	"context"
	"testing"
	"time"

	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeRow(index int, email string) *bulkfile.Row {
	return &bulkfile.Row{Index: index, Data: map[string]string{
		colName:  "Somebody",
		colEmail: email,
		colRole:  "server",
	}}
}

func shiftRow(index int, email, date, start, end string) *bulkfile.Row {
	return &bulkfile.Row{Index: index, Data: map[string]string{
		colDate:          date,
		colEmployeeEmail: email,
		colStartTime:     start,
		colEndTime:       end,
	}}
}

func TestDetectEmployees_InFile(t *testing.T) {
	env := newTestEnv(t)
	detector := NewDuplicateDetector(env.employees, env.schedules)

	rows := []*bulkfile.Row{
		employeeRow(1, "alice@example.com"),
		employeeRow(2, "bob@example.com"),
		employeeRow(3, "Alice@Example.com"),
	}

	report, err := detector.DetectEmployees(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, report.Internal, 1)
	assert.Equal(t, "email", report.Internal[0].Field)
	assert.Equal(t, "alice@example.com", report.Internal[0].Value)
	assert.Equal(t, []int{1, 3}, report.Internal[0].Rows)
	assert.Empty(t, report.Database)
	assert.True(t, report.HasConflicts())
}

func TestDetectEmployees_AgainstStore(t *testing.T) {
	env := newTestEnv(t)
	existing := env.seedEmployee(t, "Alice Chen", "alice@example.com", workforce.RoleServer)
	detector := NewDuplicateDetector(env.employees, env.schedules)

	rows := []*bulkfile.Row{
		employeeRow(1, "alice@example.com"),
		employeeRow(2, "new@example.com"),
	}

	report, err := detector.DetectEmployees(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, report.Database, 1)
	assert.Equal(t, 1, report.Database[0].Row)
	assert.Equal(t, existing.ID, report.Database[0].ExistingID)
	assert.Nil(t, report.DatabaseDuplicateFor(2))
	assert.NotNil(t, report.DatabaseDuplicateFor(1))
}

func TestDetectSchedules_IdenticalAndOverlapping(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee(t, "Alice Chen", "alice@example.com", workforce.RoleServer)
	detector := NewDuplicateDetector(env.employees, env.schedules)

	rows := []*bulkfile.Row{
		shiftRow(1, "alice@example.com", "2026-03-02", "09:00", "17:00"),
		shiftRow(2, "alice@example.com", "2026-03-02", "09:00", "17:00"),
		shiftRow(3, "alice@example.com", "2026-03-02", "15:00", "23:00"),
		shiftRow(4, "alice@example.com", "2026-03-03", "09:00", "17:00"),
	}

	report, err := detector.DetectSchedules(context.Background(), rows)
	require.NoError(t, err)

	// Rows 1 and 2 are the same shift, not an overlap.
	require.Len(t, report.Internal, 1)
	assert.Equal(t, []int{1, 2}, report.Internal[0].Rows)

	// Row 3 intersects both copies; row 4 is a different day.
	require.NotEmpty(t, report.Overlaps)
	for _, o := range report.Overlaps {
		assert.Equal(t, 3, o.Row)
		assert.Equal(t, "15:00-23:00", o.IncomingRange)
	}
	assert.Empty(t, report.OverlapsFor(4))
}

func TestDetectSchedules_AgainstStore(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedEmployee(t, "Alice Chen", "alice@example.com", workforce.RoleServer)
	env.seedShift(t, alice, mustDate(t, "2026-03-02"), "09:00", "17:00")
	env.seedShift(t, alice, mustDate(t, "2026-03-03"), "09:00", "17:00")
	detector := NewDuplicateDetector(env.employees, env.schedules)

	// One row per day, so every conflict here comes from the store.
	rows := []*bulkfile.Row{
		shiftRow(1, "alice@example.com", "2026-03-02", "09:00", "17:00"),
		shiftRow(2, "alice@example.com", "2026-03-03", "16:00", "22:00"),
		shiftRow(3, "alice@example.com", "2026-03-04", "18:00", "22:00"),
	}

	report, err := detector.DetectSchedules(context.Background(), rows)
	require.NoError(t, err)

	require.Len(t, report.Database, 1)
	assert.Equal(t, 1, report.Database[0].Row)

	require.Len(t, report.OverlapsFor(2), 1)
	assert.Equal(t, "09:00-17:00", report.OverlapsFor(2)[0].ExistingRange)
	assert.Empty(t, report.OverlapsFor(3))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := bulkfile.ParseDate(s)
	require.NoError(t, err)
	return date
}
