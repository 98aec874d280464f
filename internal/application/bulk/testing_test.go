package bulk

import (
	"context"
	"strings"
	"testing"

	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the import pipeline against an in-memory store
type testEnv struct {
	db          *gorm.DB
	employees   workforce.EmployeeRepository
	schedules   workforce.ScheduleRepository
	history     workforce.ImportRunRepository
	coordinator *ImportCoordinator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	env := &testEnv{
		db:        db,
		employees: persistence.NewGormEmployeeRepository(db),
		schedules: persistence.NewGormScheduleRepository(db),
		history:   persistence.NewGormImportRunRepository(db),
	}
	env.coordinator = NewImportCoordinator(
		env.employees, env.schedules, env.history,
		persistence.NewGormTransactionManager(db),
		zap.NewNop(), 0,
	)
	return env
}

// withHistory swaps the history repository, rebuilding the coordinator
func (env *testEnv) withHistory(t *testing.T, history workforce.ImportRunRepository) {
	t.Helper()
	env.history = history
	env.coordinator = NewImportCoordinator(
		env.employees, env.schedules, env.history,
		persistence.NewGormTransactionManager(env.db),
		zap.NewNop(), 0,
	)
}

func (env *testEnv) seedEmployee(t *testing.T, name, email string, role workforce.EmployeeRole) *workforce.Employee {
	t.Helper()
	employee, err := workforce.NewEmployee(name, email, role)
	require.NoError(t, err)
	require.NoError(t, env.employees.Save(context.Background(), employee))
	return employee
}

func csvBytes(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

func employeeRequest(data []byte) ImportRequest {
	return ImportRequest{
		EntityType: "employees",
		FileName:   "staff.csv",
		Data:       data,
		CreatedBy:  "tester",
	}
}

func scheduleRequest(data []byte) ImportRequest {
	return ImportRequest{
		EntityType: "schedules",
		FileName:   "shifts.csv",
		Data:       data,
		CreatedBy:  "tester",
	}
}
