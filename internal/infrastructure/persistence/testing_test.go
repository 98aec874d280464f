package persistence

import (
	"testing"

	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func newTestEmployee(t *testing.T, name, email string, role workforce.EmployeeRole) *workforce.Employee {
	t.Helper()
	employee, err := workforce.NewEmployee(name, email, role)
	require.NoError(t, err)
	return employee
}
