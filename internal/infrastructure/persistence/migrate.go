package persistence

import (
	"github.com/rosterly/backend/internal/domain/workforce"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for all workforce tables.
// Production deployments use the SQL migrations instead; this is for
// tests and local development.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&workforce.Employee{},
		&workforce.Schedule{},
		&workforce.ShiftAssignment{},
		&workforce.Department{},
		&workforce.ImportRun{},
	)
}
