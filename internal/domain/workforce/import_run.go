package workforce

import (
	"github.com/rosterly/backend/internal/domain/shared"
)

// ImportRun records the outcome of one bulk import call
type ImportRun struct {
	shared.BaseEntity
	EntityType string `gorm:"type:varchar(20);not null;index"`
	FileName   string `gorm:"type:varchar(255);not null"`
	TotalRows  int    `gorm:"not null"`
	Created    int    `gorm:"not null"`
	Updated    int    `gorm:"not null"`
	Skipped    int    `gorm:"not null"`
	CreatedBy  string `gorm:"type:varchar(200)"`
}

// NewImportRun creates an import history record
func NewImportRun(entityType, fileName string, total, created, updated, skipped int, createdBy string) *ImportRun {
	return &ImportRun{
		BaseEntity: shared.NewBaseEntity(),
		EntityType: entityType,
		FileName:   fileName,
		TotalRows:  total,
		Created:    created,
		Updated:    updated,
		Skipped:    skipped,
		CreatedBy:  createdBy,
	}
}
