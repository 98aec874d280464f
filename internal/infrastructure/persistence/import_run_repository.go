package persistence

import (
	"context"

	"github.com/rosterly/backend/internal/domain/workforce"
	"gorm.io/gorm"
)

// GormImportRunRepository implements workforce.ImportRunRepository using GORM
type GormImportRunRepository struct {
	db *gorm.DB
}

// NewGormImportRunRepository creates a new GormImportRunRepository
func NewGormImportRunRepository(db *gorm.DB) *GormImportRunRepository {
	return &GormImportRunRepository{db: db}
}

// Save persists an import history record
func (r *GormImportRunRepository) Save(ctx context.Context, run *workforce.ImportRun) error {
	return dbFromContext(ctx, r.db).Create(run).Error
}

// FindRecent returns the most recent import runs, newest first
func (r *GormImportRunRepository) FindRecent(ctx context.Context, limit int) ([]workforce.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []workforce.ImportRun
	if err := dbFromContext(ctx, r.db).
		Order("created_at desc").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
