package persistence

import (
	"context"
	"errors"

	"github.com/rosterly/backend/internal/domain/shared"
	"github.com/rosterly/backend/internal/domain/workforce"
	"gorm.io/gorm"
)

// GormDepartmentRepository implements workforce.DepartmentRepository using GORM
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewGormDepartmentRepository creates a new GormDepartmentRepository
func NewGormDepartmentRepository(db *gorm.DB) *GormDepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

// FindByName finds a department by its unique name
func (r *GormDepartmentRepository) FindByName(ctx context.Context, name string) (*workforce.Department, error) {
	var department workforce.Department
	if err := dbFromContext(ctx, r.db).
		Where("name = ?", name).
		First(&department).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &department, nil
}

// FindAll returns every department ordered by name
func (r *GormDepartmentRepository) FindAll(ctx context.Context) ([]workforce.Department, error) {
	var departments []workforce.Department
	if err := dbFromContext(ctx, r.db).
		Order("name asc").
		Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

// Save persists a new department
func (r *GormDepartmentRepository) Save(ctx context.Context, department *workforce.Department) error {
	return dbFromContext(ctx, r.db).Create(department).Error
}
