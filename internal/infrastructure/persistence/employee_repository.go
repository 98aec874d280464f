package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rosterly/backend/internal/domain/shared"
	"github.com/rosterly/backend/internal/domain/workforce"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements workforce.EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// FindByID finds an employee by its ID
func (r *GormEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.Employee, error) {
	var employee workforce.Employee
	if err := dbFromContext(ctx, r.db).First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &employee, nil
}

// FindByEmail finds an employee by the lowercased email natural key
func (r *GormEmployeeRepository) FindByEmail(ctx context.Context, email string) (*workforce.Employee, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "email cannot be empty")
	}
	var employee workforce.Employee
	if err := dbFromContext(ctx, r.db).
		Where("email = ?", strings.ToLower(email)).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &employee, nil
}

// FindByEmails loads all employees whose email is in the given set.
// Used by import duplicate detection, which batches one query per file.
func (r *GormEmployeeRepository) FindByEmails(ctx context.Context, emails []string) ([]workforce.Employee, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(e)
	}

	var employees []workforce.Employee
	if err := dbFromContext(ctx, r.db).
		Where("email IN ?", lowered).
		Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// Save persists a new employee
func (r *GormEmployeeRepository) Save(ctx context.Context, employee *workforce.Employee) error {
	return dbFromContext(ctx, r.db).Create(employee).Error
}

// Update persists changes to an existing employee
func (r *GormEmployeeRepository) Update(ctx context.Context, employee *workforce.Employee) error {
	return dbFromContext(ctx, r.db).Save(employee).Error
}

// Count returns the total number of employees
func (r *GormEmployeeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).Model(&workforce.Employee{}).Count(&count).Error
	return count, err
}

// FindForExport returns employees matching the export filter, ordered
// by name for stable output
func (r *GormEmployeeRepository) FindForExport(ctx context.Context, filter workforce.ExportFilter) ([]workforce.Employee, error) {
	query := dbFromContext(ctx, r.db).Model(&workforce.Employee{})

	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", strings.ToLower(filter.Role))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}

	var employees []workforce.Employee
	if err := query.Order("name asc").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// FindAll returns employees matching the listing filter
func (r *GormEmployeeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]workforce.Employee, error) {
	query := dbFromContext(ctx, r.db).Model(&workforce.Employee{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}
	if filter.OrderBy != "" {
		dir := "asc"
		if strings.EqualFold(filter.OrderDir, "desc") {
			dir = "desc"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	}
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset((filter.Page - 1) * filter.PageSize)
	}

	var employees []workforce.Employee
	if err := query.Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}
