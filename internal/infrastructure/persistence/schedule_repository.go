package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/backend/internal/domain/shared"
	"github.com/rosterly/backend/internal/domain/workforce"
	"gorm.io/gorm"
)

// GormScheduleRepository implements workforce.ScheduleRepository using GORM
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new GormScheduleRepository
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// FindByWeekStart finds the schedule whose week starts on the given Monday
func (r *GormScheduleRepository) FindByWeekStart(ctx context.Context, weekStart time.Time) (*workforce.Schedule, error) {
	var schedule workforce.Schedule
	if err := dbFromContext(ctx, r.db).
		Where("week_start = ?", weekStart).
		First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// Save persists a new schedule
func (r *GormScheduleRepository) Save(ctx context.Context, schedule *workforce.Schedule) error {
	return dbFromContext(ctx, r.db).Create(schedule).Error
}

// FindAssignmentByKey finds the assignment matching the duplicate
// detection key: employee, date and exact time range
func (r *GormScheduleRepository) FindAssignmentByKey(ctx context.Context, employeeID uuid.UUID, date time.Time, start, end string) (*workforce.ShiftAssignment, error) {
	var assignment workforce.ShiftAssignment
	if err := dbFromContext(ctx, r.db).
		Where("employee_id = ? AND date = ? AND start_time = ? AND end_time = ?", employeeID, date, start, end).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// FindAssignmentsByEmployeeAndDate returns all of an employee's
// assignments on one date, used for overlap checks
func (r *GormScheduleRepository) FindAssignmentsByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) ([]workforce.ShiftAssignment, error) {
	var assignments []workforce.ShiftAssignment
	if err := dbFromContext(ctx, r.db).
		Where("employee_id = ? AND date = ?", employeeID, date).
		Order("start_time asc").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// SaveAssignment persists a new shift assignment
func (r *GormScheduleRepository) SaveAssignment(ctx context.Context, assignment *workforce.ShiftAssignment) error {
	return dbFromContext(ctx, r.db).Create(assignment).Error
}

// UpdateAssignment persists changes to an existing assignment
func (r *GormScheduleRepository) UpdateAssignment(ctx context.Context, assignment *workforce.ShiftAssignment) error {
	return dbFromContext(ctx, r.db).Save(assignment).Error
}

// CountAssignments returns the total number of shift assignments
func (r *GormScheduleRepository) CountAssignments(ctx context.Context) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).Model(&workforce.ShiftAssignment{}).Count(&count).Error
	return count, err
}

// FindAssignmentsForExport returns the denormalized assignment rows
// matching the export filter, ordered by date then start time
func (r *GormScheduleRepository) FindAssignmentsForExport(ctx context.Context, filter workforce.ExportFilter) ([]workforce.AssignmentDetail, error) {
	query := dbFromContext(ctx, r.db).
		Table("shift_assignments").
		Select(`shift_assignments.id AS assignment_id,
			shift_assignments.date,
			shift_assignments.start_time,
			shift_assignments.end_time,
			shift_assignments.shift_name,
			shift_assignments.role,
			shift_assignments.status,
			shift_assignments.notes,
			employees.name AS employee_name,
			employees.email AS employee_email,
			employees.department,
			schedules.week_start,
			schedules.status AS schedule_status`).
		Joins("JOIN employees ON employees.id = shift_assignments.employee_id").
		Joins("JOIN schedules ON schedules.id = shift_assignments.schedule_id")

	if filter.DateFrom != nil {
		query = query.Where("shift_assignments.date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("shift_assignments.date <= ?", *filter.DateTo)
	}
	if filter.Department != "" {
		query = query.Where("employees.department = ?", filter.Department)
	}
	if filter.Role != "" {
		query = query.Where("shift_assignments.role = ?", strings.ToLower(filter.Role))
	}

	var details []workforce.AssignmentDetail
	if err := query.
		Order("shift_assignments.date asc, shift_assignments.start_time asc").
		Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}
