package workforce

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/backend/internal/domain/shared"
)

// ExportFilter narrows the record set read by exports. It is applied
// at the query layer so result sets stay bounded; renderers never
// filter in memory.
type ExportFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	Department string
	Role       string
	Search     string
}

// EmployeeRepository is the store contract for the employee aggregate
type EmployeeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindByEmails(ctx context.Context, emails []string) ([]Employee, error)
	Save(ctx context.Context, employee *Employee) error
	Update(ctx context.Context, employee *Employee) error
	Count(ctx context.Context) (int64, error)
	FindForExport(ctx context.Context, filter ExportFilter) ([]Employee, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Employee, error)
}

// ScheduleRepository is the store contract for schedules and their
// shift assignments
type ScheduleRepository interface {
	FindByWeekStart(ctx context.Context, weekStart time.Time) (*Schedule, error)
	Save(ctx context.Context, schedule *Schedule) error

	FindAssignmentByKey(ctx context.Context, employeeID uuid.UUID, date time.Time, start, end string) (*ShiftAssignment, error)
	FindAssignmentsByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) ([]ShiftAssignment, error)
	SaveAssignment(ctx context.Context, assignment *ShiftAssignment) error
	UpdateAssignment(ctx context.Context, assignment *ShiftAssignment) error
	CountAssignments(ctx context.Context) (int64, error)
	FindAssignmentsForExport(ctx context.Context, filter ExportFilter) ([]AssignmentDetail, error)
}

// DepartmentRepository is the store contract for departments
type DepartmentRepository interface {
	FindByName(ctx context.Context, name string) (*Department, error)
	FindAll(ctx context.Context) ([]Department, error)
	Save(ctx context.Context, department *Department) error
}

// ImportRunRepository persists import history records
type ImportRunRepository interface {
	Save(ctx context.Context, run *ImportRun) error
	FindRecent(ctx context.Context, limit int) ([]ImportRun, error)
}
