package workforce

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/backend/internal/domain/shared"
)

// ScheduleStatus represents the lifecycle state of a weekly schedule
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusPublished ScheduleStatus = "published"
)

// Schedule is the weekly container that shift assignments attach to.
// WeekStart is the natural key: the Monday of the covered week.
type Schedule struct {
	shared.BaseEntity
	WeekStart time.Time      `gorm:"type:date;not null;uniqueIndex"`
	Status    ScheduleStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	CreatedBy string         `gorm:"type:varchar(200)"`
}

// NewSchedule creates a schedule for the week containing date
func NewSchedule(date time.Time, createdBy string) *Schedule {
	return &Schedule{
		BaseEntity: shared.NewBaseEntity(),
		WeekStart:  WeekStartFor(date),
		Status:     ScheduleStatusDraft,
		CreatedBy:  createdBy,
	}
}

// WeekStartFor returns the Monday of the week containing date,
// truncated to midnight in the date's location.
func WeekStartFor(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// AssignmentStatus represents the state of a single shift assignment
type AssignmentStatus string

const (
	AssignmentStatusScheduled AssignmentStatus = "scheduled"
	AssignmentStatusConfirmed AssignmentStatus = "confirmed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// ShiftAssignment assigns an employee to a time range on a date.
// StartTime and EndTime use "HH:MM" local clock time; the range is
// half-open [StartTime, EndTime).
type ShiftAssignment struct {
	shared.BaseEntity
	ScheduleID uuid.UUID        `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID        `gorm:"type:uuid;not null;index:idx_assignment_employee_date"`
	Date       time.Time        `gorm:"type:date;not null;index:idx_assignment_employee_date"`
	StartTime  string           `gorm:"type:varchar(5);not null"`
	EndTime    string           `gorm:"type:varchar(5);not null"`
	ShiftName  string           `gorm:"type:varchar(100)"`
	Role       EmployeeRole     `gorm:"type:varchar(20)"`
	Notes      string           `gorm:"type:text"`
	Status     AssignmentStatus `gorm:"type:varchar(20);not null;default:'scheduled'"`
}

// NewShiftAssignment creates an assignment, validating the time range
func NewShiftAssignment(scheduleID, employeeID uuid.UUID, date time.Time, start, end string) (*ShiftAssignment, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TIME", err.Error())
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TIME", err.Error())
	}
	if endMin <= startMin {
		return nil, shared.NewDomainError("INVALID_TIME_RANGE",
			fmt.Sprintf("end time %s must be after start time %s", end, start))
	}
	return &ShiftAssignment{
		BaseEntity: shared.NewBaseEntity(),
		ScheduleID: scheduleID,
		EmployeeID: employeeID,
		Date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:  start,
		EndTime:    end,
		Status:     AssignmentStatusScheduled,
	}, nil
}

// TimeRange formats the assignment's range as "HH:MM-HH:MM"
func (a *ShiftAssignment) TimeRange() string {
	return a.StartTime + "-" + a.EndTime
}

// SameRange reports whether the other assignment covers exactly the
// same date and time range for the same employee
func (a *ShiftAssignment) SameRange(other *ShiftAssignment) bool {
	return a.EmployeeID == other.EmployeeID &&
		a.Date.Equal(other.Date) &&
		a.StartTime == other.StartTime &&
		a.EndTime == other.EndTime
}

// RangesOverlap reports whether two half-open "HH:MM" ranges intersect.
// "HH:MM" strings order lexicographically, so no parsing is needed here.
func RangesOverlap(start1, end1, start2, end2 string) bool {
	return start1 < end2 && start2 < end1
}

// DateKey formats a date as the canonical YYYY-MM-DD key
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// AssignmentDetail is the denormalized read model used by exports:
// one row per assignment with employee and department context joined in.
type AssignmentDetail struct {
	AssignmentID   uuid.UUID
	Date           time.Time
	StartTime      string
	EndTime        string
	ShiftName      string
	EmployeeName   string
	EmployeeEmail  string
	Role           EmployeeRole
	Department     string
	Status         AssignmentStatus
	Notes          string
	WeekStart      time.Time
	ScheduleStatus ScheduleStatus
}

// DurationHours returns the assignment length in hours
func (d *AssignmentDetail) DurationHours() float64 {
	start, err := ParseClock(d.StartTime)
	if err != nil {
		return 0
	}
	end, err := ParseClock(d.EndTime)
	if err != nil || end <= start {
		return 0
	}
	return float64(end-start) / 60
}

// Summary builds the display label used in calendar exports
func (d *AssignmentDetail) Summary() string {
	name := strings.TrimSpace(d.ShiftName)
	if name == "" {
		name = "Shift"
	}
	return name + " - " + d.EmployeeName
}
