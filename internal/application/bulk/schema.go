package bulk

import (
	"fmt"
	"strings"

	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
)

// EntityType names a bulk import/export target
type EntityType string

const (
	EntityEmployees EntityType = "employees"
	EntitySchedules EntityType = "schedules"
)

// ParseEntityType validates an entity type string, case-insensitively
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(strings.ToLower(strings.TrimSpace(s))) {
	case EntityEmployees:
		return EntityEmployees, nil
	case EntitySchedules:
		return EntitySchedules, nil
	default:
		return "", fmt.Errorf("%w: %s", bulkfile.ErrUnsupportedEntityType, s)
	}
}

// Employee import columns
const (
	colName           = "name"
	colEmail          = "email"
	colRole           = "role"
	colDepartment     = "department"
	colHourlyRate     = "hourly_rate"
	colMaxHours       = "max_hours_per_week"
	colQualifications = "qualifications"
)

// Schedule import columns
const (
	colDate          = "date"
	colEmployeeEmail = "employee_email"
	colStartTime     = "start_time"
	colEndTime       = "end_time"
	colShiftName     = "shift_name"
	colNotes         = "notes"
)

func roleNames() []string {
	roles := workforce.EmployeeRoles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

// EmployeeSchema returns the validation schema for employee imports.
// Availability arrives as one column per weekday holding an
// "HH:MM-HH:MM" window, empty meaning unavailable that day.
func EmployeeSchema() bulkfile.Schema {
	rules := []bulkfile.FieldRule{
		bulkfile.Field(colName).Required().MaxLength(200).Build(),
		bulkfile.Field(colEmail).Required().Email().Build(),
		bulkfile.Field(colRole).Required().Enum(roleNames()...).Build(),
		bulkfile.Field(colDepartment).MaxLength(100).Build(),
		bulkfile.Field(colHourlyRate).Decimal().Range(workforce.MinHourlyRate, workforce.MaxHourlyRate).Build(),
		bulkfile.Field(colMaxHours).Int().IntRange(workforce.MinHoursPerWeek, workforce.MaxHoursPerWeek).Build(),
		bulkfile.Field(colQualifications).List(workforce.MaxQualifications).Build(),
	}
	for _, day := range workforce.Weekdays {
		rules = append(rules, bulkfile.Field(day).TimeRange().Build())
	}

	return bulkfile.Schema{
		Entity:      string(EntityEmployees),
		Rules:       rules,
		CrossChecks: []bulkfile.CrossCheck{availabilityCoversMaxHours},
	}
}

// ScheduleSchema returns the validation schema for shift imports
func ScheduleSchema() bulkfile.Schema {
	return bulkfile.Schema{
		Entity: string(EntitySchedules),
		Rules: []bulkfile.FieldRule{
			bulkfile.Field(colDate).Required().Date().Build(),
			bulkfile.Field(colEmployeeEmail).Required().Email().Build(),
			bulkfile.Field(colStartTime).Required().Time().Build(),
			bulkfile.Field(colEndTime).Required().Time().Build(),
			bulkfile.Field(colShiftName).MaxLength(100).Build(),
			bulkfile.Field(colRole).Enum(roleNames()...).Build(),
			bulkfile.Field(colNotes).MaxLength(1000).Build(),
		},
		CrossChecks: []bulkfile.CrossCheck{shiftEndsAfterStart},
	}
}

// SchemaFor returns the schema for an entity type
func SchemaFor(entity EntityType) (bulkfile.Schema, error) {
	switch entity {
	case EntityEmployees:
		return EmployeeSchema(), nil
	case EntitySchedules:
		return ScheduleSchema(), nil
	default:
		return bulkfile.Schema{}, fmt.Errorf("%w: %s", bulkfile.ErrUnsupportedEntityType, entity)
	}
}

// availabilityCoversMaxHours rejects rows whose availability windows
// add up to less than the declared weekly hour cap. Runs only when the
// involved fields parsed cleanly; field-level checks report the rest.
func availabilityCoversMaxHours(row *bulkfile.Row) []bulkfile.RowError {
	maxHours, declared := parseMaxHours(row)
	if !declared {
		return nil
	}

	availability, sawWindow, wellFormed := parseAvailability(row)
	if !sawWindow || !wellFormed {
		return nil
	}

	total := availability.TotalHours()
	if total < float64(maxHours) {
		return []bulkfile.RowError{bulkfile.NewRowError(row.Index, colMaxHours, bulkfile.ErrCodeImportCrossField,
			fmt.Sprintf("available hours %.1f are less than max hours per week %d", total, maxHours))}
	}
	return nil
}

// shiftEndsAfterStart rejects zero-length and inverted shift ranges
func shiftEndsAfterStart(row *bulkfile.Row) []bulkfile.RowError {
	start := row.Get(colStartTime)
	end := row.Get(colEndTime)
	if start == "" || end == "" {
		return nil
	}
	if _, err := workforce.ParseClock(start); err != nil {
		return nil
	}
	if _, err := workforce.ParseClock(end); err != nil {
		return nil
	}
	if end <= start {
		return []bulkfile.RowError{bulkfile.NewRowErrorWithValue(row.Index, colEndTime, bulkfile.ErrCodeImportCrossField,
			fmt.Sprintf("end time %s must be after start time %s", end, start), end)}
	}
	return nil
}

func parseMaxHours(row *bulkfile.Row) (int, bool) {
	raw := row.Get(colMaxHours)
	if raw == "" {
		return 0, false
	}
	var hours int
	if _, err := fmt.Sscanf(raw, "%d", &hours); err != nil {
		return 0, false
	}
	if hours < workforce.MinHoursPerWeek || hours > workforce.MaxHoursPerWeek {
		return 0, false
	}
	return hours, true
}

// parseAvailability reads the weekday columns into a domain
// availability map. sawWindow is false when every day is blank, which
// means availability was not provided at all.
func parseAvailability(row *bulkfile.Row) (availability workforce.Availability, sawWindow, wellFormed bool) {
	availability = workforce.Availability{}
	wellFormed = true
	for _, day := range workforce.Weekdays {
		raw := row.Get(day)
		if raw == "" {
			availability[day] = workforce.DayAvailability{Available: false}
			continue
		}
		start, end, ok := bulkfile.SplitTimeRange(raw)
		if !ok || end <= start {
			wellFormed = false
			continue
		}
		sawWindow = true
		availability[day] = workforce.DayAvailability{Available: true, Start: start, End: end}
	}
	return availability, sawWindow, wellFormed
}
