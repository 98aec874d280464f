package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rosterly/backend/internal/domain/workforce"
	"go.uber.org/zap"
)

// Format is an export output format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
	FormatICal  Format = "ical"
)

// ErrUnsupportedFormat is returned for formats no renderer handles
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ErrUnsupportedEntity is returned for entities the service cannot export
var ErrUnsupportedEntity = errors.New("unsupported export entity")

// ParseFormat validates a format string, case-insensitively.
// "xlsx" and "ics" are accepted as aliases for their formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	case "ical", "ics":
		return FormatICal, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// Entity names an exportable record set
type Entity string

const (
	EntityEmployees Entity = "employees"
	EntitySchedules Entity = "schedules"
)

// ParseEntity validates an entity string
func ParseEntity(s string) (Entity, error) {
	switch Entity(strings.ToLower(strings.TrimSpace(s))) {
	case EntityEmployees:
		return EntityEmployees, nil
	case EntitySchedules:
		return EntitySchedules, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEntity, s)
	}
}

// Artifact is a rendered export ready to send to the client
type Artifact struct {
	Bytes       []byte
	ContentType string
	FileName    string
}

// Options tunes rendering behavior
type Options struct {
	// CalendarName is the X-WR-CALNAME of iCal exports
	CalendarName string
}

// Service renders employee and schedule exports. Filters are pushed
// down to the store queries, so the renderers only ever see the final
// record set.
type Service struct {
	employees workforce.EmployeeRepository
	schedules workforce.ScheduleRepository
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an export service
func NewService(
	employees workforce.EmployeeRepository,
	schedules workforce.ScheduleRepository,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.CalendarName == "" {
		opts.CalendarName = "Work Schedule"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		employees: employees,
		schedules: schedules,
		opts:      opts,
		logger:    logger.Named("export"),
		now:       time.Now,
	}
}

// Export renders one entity in one format. iCal is only meaningful for
// schedules; requesting it for any other entity is an error.
func (s *Service) Export(ctx context.Context, entity Entity, format Format, filter workforce.ExportFilter) (*Artifact, error) {
	if format == FormatICal {
		if entity != EntitySchedules {
			return nil, fmt.Errorf("%w: ical is only available for schedules", ErrUnsupportedFormat)
		}
		return s.exportCalendar(ctx, filter)
	}

	dataset, err := s.buildDataset(ctx, entity, filter)
	if err != nil {
		return nil, err
	}

	artifact, err := s.render(dataset, entity, format)
	if err != nil {
		return nil, err
	}

	s.logger.Info("export rendered",
		zap.String("entity", string(entity)),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)),
		zap.Int("bytes", len(artifact.Bytes)))
	return artifact, nil
}

func (s *Service) render(dataset *Dataset, entity Entity, format Format) (*Artifact, error) {
	switch format {
	case FormatCSV:
		data, err := renderCSV(dataset)
		if err != nil {
			return nil, err
		}
		return s.artifact(data, "text/csv", entity, "csv"), nil
	case FormatExcel:
		data, err := renderExcel(dataset)
		if err != nil {
			return nil, err
		}
		return s.artifact(data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", entity, "xlsx"), nil
	case FormatPDF:
		data, err := renderPDF(dataset)
		if err != nil {
			return nil, err
		}
		return s.artifact(data, "application/pdf", entity, "pdf"), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (s *Service) artifact(data []byte, contentType string, entity Entity, ext string) *Artifact {
	return &Artifact{
		Bytes:       data,
		ContentType: contentType,
		FileName:    fmt.Sprintf("%s_%s.%s", entity, s.now().Format("20060102_150405"), ext),
	}
}

func (s *Service) buildDataset(ctx context.Context, entity Entity, filter workforce.ExportFilter) (*Dataset, error) {
	switch entity {
	case EntityEmployees:
		records, err := s.employees.FindForExport(ctx, filter)
		if err != nil {
			return nil, err
		}
		return employeeDataset(records), nil
	case EntitySchedules:
		records, err := s.schedules.FindAssignmentsForExport(ctx, filter)
		if err != nil {
			return nil, err
		}
		return scheduleDataset(records), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEntity, entity)
	}
}

func (s *Service) exportCalendar(ctx context.Context, filter workforce.ExportFilter) (*Artifact, error) {
	records, err := s.schedules.FindAssignmentsForExport(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := renderCalendar(records, s.opts.CalendarName)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export rendered",
		zap.String("entity", string(EntitySchedules)),
		zap.String("format", string(FormatICal)),
		zap.Int("rows", len(records)))
	return s.artifact(data, "text/calendar", EntitySchedules, "ics"), nil
}

func employeeDataset(records []workforce.Employee) *Dataset {
	d := &Dataset{
		Title: "Employees",
		Columns: []Column{
			{Title: "Name", Width: 24},
			{Title: "Email", Width: 30},
			{Title: "Role", Width: 12},
			{Title: "Department", Width: 16},
			{Title: "Hourly Rate", Kind: KindNumber, Width: 12},
			{Title: "Max Hours/Week", Kind: KindNumber, Width: 14},
			{Title: "Qualifications", Width: 30},
			{Title: "Status", Width: 10},
		},
	}
	for i := range records {
		e := &records[i]
		rate, _ := e.HourlyRate.Float64()
		d.Rows = append(d.Rows, []interface{}{
			e.Name,
			e.Email,
			string(e.Role),
			e.Department,
			rate,
			float64(e.MaxHoursPerWeek),
			strings.Join(e.Qualifications, "; "),
			string(e.Status),
		})
	}
	d.Summary = []SummaryItem{
		{Label: "Total employees", Value: formatInt(len(records))},
	}
	return d
}

func scheduleDataset(records []workforce.AssignmentDetail) *Dataset {
	d := &Dataset{
		Title: "Schedule",
		Columns: []Column{
			{Title: "Date", Kind: KindDate, Width: 12},
			{Title: "Employee", Width: 24},
			{Title: "Email", Width: 30},
			{Title: "Shift", Width: 16},
			{Title: "Start", Width: 8},
			{Title: "End", Width: 8},
			{Title: "Hours", Kind: KindNumber, Width: 8},
			{Title: "Role", Width: 12},
			{Title: "Department", Width: 16},
			{Title: "Status", Width: 10},
			{Title: "Notes", Width: 30},
		},
	}
	totalHours := 0.0
	employees := map[string]bool{}
	for i := range records {
		a := &records[i]
		hours := a.DurationHours()
		totalHours += hours
		employees[a.EmployeeEmail] = true
		d.Rows = append(d.Rows, []interface{}{
			a.Date,
			a.EmployeeName,
			a.EmployeeEmail,
			a.ShiftName,
			a.StartTime,
			a.EndTime,
			hours,
			string(a.Role),
			a.Department,
			string(a.Status),
			a.Notes,
		})
	}
	d.Summary = []SummaryItem{
		{Label: "Total shifts", Value: formatInt(len(records))},
		{Label: "Total hours", Value: formatFloat(totalHours)},
		{Label: "Employees scheduled", Value: formatInt(len(employees))},
	}
	return d
}
