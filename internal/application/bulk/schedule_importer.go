package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rosterly/backend/internal/domain/shared"
	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
)

// scheduleImporter persists shift assignment rows. A shift is keyed by
// (employee, date, start, end). Schedules are provisioned on demand per
// ISO week, so a file spanning several weeks creates each week once.
type scheduleImporter struct {
	employees workforce.EmployeeRepository
	schedules workforce.ScheduleRepository
}

func (im *scheduleImporter) importRows(ctx context.Context, rows []*bulkfile.Row, report *DuplicateReport, opts importOptions, errs *bulkfile.ErrorCollection, result *ImportResult) error {
	employees, err := im.loadEmployees(ctx, rows)
	if err != nil {
		return err
	}

	schedules := map[time.Time]*workforce.Schedule{}
	written := map[shiftKey]*workforce.ShiftAssignment{}

	for _, row := range rows {
		if conflicts := report.OverlapsFor(row.Index); len(conflicts) > 0 {
			c := conflicts[0]
			result.Skipped++
			errs.Add(bulkfile.NewRowError(row.Index, colStartTime, bulkfile.ErrCodeImportOverlap,
				fmt.Sprintf("shift %s overlaps an existing shift %s for %s on %s", c.IncomingRange, c.ExistingRange, c.EmployeeEmail, c.Date)))
			continue
		}

		key, ok := shiftKeyFromRow(row)
		if !ok {
			result.Skipped++
			errs.Add(bulkfile.NewRowError(row.Index, colDate, bulkfile.ErrCodeImportValidation, "row is missing shift key fields"))
			continue
		}

		if prior, exists := written[key]; exists {
			if !opts.UpdateExisting {
				result.Skipped++
				errs.Add(bulkfile.NewRowError(row.Index, colDate, bulkfile.ErrCodeImportDuplicateInFile,
					fmt.Sprintf("shift for '%s' on %s at %s already appears earlier in this file", key.email, key.date, key.start)))
				continue
			}
			applyShiftRow(prior, row)
			if err := im.schedules.UpdateAssignment(ctx, prior); err != nil {
				return err
			}
			result.Updated++
			continue
		}

		employee, known := employees[key.email]
		if !known {
			result.Skipped++
			errs.Add(bulkfile.NewRowErrorWithValue(row.Index, colEmployeeEmail, bulkfile.ErrCodeImportValidation,
				fmt.Sprintf("no employee with email '%s' exists", key.email), key.email))
			continue
		}

		date, err := bulkfile.ParseDate(row.Get(colDate))
		if err != nil {
			result.Skipped++
			errs.Add(bulkfile.NewRowErrorWithValue(row.Index, colDate, bulkfile.ErrCodeImportInvalidFormat, err.Error(), row.Get(colDate)))
			continue
		}

		if dup := report.DatabaseDuplicateFor(row.Index); dup != nil {
			if !opts.UpdateExisting {
				result.Skipped++
				errs.Add(bulkfile.NewRowError(row.Index, colDate, bulkfile.ErrCodeImportDuplicateInDB,
					fmt.Sprintf("an identical shift for '%s' on %s already exists", key.email, key.date)))
				continue
			}
			existing, err := im.schedules.FindAssignmentByKey(ctx, employee.ID, date, key.start, key.end)
			if err != nil {
				return err
			}
			applyShiftRow(existing, row)
			if err := im.schedules.UpdateAssignment(ctx, existing); err != nil {
				return err
			}
			written[key] = existing
			result.Updated++
			continue
		}

		schedule, err := im.scheduleForWeek(ctx, schedules, date, opts.CreatedBy)
		if err != nil {
			return err
		}

		assignment, err := workforce.NewShiftAssignment(schedule.ID, employee.ID, date, key.start, key.end)
		if err != nil {
			result.Skipped++
			errs.Add(bulkfile.NewRowError(row.Index, colStartTime, bulkfile.ErrCodeImportValidation, err.Error()))
			continue
		}
		applyShiftRow(assignment, row)
		if err := im.schedules.SaveAssignment(ctx, assignment); err != nil {
			return err
		}
		written[key] = assignment
		result.Created++
	}
	return nil
}

// loadEmployees resolves every distinct email in the file with one
// batch query
func (im *scheduleImporter) loadEmployees(ctx context.Context, rows []*bulkfile.Row) (map[string]*workforce.Employee, error) {
	var emails []string
	seen := map[string]bool{}
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Get(colEmployeeEmail)))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}

	byEmail := make(map[string]*workforce.Employee, len(emails))
	if len(emails) == 0 {
		return byEmail, nil
	}
	found, err := im.employees.FindByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}
	for i := range found {
		byEmail[strings.ToLower(found[i].Email)] = &found[i]
	}
	return byEmail, nil
}

// scheduleForWeek returns the schedule covering the shift's week,
// creating it when the week has never been scheduled
func (im *scheduleImporter) scheduleForWeek(ctx context.Context, cache map[time.Time]*workforce.Schedule, date time.Time, createdBy string) (*workforce.Schedule, error) {
	weekStart := workforce.WeekStartFor(date)
	if schedule, ok := cache[weekStart]; ok {
		return schedule, nil
	}

	schedule, err := im.schedules.FindByWeekStart(ctx, weekStart)
	if errors.Is(err, shared.ErrNotFound) {
		schedule = workforce.NewSchedule(date, createdBy)
		if err := im.schedules.Save(ctx, schedule); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	cache[weekStart] = schedule
	return schedule, nil
}

// applyShiftRow copies the row's optional descriptive fields onto the
// assignment. Role values were already validated against the enum.
func applyShiftRow(assignment *workforce.ShiftAssignment, row *bulkfile.Row) {
	if name := strings.TrimSpace(row.Get(colShiftName)); name != "" {
		assignment.ShiftName = name
	}
	if raw := row.Get(colRole); raw != "" {
		if role, err := workforce.ParseEmployeeRole(raw); err == nil {
			assignment.Role = role
		}
	}
	if notes := strings.TrimSpace(row.Get(colNotes)); notes != "" {
		assignment.Notes = notes
	}
}
