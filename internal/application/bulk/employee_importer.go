package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
	"github.com/shopspring/decimal"
)

// employeeImporter persists employee rows. Email is the natural key:
// a row matching an existing employee either updates it or is skipped,
// depending on the update_existing flag.
type employeeImporter struct {
	repo workforce.EmployeeRepository
}

func (im *employeeImporter) importRows(ctx context.Context, rows []*bulkfile.Row, report *DuplicateReport, opts importOptions, errs *bulkfile.ErrorCollection, result *ImportResult) error {
	// Employees written in this run, keyed by email, so later in-file
	// duplicates resolve against them instead of the store.
	written := map[string]*workforce.Employee{}

	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Get(colEmail)))

		if prior, ok := written[email]; ok {
			if !opts.UpdateExisting {
				result.Skipped++
				errs.Add(bulkfile.NewRowErrorWithValue(row.Index, colEmail, bulkfile.ErrCodeImportDuplicateInFile,
					fmt.Sprintf("email '%s' already appears earlier in this file", email), email))
				continue
			}
			if rowErr := applyEmployeeRow(prior, row); rowErr != nil {
				result.Skipped++
				errs.Add(*rowErr)
				continue
			}
			if err := im.repo.Update(ctx, prior); err != nil {
				return err
			}
			result.Updated++
			continue
		}

		if dup := report.DatabaseDuplicateFor(row.Index); dup != nil {
			if !opts.UpdateExisting {
				result.Skipped++
				errs.Add(bulkfile.NewRowErrorWithValue(row.Index, colEmail, bulkfile.ErrCodeImportDuplicateInDB,
					fmt.Sprintf("an employee with email '%s' already exists", email), email))
				continue
			}
			existing, err := im.repo.FindByEmail(ctx, email)
			if err != nil {
				return err
			}
			if rowErr := applyEmployeeRow(existing, row); rowErr != nil {
				result.Skipped++
				errs.Add(*rowErr)
				continue
			}
			if err := im.repo.Update(ctx, existing); err != nil {
				return err
			}
			written[email] = existing
			result.Updated++
			continue
		}

		employee, rowErr := buildEmployee(row, opts.CreatedBy)
		if rowErr != nil {
			result.Skipped++
			errs.Add(*rowErr)
			continue
		}
		if err := im.repo.Save(ctx, employee); err != nil {
			return err
		}
		written[email] = employee
		result.Created++
	}
	return nil
}

// buildEmployee creates a new employee from a validated row
func buildEmployee(row *bulkfile.Row, createdBy string) (*workforce.Employee, *bulkfile.RowError) {
	role, err := workforce.ParseEmployeeRole(row.Get(colRole))
	if err != nil {
		rowErr := bulkfile.NewRowErrorWithValue(row.Index, colRole, bulkfile.ErrCodeImportInvalidEnum, err.Error(), row.Get(colRole))
		return nil, &rowErr
	}

	employee, err := workforce.NewEmployee(row.Get(colName), row.Get(colEmail), role)
	if err != nil {
		rowErr := bulkfile.NewRowError(row.Index, colName, bulkfile.ErrCodeImportValidation, err.Error())
		return nil, &rowErr
	}
	employee.CreatedBy = createdBy

	if rowErr := applyEmployeeRow(employee, row); rowErr != nil {
		return nil, rowErr
	}
	return employee, nil
}

// applyEmployeeRow copies the row's optional fields onto the employee
// through the domain setters. The merged record is re-validated by the
// setters themselves, so an update can never leave an invalid employee
// behind. Returns a row error on the first domain rejection.
func applyEmployeeRow(employee *workforce.Employee, row *bulkfile.Row) *bulkfile.RowError {
	if name := strings.TrimSpace(row.Get(colName)); name != "" {
		employee.Name = name
	}
	if raw := row.Get(colRole); raw != "" {
		role, err := workforce.ParseEmployeeRole(raw)
		if err != nil {
			rowErr := bulkfile.NewRowErrorWithValue(row.Index, colRole, bulkfile.ErrCodeImportInvalidEnum, err.Error(), raw)
			return &rowErr
		}
		employee.Role = role
	}
	if dept := strings.TrimSpace(row.Get(colDepartment)); dept != "" {
		employee.Department = dept
	}

	if raw := row.Get(colHourlyRate); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			rowErr := bulkfile.NewRowErrorWithValue(row.Index, colHourlyRate, bulkfile.ErrCodeImportInvalidType,
				fmt.Sprintf("'%s' is not a valid number", raw), raw)
			return &rowErr
		}
		if err := employee.SetHourlyRate(rate); err != nil {
			rowErr := bulkfile.NewRowErrorWithValue(row.Index, colHourlyRate, bulkfile.ErrCodeImportInvalidRange, err.Error(), raw)
			return &rowErr
		}
	}

	// Max hours before availability: the coverage check depends on it.
	if raw := row.Get(colMaxHours); raw != "" {
		var hours int
		if _, err := fmt.Sscanf(raw, "%d", &hours); err != nil {
			rowErr := bulkfile.NewRowErrorWithValue(row.Index, colMaxHours, bulkfile.ErrCodeImportInvalidType,
				fmt.Sprintf("'%s' is not a valid integer", raw), raw)
			return &rowErr
		}
		if err := employee.SetMaxHoursPerWeek(hours); err != nil {
			rowErr := bulkfile.NewRowErrorWithValue(row.Index, colMaxHours, bulkfile.ErrCodeImportInvalidRange, err.Error(), raw)
			return &rowErr
		}
	}

	if raw := row.Get(colQualifications); raw != "" {
		if err := employee.SetQualifications(bulkfile.SplitList(raw)); err != nil {
			rowErr := bulkfile.NewRowErrorWithValue(row.Index, colQualifications, bulkfile.ErrCodeImportListTooLong, err.Error(), raw)
			return &rowErr
		}
	}

	availability, sawWindow, _ := parseAvailability(row)
	if sawWindow {
		if err := employee.SetAvailability(availability); err != nil {
			rowErr := bulkfile.NewRowError(row.Index, colMaxHours, bulkfile.ErrCodeImportCrossField, err.Error())
			return &rowErr
		}
	}
	return nil
}
