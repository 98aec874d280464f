package bulk

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rosterly/backend/internal/domain/shared"
	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/rosterly/backend/internal/infrastructure/bulkfile"
)

// InternalDuplicate marks rows inside one file sharing a natural key
type InternalDuplicate struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Rows  []int  `json:"rows"`
}

// DatabaseDuplicate marks a row whose natural key already exists in the store
type DatabaseDuplicate struct {
	Field      string    `json:"field"`
	Value      string    `json:"value"`
	Row        int       `json:"row"`
	ExistingID uuid.UUID `json:"existing_id"`
}

// OverlapConflict marks a shift row whose time range intersects another
// shift for the same employee on the same date. WithRow is zero when
// the conflicting shift lives in the store rather than the file.
type OverlapConflict struct {
	Row           int    `json:"row"`
	WithRow       int    `json:"with_row,omitempty"`
	EmployeeEmail string `json:"employee_email"`
	Date          string `json:"date"`
	IncomingRange string `json:"incoming_range"`
	ExistingRange string `json:"existing_range"`
}

// DuplicateReport is the outcome of duplicate detection over one file.
// Detection only reads; resolution policy belongs to the import flow.
type DuplicateReport struct {
	Internal []InternalDuplicate `json:"internal,omitempty"`
	Database []DatabaseDuplicate `json:"database,omitempty"`
	Overlaps []OverlapConflict   `json:"overlaps,omitempty"`
}

// HasConflicts reports whether any duplicate or overlap was found
func (r *DuplicateReport) HasConflicts() bool {
	return len(r.Internal) > 0 || len(r.Database) > 0 || len(r.Overlaps) > 0
}

// DatabaseDuplicateFor returns the store duplicate recorded for a row
func (r *DuplicateReport) DatabaseDuplicateFor(row int) *DatabaseDuplicate {
	for i := range r.Database {
		if r.Database[i].Row == row {
			return &r.Database[i]
		}
	}
	return nil
}

// OverlapsFor returns the overlap conflicts recorded for a row
func (r *DuplicateReport) OverlapsFor(row int) []OverlapConflict {
	var out []OverlapConflict
	for _, o := range r.Overlaps {
		if o.Row == row {
			out = append(out, o)
		}
	}
	return out
}

// DuplicateDetector finds natural-key duplicates inside a file and
// against the store before anything is written. Detection is
// idempotent: running it twice over the same input yields the same
// report and changes nothing.
type DuplicateDetector struct {
	employees workforce.EmployeeRepository
	schedules workforce.ScheduleRepository
}

// NewDuplicateDetector creates a detector over the given repositories
func NewDuplicateDetector(employees workforce.EmployeeRepository, schedules workforce.ScheduleRepository) *DuplicateDetector {
	return &DuplicateDetector{
		employees: employees,
		schedules: schedules,
	}
}

// DetectEmployees reports email duplicates among rows and against the
// store. Emails compare case-insensitively. One store query covers the
// whole file.
func (d *DuplicateDetector) DetectEmployees(ctx context.Context, rows []*bulkfile.Row) (*DuplicateReport, error) {
	report := &DuplicateReport{}

	byEmail := map[string][]int{}
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Get(colEmail)))
		if email == "" {
			continue
		}
		byEmail[email] = append(byEmail[email], row.Index)
	}

	emails := make([]string, 0, len(byEmail))
	for email, indices := range byEmail {
		emails = append(emails, email)
		if len(indices) > 1 {
			report.Internal = append(report.Internal, InternalDuplicate{
				Field: colEmail,
				Value: email,
				Rows:  indices,
			})
		}
	}
	sort.Slice(report.Internal, func(i, j int) bool {
		return report.Internal[i].Rows[0] < report.Internal[j].Rows[0]
	})

	existing, err := d.employees.FindByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}
	existingByEmail := make(map[string]uuid.UUID, len(existing))
	for _, e := range existing {
		existingByEmail[e.Email] = e.ID
	}

	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Get(colEmail)))
		if id, ok := existingByEmail[email]; ok {
			report.Database = append(report.Database, DatabaseDuplicate{
				Field:      colEmail,
				Value:      email,
				Row:        row.Index,
				ExistingID: id,
			})
		}
	}
	sort.Slice(report.Database, func(i, j int) bool {
		return report.Database[i].Row < report.Database[j].Row
	})

	return report, nil
}

// shiftKey identifies a shift by its duplicate detection key
type shiftKey struct {
	email string
	date  string
	start string
	end   string
}

func shiftKeyFromRow(row *bulkfile.Row) (shiftKey, bool) {
	date, err := bulkfile.ParseDate(row.Get(colDate))
	if err != nil {
		return shiftKey{}, false
	}
	return shiftKey{
		email: strings.ToLower(strings.TrimSpace(row.Get(colEmployeeEmail))),
		date:  workforce.DateKey(date),
		start: row.Get(colStartTime),
		end:   row.Get(colEndTime),
	}, true
}

// DetectSchedules reports identical shifts (same employee, date and
// exact range) within the file and against the store, plus range
// overlaps. An exactly identical range is a duplicate, never an
// overlap; a partially intersecting one is an overlap.
func (d *DuplicateDetector) DetectSchedules(ctx context.Context, rows []*bulkfile.Row) (*DuplicateReport, error) {
	report := &DuplicateReport{}

	seen := map[shiftKey][]int{}
	byEmployeeDay := map[string][]*bulkfile.Row{}
	for _, row := range rows {
		key, ok := shiftKeyFromRow(row)
		if !ok || key.email == "" {
			continue
		}
		seen[key] = append(seen[key], row.Index)
		dayKey := key.email + "|" + key.date
		byEmployeeDay[dayKey] = append(byEmployeeDay[dayKey], row)
	}

	for key, indices := range seen {
		if len(indices) > 1 {
			sort.Ints(indices)
			report.Internal = append(report.Internal, InternalDuplicate{
				Field: "shift",
				Value: key.email + " " + key.date + " " + key.start + "-" + key.end,
				Rows:  indices,
			})
		}
	}
	sort.Slice(report.Internal, func(i, j int) bool {
		return report.Internal[i].Rows[0] < report.Internal[j].Rows[0]
	})

	// In-file overlaps: pairwise within each employee-day bucket.
	for _, bucket := range byEmployeeDay {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				aStart, aEnd := a.Get(colStartTime), a.Get(colEndTime)
				bStart, bEnd := b.Get(colStartTime), b.Get(colEndTime)
				if aStart == bStart && aEnd == bEnd {
					continue // identical: already reported as duplicate
				}
				if workforce.RangesOverlap(aStart, aEnd, bStart, bEnd) {
					date, _ := bulkfile.ParseDate(b.Get(colDate))
					report.Overlaps = append(report.Overlaps, OverlapConflict{
						Row:           b.Index,
						WithRow:       a.Index,
						EmployeeEmail: strings.ToLower(b.Get(colEmployeeEmail)),
						Date:          workforce.DateKey(date),
						IncomingRange: bStart + "-" + bEnd,
						ExistingRange: aStart + "-" + aEnd,
					})
				}
			}
		}
	}

	if err := d.detectStoredShiftConflicts(ctx, rows, report); err != nil {
		return nil, err
	}

	sort.Slice(report.Overlaps, func(i, j int) bool {
		return report.Overlaps[i].Row < report.Overlaps[j].Row
	})
	sort.Slice(report.Database, func(i, j int) bool {
		return report.Database[i].Row < report.Database[j].Row
	})

	return report, nil
}

func (d *DuplicateDetector) detectStoredShiftConflicts(ctx context.Context, rows []*bulkfile.Row, report *DuplicateReport) error {
	emailSet := map[string]struct{}{}
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Get(colEmployeeEmail)))
		if email != "" {
			emailSet[email] = struct{}{}
		}
	}
	emails := make([]string, 0, len(emailSet))
	for email := range emailSet {
		emails = append(emails, email)
	}

	employees, err := d.employees.FindByEmails(ctx, emails)
	if err != nil {
		return err
	}
	employeeByEmail := make(map[string]*workforce.Employee, len(employees))
	for i := range employees {
		employeeByEmail[employees[i].Email] = &employees[i]
	}

	for _, row := range rows {
		key, ok := shiftKeyFromRow(row)
		if !ok {
			continue
		}
		employee, known := employeeByEmail[key.email]
		if !known {
			// Unknown employees fail at import time, not here.
			continue
		}
		date, _ := bulkfile.ParseDate(row.Get(colDate))

		stored, err := d.schedules.FindAssignmentsByEmployeeAndDate(ctx, employee.ID, date)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		for i := range stored {
			existing := &stored[i]
			if existing.StartTime == key.start && existing.EndTime == key.end {
				report.Database = append(report.Database, DatabaseDuplicate{
					Field:      "shift",
					Value:      key.email + " " + key.date + " " + key.start + "-" + key.end,
					Row:        row.Index,
					ExistingID: existing.ID,
				})
				continue
			}
			if workforce.RangesOverlap(key.start, key.end, existing.StartTime, existing.EndTime) {
				report.Overlaps = append(report.Overlaps, OverlapConflict{
					Row:           row.Index,
					EmployeeEmail: key.email,
					Date:          key.date,
					IncomingRange: key.start + "-" + key.end,
					ExistingRange: existing.TimeRange(),
				})
			}
		}
	}
	return nil
}
