package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rosterly/backend/internal/domain/workforce"
)

const (
	icalProdID = "-//Rosterly//Schedule Export//EN"

	// Floating local time, no timezone suffix.
	icalTimeLayout = "20060102T150405"
)

// renderCalendar writes shift assignments as an iCalendar feed, one
// VEVENT per assignment. Shift times are wall-clock local times, so
// events are emitted as floating times without a timezone suffix.
func renderCalendar(records []workforce.AssignmentDetail, calendarName string) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icalProdID)
	cal.SetXWRCalName(calendarName)

	now := time.Now().UTC()
	for i := range records {
		a := &records[i]
		start, err := shiftTime(a.Date, a.StartTime)
		if err != nil {
			return nil, fmt.Errorf("assignment %s: %w", a.AssignmentID, err)
		}
		end, err := shiftTime(a.Date, a.EndTime)
		if err != nil {
			return nil, fmt.Errorf("assignment %s: %w", a.AssignmentID, err)
		}

		event := cal.AddEvent(fmt.Sprintf("%s@rosterly", a.AssignmentID))
		event.SetDtStampTime(now)
		event.SetProperty(ics.ComponentPropertyDtStart, start.Format(icalTimeLayout))
		event.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icalTimeLayout))
		event.SetSummary(a.Summary())
		event.SetDescription(eventDescription(a))
		if a.Department != "" {
			event.SetLocation(a.Department)
		}
	}

	return []byte(cal.Serialize()), nil
}

// shiftTime combines the assignment date with an HH:MM clock value
func shiftTime(date time.Time, clock string) (time.Time, error) {
	minutes, err := workforce.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, time.Local), nil
}

func eventDescription(a *workforce.AssignmentDetail) string {
	lines := []string{
		fmt.Sprintf("Employee: %s", a.EmployeeName),
		fmt.Sprintf("Role: %s", a.Role),
		fmt.Sprintf("Department: %s", a.Department),
		fmt.Sprintf("Status: %s", a.Status),
	}
	if a.Notes != "" {
		lines = append(lines, "Notes: "+a.Notes)
	}
	return strings.Join(lines, "\n")
}
