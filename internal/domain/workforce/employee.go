package workforce

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rosterly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EmployeeRole represents the job role of an employee
type EmployeeRole string

const (
	RoleManager   EmployeeRole = "manager"
	RoleChef      EmployeeRole = "chef"
	RoleCook      EmployeeRole = "cook"
	RoleServer    EmployeeRole = "server"
	RoleHost      EmployeeRole = "host"
	RoleBartender EmployeeRole = "bartender"
	RoleCleaner   EmployeeRole = "cleaner"
)

// EmployeeRoles returns all valid employee roles
func EmployeeRoles() []EmployeeRole {
	return []EmployeeRole{
		RoleManager,
		RoleChef,
		RoleCook,
		RoleServer,
		RoleHost,
		RoleBartender,
		RoleCleaner,
	}
}

// ParseEmployeeRole parses a role string, case-insensitively
func ParseEmployeeRole(s string) (EmployeeRole, error) {
	lower := EmployeeRole(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range EmployeeRoles() {
		if r == lower {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role '%s'", s)
}

// EmployeeStatus represents the employment status
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// Numeric bounds enforced on employee fields
var (
	MinHourlyRate = decimal.Zero
	MaxHourlyRate = decimal.NewFromInt(1000)
)

const (
	MinHoursPerWeek   = 1
	MaxHoursPerWeek   = 168
	MaxQualifications = 20
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like an email address
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Weekdays lists the availability day keys in week order
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DayAvailability describes when an employee can work on one weekday.
// Start and End use "HH:MM" 24-hour clock.
type DayAvailability struct {
	Available bool   `json:"available"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
}

// Availability maps weekday name to that day's availability window
type Availability map[string]DayAvailability

// Value implements driver.Valuer, storing availability as JSON
func (a Availability) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Availability) Scan(value interface{}) error {
	if value == nil {
		*a = Availability{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported availability column type %T", value)
	}
	if len(b) == 0 {
		*a = Availability{}
		return nil
	}
	return json.Unmarshal(b, a)
}

// TotalHours sums the available hours across the week
func (a Availability) TotalHours() float64 {
	var minutes int
	for _, day := range a {
		if !day.Available {
			continue
		}
		start, err := ParseClock(day.Start)
		if err != nil {
			continue
		}
		end, err := ParseClock(day.End)
		if err != nil || end <= start {
			continue
		}
		minutes += end - start
	}
	return float64(minutes) / 60
}

// StringList is a list of strings stored as a JSON column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported list column type %T", value)
	}
	if len(b) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(b, l)
}

// Employee is the aggregate root for workforce members.
// Email is the natural key used by bulk import duplicate detection.
type Employee struct {
	shared.BaseEntity
	Name            string          `gorm:"type:varchar(200);not null"`
	Email           string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Role            EmployeeRole    `gorm:"type:varchar(20);not null"`
	Department      string          `gorm:"type:varchar(100);index"`
	HourlyRate      decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`
	MaxHoursPerWeek int             `gorm:"not null;default:40"`
	Qualifications  StringList      `gorm:"type:text"`
	Availability    Availability    `gorm:"type:text"`
	Status          EmployeeStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedBy       string          `gorm:"type:varchar(200)"`
}

// NewEmployee creates an employee, validating the natural key and role
func NewEmployee(name, email string, role EmployeeRole) (*Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "employee name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !ValidEmail(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", fmt.Sprintf("invalid email address '%s'", email))
	}
	if _, err := ParseEmployeeRole(string(role)); err != nil {
		return nil, shared.NewDomainError("INVALID_ROLE", err.Error())
	}
	return &Employee{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            name,
		Email:           email,
		Role:            role,
		MaxHoursPerWeek: 40,
		Status:          EmployeeStatusActive,
		Qualifications:  StringList{},
		Availability:    Availability{},
	}, nil
}

// SetHourlyRate sets the hourly rate, rounded to 2 decimals.
// Rates outside [0, 1000] are rejected rather than clamped.
func (e *Employee) SetHourlyRate(rate decimal.Decimal) error {
	if rate.LessThan(MinHourlyRate) {
		return shared.NewDomainError("INVALID_RATE", fmt.Sprintf("hourly rate %s must not be negative", rate))
	}
	if rate.GreaterThan(MaxHourlyRate) {
		return shared.NewDomainError("INVALID_RATE",
			fmt.Sprintf("hourly rate %s exceeds maximum %s", rate, MaxHourlyRate))
	}
	e.HourlyRate = rate.Round(2)
	return nil
}

// SetMaxHoursPerWeek sets the weekly hour cap
func (e *Employee) SetMaxHoursPerWeek(hours int) error {
	if hours < MinHoursPerWeek || hours > MaxHoursPerWeek {
		return shared.NewDomainError("INVALID_MAX_HOURS",
			fmt.Sprintf("max hours per week %d must be between %d and %d", hours, MinHoursPerWeek, MaxHoursPerWeek))
	}
	e.MaxHoursPerWeek = hours
	return nil
}

// SetQualifications replaces the qualifications list
func (e *Employee) SetQualifications(quals []string) error {
	if len(quals) > MaxQualifications {
		return shared.NewDomainError("TOO_MANY_QUALIFICATIONS",
			fmt.Sprintf("at most %d qualifications allowed, got %d", MaxQualifications, len(quals)))
	}
	cleaned := make(StringList, 0, len(quals))
	for _, q := range quals {
		q = strings.TrimSpace(q)
		if q != "" {
			cleaned = append(cleaned, q)
		}
	}
	e.Qualifications = cleaned
	return nil
}

// SetAvailability replaces the weekly availability.
// The available hours implied by the windows must cover MaxHoursPerWeek.
func (e *Employee) SetAvailability(a Availability) error {
	for day, window := range a {
		if !validWeekday(day) {
			return shared.NewDomainError("INVALID_AVAILABILITY", fmt.Sprintf("unknown weekday '%s'", day))
		}
		if !window.Available {
			continue
		}
		start, err := ParseClock(window.Start)
		if err != nil {
			return shared.NewDomainError("INVALID_AVAILABILITY",
				fmt.Sprintf("%s: invalid start time '%s'", day, window.Start))
		}
		end, err := ParseClock(window.End)
		if err != nil {
			return shared.NewDomainError("INVALID_AVAILABILITY",
				fmt.Sprintf("%s: invalid end time '%s'", day, window.End))
		}
		if end <= start {
			return shared.NewDomainError("INVALID_AVAILABILITY",
				fmt.Sprintf("%s: end %s must be after start %s", day, window.End, window.Start))
		}
	}
	available := a.TotalHours()
	if available < float64(e.MaxHoursPerWeek) {
		return shared.NewDomainError("AVAILABILITY_BELOW_MAX_HOURS",
			fmt.Sprintf("available hours %.1f are less than max hours per week %d", available, e.MaxHoursPerWeek))
	}
	e.Availability = a
	return nil
}

func validWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ParseClock parses an "HH:MM" 24-hour time into minutes since midnight
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time '%s', expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time '%s', expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time '%s', expected HH:MM", s)
	}
	return h*60 + m, nil
}
