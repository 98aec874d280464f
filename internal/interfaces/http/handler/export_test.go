package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rosterly/backend/internal/application/export"
	"github.com/rosterly/backend/internal/domain/workforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exportEmployees struct {
	workforce.EmployeeRepository
	lastFilter workforce.ExportFilter
}

func (s *exportEmployees) FindForExport(ctx context.Context, filter workforce.ExportFilter) ([]workforce.Employee, error) {
	s.lastFilter = filter
	e, _ := workforce.NewEmployee("Alice Chen", "alice@example.com", workforce.RoleServer)
	return []workforce.Employee{*e}, nil
}

type exportSchedules struct {
	workforce.ScheduleRepository
}

func (s *exportSchedules) FindAssignmentsForExport(ctx context.Context, filter workforce.ExportFilter) ([]workforce.AssignmentDetail, error) {
	return []workforce.AssignmentDetail{{
		AssignmentID:  uuid.New(),
		Date:          time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:00",
		EndTime:       "17:00",
		ShiftName:     "Morning",
		EmployeeName:  "Alice Chen",
		EmployeeEmail: "alice@example.com",
		Role:          workforce.RoleServer,
		Status:        workforce.AssignmentStatusScheduled,
	}}, nil
}

func newExportRig() (*gin.Engine, *exportEmployees) {
	employees := &exportEmployees{}
	svc := export.NewService(employees, &exportSchedules{}, export.Options{}, nil)
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewExportHandler(svc).RegisterRoutes(api)
	return engine, employees
}

func TestExportEndpoint_CSV(t *testing.T) {
	engine, _ := newExportRig()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/employees?format=csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="employees_`)
	assert.Contains(t, w.Body.String(), "Alice Chen")
}

func TestExportEndpoint_DefaultsToCSV(t *testing.T) {
	engine, _ := newExportRig()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/employees", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}

func TestExportEndpoint_ICalForSchedules(t *testing.T) {
	engine, _ := newExportRig()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/schedules?format=ics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")
}

func TestExportEndpoint_ICalForEmployeesRejected(t *testing.T) {
	engine, _ := newExportRig()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/employees?format=ical", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEndpoint_BadInputs(t *testing.T) {
	engine, _ := newExportRig()

	tests := []struct {
		name string
		url  string
	}{
		{"unknown entity", "/api/v1/export/invoices"},
		{"unknown format", "/api/v1/export/employees?format=docx"},
		{"bad date", "/api/v1/export/employees?date_from=posterday"},
		{"unknown role", "/api/v1/export/employees?role=astronaut"},
		{"inverted range", "/api/v1/export/employees?date_from=2026-03-10&date_to=2026-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestExportEndpoint_FilterPassthrough(t *testing.T) {
	engine, employees := newExportRig()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/export/employees?department=Kitchen&role=chef&search=alice&date_from=2026-03-01", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Kitchen", employees.lastFilter.Department)
	assert.Equal(t, "chef", employees.lastFilter.Role)
	assert.Equal(t, "alice", employees.lastFilter.Search)
	require.NotNil(t, employees.lastFilter.DateFrom)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *employees.lastFilter.DateFrom)
}
