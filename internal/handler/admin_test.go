package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
	"github.com/Tajaar/Employee-Attendence-System/internal/repository"
	"github.com/Tajaar/Employee-Attendence-System/internal/server/authctx"
	"github.com/Tajaar/Employee-Attendence-System/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (m memEmployees) GetByCode(ctx context.Context, code string) (*domain.Employee, error) {
	for _, e := range m {
		if e.Code == code {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memEmployees) ListActive(ctx context.Context) ([]domain.Employee, error) {
	var items []domain.Employee
	for _, e := range m {
		if e.IsActive {
			items = append(items, e)
		}
	}
	return items, nil
}

func newAdminRouter(t *testing.T, store *memStore, summaries *memSummaries) http.Handler {
	t.Helper()
	employees := memEmployees{
		42: {ID: 42, Code: "EMP042", FullName: "Test Employee", Email: "emp@example.com", Role: domain.RoleEmployee, IsActive: true},
	}
	svc := service.AttendanceService{
		Store:     store,
		Events:    store,
		Summaries: summaries,
		Employees: employees,
		Now:       func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
	r := chi.NewRouter()
	r.Use(withUser(&authctx.CurrentUser{ID: 1, Role: domain.RoleAdmin}))
	AdminHandler{Service: svc, Employees: employees}.RegisterRoutes(r)
	return r
}

func testSummary() domain.DailySummary {
	firstIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	lastOut := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	return domain.DailySummary{
		ID:                   7,
		EmployeeID:           42,
		Date:                 time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		FirstIn:              &firstIn,
		LastOut:              &lastOut,
		TotalDurationSeconds: 28800,
		EmployeeName:         "Test Employee",
		EmployeeCode:         "EMP042",
	}
}

func TestAdminSummariesIncludeEmployeeIdentity(t *testing.T) {
	summaries := &memSummaries{items: []domain.DailySummary{testSummary()}}
	router := newAdminRouter(t, &memStore{}, summaries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/attendance/summary?employee_id=42&date=2025-03-10&start_date=2025-01-01", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var items []struct {
		Date                 string `json:"date"`
		FirstIn              string `json:"first_in"`
		LastOut              string `json:"last_out"`
		TotalDurationSeconds int64  `json:"total_duration_seconds"`
		EmployeeName         string `json:"employee_name"`
		EmployeeCode         string `json:"employee_code"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "2025-03-10", items[0].Date)
	assert.Equal(t, "2025-03-10T09:00:00Z", items[0].FirstIn)
	assert.Equal(t, "2025-03-10T17:00:00Z", items[0].LastOut)
	assert.Equal(t, int64(28800), items[0].TotalDurationSeconds)
	assert.Equal(t, "Test Employee", items[0].EmployeeName)
	assert.Equal(t, "EMP042", items[0].EmployeeCode)

	// All query filters reach the store; the specific date discards the
	// range at the storage layer.
	require.NotNil(t, summaries.lastFilter.Date)
	require.NotNil(t, summaries.lastFilter.EmployeeID)
	assert.Equal(t, int64(42), *summaries.lastFilter.EmployeeID)
}

func TestAdminSummaryExportIsXLSX(t *testing.T) {
	summaries := &memSummaries{items: []domain.DailySummary{testSummary()}}
	router := newAdminRouter(t, &memStore{}, summaries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/attendance/summary/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_summary.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestAdminEmployeeAttendanceByCode(t *testing.T) {
	store := &memStore{}
	store.events = append(store.events, domain.AttendanceEvent{
		ID: 1, EmployeeID: 42, Kind: domain.EventIn,
		Timestamp: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), Source: "web",
	})
	summaries := &memSummaries{items: []domain.DailySummary{testSummary()}}
	router := newAdminRouter(t, store, summaries)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/employee/attendance?code=EMP042", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var data struct {
		Employee struct {
			EmployeeCode string `json:"employee_code"`
			FullName     string `json:"full_name"`
		} `json:"employee"`
		Summary []json.RawMessage `json:"summary"`
		Logs    []json.RawMessage `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "EMP042", data.Employee.EmployeeCode)
	assert.Len(t, data.Summary, 1)
	assert.Len(t, data.Logs, 1)
}

func TestAdminEmployeeAttendanceNotFound(t *testing.T) {
	router := newAdminRouter(t, &memStore{}, &memSummaries{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/employee/attendance?code=NOPE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	missing := httptest.NewRecorder()
	router.ServeHTTP(missing, httptest.NewRequest("GET", "/admin/employee/attendance", nil))
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}
