package handler

import (
	"bytes"
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

// memStore backs the handler tests with an in-memory ledger implementing
// the service's store interfaces.
type memStore struct {
	nextID int64
	events []domain.AttendanceEvent
}

func day(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (m *memStore) Mark(ctx context.Context, p repository.MarkParams) (*domain.AttendanceEvent, error) {
	if last, err := m.LastOnDate(ctx, p.EmployeeID, p.Time); err == nil && last.Kind == p.Kind {
		return nil, repository.ErrDuplicateEvent
	}
	m.nextID++
	ev := domain.AttendanceEvent{
		ID:         m.nextID,
		EmployeeID: p.EmployeeID,
		Kind:       p.Kind,
		Timestamp:  p.Time,
		Source:     p.Source,
	}
	m.events = append(m.events, ev)
	return &ev, nil
}

func (m *memStore) LastOnDate(ctx context.Context, employeeID int64, d time.Time) (*domain.AttendanceEvent, error) {
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].EmployeeID == employeeID && day(m.events[i].Timestamp, d) {
			return &m.events[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) List(ctx context.Context, f repository.EventFilter) ([]domain.AttendanceEvent, error) {
	var items []domain.AttendanceEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		ev := m.events[i]
		if f.EmployeeID != nil && ev.EmployeeID != *f.EmployeeID {
			continue
		}
		items = append(items, ev)
	}
	return items, nil
}

type memEmployees map[int64]domain.Employee

func (m memEmployees) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	e, ok := m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

type memSummaries struct {
	lastFilter repository.SummaryFilter
	items      []domain.DailySummary
}

func (m *memSummaries) List(ctx context.Context, f repository.SummaryFilter) ([]domain.DailySummary, error) {
	m.lastFilter = f
	return m.items, nil
}

func withUser(user *authctx.CurrentUser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user != nil {
				r = r.WithContext(authctx.WithCurrentUser(r.Context(), *user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newAttendanceRouter(t *testing.T, store *memStore, summaries *memSummaries, user *authctx.CurrentUser) http.Handler {
	t.Helper()
	svc := service.AttendanceService{
		Store:     store,
		Events:    store,
		Summaries: summaries,
		Employees: memEmployees{
			42: {ID: 42, Code: "EMP042", FullName: "Test Employee", Role: domain.RoleEmployee, IsActive: true},
		},
		Now: func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
	r := chi.NewRouter()
	r.Use(withUser(user))
	AttendanceHandler{Service: svc}.RegisterRoutes(r)
	return r
}

func employee42() *authctx.CurrentUser {
	return &authctx.CurrentUser{ID: 42, Code: "EMP042", Role: domain.RoleEmployee}
}

func TestMarkEndpoint(t *testing.T) {
	router := newAttendanceRouter(t, &memStore{}, &memSummaries{}, employee42())

	body := bytes.NewBufferString(`{"event_type":"IN","source":"web"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/attendance/mark", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	var ev struct {
		EventType string `json:"event_type"`
		Source    string `json:"source"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &ev))
	assert.Equal(t, "IN", ev.EventType)
	assert.Equal(t, "web", ev.Source)
	assert.Equal(t, "2025-03-10T09:00:00Z", ev.Timestamp)
}

func TestMarkEndpointDuplicate(t *testing.T) {
	store := &memStore{}
	router := newAttendanceRouter(t, store, &memSummaries{}, employee42())

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest("POST", "/attendance/mark", bytes.NewBufferString(`{"event_type":"IN"}`)))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest("POST", "/attendance/mark", bytes.NewBufferString(`{"event_type":"IN"}`)))
	require.Equal(t, http.StatusConflict, second.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "already checked in", resp.Message)
	assert.Len(t, store.events, 1)
}

func TestMarkEndpointRejectsUnknownKind(t *testing.T) {
	router := newAttendanceRouter(t, &memStore{}, &memSummaries{}, employee42())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/attendance/mark", bytes.NewBufferString(`{"event_type":"LUNCH"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkEndpointRequiresAuth(t *testing.T) {
	router := newAttendanceRouter(t, &memStore{}, &memSummaries{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/attendance/mark", bytes.NewBufferString(`{"event_type":"IN"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusEndpointDefaultsToOut(t *testing.T) {
	router := newAttendanceRouter(t, &memStore{}, &memSummaries{}, employee42())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/attendance/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var data struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "OUT", data.Status)
}

func TestToggleThenStatusRoundTrip(t *testing.T) {
	store := &memStore{}
	router := newAttendanceRouter(t, store, &memSummaries{}, employee42())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/attendance/toggle", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var data struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "Checked IN successfully", data.Message)
	assert.Equal(t, "IN", data.Status)

	status := httptest.NewRecorder()
	router.ServeHTTP(status, httptest.NewRequest("GET", "/attendance/status", nil))
	var statusResp envelope
	require.NoError(t, json.Unmarshal(status.Body.Bytes(), &statusResp))
	var statusData struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(statusResp.Data, &statusData))
	assert.Equal(t, "IN", statusData.Status)
}

func TestMyLogsRoundTrip(t *testing.T) {
	store := &memStore{}
	router := newAttendanceRouter(t, store, &memSummaries{}, employee42())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/attendance/mark", bytes.NewBufferString(`{"event_type":"IN","source":"kiosk"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	logs := httptest.NewRecorder()
	router.ServeHTTP(logs, httptest.NewRequest("GET", "/attendance/logs", nil))
	require.Equal(t, http.StatusOK, logs.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(logs.Body.Bytes(), &resp))
	var items []struct {
		EmployeeID int64  `json:"employee_id"`
		EventType  string `json:"event_type"`
		Source     string `json:"source"`
		Timestamp  string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, int64(42), items[0].EmployeeID)
	assert.Equal(t, "IN", items[0].EventType)
	assert.Equal(t, "kiosk", items[0].Source)
	assert.Equal(t, "2025-03-10T09:00:00Z", items[0].Timestamp)
}

func TestMySummaryScopesToCurrentUser(t *testing.T) {
	summaries := &memSummaries{}
	router := newAttendanceRouter(t, &memStore{}, summaries, employee42())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/attendance/summary?start_date=2025-03-01&end_date=2025-03-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, summaries.lastFilter.EmployeeID)
	assert.Equal(t, int64(42), *summaries.lastFilter.EmployeeID)
	require.NotNil(t, summaries.lastFilter.StartDate)
	require.NotNil(t, summaries.lastFilter.EndDate)
}
