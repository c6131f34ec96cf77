package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
	"github.com/Tajaar/Employee-Attendence-System/internal/repository"
	"github.com/Tajaar/Employee-Attendence-System/internal/server/authctx"
	"github.com/Tajaar/Employee-Attendence-System/internal/service"
	"github.com/go-chi/chi/v5"
)

// AttendanceHandler exposes the employee-facing attendance endpoints.
// The employee identity always comes from the authenticated token, never
// from the request payload.
type AttendanceHandler struct {
	Service service.AttendanceService
}

func (h AttendanceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/attendance/mark", h.mark)
	r.Post("/attendance/toggle", h.toggle)
	r.Get("/attendance/status", h.status)
	r.Get("/attendance/logs", h.myLogs)
	r.Get("/attendance/summary", h.mySummary)
}

func (h AttendanceHandler) mark(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		EventType string `json:"event_type"`
		Source    string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Source == "" {
		req.Source = "web"
	}
	ev, err := h.Service.Mark(r.Context(), user.ID, domain.EventKind(req.EventType), req.Source)
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventJSON(*ev))
}

func (h AttendanceHandler) toggle(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ev, err := h.Service.Toggle(r.Context(), user.ID, "web")
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	msg := "Checked IN successfully"
	if ev.Kind == domain.EventOut {
		msg = "Checked OUT successfully"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"status":  string(ev.Kind),
		"event":   eventJSON(*ev),
	})
}

func (h AttendanceHandler) status(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	status, err := h.Service.CurrentStatus(r.Context(), user.ID)
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (h AttendanceHandler) myLogs(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := eventFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format")
		return
	}
	filter.EmployeeID = &user.ID
	items, err := h.Service.Logs(r.Context(), filter)
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventListJSON(items))
}

func (h AttendanceHandler) mySummary(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := summaryFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format")
		return
	}
	filter.EmployeeID = &user.ID
	items, err := h.Service.DaySummaries(r.Context(), filter)
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryListJSON(items))
}

func eventFilterFromQuery(r *http.Request) (repository.EventFilter, error) {
	var f repository.EventFilter
	start, err := parseDateQuery(r, "start_date")
	if err != nil {
		return f, err
	}
	end, err := parseDateQuery(r, "end_date")
	if err != nil {
		return f, err
	}
	f.StartDate = start
	f.EndDate = end
	return f, nil
}

func summaryFilterFromQuery(r *http.Request) (repository.SummaryFilter, error) {
	var f repository.SummaryFilter
	start, err := parseDateQuery(r, "start_date")
	if err != nil {
		return f, err
	}
	end, err := parseDateQuery(r, "end_date")
	if err != nil {
		return f, err
	}
	date, err := parseDateQuery(r, "date")
	if err != nil {
		return f, err
	}
	f.StartDate = start
	f.EndDate = end
	f.Date = date
	return f, nil
}

func writeAttendanceError(w http.ResponseWriter, err error) {
	var dup *service.DuplicateEventError
	switch {
	case errors.As(err, &dup):
		writeError(w, http.StatusConflict, dup.Error())
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "employee not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func eventJSON(ev domain.AttendanceEvent) map[string]any {
	return map[string]any{
		"id":          ev.ID,
		"employee_id": ev.EmployeeID,
		"event_type":  string(ev.Kind),
		"timestamp":   ev.Timestamp.Format(time.RFC3339),
		"source":      ev.Source,
	}
}

func eventListJSON(items []domain.AttendanceEvent) []map[string]any {
	resp := make([]map[string]any, 0, len(items))
	for _, ev := range items {
		resp = append(resp, eventJSON(ev))
	}
	return resp
}

func summaryJSON(s domain.DailySummary) map[string]any {
	notes := ""
	if s.Notes != nil {
		notes = *s.Notes
	}
	return map[string]any{
		"id":                     s.ID,
		"employee_id":            s.EmployeeID,
		"date":                   s.Date.Format(dateLayout),
		"first_in":               timeOrNil(s.FirstIn),
		"last_out":               timeOrNil(s.LastOut),
		"total_duration_seconds": s.TotalDurationSeconds,
		"notes":                  notes,
		"employee_name":          s.EmployeeName,
		"employee_code":          s.EmployeeCode,
	}
}

func summaryListJSON(items []domain.DailySummary) []map[string]any {
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, summaryJSON(s))
	}
	return resp
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
