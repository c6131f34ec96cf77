package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
	"github.com/Tajaar/Employee-Attendence-System/internal/repository"
	"github.com/Tajaar/Employee-Attendence-System/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

// EmployeeFinder is the slice of the employee directory the admin
// endpoints need.
type EmployeeFinder interface {
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	GetByCode(ctx context.Context, code string) (*domain.Employee, error)
	ListActive(ctx context.Context) ([]domain.Employee, error)
}

// AdminHandler exposes the admin/hr review surface. Role gating happens in
// the router; by the time a request lands here the caller is admin or hr.
type AdminHandler struct {
	Service   service.AttendanceService
	Auth      *service.AuthService
	Employees EmployeeFinder
}

func (h AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/employees", h.listEmployees)
	r.Get("/admin/attendance/logs", h.logs)
	r.Get("/admin/attendance/summary", h.summaries)
	r.Get("/admin/attendance/summary/export", h.exportSummaries)
	r.Get("/admin/employee/attendance", h.employeeAttendance)
}

// RegisterAdminOnlyRoutes holds the endpoints HR must not reach.
func (h AdminHandler) RegisterAdminOnlyRoutes(r chi.Router) {
	r.Post("/admin/employees", h.createEmployee)
}

func (h AdminHandler) listEmployees(w http.ResponseWriter, r *http.Request) {
	items, err := h.Employees.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, e := range items {
		resp = append(resp, employeeJSON(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h AdminHandler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeCode string `json:"employee_code"`
		FullName     string `json:"full_name"`
		Email        string `json:"email"`
		Password     string `json:"password"`
		Role         string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	emp, err := h.Auth.Register(r.Context(), service.RegisterInput{
		Code:     req.EmployeeCode,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, employeeJSON(*emp))
}

func (h AdminHandler) logs(w http.ResponseWriter, r *http.Request) {
	filter, err := eventFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format")
		return
	}
	employeeID, err := parseIDQuery(r, "employee_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid employee_id")
		return
	}
	filter.EmployeeID = employeeID
	items, err := h.Service.Logs(r.Context(), filter)
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventListJSON(items))
}

func (h AdminHandler) summaries(w http.ResponseWriter, r *http.Request) {
	filter, err := h.summaryFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Service.DaySummaries(r.Context(), filter)
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryListJSON(items))
}

func (h AdminHandler) exportSummaries(w http.ResponseWriter, r *http.Request) {
	filter, err := h.summaryFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Service.DaySummaries(r.Context(), filter)
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	data, err := exportSummariesXLSX(items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance_summary.xlsx"`)
	_, _ = w.Write(data)
}

// employeeAttendance serves the combined per-employee review view:
// the employee record plus all summaries and logs, looked up by
// ?code=EMP001 or ?id=3.
func (h AdminHandler) employeeAttendance(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	idStr := r.URL.Query().Get("id")
	if code == "" && idStr == "" {
		writeError(w, http.StatusBadRequest, "provide employee code or id")
		return
	}

	var (
		emp *domain.Employee
		err error
	)
	if code != "" {
		emp, err = h.Employees.GetByCode(r.Context(), code)
	} else {
		var id int64
		id, err = strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid employee id")
			return
		}
		emp, err = h.Employees.Get(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries, err := h.Service.DaySummaries(r.Context(), repository.SummaryFilter{EmployeeID: &emp.ID})
	if err != nil {
		writeAttendanceError(w, err)
		return
	}
	logs, err := h.Service.Logs(r.Context(), repository.EventFilter{EmployeeID: &emp.ID})
	if err != nil {
		writeAttendanceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"employee": employeeJSON(*emp),
		"summary":  summaryListJSON(summaries),
		"logs":     eventListJSON(logs),
	})
}

func (h AdminHandler) summaryFilter(r *http.Request) (repository.SummaryFilter, error) {
	filter, err := summaryFilterFromQuery(r)
	if err != nil {
		return filter, errors.New("invalid date format")
	}
	employeeID, err := parseIDQuery(r, "employee_id")
	if err != nil {
		return filter, errors.New("invalid employee_id")
	}
	filter.EmployeeID = employeeID
	return filter, nil
}

func employeeJSON(e domain.Employee) map[string]any {
	return map[string]any{
		"id":            e.ID,
		"employee_code": e.Code,
		"full_name":     e.FullName,
		"email":         e.Email,
		"role":          string(e.Role),
		"is_active":     e.IsActive,
	}
}

func exportSummariesXLSX(items []domain.DailySummary) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Employee Code", "Employee Name", "Date", "First In", "Last Out", "Duration (s)", "Notes"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for rIdx, s := range items {
		row := rIdx + 2
		values := []any{
			s.EmployeeCode,
			s.EmployeeName,
			s.Date.Format(dateLayout),
			stringOrEmpty(timeOrNil(s.FirstIn)),
			stringOrEmpty(timeOrNil(s.LastOut)),
			s.TotalDurationSeconds,
			derefString(s.Notes),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 20)
	_ = f.SetColWidth(sheet, "C", "E", 22)
	_ = f.SetColWidth(sheet, "F", "F", 14)
	_ = f.SetColWidth(sheet, "G", "G", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringOrEmpty(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
