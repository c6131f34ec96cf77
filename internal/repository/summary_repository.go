package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tajaar/Employee-Attendence-System/internal/db"
	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
)

// SummaryRepository maintains the derived per-day rows, one per
// (employee, date).
type SummaryRepository struct {
	DB *db.Postgres
}

// SummaryFilter narrows List results. Date takes precedence over the
// StartDate/EndDate range; when set, the bounds are ignored entirely.
type SummaryFilter struct {
	EmployeeID *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Date       *time.Time
}

// Normalize applies the specific-date precedence rule.
func (f SummaryFilter) Normalize() SummaryFilter {
	if f.Date != nil {
		f.StartDate = nil
		f.EndDate = nil
	}
	return f
}

// List returns summaries newest date first, each joined with the
// employee's display name and code at read time.
func (r SummaryRepository) List(ctx context.Context, f SummaryFilter) ([]domain.DailySummary, error) {
	f = f.Normalize()

	var (
		where []string
		args  []any
	)
	if f.EmployeeID != nil {
		args = append(args, *f.EmployeeID)
		where = append(where, fmt.Sprintf("s.employee_id = $%d", len(args)))
	}
	if f.Date != nil {
		args = append(args, f.Date.Format(dateLayout))
		where = append(where, fmt.Sprintf("s.date = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, f.StartDate.Format(dateLayout))
		where = append(where, fmt.Sprintf("s.date >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, f.EndDate.Format(dateLayout))
		where = append(where, fmt.Sprintf("s.date <= $%d", len(args)))
	}

	query := `
		SELECT s.id, s.employee_id, s.date, s.first_in, s.last_out, s.total_duration_seconds, s.notes,
		       COALESCE(e.full_name, ''), COALESCE(e.employee_code, '')
		FROM attendance_summary s
		LEFT JOIN employees e ON s.employee_id = e.id
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.date DESC, s.employee_id ASC"

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DailySummary
	for rows.Next() {
		var s domain.DailySummary
		if err := rows.Scan(
			&s.ID,
			&s.EmployeeID,
			&s.Date,
			&s.FirstIn,
			&s.LastOut,
			&s.TotalDurationSeconds,
			&s.Notes,
			&s.EmployeeName,
			&s.EmployeeCode,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// lockDayWith upserts a bare summary row for (employee, date) and returns
// its id. The ON CONFLICT DO UPDATE takes a row lock either way, which
// serializes concurrent marks for the same employee and day until the
// surrounding transaction commits.
func lockDayWith(ctx context.Context, q pgxQuerier, employeeID int64, day time.Time) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO attendance_summary (employee_id, date, total_duration_seconds)
		VALUES ($1,$2,0)
		ON CONFLICT (employee_id, date) DO UPDATE SET employee_id = EXCLUDED.employee_id
		RETURNING id
	`, employeeID, day.Format(dateLayout)).Scan(&id)
	return id, err
}

// upsertDayWith overwrites the derived fields for (employee, date).
// Notes are manual annotations and stay untouched.
func upsertDayWith(ctx context.Context, q pgxQuerier, employeeID int64, day time.Time, totals domain.DayTotals) error {
	_, err := q.Exec(ctx, `
		INSERT INTO attendance_summary (employee_id, date, first_in, last_out, total_duration_seconds)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			first_in = EXCLUDED.first_in,
			last_out = EXCLUDED.last_out,
			total_duration_seconds = EXCLUDED.total_duration_seconds
	`, employeeID, day.Format(dateLayout), totals.FirstIn, totals.LastOut, totals.TotalDurationSeconds)
	return err
}
