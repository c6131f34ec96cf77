package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tajaar/Employee-Attendence-System/internal/db"
	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is satisfied by both pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

const dateLayout = "2006-01-02"

// EventRepository is the append-only attendance ledger. Rows are never
// updated or deleted.
type EventRepository struct {
	DB *db.Postgres
}

// EventFilter narrows List results. All fields are optional and combine
// with AND semantics; date bounds are inclusive and compare the event's
// date component only.
type EventFilter struct {
	EmployeeID *int64
	StartDate  *time.Time
	EndDate    *time.Time
}

func (r EventRepository) Append(ctx context.Context, employeeID int64, kind domain.EventKind, ts time.Time, source string) (*domain.AttendanceEvent, error) {
	return appendEventWith(ctx, r.DB.Pool, employeeID, kind, ts, source)
}

func (r EventRepository) List(ctx context.Context, f EventFilter) ([]domain.AttendanceEvent, error) {
	var (
		where []string
		args  []any
	)
	if f.EmployeeID != nil {
		args = append(args, *f.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, f.StartDate.Format(dateLayout))
		where = append(where, fmt.Sprintf("event_time::date >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, f.EndDate.Format(dateLayout))
		where = append(where, fmt.Sprintf("event_time::date <= $%d", len(args)))
	}

	query := `
		SELECT id, employee_id, event_type, event_time, source
		FROM attendance_logs
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY event_time DESC"

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AttendanceEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ev)
	}
	return items, rows.Err()
}

// LastOnDate returns the chronologically latest event for the employee on
// the given calendar date, or ErrNotFound when the day has no events.
func (r EventRepository) LastOnDate(ctx context.Context, employeeID int64, day time.Time) (*domain.AttendanceEvent, error) {
	return lastEventOnDateWith(ctx, r.DB.Pool, employeeID, day)
}

func appendEventWith(ctx context.Context, q pgxQuerier, employeeID int64, kind domain.EventKind, ts time.Time, source string) (*domain.AttendanceEvent, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO attendance_logs (employee_id, event_type, event_time, source)
		VALUES ($1,$2,$3,$4)
		RETURNING id, employee_id, event_type, event_time, source
	`, employeeID, kind, ts, source)
	return scanEvent(row)
}

func lastEventOnDateWith(ctx context.Context, q pgxQuerier, employeeID int64, day time.Time) (*domain.AttendanceEvent, error) {
	row := q.QueryRow(ctx, `
		SELECT id, employee_id, event_type, event_time, source
		FROM attendance_logs
		WHERE employee_id=$1 AND event_time::date = $2
		ORDER BY event_time DESC, id DESC
		LIMIT 1
	`, employeeID, day.Format(dateLayout))
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

func eventsOnDateWith(ctx context.Context, q pgxQuerier, employeeID int64, day time.Time) ([]domain.AttendanceEvent, error) {
	rows, err := q.Query(ctx, `
		SELECT id, employee_id, event_type, event_time, source
		FROM attendance_logs
		WHERE employee_id=$1 AND event_time::date = $2
		ORDER BY event_time ASC, id ASC
	`, employeeID, day.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AttendanceEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ev)
	}
	return items, rows.Err()
}

func scanEvent(row interface {
	Scan(dest ...any) error
}) (*domain.AttendanceEvent, error) {
	var (
		ev   domain.AttendanceEvent
		kind string
	)
	if err := row.Scan(&ev.ID, &ev.EmployeeID, &kind, &ev.Timestamp, &ev.Source); err != nil {
		return nil, err
	}
	ev.Kind = domain.EventKind(kind)
	return &ev, nil
}
