package repository

import (
	"context"
	"time"

	"github.com/Tajaar/Employee-Attendence-System/internal/db"
	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
)

// AttendanceRepository executes the transactional mark flow across the
// ledger and the summary table.
type AttendanceRepository struct {
	DB *db.Postgres
}

type MarkParams struct {
	EmployeeID int64
	Kind       domain.EventKind
	Time       time.Time
	Source     string
}

// Mark records one attendance event and refreshes the day's summary in a
// single transaction. The summary row for (employee, date) is locked up
// front so concurrent marks for the same employee and day serialize; the
// loser of the race then sees the winner's event and fails the duplicate
// check. Returns ErrDuplicateEvent when the day's latest event already has
// the requested kind; nothing is written in that case.
func (r AttendanceRepository) Mark(ctx context.Context, p MarkParams) (*domain.AttendanceEvent, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	day := p.Time
	if _, err := lockDayWith(ctx, tx, p.EmployeeID, day); err != nil {
		return nil, err
	}

	last, err := lastEventOnDateWith(ctx, tx, p.EmployeeID, day)
	if err != nil && err != ErrNotFound {
		return nil, err
	}
	if last != nil && last.Kind == p.Kind {
		return nil, ErrDuplicateEvent
	}

	ev, err := appendEventWith(ctx, tx, p.EmployeeID, p.Kind, p.Time, p.Source)
	if err != nil {
		return nil, err
	}

	events, err := eventsOnDateWith(ctx, tx, p.EmployeeID, day)
	if err != nil {
		return nil, err
	}
	totals := domain.SummarizeDay(events, p.Time)
	if err := upsertDayWith(ctx, tx, p.EmployeeID, day, totals); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ev, nil
}

// LastOnDate reads outside any transaction; used for status derivation.
func (r AttendanceRepository) LastOnDate(ctx context.Context, employeeID int64, day time.Time) (*domain.AttendanceEvent, error) {
	return lastEventOnDateWith(ctx, r.DB.Pool, employeeID, day)
}
