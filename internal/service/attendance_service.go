package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
	"github.com/Tajaar/Employee-Attendence-System/internal/repository"
)

// ErrValidation marks malformed input rejected before any storage access.
var ErrValidation = errors.New("invalid input")

// DuplicateEventError signals that the day's latest event for the employee
// already has the requested kind. No state changes.
type DuplicateEventError struct {
	Kind domain.EventKind
}

func (e *DuplicateEventError) Error() string {
	return "already checked " + strings.ToLower(string(e.Kind))
}

// AttendanceStore is the transactional mark flow plus the day's-last-event
// lookup used for status derivation.
type AttendanceStore interface {
	Mark(ctx context.Context, p repository.MarkParams) (*domain.AttendanceEvent, error)
	LastOnDate(ctx context.Context, employeeID int64, day time.Time) (*domain.AttendanceEvent, error)
}

type EventLister interface {
	List(ctx context.Context, f repository.EventFilter) ([]domain.AttendanceEvent, error)
}

type SummaryLister interface {
	List(ctx context.Context, f repository.SummaryFilter) ([]domain.DailySummary, error)
}

type EmployeeDirectory interface {
	Get(ctx context.Context, id int64) (*domain.Employee, error)
}

// AttendanceService is the public contract for attendance operations.
// Authorization is the caller's concern; the service trusts the employee
// identity handed to it.
type AttendanceService struct {
	Store     AttendanceStore
	Events    EventLister
	Summaries SummaryLister
	Employees EmployeeDirectory
	Logger    *slog.Logger
	Now       func() time.Time
}

func (s AttendanceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Mark records one attendance event for the employee at the current server
// time and refreshes that day's summary atomically.
func (s AttendanceService) Mark(ctx context.Context, employeeID int64, kind domain.EventKind, source string) (*domain.AttendanceEvent, error) {
	if employeeID <= 0 {
		return nil, fmt.Errorf("%w: missing employee identity", ErrValidation)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown event kind %q", ErrValidation, string(kind))
	}

	emp, err := s.Employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive {
		return nil, repository.ErrNotFound
	}

	ev, err := s.Store.Mark(ctx, repository.MarkParams{
		EmployeeID: employeeID,
		Kind:       kind,
		Time:       s.now(),
		Source:     source,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			return nil, &DuplicateEventError{Kind: kind}
		}
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("attendance marked", "employee_id", employeeID, "kind", ev.Kind, "source", source)
	}
	return ev, nil
}

// Toggle marks whichever event kind follows the employee's current status:
// OUT toggles to IN, IN toggles to OUT. A day with no events toggles to IN.
func (s AttendanceService) Toggle(ctx context.Context, employeeID int64, source string) (*domain.AttendanceEvent, error) {
	status, err := s.CurrentStatus(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.Mark(ctx, employeeID, status.Opposite(), source)
}

// CurrentStatus derives the employee's presence from today's last event
// only. A day without events reads as OUT, regardless of yesterday.
func (s AttendanceService) CurrentStatus(ctx context.Context, employeeID int64) (domain.EventKind, error) {
	if employeeID <= 0 {
		return domain.EventOut, fmt.Errorf("%w: missing employee identity", ErrValidation)
	}
	last, err := s.Store.LastOnDate(ctx, employeeID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.EventOut, nil
		}
		return domain.EventOut, err
	}
	if last.Kind == domain.EventIn {
		return domain.EventIn, nil
	}
	return domain.EventOut, nil
}

// Logs lists ledger rows newest first, honoring the optional filters.
func (s AttendanceService) Logs(ctx context.Context, f repository.EventFilter) ([]domain.AttendanceEvent, error) {
	return s.Events.List(ctx, f)
}

// DaySummaries lists summary rows newest date first. A specific date in
// the filter wins over the range bounds.
func (s AttendanceService) DaySummaries(ctx context.Context, f repository.SummaryFilter) ([]domain.DailySummary, error) {
	return s.Summaries.List(ctx, f)
}
