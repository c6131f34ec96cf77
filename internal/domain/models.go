package domain

import "time"

// Enumerations
const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"

	EventIn  EventKind = "IN"
	EventOut EventKind = "OUT"
)

type Role string

// EventKind is the two-valued attendance transition tag.
type EventKind string

// Valid reports whether k is one of the closed set of event kinds.
func (k EventKind) Valid() bool {
	return k == EventIn || k == EventOut
}

// Opposite returns the other event kind.
func (k EventKind) Opposite() EventKind {
	if k == EventIn {
		return EventOut
	}
	return EventIn
}

func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleHR || r == RoleAdmin
}

type Employee struct {
	ID           int64
	Code         string
	FullName     string
	Email        string
	Role         Role
	IsActive     bool
	PasswordHash *string
	CreatedAt    time.Time
}

// AttendanceEvent is one immutable row of the attendance ledger.
type AttendanceEvent struct {
	ID         int64
	EmployeeID int64
	Kind       EventKind
	Timestamp  time.Time
	Source     string
}

// DailySummary is the derived per-day aggregate, unique per (employee, date).
// EmployeeName and EmployeeCode are filled by a read-time join and never stored.
type DailySummary struct {
	ID                   int64
	EmployeeID           int64
	Date                 time.Time
	FirstIn              *time.Time
	LastOut              *time.Time
	TotalDurationSeconds int64
	Notes                *string
	EmployeeName         string
	EmployeeCode         string
}
