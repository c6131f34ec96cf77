package domain

import "time"

// DayTotals holds the derived fields of a DailySummary before persistence.
type DayTotals struct {
	FirstIn              *time.Time
	LastOut              *time.Time
	TotalDurationSeconds int64
}

// SummarizeDay aggregates one employee's events for a single calendar day.
// FirstIn is the earliest IN timestamp, LastOut the latest OUT timestamp.
// Duration is last_out - first_in when both exist; while only an IN exists
// the duration is a running total against now, so it changes between calls
// until the next event lands. With no IN event the duration is zero.
// An OUT recorded before the day's first IN yields a negative duration;
// the value is kept as computed so out-of-order sequences stay auditable.
func SummarizeDay(events []AttendanceEvent, now time.Time) DayTotals {
	var t DayTotals
	for i := range events {
		ev := events[i]
		switch ev.Kind {
		case EventIn:
			if t.FirstIn == nil || ev.Timestamp.Before(*t.FirstIn) {
				ts := ev.Timestamp
				t.FirstIn = &ts
			}
		case EventOut:
			if t.LastOut == nil || ev.Timestamp.After(*t.LastOut) {
				ts := ev.Timestamp
				t.LastOut = &ts
			}
		}
	}

	switch {
	case t.FirstIn != nil && t.LastOut != nil:
		t.TotalDurationSeconds = int64(t.LastOut.Sub(*t.FirstIn).Seconds())
	case t.FirstIn != nil:
		t.TotalDurationSeconds = int64(now.Sub(*t.FirstIn).Seconds())
	}
	return t
}
