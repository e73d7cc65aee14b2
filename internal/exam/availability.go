package exam

import "time"

// WindowEnd is the last instant a submission for t is accepted.
func WindowEnd(t Test) time.Time {
	return t.ScheduledStart.Add(time.Duration(t.DurationMinutes) * time.Minute)
}

// IsActive reports whether now falls inside the scored window
// [scheduled_start, scheduled_start+duration], bounds inclusive.
func IsActive(t Test, now time.Time) bool {
	return !now.Before(t.ScheduledStart) && !now.After(WindowEnd(t))
}
