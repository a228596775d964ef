// Package clock abstracts "today" so core computations stay deterministic
// under test and calendar dates resolve against the configured timezone
// rather than the host's.
package clock

import "time"

// Clock supplies the current moment and calendar date.
type Clock interface {
	Now() time.Time
	// Today returns the current calendar date in the configured timezone,
	// normalized to midnight UTC for date comparisons.
	Today() time.Time
}

// System is the wall clock resolved against a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem builds a System clock. A nil location falls back to UTC.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

func (s System) Now() time.Time {
	return time.Now().In(s.loc)
}

func (s System) Today() time.Time {
	now := s.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Fixed is a clock pinned to a single moment, for tests.
type Fixed struct {
	Moment time.Time
}

func (f Fixed) Now() time.Time {
	return f.Moment
}

func (f Fixed) Today() time.Time {
	return time.Date(f.Moment.Year(), f.Moment.Month(), f.Moment.Day(), 0, 0, 0, 0, time.UTC)
}
