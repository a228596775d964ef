// Package schedule expands recurrence rules into concrete occurrence dates.
// All functions are pure: they compute over the activity passed in and keep
// no state, so callers may re-resolve the same range at any time.
package schedule

import (
	"time"

	"example.com/planner/internal/domain"
)

// Occurrences returns the ordered, duplicate-free occurrence dates of an
// activity within [start, end], both bounds inclusive. An inactive activity
// resolves to no occurrences regardless of its rule, and a reversed range is
// empty rather than an error. Unknown recurrence values are rejected so a new
// variant cannot be silently ignored.
func Occurrences(a domain.Activity, start, end time.Time) ([]time.Time, error) {
	if !a.IsActive {
		return nil, nil
	}

	start = domain.DateOf(start)
	end = domain.DateOf(end)
	if start.After(end) {
		return nil, nil
	}

	switch a.Recurrence {
	case domain.RecurrenceOnce:
		anchor := a.AnchorDate()
		if anchor.Before(start) || anchor.After(end) {
			return nil, nil
		}
		return []time.Time{anchor}, nil
	case domain.RecurrenceDaily:
		return eachDay(start, end, func(time.Time) bool { return true }), nil
	case domain.RecurrenceWeekdays:
		return eachDay(start, end, isWeekday), nil
	case domain.RecurrenceWeekends:
		return eachDay(start, end, isWeekend), nil
	case domain.RecurrenceWeekly:
		weekday := a.AnchorDate().Weekday()
		return eachDay(start, end, func(d time.Time) bool { return d.Weekday() == weekday }), nil
	default:
		return nil, domain.Invalidf("unknown recurrence %q", a.Recurrence)
	}
}

// IsDue reports whether the activity has an occurrence on the given date.
func IsDue(a domain.Activity, date time.Time) (bool, error) {
	occurrences, err := Occurrences(a, date, date)
	if err != nil {
		return false, err
	}
	return len(occurrences) == 1, nil
}

// WeekStart normalizes any date to the Monday of its ISO week.
func WeekStart(date time.Time) time.Time {
	date = domain.DateOf(date)
	offset := (int(date.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return date.AddDate(0, 0, -offset)
}

// WeekBounds returns the Monday and Sunday of the ISO week containing date.
func WeekBounds(date time.Time) (time.Time, time.Time) {
	start := WeekStart(date)
	return start, start.AddDate(0, 0, 6)
}

func eachDay(start, end time.Time, match func(time.Time) bool) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if match(d) {
			out = append(out, d)
		}
	}
	return out
}

func isWeekday(d time.Time) bool {
	wd := d.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
