// Package domain defines the planner's business model: activities, their
// recurrence rules, and the status records tracking occurrence completion.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies an activity for per-category analytics.
type Category string

const (
	CategoryWork      Category = "Work"
	CategoryPersonal  Category = "Personal"
	CategoryHealth    Category = "Health"
	CategoryEducation Category = "Education"
	CategoryErrands   Category = "Errands"
	CategorySocial    Category = "Social"
	CategoryFinance   Category = "Finance"
	CategoryOther     Category = "Other"
)

// Categories lists the valid categories in display order.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryHealth,
	CategoryEducation,
	CategoryErrands,
	CategorySocial,
	CategoryFinance,
	CategoryOther,
}

// ParseCategory matches a category label case-insensitively.
func ParseCategory(value string) (Category, error) {
	for _, cat := range Categories {
		if strings.EqualFold(string(cat), value) {
			return cat, nil
		}
	}
	return "", Invalidf("unknown category %q", value)
}

// Recurrence is the closed set of recurrence rules an activity may carry.
type Recurrence string

const (
	RecurrenceOnce     Recurrence = "once"
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekdays Recurrence = "weekdays"
	RecurrenceWeekends Recurrence = "weekends"
	RecurrenceWeekly   Recurrence = "weekly"
)

// Recurrences lists the valid recurrence rules.
var Recurrences = []Recurrence{
	RecurrenceOnce,
	RecurrenceDaily,
	RecurrenceWeekdays,
	RecurrenceWeekends,
	RecurrenceWeekly,
}

// ParseRecurrence matches a recurrence label case-insensitively.
func ParseRecurrence(value string) (Recurrence, error) {
	for _, rec := range Recurrences {
		if strings.EqualFold(string(rec), value) {
			return rec, nil
		}
	}
	return "", Invalidf("unknown recurrence %q", value)
}

// Status is the completion state of a single occurrence.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDone        Status = "done"
	StatusMissed      Status = "missed"
	StatusPartial     Status = "partial"
	StatusRescheduled Status = "rescheduled"
)

// Statuses lists the valid occurrence statuses.
var Statuses = []Status{
	StatusPending,
	StatusDone,
	StatusMissed,
	StatusPartial,
	StatusRescheduled,
}

// ParseStatus matches a status label case-insensitively.
func ParseStatus(value string) (Status, error) {
	for _, st := range Statuses {
		if strings.EqualFold(string(st), value) {
			return st, nil
		}
	}
	return "", Invalidf("unknown status %q", value)
}

// TimeOfDay is a wall-clock time without a date, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour).
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return TimeOfDay{}, Invalidf("invalid time %q, expected HH:MM", value)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// TimeOfDayFromMinutes converts minutes since midnight, as stored in Postgres.
func TimeOfDayFromMinutes(minutes int) TimeOfDay {
	return TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

const maxDurationMin = 24 * 60

// ValidateDuration checks an optional duration in minutes. Zero means
// unspecified.
func ValidateDuration(minutes int) error {
	if minutes < 0 {
		return Invalidf("duration must not be negative")
	}
	if minutes > maxDurationMin {
		return Invalidf("duration cannot exceed %d minutes", maxDurationMin)
	}
	return nil
}

// Activity is a planned, possibly recurring activity. Occurrences are derived
// from the recurrence rule on demand and never stored.
type Activity struct {
	ID          string
	Title       string
	Description string
	Category    Category
	StartTime   TimeOfDay
	DurationMin int // 0 = unspecified
	Recurrence  Recurrence
	Location    string
	IsOutdoor   bool
	IsActive    bool
	Anchor      time.Time // creation date in the user's timezone
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AnchorDate is the calendar date the recurrence rule is anchored to: the
// date the activity was created. A "once" activity occurs exactly on it, a
// "weekly" activity repeats on its weekday. The anchor is captured at
// creation so later timezone conversions of CreatedAt cannot shift it.
func (a Activity) AnchorDate() time.Time {
	if !a.Anchor.IsZero() {
		return DateOf(a.Anchor)
	}
	return DateOf(a.CreatedAt)
}

// StatusRecord is one timestamped assertion about an occurrence's status.
// Records are append-only; the latest record per (activity, date) wins.
type StatusRecord struct {
	ID         int64 // insertion sequence, assigned by the repository
	ActivityID string
	Date       time.Time // occurrence date, midnight UTC
	Status     Status
	Note       string
	RecordedAt time.Time
}

// DateOf truncates a timestamp to its calendar date, normalized to midnight
// UTC so dates compare with ==.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Cursor models the pagination token for status history listings.
type Cursor struct {
	Date time.Time
	ID   int64
}
