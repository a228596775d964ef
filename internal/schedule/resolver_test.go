package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/planner/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2026-03-02 is a Monday.
var (
	monday = date(2026, time.March, 2)
	sunday = date(2026, time.March, 8)
)

func activity(rec domain.Recurrence, anchor time.Time) domain.Activity {
	return domain.Activity{
		ID:         "act-1",
		Title:      "Test",
		Recurrence: rec,
		IsActive:   true,
		Anchor:     anchor,
	}
}

func TestOccurrencesDaily(t *testing.T) {
	got, err := Occurrences(activity(domain.RecurrenceDaily, monday), monday, sunday)
	require.NoError(t, err)
	require.Len(t, got, 7)
	require.Equal(t, monday, got[0])
	require.Equal(t, sunday, got[6])
}

func TestOccurrencesWeekdays(t *testing.T) {
	got, err := Occurrences(activity(domain.RecurrenceWeekdays, monday), monday, sunday)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, d := range got {
		require.NotEqual(t, time.Saturday, d.Weekday())
		require.NotEqual(t, time.Sunday, d.Weekday())
	}
}

func TestOccurrencesWeekends(t *testing.T) {
	got, err := Occurrences(activity(domain.RecurrenceWeekends, monday), monday, sunday)
	require.NoError(t, err)
	require.Equal(t, []time.Time{date(2026, time.March, 7), sunday}, got)
}

func TestOccurrencesWeeklyFollowsAnchorWeekday(t *testing.T) {
	// Anchored on a Wednesday: only Wednesdays qualify.
	anchor := date(2026, time.February, 25)
	got, err := Occurrences(activity(domain.RecurrenceWeekly, anchor), monday, sunday)
	require.NoError(t, err)
	require.Equal(t, []time.Time{date(2026, time.March, 4)}, got)
}

func TestOccurrencesOnceOnlyOnAnchor(t *testing.T) {
	a := activity(domain.RecurrenceOnce, date(2026, time.March, 4))

	got, err := Occurrences(a, monday, sunday)
	require.NoError(t, err)
	require.Equal(t, []time.Time{date(2026, time.March, 4)}, got)

	got, err = Occurrences(a, date(2026, time.March, 9), date(2026, time.March, 15))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestOccurrencesInactiveResolvesEmpty(t *testing.T) {
	a := activity(domain.RecurrenceDaily, monday)
	a.IsActive = false
	got, err := Occurrences(a, monday, sunday)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestOccurrencesReversedRangeResolvesEmpty(t *testing.T) {
	got, err := Occurrences(activity(domain.RecurrenceDaily, monday), sunday, monday)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestOccurrencesRejectsUnknownRecurrence(t *testing.T) {
	_, err := Occurrences(activity(domain.Recurrence("fortnightly"), monday), monday, sunday)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestOccurrencesNormalizesTimestampBounds(t *testing.T) {
	// A late-evening timestamp still counts as its calendar date.
	start := time.Date(2026, time.March, 2, 23, 45, 0, 0, time.UTC)
	got, err := Occurrences(activity(domain.RecurrenceDaily, monday), start, start)
	require.NoError(t, err)
	require.Equal(t, []time.Time{monday}, got)
}

func TestIsDue(t *testing.T) {
	a := activity(domain.RecurrenceWeekends, monday)

	due, err := IsDue(a, date(2026, time.March, 7))
	require.NoError(t, err)
	require.True(t, due)

	due, err = IsDue(a, monday)
	require.NoError(t, err)
	require.False(t, due)
}

func TestWeekStartNormalizesToMonday(t *testing.T) {
	for d := monday; !d.After(sunday); d = d.AddDate(0, 0, 1) {
		require.Equal(t, monday, WeekStart(d), "weekday %s", d.Weekday())
	}
}

func TestWeekBounds(t *testing.T) {
	start, end := WeekBounds(date(2026, time.March, 5))
	require.Equal(t, monday, start)
	require.Equal(t, sunday, end)
}
