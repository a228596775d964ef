package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/planner/internal/domain"
)

func TestStreakCountsConsecutiveDone(t *testing.T) {
	activity := dailyActivity("act-1", domain.CategoryHealth)
	activity.Anchor = date(2026, time.March, 2)
	today := date(2026, time.March, 6)

	records := []domain.StatusRecord{
		mark(1, "act-1", date(2026, time.March, 2), domain.StatusDone),
		mark(2, "act-1", date(2026, time.March, 3), domain.StatusDone),
		mark(3, "act-1", date(2026, time.March, 4), domain.StatusMissed),
		mark(4, "act-1", date(2026, time.March, 5), domain.StatusDone),
		mark(5, "act-1", date(2026, time.March, 6), domain.StatusDone),
	}

	streak, err := Streak(activity, records, today)
	require.NoError(t, err)
	require.Equal(t, 2, streak)
}

func TestStreakZeroWhenMostRecentNotDone(t *testing.T) {
	activity := dailyActivity("act-1", domain.CategoryHealth)
	activity.Anchor = date(2026, time.March, 2)
	today := date(2026, time.March, 4)

	records := []domain.StatusRecord{
		mark(1, "act-1", date(2026, time.March, 2), domain.StatusDone),
		mark(2, "act-1", date(2026, time.March, 3), domain.StatusDone),
		// March 4 has no record, so it resolves to pending.
	}

	streak, err := Streak(activity, records, today)
	require.NoError(t, err)
	require.Equal(t, 0, streak)
}

func TestStreakSkipsUnscheduledDays(t *testing.T) {
	activity := dailyActivity("act-1", domain.CategoryWork)
	activity.Recurrence = domain.RecurrenceWeekdays
	activity.Anchor = date(2026, time.March, 5) // Thursday

	records := []domain.StatusRecord{
		mark(1, "act-1", date(2026, time.March, 5), domain.StatusDone),
		mark(2, "act-1", date(2026, time.March, 6), domain.StatusDone),
		mark(3, "act-1", date(2026, time.March, 9), domain.StatusDone),
	}

	// Monday after an untouched weekend: the gap does not break the streak.
	streak, err := Streak(activity, records, date(2026, time.March, 9))
	require.NoError(t, err)
	require.Equal(t, 3, streak)
}

func TestStreakNoOccurrences(t *testing.T) {
	activity := dailyActivity("act-1", domain.CategoryWork)
	activity.IsActive = false

	streak, err := Streak(activity, nil, date(2026, time.March, 9))
	require.NoError(t, err)
	require.Equal(t, 0, streak)
}
