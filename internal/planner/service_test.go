package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/planner/internal/analytics"
	"example.com/planner/internal/clock"
	"example.com/planner/internal/domain"
	"example.com/planner/internal/persistence/memory"
)

// 2026-03-06 is a Friday.
var testNow = time.Date(2026, time.March, 6, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return NewService(memory.NewActivityRepo(), memory.NewStatusRepo(), clock.Fixed{Moment: testNow}, opts...)
}

func createDaily(t *testing.T, svc *Service, title string, category domain.Category) *domain.Activity {
	t.Helper()
	activity, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		Title:       title,
		Category:    category,
		StartTime:   domain.TimeOfDay{Hour: 8},
		DurationMin: 30,
		Recurrence:  domain.RecurrenceDaily,
	})
	require.NoError(t, err)
	return activity
}

func TestCreateActivityAnchorsOnToday(t *testing.T) {
	svc := newTestService(t)
	activity := createDaily(t, svc, "Read", domain.CategoryEducation)

	require.NotEmpty(t, activity.ID)
	require.True(t, activity.IsActive)
	require.Equal(t, time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), activity.Anchor)
}

func TestCreateActivityValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		Title:       "   ",
		Category:    domain.CategoryWork,
		DurationMin: 30,
		Recurrence:  domain.RecurrenceDaily,
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateActivity(context.Background(), CreateActivityInput{
		Title:       "Too long",
		Category:    domain.CategoryWork,
		DurationMin: 2000,
		Recurrence:  domain.RecurrenceDaily,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateActivityPatchesOnlyProvidedFields(t *testing.T) {
	svc := newTestService(t)
	activity := createDaily(t, svc, "Read", domain.CategoryEducation)

	newTitle := "Read a book"
	updated, err := svc.UpdateActivity(context.Background(), activity.ID, UpdateActivityInput{Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, "Read a book", updated.Title)
	require.Equal(t, domain.CategoryEducation, updated.Category)
	require.Equal(t, activity.Anchor, updated.Anchor)
}

func TestUpdateActivityNotFound(t *testing.T) {
	svc := newTestService(t)
	title := "x"
	_, err := svc.UpdateActivity(context.Background(), "missing", UpdateActivityInput{Title: &title})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteActivityKeepsRecords(t *testing.T) {
	svc := newTestService(t)
	activity := createDaily(t, svc, "Run", domain.CategoryHealth)

	_, err := svc.ToggleStatus(context.Background(), activity.ID, testNow)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteActivity(context.Background(), activity.ID))
	_, err = svc.GetActivity(context.Background(), activity.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScheduleTodayResolvesDueActivities(t *testing.T) {
	svc := newTestService(t)
	daily := createDaily(t, svc, "Run", domain.CategoryHealth)

	weekend, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		Title:       "Hike",
		Category:    domain.CategoryHealth,
		StartTime:   domain.TimeOfDay{Hour: 10},
		DurationMin: 120,
		Recurrence:  domain.RecurrenceWeekends,
	})
	require.NoError(t, err)

	scheduled, err := svc.ScheduleToday(context.Background())
	require.NoError(t, err)
	require.Len(t, scheduled, 1, "Friday excludes the weekend activity")
	require.Equal(t, daily.ID, scheduled[0].Activity.ID)
	require.Equal(t, domain.StatusPending, scheduled[0].Status)

	due, err := svc.ResolveDue(context.Background(), weekend.ID, testNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.True(t, due)
}

func TestToggleStatusFlipsPendingAndDone(t *testing.T) {
	svc := newTestService(t)
	activity := createDaily(t, svc, "Run", domain.CategoryHealth)

	rec, err := svc.ToggleStatus(context.Background(), activity.ID, testNow)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDone, rec.Status)

	rec, err = svc.ToggleStatus(context.Background(), activity.ID, testNow)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, rec.Status)

	status, err := svc.CurrentStatus(context.Background(), activity.ID, testNow)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, status)
}

func TestToggleStatusRejectsConsideredStatus(t *testing.T) {
	svc := newTestService(t)
	activity := createDaily(t, svc, "Run", domain.CategoryHealth)

	_, err := svc.MarkStatus(context.Background(), activity.ID, testNow, domain.StatusMissed, "overslept")
	require.NoError(t, err)

	_, err = svc.ToggleStatus(context.Background(), activity.ID, testNow)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestMarkStatusRequiresScheduledDate(t *testing.T) {
	svc := newTestService(t)
	activity, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		Title:       "Hike",
		Category:    domain.CategoryHealth,
		StartTime:   domain.TimeOfDay{Hour: 10},
		DurationMin: 120,
		Recurrence:  domain.RecurrenceWeekends,
	})
	require.NoError(t, err)

	// Friday is not a weekend occurrence.
	_, err = svc.MarkStatus(context.Background(), activity.ID, testNow, domain.StatusDone, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestHistoryPaginatesLatestPerDate(t *testing.T) {
	svc := newTestService(t)
	activity := createDaily(t, svc, "Run", domain.CategoryHealth)

	// Mark three past days; re-mark the first so only the newer record survives.
	for i := 3; i >= 1; i-- {
		day := testNow.AddDate(0, 0, -i)
		_, err := svc.MarkStatus(context.Background(), activity.ID, day, domain.StatusDone, "")
		require.NoError(t, err)
	}
	_, err := svc.MarkStatus(context.Background(), activity.ID, testNow.AddDate(0, 0, -3), domain.StatusMissed, "actually missed")
	require.NoError(t, err)

	firstPage, cursor, err := svc.History(context.Background(), activity.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.NotNil(t, cursor)
	require.Equal(t, domain.StatusMissed, firstPage[0].Status)

	secondPage, cursor, err := svc.History(context.Background(), activity.ID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	require.Nil(t, cursor)
	require.True(t, secondPage[0].Date.After(firstPage[1].Date))
}

func TestStreaksOrderedLongestFirst(t *testing.T) {
	// Anchors predate today so past marks count toward the streak walk.
	activities := memory.NewActivityRepo()
	statuses := memory.NewStatusRepo()
	svc := NewService(activities, statuses, clock.Fixed{Moment: testNow})

	anchor := testNow.AddDate(0, 0, -7)
	seed := func(id, title string) {
		require.NoError(t, activities.Create(context.Background(), domain.Activity{
			ID:         id,
			Title:      title,
			Category:   domain.CategoryHealth,
			StartTime:  domain.TimeOfDay{Hour: 8},
			Recurrence: domain.RecurrenceDaily,
			IsActive:   true,
			Anchor:     anchor,
			CreatedAt:  anchor,
			UpdatedAt:  anchor,
		}))
	}
	seed("act-long", "Run")
	seed("act-short", "Read")

	for i := 2; i >= 0; i-- {
		_, err := svc.MarkStatus(context.Background(), "act-long", testNow.AddDate(0, 0, -i), domain.StatusDone, "")
		require.NoError(t, err)
	}
	_, err := svc.MarkStatus(context.Background(), "act-short", testNow, domain.StatusDone, "")
	require.NoError(t, err)

	streaks, err := svc.Streaks(context.Background())
	require.NoError(t, err)
	require.Len(t, streaks, 2)
	require.Equal(t, "act-long", streaks[0].ActivityID)
	require.Equal(t, 3, streaks[0].Streak)
	require.Equal(t, 1, streaks[1].Streak)
}

func TestWeeklyReportComposesStreaksAndInsights(t *testing.T) {
	svc := newTestService(t)
	activity := createDaily(t, svc, "Run", domain.CategoryHealth)

	// Monday through Thursday done, Friday missed.
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := svc.MarkStatus(context.Background(), activity.ID, monday.AddDate(0, 0, i), domain.StatusDone, "")
		require.NoError(t, err)
	}
	_, err := svc.MarkStatus(context.Background(), activity.ID, testNow, domain.StatusMissed, "")
	require.NoError(t, err)

	report, err := svc.WeeklyReport(context.Background(), testNow)
	require.NoError(t, err)
	require.Equal(t, 5, report.Total)
	require.Equal(t, 80, report.CompletionRate)
	require.Len(t, report.Streaks, 1)
	require.Equal(t, 0, report.Streaks[0].Streak, "missed Friday resets the streak")
	require.NotEmpty(t, report.Insights)
}

func TestWeeklyReportDegradesWhenWeatherFails(t *testing.T) {
	svc := newTestService(t, WithWeather(failingWeather{}))
	activity := createDaily(t, svc, "Run", domain.CategoryHealth)

	_, err := svc.MarkStatus(context.Background(), activity.ID, testNow, domain.StatusDone, "")
	require.NoError(t, err)

	report, err := svc.WeeklyReport(context.Background(), testNow)
	require.NoError(t, err)
	require.NotNil(t, report)
}

func TestCompareWeeks(t *testing.T) {
	svc := newTestService(t)
	activity := createDaily(t, svc, "Run", domain.CategoryHealth)

	previousMonday := time.Date(2026, time.February, 23, 0, 0, 0, 0, time.UTC)
	_, err := svc.MarkStatus(context.Background(), activity.ID, previousMonday, domain.StatusMissed, "")
	require.NoError(t, err)
	_, err = svc.MarkStatus(context.Background(), activity.ID, testNow, domain.StatusDone, "")
	require.NoError(t, err)

	comparison, err := svc.CompareWeeks(context.Background(), testNow, previousMonday)
	require.NoError(t, err)
	require.Equal(t, 100, comparison.Current.CompletionRate)
	require.Equal(t, 0, comparison.Previous.CompletionRate)
	require.Equal(t, 100, comparison.Change)
	require.True(t, comparison.Improved)
}

type failingWeather struct{}

func (failingWeather) Snapshot(context.Context, string, time.Time, time.Time) (analytics.WeatherSnapshot, error) {
	return nil, context.DeadlineExceeded
}
