package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/planner/internal/domain"
)

type fakeWeather map[time.Time]Conditions

func (f fakeWeather) ConditionsOn(date time.Time, _ string) (Conditions, bool) {
	c, ok := f[date]
	return c, ok
}

func TestInsightsEmptyWeek(t *testing.T) {
	report, err := WeeklyReport(nil, nil, weekMonday)
	require.NoError(t, err)

	insights := Insights(report, nil, nil, DefaultInsightConfig(), nil)
	require.Empty(t, insights)
}

func TestInsightsOverallTiers(t *testing.T) {
	cases := []struct {
		rate int
		want string
	}{
		{85, "Excellent week! You completed 85% of your activities."},
		{60, "Good progress this week. Keep pushing to reach 80%."},
		{40, "Room for improvement. Try breaking activities into smaller tasks."},
		{10, "Challenging week. Consider reducing the number of activities."},
	}
	for _, tc := range cases {
		report := Report{Total: 10, CompletionRate: tc.rate}
		insights := Insights(report, nil, nil, DefaultInsightConfig(), nil)
		require.Contains(t, insights, tc.want, "rate %d", tc.rate)
	}
}

func TestInsightsFlagsWorstCategory(t *testing.T) {
	report := Report{
		Total:          6,
		CompletionRate: 70,
		ByCategory: map[domain.Category]RateStat{
			domain.CategoryHealth: {Done: 4, Total: 4, Rate: 100},
			domain.CategoryWork:   {Done: 0, Total: 2, Rate: 0},
		},
	}

	insights := Insights(report, nil, nil, DefaultInsightConfig(), nil)
	require.Contains(t, insights, "Needs attention: Work (0% completion).")
}

func TestInsightsSkipsCategoriesAboveThreshold(t *testing.T) {
	report := Report{
		Total:          4,
		CompletionRate: 75,
		ByCategory: map[domain.Category]RateStat{
			domain.CategoryHealth: {Done: 3, Total: 4, Rate: 75},
		},
	}

	insights := Insights(report, nil, nil, DefaultInsightConfig(), nil)
	for _, line := range insights {
		require.NotContains(t, line, "Needs attention")
	}
}

func TestInsightsBestDay(t *testing.T) {
	report := Report{
		Total:          2,
		CompletionRate: 100,
		BestDay:        "Tuesday",
		ByDay: map[string]RateStat{
			"Tuesday": {Done: 2, Total: 2, Rate: 100},
		},
	}

	insights := Insights(report, nil, nil, DefaultInsightConfig(), nil)
	require.Contains(t, insights, "Most productive day: Tuesday (100% completion).")
}

func TestInsightsWeatherExplainsMissedOutdoor(t *testing.T) {
	activity := dailyActivity("act-1", domain.CategoryHealth)
	activity.Title = "Morning run"
	activity.IsOutdoor = true

	missedDay := weekMonday.AddDate(0, 0, 2)
	records := []domain.StatusRecord{
		mark(1, "act-1", missedDay, domain.StatusMissed),
	}

	report, err := WeeklyReport([]domain.Activity{activity}, records, weekMonday)
	require.NoError(t, err)

	weather := fakeWeather{missedDay: {PrecipitationMM: 4.2, Description: "heavy rain"}}
	insights := Insights(report, []domain.Activity{activity}, records, DefaultInsightConfig(), weather)
	require.Contains(t, insights, `"Morning run" was missed on Wednesday amid rain; weather may be the culprit.`)
}

func TestInsightsWeatherIgnoresMildConditions(t *testing.T) {
	activity := dailyActivity("act-1", domain.CategoryHealth)
	activity.IsOutdoor = true

	missedDay := weekMonday
	records := []domain.StatusRecord{mark(1, "act-1", missedDay, domain.StatusMissed)}

	report, err := WeeklyReport([]domain.Activity{activity}, records, weekMonday)
	require.NoError(t, err)

	weather := fakeWeather{missedDay: {TemperatureC: 18}}
	insights := Insights(report, []domain.Activity{activity}, records, DefaultInsightConfig(), weather)
	for _, line := range insights {
		require.NotContains(t, line, "weather")
	}
}

func TestInsightsMissedOutnumberDone(t *testing.T) {
	report := Report{Total: 5, Done: 1, Missed: 4, CompletionRate: 20}
	insights := Insights(report, nil, nil, DefaultInsightConfig(), nil)
	require.Contains(t, insights, "More activities missed than completed. Review your schedule.")
}

func TestFormatTempImperial(t *testing.T) {
	require.Equal(t, "32°C", formatTemp(32, "metric"))
	require.Equal(t, "90°F", formatTemp(32.2, "imperial"))
}
