package analytics

import (
	"fmt"
	"time"

	"example.com/planner/internal/domain"
	"example.com/planner/internal/ledger"
	"example.com/planner/internal/schedule"
)

// Conditions holds the weather observed on one date. Values are metric;
// formatting converts when the configured units are imperial.
type Conditions struct {
	TemperatureC    float64
	PrecipitationMM float64
	Description     string
}

// WeatherSnapshot supplies per-date conditions to the insight rules. It is
// optional; a nil snapshot simply disables the weather rule.
type WeatherSnapshot interface {
	ConditionsOn(date time.Time, location string) (Conditions, bool)
}

// InsightConfig carries thresholds and display settings. It is passed in
// explicitly so insight generation stays a pure function of its inputs.
type InsightConfig struct {
	Location        string
	Units           string // "metric" or "imperial"
	LowCategoryRate int    // flag categories below this rate
	RainThresholdMM float64
	ColdBelowC      float64
	HotAboveC       float64
}

// DefaultInsightConfig mirrors the service defaults.
func DefaultInsightConfig() InsightConfig {
	return InsightConfig{
		Units:           "metric",
		LowCategoryRate: 50,
		RainThresholdMM: 0.5,
		ColdBelowC:      0,
		HotAboveC:       30,
	}
}

// Insights evaluates a fixed rule set against a weekly report, in priority
// order. Each rule contributes at most one line; rules with no qualifying
// data contribute nothing, and an empty week yields an empty slice, never an
// error.
func Insights(report Report, activities []domain.Activity, records []domain.StatusRecord, cfg InsightConfig, weather WeatherSnapshot) []string {
	var out []string

	if line := overallInsight(report); line != "" {
		out = append(out, line)
	}
	if line := lowCategoryInsight(report, cfg); line != "" {
		out = append(out, line)
	}
	if line := bestDayInsight(report); line != "" {
		out = append(out, line)
	}
	if line := weatherInsight(report, activities, records, cfg, weather); line != "" {
		out = append(out, line)
	}
	if report.Missed > report.Done {
		out = append(out, "More activities missed than completed. Review your schedule.")
	}

	return out
}

func overallInsight(report Report) string {
	if report.Total == 0 {
		return ""
	}
	switch rate := report.CompletionRate; {
	case rate >= 80:
		return fmt.Sprintf("Excellent week! You completed %d%% of your activities.", rate)
	case rate >= 60:
		return "Good progress this week. Keep pushing to reach 80%."
	case rate >= 40:
		return "Room for improvement. Try breaking activities into smaller tasks."
	default:
		return "Challenging week. Consider reducing the number of activities."
	}
}

func lowCategoryInsight(report Report, cfg InsightConfig) string {
	worst := ""
	worstRate := -1
	// Walk the fixed category order for deterministic tie-breaks.
	for _, category := range domain.Categories {
		stat, ok := report.ByCategory[category]
		if !ok || stat.Total == 0 {
			continue
		}
		if worstRate == -1 || stat.Rate < worstRate {
			worstRate = stat.Rate
			worst = string(category)
		}
	}
	if worst == "" || worstRate >= cfg.LowCategoryRate {
		return ""
	}
	return fmt.Sprintf("Needs attention: %s (%d%% completion).", worst, worstRate)
}

func bestDayInsight(report Report) string {
	if report.BestDay == "" {
		return ""
	}
	return fmt.Sprintf("Most productive day: %s (%d%% completion).", report.BestDay, report.ByDay[report.BestDay].Rate)
}

// weatherInsight surfaces a missed outdoor occurrence that coincided with
// rain or extreme temperature, so a broken streak has an explanation.
func weatherInsight(report Report, activities []domain.Activity, records []domain.StatusRecord, cfg InsightConfig, weather WeatherSnapshot) string {
	if weather == nil {
		return ""
	}

	latest := ledger.Latest(records)

	for _, activity := range activities {
		if !activity.IsOutdoor {
			continue
		}
		occurrences, err := schedule.Occurrences(activity, report.WeekStart, report.WeekEnd)
		if err != nil {
			continue
		}
		location := activity.Location
		if location == "" {
			location = cfg.Location
		}
		for _, date := range occurrences {
			rec, ok := latest[ledger.Key{ActivityID: activity.ID, Date: date}]
			if !ok || rec.Status != domain.StatusMissed {
				continue
			}
			conditions, ok := weather.ConditionsOn(date, location)
			if !ok {
				continue
			}
			if reason := adverseReason(conditions, cfg); reason != "" {
				return fmt.Sprintf("%q was missed on %s amid %s; weather may be the culprit.",
					activity.Title, date.Weekday(), reason)
			}
		}
	}
	return ""
}

func adverseReason(c Conditions, cfg InsightConfig) string {
	switch {
	case c.PrecipitationMM > cfg.RainThresholdMM:
		return "rain"
	case c.TemperatureC > cfg.HotAboveC:
		return fmt.Sprintf("heat (%s)", formatTemp(c.TemperatureC, cfg.Units))
	case c.TemperatureC < cfg.ColdBelowC:
		return fmt.Sprintf("cold (%s)", formatTemp(c.TemperatureC, cfg.Units))
	default:
		return ""
	}
}

func formatTemp(celsius float64, units string) string {
	if units == "imperial" {
		return fmt.Sprintf("%.0f°F", celsius*9/5+32)
	}
	return fmt.Sprintf("%.0f°C", celsius)
}
