// Package analytics aggregates resolved occurrences and status records into
// weekly completion statistics, streaks, and textual insights. Everything
// here is a pure computation over materialized data.
package analytics

import (
	"math"
	"time"

	"example.com/planner/internal/domain"
	"example.com/planner/internal/ledger"
	"example.com/planner/internal/schedule"
)

// RateStat is a completion rate restricted to one slice of the week.
type RateStat struct {
	Done  int
	Total int // acted-upon occurrences: done + missed + partial + rescheduled
	Rate  int // round(100 * done / (done + missed + partial)), 0 when undefined
}

// Report is the weekly aggregate. Total == 0 signals an empty week; callers
// render an explicit empty state rather than treating it as failure.
type Report struct {
	WeekStart time.Time
	WeekEnd   time.Time

	Total       int
	Done        int
	Missed      int
	Partial     int
	Rescheduled int

	CompletionRate int
	ByCategory     map[domain.Category]RateStat
	ByDay          map[string]RateStat

	BestDay  string
	WorstDay string
}

var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeeklyReport resolves every active activity's occurrences across the ISO
// week containing weekStart and tallies their current statuses. Pending
// occurrences have not been acted on and are excluded from every count and
// denominator.
func WeeklyReport(activities []domain.Activity, records []domain.StatusRecord, weekStart time.Time) (Report, error) {
	start, end := schedule.WeekBounds(weekStart)
	report := Report{
		WeekStart:  start,
		WeekEnd:    end,
		ByCategory: make(map[domain.Category]RateStat),
		ByDay:      make(map[string]RateStat),
	}

	latest := ledger.Latest(records)

	type bucket struct{ done, missed, partial, rescheduled int }
	byCategory := make(map[domain.Category]*bucket)
	byDay := make(map[string]*bucket)

	for _, activity := range activities {
		occurrences, err := schedule.Occurrences(activity, start, end)
		if err != nil {
			return Report{}, err
		}
		for _, date := range occurrences {
			status := domain.StatusPending
			if rec, ok := latest[ledger.Key{ActivityID: activity.ID, Date: date}]; ok {
				status = rec.Status
			}
			if status == domain.StatusPending {
				continue
			}

			cat := byCategory[activity.Category]
			if cat == nil {
				cat = &bucket{}
				byCategory[activity.Category] = cat
			}
			dayName := date.Weekday().String()
			day := byDay[dayName]
			if day == nil {
				day = &bucket{}
				byDay[dayName] = day
			}

			switch status {
			case domain.StatusDone:
				report.Done++
				cat.done++
				day.done++
			case domain.StatusMissed:
				report.Missed++
				cat.missed++
				day.missed++
			case domain.StatusPartial:
				report.Partial++
				cat.partial++
				day.partial++
			case domain.StatusRescheduled:
				report.Rescheduled++
				cat.rescheduled++
				day.rescheduled++
			}
		}
	}

	report.Total = report.Done + report.Missed + report.Partial + report.Rescheduled
	report.CompletionRate = completionRate(report.Done, report.Missed, report.Partial)

	for category, b := range byCategory {
		report.ByCategory[category] = RateStat{
			Done:  b.done,
			Total: b.done + b.missed + b.partial + b.rescheduled,
			Rate:  completionRate(b.done, b.missed, b.partial),
		}
	}
	for day, b := range byDay {
		report.ByDay[day] = RateStat{
			Done:  b.done,
			Total: b.done + b.missed + b.partial + b.rescheduled,
			Rate:  completionRate(b.done, b.missed, b.partial),
		}
	}

	report.BestDay, report.WorstDay = rankDays(report.ByDay)
	return report, nil
}

// completionRate implements round(100 * done / (done + missed + partial)).
// Rescheduled occurrences count toward totals but not the rate denominator,
// and a zero denominator yields 0, never a division error.
func completionRate(done, missed, partial int) int {
	denominator := done + missed + partial
	if denominator == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(denominator)))
}

// rankDays picks the best day (highest rate, only if above zero) and worst
// day (lowest rate among days with data), walking Monday..Sunday so ties
// resolve deterministically.
func rankDays(byDay map[string]RateStat) (best, worst string) {
	bestRate := -1
	worstRate := -1
	for _, day := range weekdayOrder {
		stat, ok := byDay[day]
		if !ok || stat.Total == 0 {
			continue
		}
		if stat.Rate > bestRate {
			bestRate = stat.Rate
			best = day
		}
		if worstRate == -1 || stat.Rate < worstRate {
			worstRate = stat.Rate
			worst = day
		}
	}
	if bestRate <= 0 {
		best = ""
	}
	return best, worst
}

// Comparison is a pure numeric diff between two weekly reports.
type Comparison struct {
	Current  Report
	Previous Report
	Change   int  // current rate minus previous rate
	Improved bool // change >= 0
}

// CompareWeeks diffs completion rates; CompareWeeks(a, b).Change is the exact
// negation of CompareWeeks(b, a).Change.
func CompareWeeks(current, previous Report) Comparison {
	change := current.CompletionRate - previous.CompletionRate
	return Comparison{
		Current:  current,
		Previous: previous,
		Change:   change,
		Improved: change >= 0,
	}
}
