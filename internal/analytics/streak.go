package analytics

import (
	"time"

	"example.com/planner/internal/domain"
	"example.com/planner/internal/ledger"
	"example.com/planner/internal/schedule"
)

// Streak counts consecutive done occurrences, walking the activity's resolved
// occurrence dates backwards from the most recent one on or before today.
// Days the schedule skips (a weekdays activity over a weekend) do not break
// the streak; only an occurrence whose status is not done does. Returns 0
// when the most recent occurrence is anything but done.
func Streak(activity domain.Activity, records []domain.StatusRecord, today time.Time) (int, error) {
	occurrences, err := schedule.Occurrences(activity, activity.AnchorDate(), domain.DateOf(today))
	if err != nil {
		return 0, err
	}
	if len(occurrences) == 0 {
		return 0, nil
	}

	latest := ledger.Latest(records)

	streak := 0
	for i := len(occurrences) - 1; i >= 0; i-- {
		status := domain.StatusPending
		if rec, ok := latest[ledger.Key{ActivityID: activity.ID, Date: occurrences[i]}]; ok {
			status = rec.Status
		}
		if status != domain.StatusDone {
			break
		}
		streak++
	}
	return streak, nil
}
