// Package ledger derives current occurrence statuses from the append-only
// status record log. Mutations never overwrite: each mark appends a fresh
// record, and queries project the latest record per (activity, date). The
// projection is a pure function of materialized records; persistence is the
// caller's concern.
package ledger

import (
	"sort"
	"time"

	"example.com/planner/internal/domain"
)

// Key identifies one occurrence.
type Key struct {
	ActivityID string
	Date       time.Time
}

// Latest projects the log onto its latest-wins view: for every occurrence the
// record with the greatest recorded_at, ties broken by insertion sequence, so
// near-simultaneous marks resolve deterministically.
func Latest(records []domain.StatusRecord) map[Key]domain.StatusRecord {
	latest := make(map[Key]domain.StatusRecord, len(records))
	for _, rec := range records {
		key := Key{ActivityID: rec.ActivityID, Date: domain.DateOf(rec.Date)}
		current, ok := latest[key]
		if !ok || supersedes(rec, current) {
			latest[key] = rec
		}
	}
	return latest
}

func supersedes(candidate, current domain.StatusRecord) bool {
	if candidate.RecordedAt.Equal(current.RecordedAt) {
		return candidate.ID > current.ID
	}
	return candidate.RecordedAt.After(current.RecordedAt)
}

// CurrentStatus resolves the status of one occurrence, defaulting to pending
// when no record exists.
func CurrentStatus(records []domain.StatusRecord, activityID string, date time.Time) domain.Status {
	key := Key{ActivityID: activityID, Date: domain.DateOf(date)}
	if rec, ok := Latest(records)[key]; ok {
		return rec.Status
	}
	return domain.StatusPending
}

// History returns the surviving record per occurrence date, ascending by
// date. Superseded records are excluded; they remain in the log for audit but
// carry no current state.
func History(records []domain.StatusRecord) []domain.StatusRecord {
	latest := Latest(records)
	out := make([]domain.StatusRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Toggle flips between the pending/done pair. Any state is reachable from any
// other via an explicit mark, but toggle is deliberately narrower: flipping a
// missed, partial, or rescheduled occurrence is rejected so a quick tap cannot
// erase a considered status.
func Toggle(current domain.Status) (domain.Status, error) {
	switch current {
	case domain.StatusPending:
		return domain.StatusDone, nil
	case domain.StatusDone:
		return domain.StatusPending, nil
	default:
		return "", domain.Invalidf("cannot toggle %q occurrence, use an explicit mark", current)
	}
}
