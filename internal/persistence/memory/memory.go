// Package memory provides in-memory repository implementations for tests and
// local development. Semantics mirror the Postgres repositories: Get returns
// nil for a missing activity, Append assigns a monotonically increasing
// insertion sequence, deletes leave status records behind.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/planner/internal/domain"
)

// ActivityRepo stores activities keyed by ID.
type ActivityRepo struct {
	mu         sync.RWMutex
	activities map[string]domain.Activity
}

// NewActivityRepo constructs an empty ActivityRepo.
func NewActivityRepo() *ActivityRepo {
	return &ActivityRepo{activities: make(map[string]domain.Activity)}
}

func (r *ActivityRepo) Create(_ context.Context, activity domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities[activity.ID] = activity
	return nil
}

func (r *ActivityRepo) Update(_ context.Context, activity domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[activity.ID]; !ok {
		return domain.ErrNotFound
	}
	r.activities[activity.ID] = activity
	return nil
}

func (r *ActivityRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.activities, id)
	return nil
}

func (r *ActivityRepo) Get(_ context.Context, id string) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	activity, ok := r.activities[id]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

func (r *ActivityRepo) List(_ context.Context, includeInactive bool) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Activity, 0, len(r.activities))
	for _, activity := range r.activities {
		if !includeInactive && !activity.IsActive {
			continue
		}
		out = append(out, activity)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime == out[j].StartTime {
			return out[i].Title < out[j].Title
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

// StatusRepo stores the append-only status record log.
type StatusRepo struct {
	mu      sync.RWMutex
	records []domain.StatusRecord
	nextID  int64
}

// NewStatusRepo constructs an empty StatusRepo.
func NewStatusRepo() *StatusRepo {
	return &StatusRepo{nextID: 1}
}

func (r *StatusRepo) Append(_ context.Context, record domain.StatusRecord) (domain.StatusRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.nextID
	record.Date = domain.DateOf(record.Date)
	r.nextID++
	r.records = append(r.records, record)
	return record, nil
}

func (r *StatusRepo) ByActivity(_ context.Context, activityID string) ([]domain.StatusRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.StatusRecord
	for _, rec := range r.records {
		if rec.ActivityID == activityID {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *StatusRepo) ByDateRange(_ context.Context, start, end time.Time) ([]domain.StatusRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	start, end = domain.DateOf(start), domain.DateOf(end)
	var out []domain.StatusRecord
	for _, rec := range r.records {
		if !rec.Date.Before(start) && !rec.Date.After(end) {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(records []domain.StatusRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date.Equal(records[j].Date) {
			return records[i].ID < records[j].ID
		}
		return records[i].Date.Before(records[j].Date)
	})
}
