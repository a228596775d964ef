// Package postgres provides pgx-backed persistence for activities, status
// records, and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/planner/internal/domain"
	"example.com/planner/internal/observability"
	"example.com/planner/internal/platform/events"
)

// Repository implements the planner's activity and status repositories on a
// shared connection pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const activityColumns = `activity_id, title, description, category, start_minute, duration_min, recurrence, location, is_outdoor, is_active, anchor_date, created_at, updated_at`

// Create persists the activity and records the creation event in the outbox
// inside a single transaction.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertActivity = `INSERT INTO activities (` + activityColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err = tx.Exec(ctx, insertActivity,
		activity.ID,
		activity.Title,
		activity.Description,
		activity.Category,
		activity.StartTime.Minutes(),
		activity.DurationMin,
		activity.Recurrence,
		activity.Location,
		activity.IsOutdoor,
		activity.IsActive,
		activity.AnchorDate(),
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return err
	}

	err = insertOutbox(ctx, tx, "activity.created", activity.ID, fmt.Sprintf("%s:created", activity.ID), events.ActivityCreated{
		ActivityID: activity.ID,
		Title:      activity.Title,
		Category:   string(activity.Category),
		Recurrence: string(activity.Recurrence),
		StartTime:  activity.StartTime.String(),
		IsOutdoor:  activity.IsOutdoor,
		CreatedAt:  activity.CreatedAt,
	})
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordActivityCreated(activity.CreatedAt)
	return nil
}

// Update rewrites the mutable activity fields.
func (r *Repository) Update(ctx context.Context, activity domain.Activity) error {
	const stmt = `UPDATE activities
        SET title=$2, description=$3, category=$4, start_minute=$5, duration_min=$6,
            recurrence=$7, location=$8, is_outdoor=$9, is_active=$10, updated_at=$11
        WHERE activity_id=$1`

	tag, err := r.pool.Exec(ctx, stmt,
		activity.ID,
		activity.Title,
		activity.Description,
		activity.Category,
		activity.StartTime.Minutes(),
		activity.DurationMin,
		activity.Recurrence,
		activity.Location,
		activity.IsOutdoor,
		activity.IsActive,
		activity.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the activity definition. Status records are deliberately
// left behind for historical analytics.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE activity_id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves an activity by ID, nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE activity_id=$1`

	row := r.pool.QueryRow(ctx, query, id)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return activity, nil
}

// List returns activities ordered by start time, then title for stability.
func (r *Repository) List(ctx context.Context, includeInactive bool) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY start_minute, title`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *activity)
	}
	return out, rows.Err()
}

// Append inserts a status record and its outbox event in one transaction,
// returning the record with its assigned insertion sequence.
func (r *Repository) Append(ctx context.Context, record domain.StatusRecord) (domain.StatusRecord, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.StatusRecord{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertRecord = `INSERT INTO status_records (activity_id, occurrence_date, status, note, recorded_at)
        VALUES ($1,$2,$3,$4,$5) RETURNING record_id`

	err = tx.QueryRow(ctx, insertRecord,
		record.ActivityID,
		record.Date,
		record.Status,
		record.Note,
		record.RecordedAt,
	).Scan(&record.ID)
	if err != nil {
		return domain.StatusRecord{}, err
	}

	dedupeKey := fmt.Sprintf("%s:%s:%d", record.ActivityID, record.Date.Format("2006-01-02"), record.ID)
	err = insertOutbox(ctx, tx, "status.changed", record.ActivityID, dedupeKey, events.StatusChanged{
		ActivityID: record.ActivityID,
		Date:       record.Date.Format("2006-01-02"),
		Status:     string(record.Status),
		Note:       record.Note,
		RecordedAt: record.RecordedAt,
	})
	if err != nil {
		return domain.StatusRecord{}, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return domain.StatusRecord{}, err
	}
	observability.RecordStatusMark(string(record.Status), record.RecordedAt)
	return record, nil
}

// ByActivity returns every status record for the activity, oldest date
// first, insertion order within a date.
func (r *Repository) ByActivity(ctx context.Context, activityID string) ([]domain.StatusRecord, error) {
	const query = `SELECT record_id, activity_id, occurrence_date, status, note, recorded_at
        FROM status_records WHERE activity_id=$1
        ORDER BY occurrence_date, record_id`

	rows, err := r.pool.Query(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ByDateRange returns every status record whose occurrence date falls within
// [start, end], inclusive.
func (r *Repository) ByDateRange(ctx context.Context, start, end time.Time) ([]domain.StatusRecord, error) {
	const query = `SELECT record_id, activity_id, occurrence_date, status, note, recorded_at
        FROM status_records WHERE occurrence_date BETWEEN $1 AND $2
        ORDER BY occurrence_date, record_id`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		activity    domain.Activity
		startMinute int
		anchor      time.Time
	)
	err := row.Scan(
		&activity.ID,
		&activity.Title,
		&activity.Description,
		&activity.Category,
		&startMinute,
		&activity.DurationMin,
		&activity.Recurrence,
		&activity.Location,
		&activity.IsOutdoor,
		&activity.IsActive,
		&anchor,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	activity.StartTime = domain.TimeOfDayFromMinutes(startMinute)
	activity.Anchor = domain.DateOf(anchor)
	return &activity, nil
}

func scanRecords(rows pgx.Rows) ([]domain.StatusRecord, error) {
	var out []domain.StatusRecord
	for rows.Next() {
		var rec domain.StatusRecord
		if err := rows.Scan(&rec.ID, &rec.ActivityID, &rec.Date, &rec.Status, &rec.Note, &rec.RecordedAt); err != nil {
			return nil, err
		}
		rec.Date = domain.DateOf(rec.Date)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, eventType, aggregateID, dedupeKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		"activity",
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		aggregateID,
		body,
		dedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"activity.created": {
		Topic:         "planner_activity_events",
		SchemaSubject: "planner_activity_events-value",
	},
	"status.changed": {
		Topic:         "planner_status_events",
		SchemaSubject: "planner_status_events-value",
	},
}
