// Package events defines the payloads delivered through the outbox.
package events

import "time"

// ActivityCreated is emitted when a new activity definition is accepted.
type ActivityCreated struct {
	ActivityID string    `json:"activity_id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Recurrence string    `json:"recurrence"`
	StartTime  string    `json:"start_time"`
	IsOutdoor  bool      `json:"is_outdoor"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatusChanged is emitted for every status record appended to the ledger,
// including records that supersede earlier ones for the same occurrence.
type StatusChanged struct {
	ActivityID string    `json:"activity_id"`
	Date       string    `json:"date"` // occurrence date, YYYY-MM-DD
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
