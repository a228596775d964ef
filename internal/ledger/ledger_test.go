package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/planner/internal/domain"
)

var day = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func record(id int64, date time.Time, status domain.Status, recordedAt time.Time) domain.StatusRecord {
	return domain.StatusRecord{
		ID:         id,
		ActivityID: "act-1",
		Date:       date,
		Status:     status,
		RecordedAt: recordedAt,
	}
}

func TestLatestPicksMostRecentRecord(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	records := []domain.StatusRecord{
		record(1, day, domain.StatusDone, base),
		record(2, day, domain.StatusMissed, base.Add(time.Hour)),
	}

	latest := Latest(records)
	require.Len(t, latest, 1)
	require.Equal(t, domain.StatusMissed, latest[Key{ActivityID: "act-1", Date: day}].Status)
}

func TestLatestBreaksTimestampTiesByInsertionOrder(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	records := []domain.StatusRecord{
		record(2, day, domain.StatusDone, base),
		record(1, day, domain.StatusMissed, base),
	}

	latest := Latest(records)
	require.Equal(t, domain.StatusDone, latest[Key{ActivityID: "act-1", Date: day}].Status)
}

func TestCurrentStatusDefaultsToPending(t *testing.T) {
	require.Equal(t, domain.StatusPending, CurrentStatus(nil, "act-1", day))
}

func TestHistoryKeepsOneRecordPerDateAscending(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	dayTwo := day.AddDate(0, 0, 1)
	records := []domain.StatusRecord{
		record(1, dayTwo, domain.StatusDone, base.AddDate(0, 0, 1)),
		record(2, day, domain.StatusDone, base),
		record(3, day, domain.StatusPartial, base.Add(2*time.Hour)),
	}

	history := History(records)
	require.Len(t, history, 2)
	require.Equal(t, day, history[0].Date)
	require.Equal(t, domain.StatusPartial, history[0].Status)
	require.Equal(t, dayTwo, history[1].Date)
}

func TestToggle(t *testing.T) {
	next, err := Toggle(domain.StatusPending)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDone, next)

	next, err = Toggle(domain.StatusDone)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, next)
}

func TestToggleRejectsConsideredStatuses(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusMissed, domain.StatusPartial, domain.StatusRescheduled} {
		_, err := Toggle(status)
		require.ErrorIs(t, err, domain.ErrValidation, "status %s", status)
	}
}
