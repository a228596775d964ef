package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseCategoryCaseInsensitive(t *testing.T) {
	cat, err := ParseCategory("health")
	require.NoError(t, err)
	require.Equal(t, CategoryHealth, cat)

	_, err = ParseCategory("Chores")
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseRecurrence(t *testing.T) {
	rec, err := ParseRecurrence("WEEKDAYS")
	require.NoError(t, err)
	require.Equal(t, RecurrenceWeekdays, rec)

	_, err = ParseRecurrence("fortnightly")
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("07:30")
	require.NoError(t, err)
	require.Equal(t, TimeOfDay{Hour: 7, Minute: 30}, tod)
	require.Equal(t, "07:30", tod.String())
	require.Equal(t, 450, tod.Minutes())

	for _, raw := range []string{"24:00", "12:60", "noon"} {
		_, err := ParseTimeOfDay(raw)
		require.ErrorIs(t, err, ErrValidation, "input %q", raw)
	}
}

func TestValidateDuration(t *testing.T) {
	require.NoError(t, ValidateDuration(45))
	require.NoError(t, ValidateDuration(0), "zero means unspecified")
	require.ErrorIs(t, ValidateDuration(-1), ErrValidation)
	require.ErrorIs(t, ValidateDuration(1441), ErrValidation)
}

func TestAnchorDateFallsBackToCreation(t *testing.T) {
	created := time.Date(2026, time.March, 6, 22, 15, 0, 0, time.UTC)
	a := Activity{CreatedAt: created}
	require.Equal(t, time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), a.AnchorDate())

	a.Anchor = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, a.Anchor, a.AnchorDate())
}

func TestDateOfNormalizesToMidnightUTC(t *testing.T) {
	moment := time.Date(2026, time.March, 6, 23, 59, 59, 0, time.UTC)
	require.Equal(t, time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), DateOf(moment))
}
