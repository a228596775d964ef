package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/planner/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := &domain.Cursor{
		Date: time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
		ID:   42,
	}

	token := EncodeCursor(cursor)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.Equal(t, cursor, decoded)
}

func TestEncodeNilCursor(t *testing.T) {
	require.Empty(t, EncodeCursor(nil))
}

func TestDecodeEmptyToken(t *testing.T) {
	decoded, err := DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestDecodeInvalidTokens(t *testing.T) {
	for _, token := range []string{"not-base64!", "bm9zZXBhcmF0b3I=", "MjAyNi0wMy0wNnxOYU4="} {
		_, err := DecodeCursor(token)
		require.Error(t, err, "token %q", token)
	}
}
