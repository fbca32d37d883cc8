package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStart(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    string
		time    string
		wantErr error
	}{
		{"future same day", "2025-06-10", "18:00", nil},
		{"future day", "2025-06-11", "09:00", nil},
		{"exactly now", "2025-06-10", "10:00", nil},
		{"past time today", "2025-06-10", "09:59", ErrPastSession},
		{"past day", "2025-06-09", "18:00", ErrPastSession},
		{"bad date format", "10.06.2025", "18:00", ErrInvalidDate},
		{"bad time format", "2025-06-10", "6pm", ErrInvalidTime},
		{"impossible time", "2025-06-10", "25:00", ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SessionStart(tt.date, tt.time, now, time.UTC)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMaxPlayers(t *testing.T) {
	assert.NoError(t, MaxPlayers(1))
	assert.NoError(t, MaxPlayers(10))
	assert.ErrorIs(t, MaxPlayers(0), ErrInvalidMaxPlayers)
	assert.ErrorIs(t, MaxPlayers(-3), ErrInvalidMaxPlayers)
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("Анна"))
	assert.NoError(t, Name("Jean-Luc"))
	assert.ErrorIs(t, Name("A"), ErrInvalidName)
	assert.ErrorIs(t, Name("user42"), ErrInvalidName)
	assert.ErrorIs(t, Name(""), ErrInvalidName)
}

func TestAge(t *testing.T) {
	n, err := Age("30")
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	for _, bad := range []string{"0", "-1", "120", "abc", ""} {
		_, err := Age(bad)
		assert.ErrorIs(t, err, ErrInvalidAge, bad)
	}
}
