package models

import (
	"fmt"
	"time"
)

// Layouts used for session date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Session represents a scheduled game session
type Session struct {
	// ID is the unique identifier for the session
	ID string

	// Game is the name of the game being played
	Game string

	// Date is the calendar date of the session, formatted as DateLayout
	Date string

	// Time is the local time of day the session starts, formatted as TimeLayout
	Time string

	// MaxPlayers is the maximum number of participants allowed
	MaxPlayers int

	// CreatorID is the user ID of the player who created the session
	CreatorID int64

	// CreatedAt is when the session was created
	CreatedAt time.Time
}

// StartsAt combines the session's date and time fields into a single
// instant in the given location.
func (s *Session) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid session start %q %q: %w", s.Date, s.Time, err)
	}

	return t, nil
}
