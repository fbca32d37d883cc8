// Package validate holds the input checks applied before session and
// profile data reaches the services.
package validate

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	"sessionbot/internal/models"
)

var (
	// ErrInvalidDate is returned for a malformed session date
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

	// ErrInvalidTime is returned for a malformed session time
	ErrInvalidTime = errors.New("time must be in HH:MM format")

	// ErrPastSession is returned when the session would start in the past
	ErrPastSession = errors.New("session start must not be in the past")

	// ErrInvalidMaxPlayers is returned for a non-positive capacity
	ErrInvalidMaxPlayers = errors.New("max players must be positive")

	// ErrInvalidName is returned for an unusable display name
	ErrInvalidName = errors.New("name must be at least 2 letters")

	// ErrInvalidAge is returned for an implausible age
	ErrInvalidAge = errors.New("age must be a number between 1 and 119")
)

var (
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
	namePattern = regexp.MustCompile(`^[\p{L}\s-]{2,}$`)
)

// SessionStart checks the date and time fields of a new session: both
// well-formed and the combined instant not before now.
func SessionStart(date, timeOfDay string, now time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	if _, err := time.ParseInLocation(models.DateLayout, date, loc); err != nil {
		return ErrInvalidDate
	}

	if !timePattern.MatchString(timeOfDay) {
		return ErrInvalidTime
	}

	start, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, date+" "+timeOfDay, loc)
	if err != nil {
		return ErrInvalidTime
	}

	if start.Before(now) {
		return ErrPastSession
	}

	return nil
}

// MaxPlayers checks a session capacity
func MaxPlayers(n int) error {
	if n <= 0 {
		return ErrInvalidMaxPlayers
	}
	return nil
}

// Name checks a registration display name: letters, spaces and hyphens,
// at least two characters.
func Name(name string) error {
	if !namePattern.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// Age checks a self-reported age given as text
func Age(age string) (int, error) {
	n, err := strconv.Atoi(age)
	if err != nil || n <= 0 || n >= 120 {
		return 0, ErrInvalidAge
	}
	return n, nil
}
