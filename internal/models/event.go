package models

import "time"

// EventType classifies an entry in a user's session history
type EventType string

const (
	// EventConfirmed records a participation confirmation
	EventConfirmed EventType = "confirmed"

	// EventDeclined records a declined reminder
	EventDeclined EventType = "declined"

	// EventDeleted records a session deletion by its creator
	EventDeleted EventType = "deleted"
)

// SessionEvent is an append-only history entry. Events are never mutated
// and survive deletion of the session they refer to.
type SessionEvent struct {
	// ID is the unique identifier for the event
	ID string

	// UserID is the user the event belongs to
	UserID int64

	// SessionID is the session the event refers to
	SessionID string

	// Game is the session's game name, denormalized so history stays
	// readable after the session row is gone
	Game string

	// Type is what happened
	Type EventType

	// Timestamp is when the event was recorded
	Timestamp time.Time
}
