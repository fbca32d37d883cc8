package models

// Participant represents a user holding a seat in a session
type Participant struct {
	// SessionID is the session the seat belongs to
	SessionID string

	// UserID is the user holding the seat
	UserID int64
}
