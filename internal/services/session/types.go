package session

import (
	"time"

	"sessionbot/internal/common/clock"
	"sessionbot/internal/common/uuid"
	"sessionbot/internal/models"
	sessionRepo "sessionbot/internal/repositories/session"
	userRepo "sessionbot/internal/repositories/user"
)

// Config holds configuration for the session service
type Config struct {
	// Repository dependencies
	SessionRepo sessionRepo.Repository
	UserRepo    userRepo.Repository

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID

	// Location resolves session date/time fields. Defaults to time.Local.
	Location *time.Location
}

// CreateSessionInput contains parameters for creating a session
type CreateSessionInput struct {
	// Game is the name of the game to be played
	Game string

	// Date is the session date in models.DateLayout
	Date string

	// Time is the session start time in models.TimeLayout
	Time string

	// MaxPlayers is the seat capacity, must be positive
	MaxPlayers int

	// CreatorID is the user creating the session. The creator is seated
	// automatically.
	CreatorID int64
}

// CreateSessionOutput contains the result of creating a session
type CreateSessionOutput struct {
	// SessionID is the unique identifier for the created session
	SessionID string
}

// JoinSessionInput contains parameters for joining a session
type JoinSessionInput struct {
	SessionID string
	UserID    int64
}

// JoinSessionOutput contains the result of joining a session
type JoinSessionOutput struct {
	// AlreadyJoined indicates the user held a seat before the call
	AlreadyJoined bool
}

// LeaveSessionInput contains parameters for leaving a session
type LeaveSessionInput struct {
	SessionID string
	UserID    int64
}

// LeaveSessionOutput contains the result of leaving a session
type LeaveSessionOutput struct {
}

// DeleteSessionInput contains parameters for deleting a session
type DeleteSessionInput struct {
	SessionID string

	// RequesterID must match the session's creator for the delete to
	// take effect
	RequesterID int64
}

// DeleteSessionOutput contains the result of a delete request
type DeleteSessionOutput struct {
	// Deleted is false when the requester is not the creator
	Deleted bool

	// ParticipantIDs lists the users who held seats before the cascade,
	// so callers can notify them
	ParticipantIDs []int64

	// Session is the deleted session
	Session *models.Session
}

// ConfirmSessionInput contains parameters for confirming participation
type ConfirmSessionInput struct {
	SessionID string
	UserID    int64
}

// ConfirmSessionOutput contains the result of a confirmation
type ConfirmSessionOutput struct {
	// Session is the confirmed session
	Session *models.Session

	// PeerIDs lists the other current participants, for notification
	PeerIDs []int64
}

// DeclineSessionInput contains parameters for declining participation
type DeclineSessionInput struct {
	SessionID string
	UserID    int64
}

// DeclineSessionOutput contains the result of a decline
type DeclineSessionOutput struct {
	// Session is the declined session
	Session *models.Session

	// PeerIDs lists the participants remaining after the decliner's
	// seat was freed
	PeerIDs []int64
}

// ListActiveSessionsInput contains parameters for listing upcoming sessions
type ListActiveSessionsInput struct {
}

// SessionSummary is one row of a session listing
type SessionSummary struct {
	// Session is the underlying session
	Session *models.Session

	// CurrentPlayers is the live participant count
	CurrentPlayers int

	// CreatorName is the creator's display name, empty when unknown
	CreatorName string
}

// ListActiveSessionsOutput contains upcoming sessions ordered by start time
type ListActiveSessionsOutput struct {
	Sessions []*SessionSummary
}

// GetSessionDetailInput contains parameters for fetching one session
type GetSessionDetailInput struct {
	SessionID string
}

// GetSessionDetailOutput contains a session and its seated participants
type GetSessionDetailOutput struct {
	Session *models.Session

	// CreatorName is the creator's display name, empty when unknown
	CreatorName string

	// Participants holds the profiles of seated users. Users without a
	// stored profile appear with only the ID set.
	Participants []*models.User
}

// GetUserSessionsInput contains parameters for listing a user's sessions
type GetUserSessionsInput struct {
	UserID int64
}

// UserSession is one row of a user's session listing
type UserSession struct {
	Session *models.Session

	// CurrentPlayers is the live participant count
	CurrentPlayers int

	// IsCreator indicates the user created this session
	IsCreator bool
}

// GetUserSessionsOutput contains the user's upcoming sessions
type GetUserSessionsOutput struct {
	Sessions []*UserSession
}

// GetUserHistoryInput contains parameters for fetching a user's history
type GetUserHistoryInput struct {
	UserID int64

	// Limit caps the number of events returned. Zero means the default.
	Limit int
}

// GetUserHistoryOutput contains history events, newest first
type GetUserHistoryOutput struct {
	Events []*models.SessionEvent
}

// GetUserInfoInput contains parameters for fetching a user profile
type GetUserInfoInput struct {
	UserID int64
}

// GetUserInfoOutput contains a profile with participation counters
type GetUserInfoOutput struct {
	User *models.User

	// CreatedSessions counts upcoming-or-stored sessions created by the user
	CreatedSessions int

	// JoinedSessions counts sessions the user currently holds a seat in
	JoinedSessions int
}
