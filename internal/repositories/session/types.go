package session

import (
	"time"

	"sessionbot/internal/models"
)

type SaveSessionInput struct {
	Session *models.Session
}

type GetSessionInput struct {
	SessionID string
}

type DeleteSessionInput struct {
	SessionID string
}

type ListSessionsInput struct {
	// From is the inclusive lower bound on session start time
	From time.Time

	// Until is the inclusive upper bound. Zero means unbounded.
	Until time.Time
}

type ListSessionsOutput struct {
	Sessions []*models.Session
}

type AddParticipantInput struct {
	SessionID string
	UserID    int64
}

type RemoveParticipantInput struct {
	SessionID string
	UserID    int64
}

type GetParticipantsInput struct {
	SessionID string
}

type GetUserSessionIDsInput struct {
	UserID int64
}

type SetConfirmationInput struct {
	SessionID string
	UserID    int64
	Status    models.ConfirmationStatus
}

type GetConfirmationsInput struct {
	SessionID string
}

type AppendEventInput struct {
	Event *models.SessionEvent
}

type GetUserEventsInput struct {
	UserID int64

	// Limit caps the number of events returned. Zero means the default cap.
	Limit int
}
