package session

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go sessionbot/internal/repositories/session Repository

import (
	"context"

	"sessionbot/internal/models"
)

// Repository defines the interface for session data persistence
type Repository interface {
	// SaveSession persists a session and indexes it by start time
	SaveSession(ctx context.Context, input *SaveSessionInput) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error)

	// DeleteSession removes a session together with its participants and
	// confirmation records. Session events are kept.
	DeleteSession(ctx context.Context, input *DeleteSessionInput) error

	// ListSessions retrieves sessions whose start time falls within the
	// given range, ordered by start time ascending
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)

	// AddParticipant gives a user a seat in a session
	AddParticipant(ctx context.Context, input *AddParticipantInput) error

	// RemoveParticipant takes a user's seat away. Removing a non-member is a no-op.
	RemoveParticipant(ctx context.Context, input *RemoveParticipantInput) error

	// GetParticipants retrieves the user IDs holding seats in a session
	GetParticipants(ctx context.Context, input *GetParticipantsInput) ([]int64, error)

	// GetUserSessionIDs retrieves the IDs of sessions the user holds a seat in
	GetUserSessionIDs(ctx context.Context, input *GetUserSessionIDsInput) ([]string, error)

	// SetConfirmation upserts a participant's confirmation status
	SetConfirmation(ctx context.Context, input *SetConfirmationInput) error

	// GetConfirmations retrieves all confirmation records for a session,
	// keyed by user ID. Participants without a record are absent.
	GetConfirmations(ctx context.Context, input *GetConfirmationsInput) (map[int64]models.ConfirmationStatus, error)

	// AppendEvent appends an entry to a user's session history
	AppendEvent(ctx context.Context, input *AppendEventInput) error

	// GetUserEvents retrieves a user's session history, newest first
	GetUserEvents(ctx context.Context, input *GetUserEventsInput) ([]*models.SessionEvent, error)
}
