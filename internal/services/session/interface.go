package session

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go sessionbot/internal/services/session Service

import "context"

// Service defines the interface for session lifecycle operations
type Service interface {
	// CreateSession creates a new session and seats its creator
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// JoinSession gives a user a seat. Re-joining is a no-op success.
	JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error)

	// LeaveSession takes a user's seat away. Leaving a session the user
	// is not part of is a no-op success.
	LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error)

	// DeleteSession removes a session if the requester created it.
	// A non-creator request reports Deleted=false without an error.
	DeleteSession(ctx context.Context, input *DeleteSessionInput) (*DeleteSessionOutput, error)

	// ConfirmSession records that a participant will attend
	ConfirmSession(ctx context.Context, input *ConfirmSessionInput) (*ConfirmSessionOutput, error)

	// DeclineSession records a refusal and frees the participant's seat
	DeclineSession(ctx context.Context, input *DeclineSessionInput) (*DeclineSessionOutput, error)

	// ListActiveSessions retrieves upcoming sessions ordered by start time
	ListActiveSessions(ctx context.Context, input *ListActiveSessionsInput) (*ListActiveSessionsOutput, error)

	// GetSessionDetail retrieves one session with its participants
	GetSessionDetail(ctx context.Context, input *GetSessionDetailInput) (*GetSessionDetailOutput, error)

	// GetUserSessions retrieves the upcoming sessions a user created or joined
	GetUserSessions(ctx context.Context, input *GetUserSessionsInput) (*GetUserSessionsOutput, error)

	// GetUserHistory retrieves a user's session event history, newest
	// first, limited to sessions the user still participates in
	GetUserHistory(ctx context.Context, input *GetUserHistoryInput) (*GetUserHistoryOutput, error)

	// GetUserInfo retrieves a user's profile with participation counters
	GetUserInfo(ctx context.Context, input *GetUserInfoInput) (*GetUserInfoOutput, error)
}
