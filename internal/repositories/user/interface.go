package user

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go sessionbot/internal/repositories/user Repository

import (
	"context"

	"sessionbot/internal/models"
)

// Repository defines the interface for user profile persistence
type Repository interface {
	// SaveUser inserts or replaces a user profile
	SaveUser(ctx context.Context, input *SaveUserInput) error

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, input *GetUserInput) (*models.User, error)

	// GetUsers retrieves several users at once, keyed by ID. Unknown IDs
	// are simply absent from the result.
	GetUsers(ctx context.Context, input *GetUsersInput) (map[int64]*models.User, error)

	// BlockUser marks a user as blocked with a reason
	BlockUser(ctx context.Context, input *BlockUserInput) error

	// UnblockUser clears a user's blocked flag
	UnblockUser(ctx context.Context, input *UnblockUserInput) error

	// ListBlockedUsers retrieves all currently blocked users
	ListBlockedUsers(ctx context.Context, input *ListBlockedUsersInput) ([]*models.User, error)
}
