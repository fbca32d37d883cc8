package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sessionbot/internal/models"
)

const (
	userKeyPrefix   = "user:profile:"
	blockedUsersKey = "users:blocked"
)

// ErrUserNotFound is returned when a user is not found
var ErrUserNotFound = errors.New("user not found")

// Config holds configuration for the Redis user repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed user repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{client: cfg.RedisClient}, nil
}

func userKey(userID int64) string {
	return fmt.Sprintf("%s%d", userKeyPrefix, userID)
}

// SaveUser inserts or replaces a user profile
func (r *redisRepository) SaveUser(ctx context.Context, input *SaveUserInput) error {
	if input == nil || input.User == nil {
		return errors.New("input and user cannot be nil")
	}

	userJSON, err := json.Marshal(input.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, userKey(input.User.ID), userJSON, 0)
	if input.User.Blocked {
		pipe.SAdd(ctx, blockedUsersKey, input.User.ID)
	} else {
		pipe.SRem(ctx, blockedUsersKey, input.User.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID
func (r *redisRepository) GetUser(ctx context.Context, input *GetUserInput) (*models.User, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	userJSON, err := r.client.Get(ctx, userKey(input.UserID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var u models.User
	if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &u, nil
}

// GetUsers retrieves several users at once, keyed by ID
func (r *redisRepository) GetUsers(ctx context.Context, input *GetUsersInput) (map[int64]*models.User, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	users := make(map[int64]*models.User, len(input.UserIDs))
	if len(input.UserIDs) == 0 {
		return users, nil
	}

	pipe := r.client.Pipeline()
	cmds := make(map[int64]*redis.StringCmd, len(input.UserIDs))
	for _, userID := range input.UserIDs {
		cmds[userID] = pipe.Get(ctx, userKey(userID))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for userID, cmd := range cmds {
		userJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
		}

		var u models.User
		if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user %d: %w", userID, err)
		}
		users[userID] = &u
	}

	return users, nil
}

// BlockUser marks a user as blocked with a reason
func (r *redisRepository) BlockUser(ctx context.Context, input *BlockUserInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	u, err := r.GetUser(ctx, &GetUserInput{UserID: input.UserID})
	if err != nil {
		return err
	}

	u.Blocked = true
	u.BlockReason = input.Reason

	return r.SaveUser(ctx, &SaveUserInput{User: u})
}

// UnblockUser clears a user's blocked flag
func (r *redisRepository) UnblockUser(ctx context.Context, input *UnblockUserInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	u, err := r.GetUser(ctx, &GetUserInput{UserID: input.UserID})
	if err != nil {
		return err
	}

	u.Blocked = false
	u.BlockReason = ""

	return r.SaveUser(ctx, &SaveUserInput{User: u})
}

// ListBlockedUsers retrieves all currently blocked users
func (r *redisRepository) ListBlockedUsers(ctx context.Context, input *ListBlockedUsersInput) ([]*models.User, error) {
	members, err := r.client.SMembers(ctx, blockedUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get blocked user IDs: %w", err)
	}

	blocked := make([]*models.User, 0, len(members))
	for _, member := range members {
		userJSON, err := r.client.Get(ctx, userKeyPrefix+member).Result()
		if err != nil {
			if err == redis.Nil {
				// Profile deleted out from under the index
				continue
			}
			return nil, fmt.Errorf("failed to get blocked user %s: %w", member, err)
		}

		var u models.User
		if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
			return nil, fmt.Errorf("failed to unmarshal blocked user %s: %w", member, err)
		}
		blocked = append(blocked, &u)
	}

	return blocked, nil
}
