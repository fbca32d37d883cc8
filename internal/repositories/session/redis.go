package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sessionbot/internal/models"
)

const (
	// Key prefixes for Redis
	sessionKeyPrefix   = "session:"
	sessionsByStartKey = "sessions:by_start" // zset scored by start time (unix)
	userKeyPrefix      = "user:"

	participantsKeySuffix  = ":participants"
	confirmationsKeySuffix = ":confirmations"
	sessionsKeySuffix      = ":sessions"
	eventsKeySuffix        = ":events"

	// maxStoredEvents bounds each user's history list in Redis.
	// Queries cap lower than this.
	maxStoredEvents = 500

	// DefaultEventLimit is the query-level history cap
	DefaultEventLimit = 50
)

// ErrSessionNotFound is returned when a session is not found
var ErrSessionNotFound = errors.New("session not found")

// Config holds configuration for the Redis session repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Location resolves session date/time fields into instants for the
	// start-time index. Defaults to time.Local.
	Location *time.Location
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	loc    *time.Location
}

// NewRedis creates a new Redis-backed session repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
		loc:    loc,
	}, nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func participantsKey(sessionID string) string {
	return sessionKeyPrefix + sessionID + participantsKeySuffix
}

func confirmationsKey(sessionID string) string {
	return sessionKeyPrefix + sessionID + confirmationsKeySuffix
}

func userSessionsKey(userID int64) string {
	return fmt.Sprintf("%s%d%s", userKeyPrefix, userID, sessionsKeySuffix)
}

func userEventsKey(userID int64) string {
	return fmt.Sprintf("%s%d%s", userKeyPrefix, userID, eventsKeySuffix)
}

// SaveSession persists a session to Redis
func (r *redisRepository) SaveSession(ctx context.Context, input *SaveSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	startsAt, err := input.Session.StartsAt(r.loc)
	if err != nil {
		return err
	}

	sessionJSON, err := json.Marshal(input.Session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, sessionKey(input.Session.ID), sessionJSON, 0)
	pipe.ZAdd(ctx, sessionsByStartKey, redis.Z{
		Score:  float64(startsAt.Unix()),
		Member: input.Session.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID from Redis
func (r *redisRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	sessionJSON, err := r.client.Get(ctx, sessionKey(input.SessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(sessionJSON), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// DeleteSession removes a session and cascades to its participants and
// confirmation records. Event lists are untouched so history survives.
func (r *redisRepository) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	// Verify the session exists and collect its participants so their
	// membership indexes can be cleaned up in the same transaction.
	if _, err := r.GetSession(ctx, &GetSessionInput{SessionID: input.SessionID}); err != nil {
		return err
	}

	participantIDs, err := r.GetParticipants(ctx, &GetParticipantsInput{SessionID: input.SessionID})
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, sessionKey(input.SessionID))
	pipe.ZRem(ctx, sessionsByStartKey, input.SessionID)
	pipe.Del(ctx, participantsKey(input.SessionID))
	pipe.Del(ctx, confirmationsKey(input.SessionID))

	for _, userID := range participantIDs {
		pipe.SRem(ctx, userSessionsKey(userID), input.SessionID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// ListSessions retrieves sessions starting within the given range,
// ordered by start time ascending
func (r *redisRepository) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	max := "+inf"
	if !input.Until.IsZero() {
		max = strconv.FormatInt(input.Until.Unix(), 10)
	}

	sessionIDs, err := r.client.ZRangeByScore(ctx, sessionsByStartKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(input.From.Unix(), 10),
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by start time: %w", err)
	}

	if len(sessionIDs) == 0 {
		return &ListSessionsOutput{Sessions: []*models.Session{}}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(sessionIDs))
	for i, id := range sessionIDs {
		cmds[i] = pipe.Get(ctx, sessionKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	sessions := make([]*models.Session, 0, len(sessionIDs))
	for i, cmd := range cmds {
		sessionJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Session deleted between the index query and the fetch
				continue
			}
			return nil, fmt.Errorf("failed to get session %s: %w", sessionIDs[i], err)
		}

		var sess models.Session
		if err := json.Unmarshal([]byte(sessionJSON), &sess); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionIDs[i], err)
		}

		sessions = append(sessions, &sess)
	}

	return &ListSessionsOutput{Sessions: sessions}, nil
}

// AddParticipant gives a user a seat in a session
func (r *redisRepository) AddParticipant(ctx context.Context, input *AddParticipantInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, participantsKey(input.SessionID), input.UserID)
	pipe.SAdd(ctx, userSessionsKey(input.UserID), input.SessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}

	return nil
}

// RemoveParticipant takes a user's seat away. The confirmation record is
// kept; records without a matching participant are ignored by readers.
func (r *redisRepository) RemoveParticipant(ctx context.Context, input *RemoveParticipantInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	pipe := r.client.Pipeline()
	pipe.SRem(ctx, participantsKey(input.SessionID), input.UserID)
	pipe.SRem(ctx, userSessionsKey(input.UserID), input.SessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	return nil
}

// GetParticipants retrieves the user IDs holding seats in a session
func (r *redisRepository) GetParticipants(ctx context.Context, input *GetParticipantsInput) ([]int64, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	members, err := r.client.SMembers(ctx, participantsKey(input.SessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	userIDs := make([]int64, 0, len(members))
	for _, member := range members {
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt participant entry %q: %w", member, err)
		}
		userIDs = append(userIDs, userID)
	}

	return userIDs, nil
}

// GetUserSessionIDs retrieves the IDs of sessions the user holds a seat in
func (r *redisRepository) GetUserSessionIDs(ctx context.Context, input *GetUserSessionIDsInput) ([]string, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	sessionIDs, err := r.client.SMembers(ctx, userSessionsKey(input.UserID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user sessions: %w", err)
	}

	return sessionIDs, nil
}

// SetConfirmation upserts a participant's confirmation status. A repeat
// call overwrites the previous status.
func (r *redisRepository) SetConfirmation(ctx context.Context, input *SetConfirmationInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	err := r.client.HSet(ctx, confirmationsKey(input.SessionID),
		strconv.FormatInt(input.UserID, 10), string(input.Status)).Err()
	if err != nil {
		return fmt.Errorf("failed to set confirmation: %w", err)
	}

	return nil
}

// GetConfirmations retrieves all confirmation records for a session
func (r *redisRepository) GetConfirmations(ctx context.Context, input *GetConfirmationsInput) (map[int64]models.ConfirmationStatus, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	entries, err := r.client.HGetAll(ctx, confirmationsKey(input.SessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmations: %w", err)
	}

	confirmations := make(map[int64]models.ConfirmationStatus, len(entries))
	for field, status := range entries {
		userID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt confirmation entry %q: %w", field, err)
		}
		confirmations[userID] = models.ConfirmationStatus(status)
	}

	return confirmations, nil
}

// AppendEvent appends an entry to a user's session history
func (r *redisRepository) AppendEvent(ctx context.Context, input *AppendEventInput) error {
	if input == nil || input.Event == nil {
		return errors.New("input and event cannot be nil")
	}

	eventJSON, err := json.Marshal(input.Event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := userEventsKey(input.Event.UserID)

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, key, eventJSON)
	pipe.LTrim(ctx, key, 0, maxStoredEvents-1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// GetUserEvents retrieves a user's session history, newest first
func (r *redisRepository) GetUserEvents(ctx context.Context, input *GetUserEventsInput) ([]*models.SessionEvent, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	entries, err := r.client.LRange(ctx, userEventsKey(input.UserID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user events: %w", err)
	}

	events := make([]*models.SessionEvent, 0, len(entries))
	for _, entry := range entries {
		var event models.SessionEvent
		if err := json.Unmarshal([]byte(entry), &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, &event)
	}

	return events, nil
}
