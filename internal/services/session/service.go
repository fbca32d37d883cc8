package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"sessionbot/internal/common/clock"
	"sessionbot/internal/common/uuid"
	"sessionbot/internal/models"
	sessionRepo "sessionbot/internal/repositories/session"
	userRepo "sessionbot/internal/repositories/user"
	"sessionbot/internal/validate"
)

// service implements the Service interface
type service struct {
	sessionRepo sessionRepo.Repository
	userRepo    userRepo.Repository
	clock       clock.Clock
	uuidGen     uuid.UUID
	loc         *time.Location
}

// New creates a new session service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilSessionRepo
	}

	if cfg.UserRepo == nil {
		return nil, ErrNilUserRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGen
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &service{
		sessionRepo: cfg.SessionRepo,
		userRepo:    cfg.UserRepo,
		clock:       cfg.Clock,
		uuidGen:     cfg.UUIDGenerator,
		loc:         loc,
	}, nil
}

// CreateSession creates a new session and seats its creator. The creator
// seat is part of the creation contract: if it cannot be written, the
// half-created session is removed and the call fails.
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	now := s.clock.Now()

	if err := validate.SessionStart(input.Date, input.Time, now, s.loc); err != nil {
		return nil, err
	}

	if err := validate.MaxPlayers(input.MaxPlayers); err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:         s.uuidGen.NewUUID(),
		Game:       input.Game,
		Date:       input.Date,
		Time:       input.Time,
		MaxPlayers: input.MaxPlayers,
		CreatorID:  input.CreatorID,
		CreatedAt:  now,
	}

	if err := s.sessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: sess}); err != nil {
		return nil, err
	}

	err := s.sessionRepo.AddParticipant(ctx, &sessionRepo.AddParticipantInput{
		SessionID: sess.ID,
		UserID:    input.CreatorID,
	})
	if err != nil {
		// Do not leave an orphaned session behind
		if delErr := s.sessionRepo.DeleteSession(ctx, &sessionRepo.DeleteSessionInput{SessionID: sess.ID}); delErr != nil {
			log.Printf("session: failed to roll back session %s after seat failure: %v", sess.ID, delErr)
		}
		return nil, fmt.Errorf("failed to seat creator: %w", err)
	}

	return &CreateSessionOutput{SessionID: sess.ID}, nil
}

// JoinSession gives a user a seat. Joining twice is a no-op success;
// joining a full session fails with ErrSessionFull.
func (s *service) JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	participants, err := s.sessionRepo.GetParticipants(ctx, &sessionRepo.GetParticipantsInput{SessionID: sess.ID})
	if err != nil {
		return nil, err
	}

	for _, userID := range participants {
		if userID == input.UserID {
			return &JoinSessionOutput{AlreadyJoined: true}, nil
		}
	}

	if len(participants) >= sess.MaxPlayers {
		return nil, ErrSessionFull
	}

	err = s.sessionRepo.AddParticipant(ctx, &sessionRepo.AddParticipantInput{
		SessionID: sess.ID,
		UserID:    input.UserID,
	})
	if err != nil {
		return nil, err
	}

	return &JoinSessionOutput{}, nil
}

// LeaveSession takes a user's seat away. Leaving a session the user is
// not part of is a no-op success.
func (s *service) LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if _, err := s.getSession(ctx, input.SessionID); err != nil {
		return nil, err
	}

	err := s.sessionRepo.RemoveParticipant(ctx, &sessionRepo.RemoveParticipantInput{
		SessionID: input.SessionID,
		UserID:    input.UserID,
	})
	if err != nil {
		return nil, err
	}

	return &LeaveSessionOutput{}, nil
}

// DeleteSession removes a session if the requester created it. The
// cascade removes participants and confirmations; history events stay.
func (s *service) DeleteSession(ctx context.Context, input *DeleteSessionInput) (*DeleteSessionOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if sess.CreatorID != input.RequesterID {
		return &DeleteSessionOutput{Deleted: false}, nil
	}

	participants, err := s.sessionRepo.GetParticipants(ctx, &sessionRepo.GetParticipantsInput{SessionID: sess.ID})
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.DeleteSession(ctx, &sessionRepo.DeleteSessionInput{SessionID: sess.ID}); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, input.RequesterID, sess, models.EventDeleted)

	return &DeleteSessionOutput{
		Deleted:        true,
		ParticipantIDs: participants,
		Session:        sess,
	}, nil
}

// ConfirmSession records that a participant will attend. Repeat calls
// overwrite the stored status, last write wins.
func (s *service) ConfirmSession(ctx context.Context, input *ConfirmSessionInput) (*ConfirmSessionOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	err = s.sessionRepo.SetConfirmation(ctx, &sessionRepo.SetConfirmationInput{
		SessionID: sess.ID,
		UserID:    input.UserID,
		Status:    models.ConfirmationConfirmed,
	})
	if err != nil {
		return nil, err
	}

	s.appendEvent(ctx, input.UserID, sess, models.EventConfirmed)

	peers, err := s.peersOf(ctx, sess.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &ConfirmSessionOutput{Session: sess, PeerIDs: peers}, nil
}

// DeclineSession records a refusal and frees the participant's seat.
// The confirmation record survives so the scheduler will not re-remind.
func (s *service) DeclineSession(ctx context.Context, input *DeclineSessionInput) (*DeclineSessionOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	err = s.sessionRepo.SetConfirmation(ctx, &sessionRepo.SetConfirmationInput{
		SessionID: sess.ID,
		UserID:    input.UserID,
		Status:    models.ConfirmationDeclined,
	})
	if err != nil {
		return nil, err
	}

	err = s.sessionRepo.RemoveParticipant(ctx, &sessionRepo.RemoveParticipantInput{
		SessionID: sess.ID,
		UserID:    input.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.appendEvent(ctx, input.UserID, sess, models.EventDeclined)

	peers, err := s.peersOf(ctx, sess.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &DeclineSessionOutput{Session: sess, PeerIDs: peers}, nil
}

// ListActiveSessions retrieves upcoming sessions ordered by start time,
// annotated with participant counts and creator display names
func (s *service) ListActiveSessions(ctx context.Context, input *ListActiveSessionsInput) (*ListActiveSessionsOutput, error) {
	out, err := s.sessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{From: s.clock.Now()})
	if err != nil {
		return nil, err
	}

	summaries := make([]*SessionSummary, 0, len(out.Sessions))
	creatorIDs := make([]int64, 0, len(out.Sessions))

	for _, sess := range out.Sessions {
		participants, err := s.sessionRepo.GetParticipants(ctx, &sessionRepo.GetParticipantsInput{SessionID: sess.ID})
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, &SessionSummary{
			Session:        sess,
			CurrentPlayers: len(participants),
		})
		creatorIDs = append(creatorIDs, sess.CreatorID)
	}

	creators, err := s.userRepo.GetUsers(ctx, &userRepo.GetUsersInput{UserIDs: creatorIDs})
	if err != nil {
		return nil, err
	}

	for _, summary := range summaries {
		if creator, ok := creators[summary.Session.CreatorID]; ok {
			summary.CreatorName = creator.Name
		}
	}

	return &ListActiveSessionsOutput{Sessions: summaries}, nil
}

// GetSessionDetail retrieves one session with its seated participants
func (s *service) GetSessionDetail(ctx context.Context, input *GetSessionDetailInput) (*GetSessionDetailOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	participantIDs, err := s.sessionRepo.GetParticipants(ctx, &sessionRepo.GetParticipantsInput{SessionID: sess.ID})
	if err != nil {
		return nil, err
	}

	profiles, err := s.userRepo.GetUsers(ctx, &userRepo.GetUsersInput{
		UserIDs: append(append([]int64{}, participantIDs...), sess.CreatorID),
	})
	if err != nil {
		return nil, err
	}

	// Stable participant order regardless of storage
	sort.Slice(participantIDs, func(i, j int) bool { return participantIDs[i] < participantIDs[j] })

	participants := make([]*models.User, 0, len(participantIDs))
	for _, userID := range participantIDs {
		if profile, ok := profiles[userID]; ok {
			participants = append(participants, profile)
		} else {
			participants = append(participants, &models.User{ID: userID})
		}
	}

	detail := &GetSessionDetailOutput{
		Session:      sess,
		Participants: participants,
	}
	if creator, ok := profiles[sess.CreatorID]; ok {
		detail.CreatorName = creator.Name
	}

	return detail, nil
}

// GetUserSessions retrieves the upcoming sessions a user created or
// joined, ordered by start time and tagged with IsCreator
func (s *service) GetUserSessions(ctx context.Context, input *GetUserSessionsInput) (*GetUserSessionsOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	upcoming, err := s.sessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{From: s.clock.Now()})
	if err != nil {
		return nil, err
	}

	memberIDs, err := s.sessionRepo.GetUserSessionIDs(ctx, &sessionRepo.GetUserSessionIDsInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	member := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		member[id] = true
	}

	sessions := make([]*UserSession, 0)
	for _, sess := range upcoming.Sessions {
		if sess.CreatorID != input.UserID && !member[sess.ID] {
			continue
		}

		participants, err := s.sessionRepo.GetParticipants(ctx, &sessionRepo.GetParticipantsInput{SessionID: sess.ID})
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, &UserSession{
			Session:        sess,
			CurrentPlayers: len(participants),
			IsCreator:      sess.CreatorID == input.UserID,
		})
	}

	return &GetUserSessionsOutput{Sessions: sessions}, nil
}

// GetUserHistory retrieves a user's event history, newest first. Only
// events for sessions the user currently holds a seat in are shown, so
// history for sessions the user left does not resurface.
func (s *service) GetUserHistory(ctx context.Context, input *GetUserHistoryInput) (*GetUserHistoryOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	events, err := s.sessionRepo.GetUserEvents(ctx, &sessionRepo.GetUserEventsInput{
		UserID: input.UserID,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}

	memberIDs, err := s.sessionRepo.GetUserSessionIDs(ctx, &sessionRepo.GetUserSessionIDsInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	member := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		member[id] = true
	}

	visible := make([]*models.SessionEvent, 0, len(events))
	for _, event := range events {
		if member[event.SessionID] {
			visible = append(visible, event)
		}
	}

	return &GetUserHistoryOutput{Events: visible}, nil
}

// GetUserInfo retrieves a user's profile with participation counters
func (s *service) GetUserInfo(ctx context.Context, input *GetUserInfoInput) (*GetUserInfoOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	u, err := s.userRepo.GetUser(ctx, &userRepo.GetUserInput{UserID: input.UserID})
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	memberIDs, err := s.sessionRepo.GetUserSessionIDs(ctx, &sessionRepo.GetUserSessionIDsInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	all, err := s.sessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{From: time.Unix(0, 0)})
	if err != nil {
		return nil, err
	}

	created := 0
	for _, sess := range all.Sessions {
		if sess.CreatorID == input.UserID {
			created++
		}
	}

	return &GetUserInfoOutput{
		User:            u,
		CreatedSessions: created,
		JoinedSessions:  len(memberIDs),
	}, nil
}

func (s *service) getSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sess, err := s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: sessionID})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *service) peersOf(ctx context.Context, sessionID string, userID int64) ([]int64, error) {
	participants, err := s.sessionRepo.GetParticipants(ctx, &sessionRepo.GetParticipantsInput{SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	peers := make([]int64, 0, len(participants))
	for _, id := range participants {
		if id != userID {
			peers = append(peers, id)
		}
	}
	return peers, nil
}

// appendEvent records history best-effort. A failed event write never
// fails the operation that caused it.
func (s *service) appendEvent(ctx context.Context, userID int64, sess *models.Session, eventType models.EventType) {
	err := s.sessionRepo.AppendEvent(ctx, &sessionRepo.AppendEventInput{Event: &models.SessionEvent{
		ID:        s.uuidGen.NewUUID(),
		UserID:    userID,
		SessionID: sess.ID,
		Game:      sess.Game,
		Type:      eventType,
		Timestamp: s.clock.Now(),
	}})
	if err != nil {
		log.Printf("session: failed to append %s event for user %d: %v", eventType, userID, err)
	}
}
