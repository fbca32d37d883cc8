package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"sessionbot/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
		Location:    time.UTC,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) newSession(id, date, tm string) *models.Session {
	return &models.Session{
		ID:         id,
		Game:       "Chess",
		Date:       date,
		Time:       tm,
		MaxPlayers: 4,
		CreatorID:  100,
		CreatedAt:  s.testNow,
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetSession() {
	sess := s.newSession("test-session-id", "2025-06-11", "18:00")

	err := s.repo.SaveSession(context.Background(), &SaveSessionInput{Session: sess})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)
	s.Equal(sess.ID, retrieved.ID)
	s.Equal(sess.Game, retrieved.Game)
	s.Equal(sess.Date, retrieved.Date)
	s.Equal(sess.Time, retrieved.Time)
	s.Equal(sess.MaxPlayers, retrieved.MaxPlayers)
	s.Equal(sess.CreatorID, retrieved.CreatorID)
}

func (s *RedisRepositoryTestSuite) TestGetSessionNotFound() {
	_, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "missing",
	})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisRepositoryTestSuite) TestSaveSessionRejectsBadStart() {
	sess := s.newSession("bad-start", "not-a-date", "18:00")

	err := s.repo.SaveSession(context.Background(), &SaveSessionInput{Session: sess})
	s.Require().Error(err)
}

func (s *RedisRepositoryTestSuite) TestListSessionsOrderedByStart() {
	ctx := context.Background()

	// Saved out of order on purpose
	s.Require().NoError(s.repo.SaveSession(ctx, &SaveSessionInput{Session: s.newSession("later", "2025-06-12", "20:00")}))
	s.Require().NoError(s.repo.SaveSession(ctx, &SaveSessionInput{Session: s.newSession("earlier", "2025-06-11", "18:00")}))
	s.Require().NoError(s.repo.SaveSession(ctx, &SaveSessionInput{Session: s.newSession("past", "2025-06-01", "18:00")}))

	out, err := s.repo.ListSessions(ctx, &ListSessionsInput{From: s.testNow})
	s.Require().NoError(err)
	s.Require().Len(out.Sessions, 2)
	s.Equal("earlier", out.Sessions[0].ID)
	s.Equal("later", out.Sessions[1].ID)
}

func (s *RedisRepositoryTestSuite) TestListSessionsWindow() {
	ctx := context.Background()

	s.Require().NoError(s.repo.SaveSession(ctx, &SaveSessionInput{Session: s.newSession("soon", "2025-06-10", "11:00")}))
	s.Require().NoError(s.repo.SaveSession(ctx, &SaveSessionInput{Session: s.newSession("tomorrow", "2025-06-11", "11:00")}))

	out, err := s.repo.ListSessions(ctx, &ListSessionsInput{
		From:  s.testNow,
		Until: s.testNow.Add(2 * time.Hour),
	})
	s.Require().NoError(err)
	s.Require().Len(out.Sessions, 1)
	s.Equal("soon", out.Sessions[0].ID)
}

func (s *RedisRepositoryTestSuite) TestParticipants() {
	ctx := context.Background()
	sess := s.newSession("with-players", "2025-06-11", "18:00")
	s.Require().NoError(s.repo.SaveSession(ctx, &SaveSessionInput{Session: sess}))

	s.Require().NoError(s.repo.AddParticipant(ctx, &AddParticipantInput{SessionID: sess.ID, UserID: 100}))
	s.Require().NoError(s.repo.AddParticipant(ctx, &AddParticipantInput{SessionID: sess.ID, UserID: 200}))
	// Adding twice is a no-op
	s.Require().NoError(s.repo.AddParticipant(ctx, &AddParticipantInput{SessionID: sess.ID, UserID: 200}))

	participants, err := s.repo.GetParticipants(ctx, &GetParticipantsInput{SessionID: sess.ID})
	s.Require().NoError(err)
	s.ElementsMatch([]int64{100, 200}, participants)

	sessionIDs, err := s.repo.GetUserSessionIDs(ctx, &GetUserSessionIDsInput{UserID: 200})
	s.Require().NoError(err)
	s.Equal([]string{sess.ID}, sessionIDs)

	s.Require().NoError(s.repo.RemoveParticipant(ctx, &RemoveParticipantInput{SessionID: sess.ID, UserID: 200}))
	// Removing a non-member is a no-op
	s.Require().NoError(s.repo.RemoveParticipant(ctx, &RemoveParticipantInput{SessionID: sess.ID, UserID: 999}))

	participants, err = s.repo.GetParticipants(ctx, &GetParticipantsInput{SessionID: sess.ID})
	s.Require().NoError(err)
	s.Equal([]int64{100}, participants)

	sessionIDs, err = s.repo.GetUserSessionIDs(ctx, &GetUserSessionIDsInput{UserID: 200})
	s.Require().NoError(err)
	s.Empty(sessionIDs)
}

func (s *RedisRepositoryTestSuite) TestConfirmations() {
	ctx := context.Background()
	sess := s.newSession("confirm-session", "2025-06-11", "18:00")
	s.Require().NoError(s.repo.SaveSession(ctx, &SaveSessionInput{Session: sess}))

	s.Require().NoError(s.repo.SetConfirmation(ctx, &SetConfirmationInput{
		SessionID: sess.ID, UserID: 100, Status: models.ConfirmationConfirmed,
	}))
	s.Require().NoError(s.repo.SetConfirmation(ctx, &SetConfirmationInput{
		SessionID: sess.ID, UserID: 200, Status: models.ConfirmationPending,
	}))

	// Last write wins
	s.Require().NoError(s.repo.SetConfirmation(ctx, &SetConfirmationInput{
		SessionID: sess.ID, UserID: 200, Status: models.ConfirmationDeclined,
	}))

	confirmations, err := s.repo.GetConfirmations(ctx, &GetConfirmationsInput{SessionID: sess.ID})
	s.Require().NoError(err)
	s.Equal(models.ConfirmationConfirmed, confirmations[100])
	s.Equal(models.ConfirmationDeclined, confirmations[200])
}

func (s *RedisRepositoryTestSuite) TestDeleteSessionCascades() {
	ctx := context.Background()
	sess := s.newSession("doomed", "2025-06-11", "18:00")
	s.Require().NoError(s.repo.SaveSession(ctx, &SaveSessionInput{Session: sess}))
	s.Require().NoError(s.repo.AddParticipant(ctx, &AddParticipantInput{SessionID: sess.ID, UserID: 100}))
	s.Require().NoError(s.repo.SetConfirmation(ctx, &SetConfirmationInput{
		SessionID: sess.ID, UserID: 100, Status: models.ConfirmationConfirmed,
	}))
	s.Require().NoError(s.repo.AppendEvent(ctx, &AppendEventInput{Event: &models.SessionEvent{
		ID: "event-1", UserID: 100, SessionID: sess.ID, Game: sess.Game,
		Type: models.EventConfirmed, Timestamp: s.testNow,
	}}))

	s.Require().NoError(s.repo.DeleteSession(ctx, &DeleteSessionInput{SessionID: sess.ID}))

	_, err := s.repo.GetSession(ctx, &GetSessionInput{SessionID: sess.ID})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	participants, err := s.repo.GetParticipants(ctx, &GetParticipantsInput{SessionID: sess.ID})
	s.Require().NoError(err)
	s.Empty(participants)

	confirmations, err := s.repo.GetConfirmations(ctx, &GetConfirmationsInput{SessionID: sess.ID})
	s.Require().NoError(err)
	s.Empty(confirmations)

	sessionIDs, err := s.repo.GetUserSessionIDs(ctx, &GetUserSessionIDsInput{UserID: 100})
	s.Require().NoError(err)
	s.Empty(sessionIDs)

	out, err := s.repo.ListSessions(ctx, &ListSessionsInput{From: s.testNow})
	s.Require().NoError(err)
	s.Empty(out.Sessions)

	// Events survive the cascade
	events, err := s.repo.GetUserEvents(ctx, &GetUserEventsInput{UserID: 100})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(models.EventConfirmed, events[0].Type)
}

func (s *RedisRepositoryTestSuite) TestDeleteSessionNotFound() {
	err := s.repo.DeleteSession(context.Background(), &DeleteSessionInput{SessionID: "missing"})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisRepositoryTestSuite) TestUserEventsNewestFirst() {
	ctx := context.Background()

	for i, eventType := range []models.EventType{models.EventConfirmed, models.EventDeclined, models.EventDeleted} {
		s.Require().NoError(s.repo.AppendEvent(ctx, &AppendEventInput{Event: &models.SessionEvent{
			ID:        string(rune('a' + i)),
			UserID:    100,
			SessionID: "history-session",
			Game:      "Chess",
			Type:      eventType,
			Timestamp: s.testNow.Add(time.Duration(i) * time.Minute),
		}}))
	}

	events, err := s.repo.GetUserEvents(ctx, &GetUserEventsInput{UserID: 100})
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(models.EventDeleted, events[0].Type)
	s.Equal(models.EventDeclined, events[1].Type)
	s.Equal(models.EventConfirmed, events[2].Type)

	limited, err := s.repo.GetUserEvents(ctx, &GetUserEventsInput{UserID: 100, Limit: 2})
	s.Require().NoError(err)
	s.Len(limited, 2)
}
