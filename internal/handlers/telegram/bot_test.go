package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sessionbot/internal/messagewindow"
	"sessionbot/internal/models"
	userRepo "sessionbot/internal/repositories/user"
	userRepoMocks "sessionbot/internal/repositories/user/mocks"
	"sessionbot/internal/services/notifier"
	notifierMocks "sessionbot/internal/services/notifier/mocks"
	sessionService "sessionbot/internal/services/session"
	sessionServiceMocks "sessionbot/internal/services/session/mocks"
	tg "sessionbot/internal/telegram"
	tgMocks "sessionbot/internal/telegram/mocks"
)

type BotTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockSessions *sessionServiceMocks.MockService
	mockUsers    *userRepoMocks.MockRepository
	mockNotifier *notifierMocks.MockService
	mockSender   *tgMocks.MockSender
	windows      *messagewindow.Tracker
	bot          *Bot
	ctx          context.Context

	testUserID  int64
	testAdminID int64
	testProfile *models.User
}

func (s *BotTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockSessions = sessionServiceMocks.NewMockService(s.mockCtrl)
	s.mockUsers = userRepoMocks.NewMockRepository(s.mockCtrl)
	s.mockNotifier = notifierMocks.NewMockService(s.mockCtrl)
	s.mockSender = tgMocks.NewMockSender(s.mockCtrl)
	s.windows = messagewindow.NewTracker()

	s.ctx = context.Background()
	s.testUserID = 100
	s.testAdminID = 900
	s.testProfile = &models.User{ID: s.testUserID, Name: "Алиса", Age: 30}

	bot, err := New(&Config{
		Sessions: s.mockSessions,
		Users:    s.mockUsers,
		Notifier: s.mockNotifier,
		Sender:   s.mockSender,
		Windows:  s.windows,
		AdminIDs: []int64{s.testAdminID},
	})
	s.Require().NoError(err)
	s.bot = bot
}

func (s *BotTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBotTestSuite(t *testing.T) {
	suite.Run(t, new(BotTestSuite))
}

func (s *BotTestSuite) expectProfile(u *models.User) {
	s.mockUsers.EXPECT().
		GetUser(s.ctx, &userRepo.GetUserInput{UserID: u.ID}).
		Return(u, nil)
}

func (s *BotTestSuite) expectUnregistered(userID int64) {
	s.mockUsers.EXPECT().
		GetUser(s.ctx, &userRepo.GetUserInput{UserID: userID}).
		Return(nil, userRepo.ErrUserNotFound)
}

func (s *BotTestSuite) expectText(chatID int64, text string) {
	s.mockSender.EXPECT().
		Send(s.ctx, &tg.SendInput{ChatID: chatID, Text: text}).
		Return(&models.MessageRef{ChatID: chatID, MessageID: 1}, nil)
}

func (s *BotTestSuite) TestRegistrationFlow() {
	s.expectUnregistered(s.testUserID)
	s.expectText(s.testUserID, msgAskName)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/start")

	s.expectUnregistered(s.testUserID)
	s.expectText(s.testUserID, msgAskAge)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "Алиса")

	s.expectUnregistered(s.testUserID)
	s.mockUsers.EXPECT().
		SaveUser(s.ctx, &userRepo.SaveUserInput{User: &models.User{
			ID:       s.testUserID,
			Name:     "Алиса",
			Age:      30,
			Username: "alice",
		}}).
		Return(nil)
	s.expectText(s.testUserID, msgRegistered)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "30")
}

func (s *BotTestSuite) TestRegistrationRejectsBadAge() {
	s.expectUnregistered(s.testUserID)
	s.expectText(s.testUserID, msgAskName)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/start")

	s.expectUnregistered(s.testUserID)
	s.expectText(s.testUserID, msgAskAge)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "Алиса")

	s.expectUnregistered(s.testUserID)
	s.expectText(s.testUserID, msgBadAge)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "двадцать")
}

func (s *BotTestSuite) TestBlockedUserIsStopped() {
	blocked := &models.User{ID: s.testUserID, Name: "Алиса", Blocked: true}
	s.expectProfile(blocked)
	s.expectText(s.testUserID, msgBlocked)

	// No service calls expected
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/sessions")
}

func (s *BotTestSuite) TestCommandsRequireRegistration() {
	s.expectUnregistered(s.testUserID)
	s.expectText(s.testUserID, msgNeedsReg)

	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/create")
}

func (s *BotTestSuite) TestCreateSessionFlow() {
	steps := []struct {
		incoming string
		reply    string
	}{
		{"/create", msgAskGame},
		{"Шахматы", msgAskDate},
		{"2025-06-11", msgAskTime},
		{"18:00", msgAskMax},
	}
	for _, step := range steps {
		s.expectProfile(s.testProfile)
		s.expectText(s.testUserID, step.reply)
		s.bot.HandleMessage(s.ctx, s.testUserID, "alice", step.incoming)
	}

	s.expectProfile(s.testProfile)
	s.mockSessions.EXPECT().
		CreateSession(s.ctx, &sessionService.CreateSessionInput{
			Game:       "Шахматы",
			Date:       "2025-06-11",
			Time:       "18:00",
			MaxPlayers: 4,
			CreatorID:  s.testUserID,
		}).
		Return(&sessionService.CreateSessionOutput{SessionID: "new-session"}, nil)
	s.mockSender.EXPECT().
		Send(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *tg.SendInput) (*models.MessageRef, error) {
			s.Contains(input.Text, "Шахматы")
			s.Require().NotNil(input.Keyboard)
			s.Equal("session_info_new-session", input.Keyboard.Rows[0][0].Data)
			return &models.MessageRef{ChatID: input.ChatID, MessageID: 1}, nil
		})

	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "4")
}

func (s *BotTestSuite) TestCreateFlowRejectsBadDate() {
	s.expectProfile(s.testProfile)
	s.expectText(s.testUserID, msgAskGame)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/create")

	s.expectProfile(s.testProfile)
	s.expectText(s.testUserID, msgAskDate)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "Шахматы")

	s.expectProfile(s.testProfile)
	s.expectText(s.testUserID, msgBadDate)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "завтра")
}

func (s *BotTestSuite) TestCancelStopsDialog() {
	s.expectProfile(s.testProfile)
	s.expectText(s.testUserID, msgAskGame)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/create")

	s.expectProfile(s.testProfile)
	s.expectText(s.testUserID, msgCancelled)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/cancel")

	// Plain text after cancel falls back to help
	s.expectProfile(s.testProfile)
	s.expectText(s.testUserID, msgHelp)
	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "Шахматы")
}

func (s *BotTestSuite) TestSessionsEmpty() {
	s.expectProfile(s.testProfile)
	s.mockSessions.EXPECT().
		ListActiveSessions(s.ctx, &sessionService.ListActiveSessionsInput{}).
		Return(&sessionService.ListActiveSessionsOutput{}, nil)
	s.expectText(s.testUserID, msgNothingOn)

	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/sessions")
}

func (s *BotTestSuite) TestJoinCallbackFull() {
	s.expectProfile(s.testProfile)
	s.mockSessions.EXPECT().
		JoinSession(s.ctx, &sessionService.JoinSessionInput{
			SessionID: "test-session",
			UserID:    s.testUserID,
		}).
		Return(nil, sessionService.ErrSessionFull)

	ack := s.bot.HandleCallback(s.ctx, s.testUserID, "alice", "join_test-session")
	s.Equal(ackSessionFull, ack)
}

func (s *BotTestSuite) TestConfirmCallbackNotifiesPeersAndFlushesPrompts() {
	sess := &models.Session{ID: "test-session", Game: "Шахматы", Date: "2025-06-11", Time: "18:00"}
	prompt := models.MessageRef{ChatID: s.testUserID, MessageID: 7}
	s.windows.Append(s.testUserID, prompt)

	s.expectProfile(s.testProfile)
	s.mockSessions.EXPECT().
		ConfirmSession(s.ctx, &sessionService.ConfirmSessionInput{
			SessionID: "test-session",
			UserID:    s.testUserID,
		}).
		Return(&sessionService.ConfirmSessionOutput{Session: sess, PeerIDs: []int64{200, 300}}, nil)
	s.mockSender.EXPECT().
		Delete(s.ctx, &prompt).
		Return(nil)
	s.mockNotifier.EXPECT().
		Notify(s.ctx, &notifier.NotifyInput{
			Recipients: []int64{200, 300},
			Text:       "Алиса подтвердил(а) участие в игре «Шахматы» 11.06.2025 в 18:00.",
		}).
		Return(&notifier.NotifyOutput{}, nil)

	ack := s.bot.HandleCallback(s.ctx, s.testUserID, "alice", "confirm_test-session")
	s.Equal(ackConfirmed, ack)
	s.Zero(s.windows.Len(s.testUserID))
}

func (s *BotTestSuite) TestDeleteCallbackByNonCreator() {
	s.expectProfile(s.testProfile)
	s.mockSessions.EXPECT().
		DeleteSession(s.ctx, &sessionService.DeleteSessionInput{
			SessionID:   "test-session",
			RequesterID: s.testUserID,
		}).
		Return(&sessionService.DeleteSessionOutput{Deleted: false}, nil)

	// No notifications expected
	ack := s.bot.HandleCallback(s.ctx, s.testUserID, "alice", "delete_test-session")
	s.Equal(ackNotCreator, ack)
}

func (s *BotTestSuite) TestDeleteCallbackNotifiesOtherParticipants() {
	sess := &models.Session{ID: "test-session", Game: "Шахматы", Date: "2025-06-11", Time: "18:00", CreatorID: s.testUserID}

	s.expectProfile(s.testProfile)
	s.mockSessions.EXPECT().
		DeleteSession(s.ctx, gomock.Any()).
		Return(&sessionService.DeleteSessionOutput{
			Deleted:        true,
			ParticipantIDs: []int64{s.testUserID, 200, 300},
			Session:        sess,
		}, nil)
	s.mockNotifier.EXPECT().
		Notify(s.ctx, &notifier.NotifyInput{
			Recipients: []int64{200, 300},
			Text:       renderCancelled(sess),
		}).
		Return(&notifier.NotifyOutput{}, nil)

	ack := s.bot.HandleCallback(s.ctx, s.testUserID, "alice", "delete_test-session")
	s.Equal(ackDeleted, ack)
}

func (s *BotTestSuite) TestDetailCallbackShowsDeleteOnlyToCreator() {
	detail := &sessionService.GetSessionDetailOutput{
		Session:      &models.Session{ID: "test-session", Game: "Шахматы", Date: "2025-06-11", Time: "18:00", MaxPlayers: 4, CreatorID: s.testUserID},
		CreatorName:  "Алиса",
		Participants: []*models.User{s.testProfile},
	}

	s.expectProfile(s.testProfile)
	s.mockSessions.EXPECT().
		GetSessionDetail(s.ctx, &sessionService.GetSessionDetailInput{SessionID: "test-session"}).
		Return(detail, nil)
	s.mockSender.EXPECT().
		Send(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *tg.SendInput) (*models.MessageRef, error) {
			s.Require().NotNil(input.Keyboard)
			s.Require().Len(input.Keyboard.Rows, 2)
			s.Equal("delete_test-session", input.Keyboard.Rows[1][0].Data)
			return &models.MessageRef{ChatID: input.ChatID, MessageID: 1}, nil
		})

	ack := s.bot.HandleCallback(s.ctx, s.testUserID, "alice", "session_info_test-session")
	s.Equal("", ack)
}

func (s *BotTestSuite) TestCallbackRequiresRegistration() {
	s.expectUnregistered(s.testUserID)

	ack := s.bot.HandleCallback(s.ctx, s.testUserID, "alice", "join_test-session")
	s.Equal(msgNeedsReg, ack)
}

func (s *BotTestSuite) TestBlockCommandRequiresAdmin() {
	s.expectProfile(s.testProfile)
	s.expectText(s.testUserID, msgNotAdmin)

	s.bot.HandleMessage(s.ctx, s.testUserID, "alice", "/block 200 спам")
}

func (s *BotTestSuite) TestBlockCommandByAdmin() {
	admin := &models.User{ID: s.testAdminID, Name: "Админ"}
	s.expectProfile(admin)
	s.mockUsers.EXPECT().
		BlockUser(s.ctx, &userRepo.BlockUserInput{UserID: 200, Reason: "спам"}).
		Return(nil)
	s.expectText(s.testAdminID, msgUserBlocked)

	s.bot.HandleMessage(s.ctx, s.testAdminID, "admin", "/block 200 спам")
}
