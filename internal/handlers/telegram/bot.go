// Package telegram connects the session services to Telegram chats:
// command routing, multi-step dialogs and inline keyboard callbacks.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"sessionbot/internal/messagewindow"
	"sessionbot/internal/models"
	userRepo "sessionbot/internal/repositories/user"
	"sessionbot/internal/services/notifier"
	sessionService "sessionbot/internal/services/session"
	tg "sessionbot/internal/telegram"
	"sessionbot/internal/validate"
)

// HandlerError is a custom error type for handler errors
type HandlerError string

// Error implements the error interface
func (e HandlerError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig   HandlerError = "config cannot be nil"
	ErrNilSessions HandlerError = "session service cannot be nil"
	ErrNilUsers    HandlerError = "user repository cannot be nil"
	ErrNilNotifier HandlerError = "notifier cannot be nil"
	ErrNilSender   HandlerError = "sender cannot be nil"
	ErrNilWindows  HandlerError = "message window tracker cannot be nil"
	ErrNilAPI      HandlerError = "bot api cannot be nil"
)

// Config holds configuration for the Telegram bot
type Config struct {
	// API is the connected Telegram client. Required for Start; the
	// handler methods themselves never touch it.
	API *tgbotapi.BotAPI

	Sessions sessionService.Service
	Users    userRepo.Repository
	Notifier notifier.Service
	Sender   tg.Sender
	Windows  *messagewindow.Tracker

	// AdminIDs are the users allowed to manage blocks
	AdminIDs []int64
}

// Bot routes Telegram updates to the session services
type Bot struct {
	api      *tgbotapi.BotAPI
	sessions sessionService.Service
	users    userRepo.Repository
	notifier notifier.Service
	sender   tg.Sender
	windows  *messagewindow.Tracker
	admins   map[int64]bool
	dialogs  *dialogStore
}

// New creates a new Telegram bot handler
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Sessions == nil {
		return nil, ErrNilSessions
	}

	if cfg.Users == nil {
		return nil, ErrNilUsers
	}

	if cfg.Notifier == nil {
		return nil, ErrNilNotifier
	}

	if cfg.Sender == nil {
		return nil, ErrNilSender
	}

	if cfg.Windows == nil {
		return nil, ErrNilWindows
	}

	admins := make(map[int64]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		api:      cfg.API,
		sessions: cfg.Sessions,
		users:    cfg.Users,
		notifier: cfg.Notifier,
		sender:   cfg.Sender,
		windows:  cfg.Windows,
		admins:   admins,
		dialogs:  newDialogStore(),
	}, nil
}

// Start begins long polling for updates and blocks until the context is
// cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return ErrNilAPI
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("failed to open update channel: %w", err)
	}

	log.Printf("bot: authorized as %s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			b.route(ctx, update)
		}
	}
}

func (b *Bot) route(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		ack := b.HandleCallback(ctx, int64(cq.From.ID), cq.From.UserName, cq.Data)
		if _, err := b.api.AnswerCallbackQuery(tgbotapi.NewCallback(cq.ID, ack)); err != nil {
			log.Printf("bot: failed to answer callback %s: %v", cq.ID, err)
		}
		return
	}

	if update.Message != nil && update.Message.From != nil {
		m := update.Message
		b.HandleMessage(ctx, int64(m.From.ID), m.From.UserName, m.Text)
	}
}

// HandleMessage processes one incoming text message from a user. For
// direct chats the chat ID equals the user ID, so replies go to userID.
func (b *Bot) HandleMessage(ctx context.Context, userID int64, username, text string) {
	profile, ok := b.gateMessage(ctx, userID)
	if !ok {
		return
	}

	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, userID, profile, text)
		return
	}

	if d := b.dialogs.get(userID); d != nil {
		b.continueDialog(ctx, userID, username, d, text)
		return
	}

	if profile == nil {
		b.send(ctx, userID, msgNeedsReg)
		return
	}
	b.send(ctx, userID, msgHelp)
}

// gateMessage loads the user's profile and stops blocked users. The
// returned profile is nil for unregistered users; ok=false means the
// message must not be processed further.
func (b *Bot) gateMessage(ctx context.Context, userID int64) (*models.User, bool) {
	profile, err := b.users.GetUser(ctx, &userRepo.GetUserInput{UserID: userID})
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, true
		}
		log.Printf("bot: failed to load user %d: %v", userID, err)
		b.send(ctx, userID, ackFailed)
		return nil, false
	}

	if profile.Blocked {
		b.send(ctx, userID, msgBlocked)
		return nil, false
	}

	return profile, true
}

func (b *Bot) handleCommand(ctx context.Context, userID int64, profile *models.User, text string) {
	cmd, args := text, ""
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmd, args = text[:i], strings.TrimSpace(text[i+1:])
	}

	// A command always interrupts whatever flow was in progress
	b.dialogs.clear(userID)

	switch cmd {
	case "/start":
		if profile != nil {
			b.send(ctx, userID, msgWelcomeBack)
			return
		}
		b.dialogs.begin(userID, stepRegisterName)
		b.send(ctx, userID, msgAskName)

	case "/help":
		b.send(ctx, userID, msgHelp)

	case "/cancel":
		b.send(ctx, userID, msgCancelled)

	case "/create":
		if profile == nil {
			b.send(ctx, userID, msgNeedsReg)
			return
		}
		b.dialogs.begin(userID, stepCreateGame)
		b.send(ctx, userID, msgAskGame)

	case "/sessions":
		if profile == nil {
			b.send(ctx, userID, msgNeedsReg)
			return
		}
		b.showSessions(ctx, userID)

	case "/my_sessions":
		if profile == nil {
			b.send(ctx, userID, msgNeedsReg)
			return
		}
		b.showUserSessions(ctx, userID)

	case "/history":
		if profile == nil {
			b.send(ctx, userID, msgNeedsReg)
			return
		}
		b.showHistory(ctx, userID)

	case "/profile":
		if profile == nil {
			b.send(ctx, userID, msgNeedsReg)
			return
		}
		b.showProfile(ctx, userID)

	case "/block":
		b.handleBlock(ctx, userID, args)

	case "/unblock":
		b.handleUnblock(ctx, userID, args)

	case "/blocked":
		b.handleListBlocked(ctx, userID)

	default:
		b.send(ctx, userID, msgUnknownCmd)
	}
}

func (b *Bot) continueDialog(ctx context.Context, userID int64, username string, d *dialog, text string) {
	switch d.step {
	case stepRegisterName:
		if err := validate.Name(text); err != nil {
			b.send(ctx, userID, msgBadName)
			return
		}
		d.name = text
		d.step = stepRegisterAge
		b.send(ctx, userID, msgAskAge)

	case stepRegisterAge:
		age, err := validate.Age(text)
		if err != nil {
			b.send(ctx, userID, msgBadAge)
			return
		}
		err = b.users.SaveUser(ctx, &userRepo.SaveUserInput{User: &models.User{
			ID:       userID,
			Name:     d.name,
			Age:      age,
			Username: username,
		}})
		if err != nil {
			log.Printf("bot: failed to save user %d: %v", userID, err)
			b.send(ctx, userID, ackFailed)
			return
		}
		b.dialogs.clear(userID)
		b.send(ctx, userID, msgRegistered)

	case stepCreateGame:
		if text == "" {
			b.send(ctx, userID, msgBadGame)
			return
		}
		d.game = text
		d.step = stepCreateDate
		b.send(ctx, userID, msgAskDate)

	case stepCreateDate:
		if _, err := time.Parse(models.DateLayout, text); err != nil {
			b.send(ctx, userID, msgBadDate)
			return
		}
		d.date = text
		d.step = stepCreateTime
		b.send(ctx, userID, msgAskTime)

	case stepCreateTime:
		if _, err := time.Parse(models.TimeLayout, text); err != nil {
			b.send(ctx, userID, msgBadTime)
			return
		}
		d.time = text
		d.step = stepCreateMaxPlayers
		b.send(ctx, userID, msgAskMax)

	case stepCreateMaxPlayers:
		maxPlayers, err := strconv.Atoi(text)
		if err != nil || validate.MaxPlayers(maxPlayers) != nil {
			b.send(ctx, userID, msgBadMax)
			return
		}
		b.finishCreate(ctx, userID, d, maxPlayers)

	default:
		b.dialogs.clear(userID)
	}
}

func (b *Bot) finishCreate(ctx context.Context, userID int64, d *dialog, maxPlayers int) {
	out, err := b.sessions.CreateSession(ctx, &sessionService.CreateSessionInput{
		Game:       d.game,
		Date:       d.date,
		Time:       d.time,
		MaxPlayers: maxPlayers,
		CreatorID:  userID,
	})
	if err != nil {
		if errors.Is(err, validate.ErrPastSession) {
			d.step = stepCreateDate
			b.send(ctx, userID, msgPast)
			return
		}
		log.Printf("bot: failed to create session for user %d: %v", userID, err)
		b.dialogs.clear(userID)
		b.send(ctx, userID, ackFailed)
		return
	}

	b.dialogs.clear(userID)
	b.sendKeyboard(ctx, userID,
		fmt.Sprintf("✅ Игра «%s» создана: %s в %s, до %d игроков.",
			d.game, displayDate(d.date), d.time, maxPlayers),
		tg.SingleRow(tg.Button{
			Text: "Детали",
			Data: tg.CallbackData(tg.ActionDetail, out.SessionID),
		}))
}

func (b *Bot) showSessions(ctx context.Context, userID int64) {
	out, err := b.sessions.ListActiveSessions(ctx, &sessionService.ListActiveSessionsInput{})
	if err != nil {
		log.Printf("bot: failed to list sessions: %v", err)
		b.send(ctx, userID, ackFailed)
		return
	}

	if len(out.Sessions) == 0 {
		b.send(ctx, userID, msgNothingOn)
		return
	}

	buttons := make([]tg.Button, 0, len(out.Sessions))
	for _, s := range out.Sessions {
		buttons = append(buttons, tg.Button{
			Text: fmt.Sprintf("%s — %s %s", s.Session.Game, displayDate(s.Session.Date), s.Session.Time),
			Data: tg.CallbackData(tg.ActionDetail, s.Session.ID),
		})
	}

	b.sendKeyboard(ctx, userID, renderSessionList(out.Sessions), tg.SingleColumn(buttons...))
}

func (b *Bot) showUserSessions(ctx context.Context, userID int64) {
	out, err := b.sessions.GetUserSessions(ctx, &sessionService.GetUserSessionsInput{UserID: userID})
	if err != nil {
		log.Printf("bot: failed to list sessions of user %d: %v", userID, err)
		b.send(ctx, userID, ackFailed)
		return
	}

	if len(out.Sessions) == 0 {
		b.send(ctx, userID, renderUserSessions(nil))
		return
	}

	buttons := make([]tg.Button, 0, len(out.Sessions))
	for _, s := range out.Sessions {
		buttons = append(buttons, tg.Button{
			Text: fmt.Sprintf("%s — %s %s", s.Session.Game, displayDate(s.Session.Date), s.Session.Time),
			Data: tg.CallbackData(tg.ActionDetail, s.Session.ID),
		})
	}

	b.sendKeyboard(ctx, userID, renderUserSessions(out.Sessions), tg.SingleColumn(buttons...))
}

func (b *Bot) showHistory(ctx context.Context, userID int64) {
	out, err := b.sessions.GetUserHistory(ctx, &sessionService.GetUserHistoryInput{UserID: userID})
	if err != nil {
		log.Printf("bot: failed to load history of user %d: %v", userID, err)
		b.send(ctx, userID, ackFailed)
		return
	}

	b.send(ctx, userID, renderHistory(out.Events))
}

func (b *Bot) showProfile(ctx context.Context, userID int64) {
	out, err := b.sessions.GetUserInfo(ctx, &sessionService.GetUserInfoInput{UserID: userID})
	if err != nil {
		log.Printf("bot: failed to load profile of user %d: %v", userID, err)
		b.send(ctx, userID, ackFailed)
		return
	}

	b.send(ctx, userID, renderProfile(out))
}

func (b *Bot) handleBlock(ctx context.Context, adminID int64, args string) {
	if !b.admins[adminID] {
		b.send(ctx, adminID, msgNotAdmin)
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		b.send(ctx, adminID, msgBlockUsage)
		return
	}

	targetID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.send(ctx, adminID, msgBlockUsage)
		return
	}

	reason := strings.Join(fields[1:], " ")
	if err := b.users.BlockUser(ctx, &userRepo.BlockUserInput{UserID: targetID, Reason: reason}); err != nil {
		log.Printf("bot: failed to block user %d: %v", targetID, err)
		b.send(ctx, adminID, ackFailed)
		return
	}

	b.send(ctx, adminID, msgUserBlocked)
}

func (b *Bot) handleUnblock(ctx context.Context, adminID int64, args string) {
	if !b.admins[adminID] {
		b.send(ctx, adminID, msgNotAdmin)
		return
	}

	targetID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		b.send(ctx, adminID, msgUnblockUsage)
		return
	}

	if err := b.users.UnblockUser(ctx, &userRepo.UnblockUserInput{UserID: targetID}); err != nil {
		log.Printf("bot: failed to unblock user %d: %v", targetID, err)
		b.send(ctx, adminID, ackFailed)
		return
	}

	b.send(ctx, adminID, msgUserUnblocked)
}

func (b *Bot) handleListBlocked(ctx context.Context, adminID int64) {
	if !b.admins[adminID] {
		b.send(ctx, adminID, msgNotAdmin)
		return
	}

	blocked, err := b.users.ListBlockedUsers(ctx, &userRepo.ListBlockedUsersInput{})
	if err != nil {
		log.Printf("bot: failed to list blocked users: %v", err)
		b.send(ctx, adminID, ackFailed)
		return
	}

	if len(blocked) == 0 {
		b.send(ctx, adminID, msgNoBlocked)
		return
	}

	var sb strings.Builder
	sb.WriteString("Заблокированы:")
	for _, u := range blocked {
		sb.WriteString(fmt.Sprintf("\n• %d %s", u.ID, u.Name))
		if u.BlockReason != "" {
			sb.WriteString(" — " + u.BlockReason)
		}
	}
	b.send(ctx, adminID, sb.String())
}

// HandleCallback processes one inline button press and returns the short
// acknowledgement shown to the user as a toast
func (b *Bot) HandleCallback(ctx context.Context, userID int64, username, data string) string {
	profile, err := b.users.GetUser(ctx, &userRepo.GetUserInput{UserID: userID})
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return msgNeedsReg
		}
		log.Printf("bot: failed to load user %d: %v", userID, err)
		return ackFailed
	}
	if profile.Blocked {
		return msgBlocked
	}

	action, sessionID := tg.ParseCallback(data)

	switch action {
	case tg.ActionJoin:
		return b.handleJoin(ctx, userID, sessionID)
	case tg.ActionLeave:
		return b.handleLeave(ctx, userID, sessionID)
	case tg.ActionConfirm:
		return b.handleConfirm(ctx, profile, sessionID)
	case tg.ActionDecline:
		return b.handleDecline(ctx, profile, sessionID)
	case tg.ActionDelete:
		return b.handleDelete(ctx, userID, sessionID)
	case tg.ActionDetail:
		b.showDetail(ctx, userID, sessionID)
		return ""
	default:
		return ""
	}
}

func (b *Bot) handleJoin(ctx context.Context, userID int64, sessionID string) string {
	out, err := b.sessions.JoinSession(ctx, &sessionService.JoinSessionInput{
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, sessionService.ErrSessionFull):
			return ackSessionFull
		case errors.Is(err, sessionService.ErrSessionNotFound):
			return ackGone
		default:
			log.Printf("bot: join %s by %d failed: %v", sessionID, userID, err)
			return ackFailed
		}
	}

	if out.AlreadyJoined {
		return ackAlreadyJoined
	}
	return ackJoined
}

func (b *Bot) handleLeave(ctx context.Context, userID int64, sessionID string) string {
	_, err := b.sessions.LeaveSession(ctx, &sessionService.LeaveSessionInput{
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			return ackGone
		}
		log.Printf("bot: leave %s by %d failed: %v", sessionID, userID, err)
		return ackFailed
	}
	return ackLeft
}

func (b *Bot) handleConfirm(ctx context.Context, profile *models.User, sessionID string) string {
	out, err := b.sessions.ConfirmSession(ctx, &sessionService.ConfirmSessionInput{
		SessionID: sessionID,
		UserID:    profile.ID,
	})
	if err != nil {
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			return ackGone
		}
		log.Printf("bot: confirm %s by %d failed: %v", sessionID, profile.ID, err)
		return ackFailed
	}

	b.flushWindow(ctx, profile.ID)
	b.notifyUsers(ctx, out.PeerIDs, renderPeerUpdate(profile.Name, out.Session, true))
	return ackConfirmed
}

func (b *Bot) handleDecline(ctx context.Context, profile *models.User, sessionID string) string {
	out, err := b.sessions.DeclineSession(ctx, &sessionService.DeclineSessionInput{
		SessionID: sessionID,
		UserID:    profile.ID,
	})
	if err != nil {
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			return ackGone
		}
		log.Printf("bot: decline %s by %d failed: %v", sessionID, profile.ID, err)
		return ackFailed
	}

	b.flushWindow(ctx, profile.ID)
	b.notifyUsers(ctx, out.PeerIDs, renderPeerUpdate(profile.Name, out.Session, false))
	return ackDeclined
}

func (b *Bot) handleDelete(ctx context.Context, userID int64, sessionID string) string {
	out, err := b.sessions.DeleteSession(ctx, &sessionService.DeleteSessionInput{
		SessionID:   sessionID,
		RequesterID: userID,
	})
	if err != nil {
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			return ackGone
		}
		log.Printf("bot: delete %s by %d failed: %v", sessionID, userID, err)
		return ackFailed
	}

	if !out.Deleted {
		return ackNotCreator
	}

	others := make([]int64, 0, len(out.ParticipantIDs))
	for _, id := range out.ParticipantIDs {
		if id != userID {
			others = append(others, id)
		}
	}
	b.notifyUsers(ctx, others, renderCancelled(out.Session))
	return ackDeleted
}

func (b *Bot) showDetail(ctx context.Context, userID int64, sessionID string) {
	detail, err := b.sessions.GetSessionDetail(ctx, &sessionService.GetSessionDetailInput{SessionID: sessionID})
	if err != nil {
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			b.send(ctx, userID, ackGone)
			return
		}
		log.Printf("bot: detail %s for %d failed: %v", sessionID, userID, err)
		b.send(ctx, userID, ackFailed)
		return
	}

	row := []tg.Button{
		{Text: "✅ Записаться", Data: tg.CallbackData(tg.ActionJoin, sessionID)},
		{Text: "🚪 Выйти", Data: tg.CallbackData(tg.ActionLeave, sessionID)},
	}
	kb := &tg.Keyboard{Rows: [][]tg.Button{row}}
	if detail.Session.CreatorID == userID {
		kb.Rows = append(kb.Rows, []tg.Button{
			{Text: "🗑 Удалить", Data: tg.CallbackData(tg.ActionDelete, sessionID)},
		})
	}

	b.sendKeyboard(ctx, userID, renderSessionDetail(detail), kb)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if _, err := b.sender.Send(ctx, &tg.SendInput{ChatID: chatID, Text: text}); err != nil {
		log.Printf("bot: failed to message chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendKeyboard(ctx context.Context, chatID int64, text string, kb *tg.Keyboard) {
	if _, err := b.sender.Send(ctx, &tg.SendInput{ChatID: chatID, Text: text, Keyboard: kb}); err != nil {
		log.Printf("bot: failed to message chat %d: %v", chatID, err)
	}
}

// flushWindow removes a user's outstanding reminder prompts after they
// answered one of them
func (b *Bot) flushWindow(ctx context.Context, userID int64) {
	b.windows.Flush(ctx, userID, b.sender.Delete)
}

func (b *Bot) notifyUsers(ctx context.Context, recipients []int64, text string) {
	if len(recipients) == 0 {
		return
	}
	if _, err := b.notifier.Notify(ctx, &notifier.NotifyInput{Recipients: recipients, Text: text}); err != nil {
		log.Printf("bot: peer notification failed: %v", err)
	}
}
