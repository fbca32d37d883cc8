package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"sessionbot/internal/common/clock"
	"sessionbot/internal/models"
	sessionRepo "sessionbot/internal/repositories/session"
	"sessionbot/internal/services/notifier"
	"sessionbot/internal/telegram"
)

const (
	// DefaultInterval is how often upcoming sessions are scanned
	DefaultInterval = 30 * time.Minute

	// DefaultLookahead is how far ahead of now a session must start to
	// trigger reminders
	DefaultLookahead = 2 * time.Hour
)

// SchedulerError is a custom error type for scheduler errors
type SchedulerError string

// Error implements the error interface
func (e SchedulerError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig      SchedulerError = "config cannot be nil"
	ErrNilSessionRepo SchedulerError = "session repository cannot be nil"
	ErrNilNotifier    SchedulerError = "notifier cannot be nil"
	ErrNilClock       SchedulerError = "clock cannot be nil"
)

// Config holds configuration for the reminder scheduler
type Config struct {
	SessionRepo sessionRepo.Repository
	Notifier    notifier.Service
	Clock       clock.Clock

	// Interval between scans. Defaults to DefaultInterval.
	Interval time.Duration

	// Lookahead is the reminder window. Defaults to DefaultLookahead.
	Lookahead time.Duration
}

// Scheduler periodically reminds unconfirmed participants of sessions
// starting soon
type Scheduler struct {
	sessionRepo sessionRepo.Repository
	notifier    notifier.Service
	clock       clock.Clock
	interval    time.Duration
	lookahead   time.Duration
}

// New creates a new reminder scheduler
func New(cfg *Config) (*Scheduler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilSessionRepo
	}

	if cfg.Notifier == nil {
		return nil, ErrNilNotifier
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	lookahead := cfg.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}

	return &Scheduler{
		sessionRepo: cfg.SessionRepo,
		notifier:    cfg.Notifier,
		clock:       cfg.Clock,
		interval:    interval,
		lookahead:   lookahead,
	}, nil
}

// Run scans on a fixed interval until the context is cancelled. A failed
// scan is logged and the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.TickOnce(ctx); err != nil {
		log.Printf("scheduler: scan failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.TickOnce(ctx); err != nil {
				log.Printf("scheduler: scan failed: %v", err)
			}
		}
	}
}

// TickOnce runs a single reminder scan: every participant of a session
// starting within the lookahead window who has not answered yet gets a
// confirm/decline prompt. Confirmed and declined participants are left
// alone.
func (s *Scheduler) TickOnce(ctx context.Context) error {
	now := s.clock.Now()

	out, err := s.sessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{
		From:  now,
		Until: now.Add(s.lookahead),
	})
	if err != nil {
		return fmt.Errorf("failed to list upcoming sessions: %w", err)
	}

	for _, sess := range out.Sessions {
		if err := s.remind(ctx, sess); err != nil {
			log.Printf("scheduler: reminders for session %s failed: %v", sess.ID, err)
		}
	}

	return nil
}

func (s *Scheduler) remind(ctx context.Context, sess *models.Session) error {
	participants, err := s.sessionRepo.GetParticipants(ctx, &sessionRepo.GetParticipantsInput{SessionID: sess.ID})
	if err != nil {
		return err
	}

	confirmations, err := s.sessionRepo.GetConfirmations(ctx, &sessionRepo.GetConfirmationsInput{SessionID: sess.ID})
	if err != nil {
		return err
	}

	pending := make([]int64, 0, len(participants))
	for _, userID := range participants {
		status, ok := confirmations[userID]
		if !ok || status == models.ConfirmationPending {
			pending = append(pending, userID)
		}
	}

	if len(pending) == 0 {
		return nil
	}

	result, err := s.notifier.Notify(ctx, &notifier.NotifyInput{
		Recipients: pending,
		Text:       reminderText(sess),
		Keyboard: telegram.SingleRow(
			telegram.Button{Text: "✅ Приду", Data: telegram.CallbackData(telegram.ActionConfirm, sess.ID)},
			telegram.Button{Text: "❌ Не приду", Data: telegram.CallbackData(telegram.ActionDecline, sess.ID)},
		),
		FlushFirst: true,
		Track:      true,
	})
	if err != nil {
		return err
	}

	if len(result.Failed) > 0 {
		log.Printf("scheduler: session %s reminder reached %d of %d participants",
			sess.ID, len(result.Delivered), len(pending))
	}

	return nil
}

func reminderText(sess *models.Session) string {
	return fmt.Sprintf("⏰ Напоминание: игра «%s» начнётся %s в %s.\nПодтвердите участие.",
		sess.Game, sess.Date, sess.Time)
}
