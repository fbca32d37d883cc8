package notifier

import (
	"context"
	"errors"
	"log"

	"sessionbot/internal/messagewindow"
	"sessionbot/internal/telegram"
)

// service implements the Service interface
type service struct {
	sender  telegram.Sender
	windows *messagewindow.Tracker
}

// New creates a new notifier service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Sender == nil {
		return nil, errors.New("sender cannot be nil")
	}

	if cfg.Windows == nil {
		return nil, errors.New("window tracker cannot be nil")
	}

	return &service{
		sender:  cfg.Sender,
		windows: cfg.Windows,
	}, nil
}

// Notify delivers the message to every recipient independently. One
// recipient having blocked the bot or deleted the chat must not cost the
// others their notification, so errors are collected, not returned.
func (s *service) Notify(ctx context.Context, input *NotifyInput) (*NotifyOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	out := &NotifyOutput{
		Failed: make(map[int64]error),
	}

	for _, userID := range input.Recipients {
		if input.FlushFirst {
			// Stale prompts go first so the reminder is the sole
			// visible prompt for this user
			s.windows.Flush(ctx, userID, s.sender.Delete)
		}

		ref, err := s.sender.Send(ctx, &telegram.SendInput{
			ChatID:   userID,
			Text:     input.Text,
			Keyboard: input.Keyboard,
		})
		if err != nil {
			log.Printf("notifier: failed to deliver to user %d: %v", userID, err)
			out.Failed[userID] = err
			continue
		}

		if input.Track {
			s.windows.Append(userID, *ref)
		}

		out.Delivered = append(out.Delivered, Delivery{UserID: userID, Ref: ref})
	}

	return out, nil
}
