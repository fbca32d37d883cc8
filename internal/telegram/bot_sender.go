package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"sessionbot/internal/models"
)

// botSender implements Sender over the Telegram Bot API
type botSender struct {
	api *tgbotapi.BotAPI
}

// NewBotSender wraps a connected Telegram bot in the Sender interface
func NewBotSender(api *tgbotapi.BotAPI) (*botSender, error) {
	if api == nil {
		return nil, errors.New("bot api cannot be nil")
	}

	return &botSender{api: api}, nil
}

// Send delivers a message to a chat and returns a handle to it.
// The underlying client has no context support; ctx is accepted for
// interface symmetry only.
func (b *botSender) Send(ctx context.Context, input *SendInput) (*models.MessageRef, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	msg := tgbotapi.NewMessage(input.ChatID, input.Text)
	if input.Keyboard != nil {
		msg.ReplyMarkup = toInlineKeyboard(input.Keyboard)
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send message to chat %d: %w", input.ChatID, err)
	}

	return &models.MessageRef{
		ChatID:    sent.Chat.ID,
		MessageID: sent.MessageID,
	}, nil
}

// Delete removes a previously sent message
func (b *botSender) Delete(ctx context.Context, ref *models.MessageRef) error {
	if ref == nil {
		return errors.New("message ref cannot be nil")
	}

	if _, err := b.api.DeleteMessage(tgbotapi.DeleteMessageConfig{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
	}); err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", ref.MessageID, ref.ChatID, err)
	}

	return nil
}

func toInlineKeyboard(kb *Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
