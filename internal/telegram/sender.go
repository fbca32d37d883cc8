package telegram

//go:generate mockgen -package=mocks -destination=mocks/mock_sender.go sessionbot/internal/telegram Sender

import (
	"context"

	"sessionbot/internal/models"
)

// Button is one inline keyboard button carrying callback data
type Button struct {
	Text string
	Data string
}

// Keyboard is an inline keyboard, one slice per row
type Keyboard struct {
	Rows [][]Button
}

// SendInput contains parameters for sending a message
type SendInput struct {
	// ChatID is the chat to deliver to. For direct chats this equals the
	// recipient's user ID.
	ChatID int64

	// Text is the message body
	Text string

	// Keyboard is an optional inline keyboard
	Keyboard *Keyboard
}

// Sender is the chat transport used by the core: send a message, delete
// a previously sent one. Implementations must treat each call as
// independent; a failed delivery to one chat says nothing about others.
type Sender interface {
	// Send delivers a message and returns a handle to it
	Send(ctx context.Context, input *SendInput) (*models.MessageRef, error)

	// Delete removes a previously sent message. Deleting an already-gone
	// message returns an error the caller is expected to tolerate.
	Delete(ctx context.Context, ref *models.MessageRef) error
}

// SingleRow builds a one-row keyboard
func SingleRow(buttons ...Button) *Keyboard {
	return &Keyboard{Rows: [][]Button{buttons}}
}

// SingleColumn builds a keyboard with one button per row
func SingleColumn(buttons ...Button) *Keyboard {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return &Keyboard{Rows: rows}
}
