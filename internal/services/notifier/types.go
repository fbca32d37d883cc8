package notifier

import (
	"sessionbot/internal/messagewindow"
	"sessionbot/internal/models"
	"sessionbot/internal/telegram"
)

// Config holds configuration for the notifier service
type Config struct {
	// Sender is the chat transport
	Sender telegram.Sender

	// Windows tracks delivered prompts for later cleanup
	Windows *messagewindow.Tracker
}

// NotifyInput contains parameters for a fanout
type NotifyInput struct {
	// Recipients are the user IDs to deliver to. For direct chats the
	// chat ID equals the user ID.
	Recipients []int64

	// Text is the message body
	Text string

	// Keyboard is an optional inline keyboard attached to every copy
	Keyboard *telegram.Keyboard

	// FlushFirst deletes each recipient's stale prompts before sending,
	// so the new message is the only visible prompt
	FlushFirst bool

	// Track registers each delivered message in the recipient's window
	Track bool
}

// Delivery records one successful send
type Delivery struct {
	UserID int64
	Ref    *models.MessageRef
}

// NotifyOutput contains the per-recipient outcome of a fanout
type NotifyOutput struct {
	// Delivered lists successful sends in recipient order
	Delivered []Delivery

	// Failed maps recipient ID to the delivery error
	Failed map[int64]error
}
