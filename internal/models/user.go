package models

// User represents a registered bot user
type User struct {
	// ID is the Telegram user ID
	ID int64

	// Name is the display name given during registration
	Name string

	// Age is the self-reported age given during registration
	Age int

	// Username is the Telegram username, may be empty
	Username string

	// Blocked indicates the user is banned from the bot
	Blocked bool

	// BlockReason is why the user was blocked, empty when not blocked
	BlockReason string
}
