package models

// MessageRef is an opaque handle to a bot-authored chat message, enough
// to delete it later.
type MessageRef struct {
	ChatID    int64
	MessageID int
}
