package session

// SessionError is a custom error type for session-related errors
type SessionError string

// Error implements the error interface
func (e SessionError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound SessionError = "session not found"
	ErrSessionFull     SessionError = "session is at maximum capacity"
	ErrUserNotFound    SessionError = "user not found"
	ErrNilConfig       SessionError = "config cannot be nil"
	ErrNilSessionRepo  SessionError = "session repository cannot be nil"
	ErrNilUserRepo     SessionError = "user repository cannot be nil"
	ErrNilClock        SessionError = "clock cannot be nil"
	ErrNilUUIDGen      SessionError = "UUID generator cannot be nil"
)
