package models

// ConfirmationStatus represents a participant's response to a session reminder
type ConfirmationStatus string

const (
	// ConfirmationPending indicates the participant has not responded yet.
	// A participant with no stored record is treated as pending.
	ConfirmationPending ConfirmationStatus = "pending"

	// ConfirmationConfirmed indicates the participant confirmed attendance
	ConfirmationConfirmed ConfirmationStatus = "confirmed"

	// ConfirmationDeclined indicates the participant declined and gave up the seat
	ConfirmationDeclined ConfirmationStatus = "declined"
)

// ConfirmationRecord tracks one participant's response for one session
type ConfirmationRecord struct {
	SessionID string
	UserID    int64
	Status    ConfirmationStatus
}
