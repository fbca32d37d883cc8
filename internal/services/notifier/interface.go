package notifier

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go sessionbot/internal/services/notifier Service

import "context"

// Service defines the interface for fanning a message out to a set of
// recipients with per-recipient failure isolation
type Service interface {
	// Notify delivers the message to every recipient independently.
	// A failed delivery is recorded in the output and never aborts the
	// remaining recipients.
	Notify(ctx context.Context, input *NotifyInput) (*NotifyOutput, error)
}
