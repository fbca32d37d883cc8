// Package messagewindow tracks, per user, the bot-authored messages
// currently visible in that user's chat so stale prompts can be deleted
// before a new one is shown. State is process-local and lost on restart.
package messagewindow

import (
	"context"
	"log"
	"sync"

	"sessionbot/internal/models"
)

// DeleteFunc removes one message from the chat surface
type DeleteFunc func(ctx context.Context, ref *models.MessageRef) error

type window struct {
	mu   sync.Mutex
	refs []models.MessageRef
}

// Tracker keeps one message window per user. Windows are created on
// first use and cleared on flush; operations on different users never
// contend beyond the map lookup.
type Tracker struct {
	mu      sync.Mutex
	windows map[int64]*window
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		windows: make(map[int64]*window),
	}
}

func (t *Tracker) window(userID int64) *window {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[userID]
	if !ok {
		w = &window{}
		t.windows[userID] = w
	}
	return w
}

// Append registers a message as visible to the user
func (t *Tracker) Append(userID int64, ref models.MessageRef) {
	w := t.window(userID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.refs = append(w.refs, ref)
}

// Flush deletes every tracked message for the user, oldest first, and
// empties the window. Individual delete failures (message already gone,
// chat deleted) are logged and skipped; the window is empty afterwards
// regardless. Appends for the same user block until the flush finishes.
func (t *Tracker) Flush(ctx context.Context, userID int64, deleteFn DeleteFunc) {
	w := t.window(userID)

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, ref := range w.refs {
		if err := deleteFn(ctx, &ref); err != nil {
			log.Printf("messagewindow: failed to delete message %d for user %d: %v", ref.MessageID, userID, err)
		}
	}
	w.refs = nil
}

// Len reports how many messages are tracked for the user
func (t *Tracker) Len(userID int64) int {
	w := t.window(userID)

	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.refs)
}
