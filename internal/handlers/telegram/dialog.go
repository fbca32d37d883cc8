package telegram

import "sync"

// dialogStep identifies the question a user is currently being asked
type dialogStep int

const (
	stepNone dialogStep = iota

	// Registration flow
	stepRegisterName
	stepRegisterAge

	// Session creation flow
	stepCreateGame
	stepCreateDate
	stepCreateTime
	stepCreateMaxPlayers
)

// dialog is the in-progress multi-step conversation of one user
type dialog struct {
	step dialogStep

	// Draft fields filled in as the flow advances
	name string
	game string
	date string
	time string
}

// dialogStore tracks per-user conversation state in memory. State is
// lost on restart; users simply start their flow again.
type dialogStore struct {
	mu      sync.Mutex
	dialogs map[int64]*dialog
}

func newDialogStore() *dialogStore {
	return &dialogStore{dialogs: make(map[int64]*dialog)}
}

// begin replaces any in-progress dialog with a fresh one at the given step
func (s *dialogStore) begin(userID int64, step dialogStep) *dialog {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &dialog{step: step}
	s.dialogs[userID] = d
	return d
}

// get retrieves the user's in-progress dialog, nil when there is none
func (s *dialogStore) get(userID int64) *dialog {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dialogs[userID]
}

// clear drops the user's dialog
func (s *dialogStore) clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.dialogs, userID)
}
