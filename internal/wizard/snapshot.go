package wizard

import (
	"fmt"
	"time"

	"github.com/cristalexdent/clinicadmin/internal/record"
)

// Snapshot is a resumable checkpoint of an unfinished wizard.
type Snapshot struct {
	Wizard      string       `json:"wizard"`
	ActiveStep  int          `json:"active_step"`
	ErroredStep int          `json:"errored_step"`
	Draft       record.Draft `json:"draft"`
	SavedAt     time.Time    `json:"saved_at"`
}

// Snapshot captures the current position and draft. A failed terminal state
// is captured at the review step so it can be submitted again.
func (e *Engine) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusInFlight {
		return Snapshot{}, ErrBusy
	}
	active := e.active
	if active == len(e.steps) {
		if e.status != StatusFailed {
			return Snapshot{}, ErrTerminal
		}
		active = len(e.steps) - 1
	}
	return Snapshot{
		Wizard:      e.name,
		ActiveStep:  active,
		ErroredStep: e.errored,
		Draft:       e.draft.Clone(),
		SavedAt:     time.Now().UTC(),
	}, nil
}

// Restore replaces the state with s. Snapshots of another wizard or of a
// terminal position are rejected.
func (e *Engine) Restore(s Snapshot) error {
	e.mu.Lock()
	if e.status == StatusInFlight {
		e.mu.Unlock()
		return ErrBusy
	}
	if s.Wizard != e.name {
		e.mu.Unlock()
		return fmt.Errorf("%w: snapshot of %q restored into %q", ErrInvalidSnapshot, s.Wizard, e.name)
	}
	if s.ActiveStep < 0 || s.ActiveStep >= len(e.steps) {
		e.mu.Unlock()
		return fmt.Errorf("%w: step %d out of range", ErrInvalidSnapshot, s.ActiveStep)
	}
	errored := s.ErroredStep
	if errored < NoStep || errored >= len(e.steps) {
		errored = NoStep
	}
	e.active = s.ActiveStep
	e.errored = errored
	e.draft = s.Draft.Clone()
	e.status = StatusIdle
	e.message = ""
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
	return nil
}
