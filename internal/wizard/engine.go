// Package wizard drives a linear multi-step form: a draft is collected step by
// step, each step validated before it advances, and the final review step
// hands the draft to a submit collaborator.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/validate"
)

// NoStep marks the absence of an errored step.
const NoStep = -1

// DefaultFailureMessage is shown when a submission fails without a message.
const DefaultFailureMessage = "Something went wrong!"

var (
	ErrUseSubmit        = errors.New("wizard: review step must be submitted, not advanced")
	ErrTerminal         = errors.New("wizard: submission already attempted")
	ErrAtFirstStep      = errors.New("wizard: already at the first step")
	ErrNotReadyToSubmit = errors.New("wizard: submit is only allowed from the review step")
	ErrBusy             = errors.New("wizard: submission in flight")
	ErrImportNotAllowed = errors.New("wizard: import is not allowed on this step")
	ErrNotFailed        = errors.New("wizard: only a failed submission can be revised")
	ErrInvalidSnapshot  = errors.New("wizard: invalid snapshot")
)

// Status is the submission state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusInFlight  Status = "in_flight"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Step is one screen of the wizard.
type Step struct {
	Label      string
	Fields     []string
	Rules      validate.RuleSet
	Importable bool
}

// State is a copy of the engine state.
type State struct {
	ActiveStep  int
	ErroredStep int
	Draft       record.Draft
	Status      Status
	// Message holds the collaborator's failure message.
	Message string
}

// SubmitFunc sends the finished draft somewhere. A returned error's message
// is shown verbatim on the terminal screen.
type SubmitFunc func(ctx context.Context, draft record.Draft) error

// Observer is notified after every state change.
type Observer func(State)

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers fn to receive state changes.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, fn)
	}
}

// WithDraft seeds the initial draft.
func WithDraft(d record.Draft) Option {
	return func(e *Engine) {
		e.draft = d.Clone()
	}
}

// Engine holds one wizard session. All methods are safe for concurrent use.
type Engine struct {
	name      string
	steps     []Step
	observers []Observer

	mu      sync.Mutex
	active  int
	errored int
	draft   record.Draft
	status  Status
	message string
}

// New creates an engine for the given steps. The last step is the review
// step that is submitted instead of advanced.
func New(name string, steps []Step, opts ...Option) (*Engine, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("wizard %s: at least one step required", name)
	}
	e := &Engine{
		name:    name,
		steps:   append([]Step(nil), steps...),
		errored: NoStep,
		draft:   record.Draft{},
		status:  StatusIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Name returns the wizard name.
func (e *Engine) Name() string { return e.name }

// Steps returns the step definitions.
func (e *Engine) Steps() []Step { return append([]Step(nil), e.steps...) }

// Len returns the number of steps, N. ActiveStep == N is the terminal screen.
func (e *Engine) Len() int { return len(e.steps) }

// State returns a copy of the current state. It never blocks on a submission.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	return State{
		ActiveStep:  e.active,
		ErroredStep: e.errored,
		Draft:       e.draft.Clone(),
		Status:      e.status,
		Message:     e.message,
	}
}

// Terminal reports whether a submission has been attempted.
func (e *Engine) Terminal() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active == len(e.steps)
}

// guardLocked rejects mutations during a submission and after it.
func (e *Engine) guardLocked() error {
	if e.status == StatusInFlight {
		return ErrBusy
	}
	if e.active == len(e.steps) {
		return ErrTerminal
	}
	return nil
}

// Advance validates input merged over the draft against the active step's
// rules. On success the merge is kept, the wizard moves forward and nil
// errors are returned. On failure the draft and step are left as they were,
// the step is flagged, and the field errors are returned.
func (e *Engine) Advance(input record.Draft) (validate.Errors, error) {
	e.mu.Lock()
	if err := e.guardLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if e.active == len(e.steps)-1 {
		e.mu.Unlock()
		return nil, ErrUseSubmit
	}

	step := e.steps[e.active]
	candidate := e.draft.Clone()
	candidate.Merge(input)
	if errs := validate.Validate(step.Rules, candidate); !errs.OK() {
		e.errored = e.active
		logger.Debug("%s: step %d (%s) invalid: %s", e.name, e.active, step.Label, errs.Error())
		st := e.stateLocked()
		e.mu.Unlock()
		e.notify(st)
		return errs, nil
	}

	e.draft = candidate
	e.errored = NoStep
	e.active++
	logger.Debug("%s: advanced to step %d", e.name, e.active)
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
	return nil, nil
}

// Reject flags the active step as errored for input that failed before it
// could be validated, such as a file that cannot be read. The draft and the
// active step stay as they were.
func (e *Engine) Reject(errs validate.Errors) error {
	if errs.OK() {
		return nil
	}
	e.mu.Lock()
	if err := e.guardLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.errored = e.active
	logger.Debug("%s: step %d rejected: %s", e.name, e.active, errs.Error())
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
	return nil
}

// Retreat moves back one step, keeping the draft and the errored flag.
func (e *Engine) Retreat() error {
	e.mu.Lock()
	if err := e.guardLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.active == 0 {
		e.mu.Unlock()
		return ErrAtFirstStep
	}
	e.active--
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
	return nil
}

// ImportPartial merges an imported record into the draft without
// validation. Only importable steps accept it.
func (e *Engine) ImportPartial(imported record.Draft) error {
	e.mu.Lock()
	if err := e.guardLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	if !e.steps[e.active].Importable {
		e.mu.Unlock()
		return ErrImportNotAllowed
	}
	e.draft.Merge(imported)
	logger.Debug("%s: imported %d fields", e.name, len(imported))
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
	return nil
}

// Submit hands a copy of the draft to fn from the review step. The wizard
// reaches the terminal screen whatever the outcome; the outcome is
// recorded in the returned state. Errors are returned only for
// precondition violations.
func (e *Engine) Submit(ctx context.Context, fn SubmitFunc) (State, error) {
	e.mu.Lock()
	if e.status == StatusInFlight {
		e.mu.Unlock()
		return State{}, ErrBusy
	}
	if e.active != len(e.steps)-1 {
		e.mu.Unlock()
		return State{}, ErrNotReadyToSubmit
	}
	e.status = StatusInFlight
	e.message = ""
	draft := e.draft.Clone()
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)

	logger.Info("%s: submitting", e.name)
	err := call(ctx, fn, draft)

	e.mu.Lock()
	e.active = len(e.steps)
	if err != nil {
		e.status = StatusFailed
		e.message = err.Error()
		if e.message == "" {
			e.message = DefaultFailureMessage
		}
		logger.Warn("%s: submission failed: %s", e.name, e.message)
	} else {
		e.status = StatusSucceeded
		logger.Info("%s: submission succeeded", e.name)
	}
	st = e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
	return st, nil
}

func call(ctx context.Context, fn SubmitFunc, draft record.Draft) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	if fn == nil {
		return errors.New(DefaultFailureMessage)
	}
	return fn(ctx, draft)
}

// Revise leaves a failed terminal screen for the review step so the same
// or an edited draft can be submitted again. It is the only way out of the
// terminal screen other than Reset.
func (e *Engine) Revise() error {
	e.mu.Lock()
	if e.status == StatusInFlight {
		e.mu.Unlock()
		return ErrBusy
	}
	if e.active != len(e.steps) || e.status != StatusFailed {
		e.mu.Unlock()
		return ErrNotFailed
	}
	e.active = len(e.steps) - 1
	e.status = StatusIdle
	e.message = ""
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
	return nil
}

// Reset starts over with an empty draft.
func (e *Engine) Reset() error {
	e.mu.Lock()
	if e.status == StatusInFlight {
		e.mu.Unlock()
		return ErrBusy
	}
	e.active = 0
	e.errored = NoStep
	e.draft = record.Draft{}
	e.status = StatusIdle
	e.message = ""
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
	return nil
}

func (e *Engine) notify(st State) {
	for _, fn := range e.observers {
		fn(st)
	}
}
