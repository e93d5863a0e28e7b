package notice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a notice
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Action is a first-class compensating action attached to a notice. It is
// single-use: once invoked or the notice is dismissed, the action is gone.
type Action struct {
	mu       sync.Mutex
	consumed bool
	run      func(ctx context.Context) error
}

// NewAction wraps a compensating function
func NewAction(run func(ctx context.Context) error) *Action {
	return &Action{run: run}
}

// Invoke runs the action once. A second invocation returns ErrActionConsumed
// without running anything.
func (a *Action) Invoke(ctx context.Context) error {
	a.mu.Lock()
	if a.consumed {
		a.mu.Unlock()
		return ErrActionConsumed
	}
	a.consumed = true
	a.mu.Unlock()

	return a.run(ctx)
}

// Consumed reports whether the action has been used or revoked
func (a *Action) Consumed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.consumed
}

// revoke marks the action consumed without running it, used on dismiss.
func (a *Action) revoke() {
	a.mu.Lock()
	a.consumed = true
	a.mu.Unlock()
}

// Notice is one user-visible message, optionally carrying an undo action.
type Notice struct {
	ID        uuid.UUID `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Undoable  bool      `json:"undoable"`
	CreatedAt time.Time `json:"created_at"`

	action *Action
}
