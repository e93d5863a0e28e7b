// Package mutation is the optimistic mutation engine shared by every
// state-changing operation: run the gateway call, invalidate the dependent
// cached reads so the next access refetches, surface a success notice, and
// register a one-shot compensating action. The engine never writes a guessed
// post-mutation value into the cache; invalidation is the only coupling
// between a write and its dependent reads.
package mutation

import (
	"context"

	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/domain/notice"
	"github.com/rently/rently-api/internal/pkg/cache"
	"github.com/rently/rently-api/internal/pkg/errorhandler"
)

// Op describes one optimistic mutation. V is the operation's variables, R
// the gateway result.
type Op[V, R any] struct {
	// Owner receives the success notice (session or user id).
	Owner uuid.UUID

	// Variables are passed to Mutate, and later verbatim to Undo.
	Variables V

	// Mutate performs the state change against the gateway.
	Mutate func(ctx context.Context, vars V) (R, error)

	// Invalidate lists the cache regions dependent reads live under.
	Invalidate []cache.Region

	// SuccessMessage is shown once the mutation commits.
	SuccessMessage string

	// Undo, when set, compensates the mutation. It receives the original
	// variables and the mutation's result, and is offered exactly once on
	// the success notice.
	Undo func(ctx context.Context, vars V, result R) (R, error)

	// FailureMessage labels the single failure report. Defaults to
	// SuccessMessage when empty.
	FailureMessage string
}

// Engine binds the cache and notification center the operations run against.
type Engine struct {
	cache   *cache.Store
	notices *notice.Center
}

// NewEngine creates a mutation engine
func NewEngine(cacheStore *cache.Store, notices *notice.Center) *Engine {
	return &Engine{cache: cacheStore, notices: notices}
}

// Cache exposes the engine's cache store for read paths.
func (e *Engine) Cache() *cache.Store {
	return e.cache
}

// Notices exposes the engine's notification center.
func (e *Engine) Notices() *notice.Center {
	return e.notices
}

// Run executes the operation. On success the listed regions are invalidated
// strictly after the mutation resolves, then the notice (with its undo
// action, if any) is published. On failure nothing is invalidated and the
// error is reported exactly once through the shared error channel.
func Run[V, R any](ctx context.Context, e *Engine, op Op[V, R]) (R, error) {
	result, err := op.Mutate(ctx, op.Variables)
	if err != nil {
		msg := op.FailureMessage
		if msg == "" {
			msg = op.SuccessMessage
		}
		errorhandler.Report(ctx, err, "Mutation failed: "+msg)
		var zero R
		return zero, err
	}

	e.cache.Invalidate(op.Invalidate...)

	var action *notice.Action
	if op.Undo != nil {
		vars, regions := op.Variables, op.Invalidate
		action = notice.NewAction(func(ctx context.Context) error {
			if _, err := op.Undo(ctx, vars, result); err != nil {
				errorhandler.Report(ctx, err, "Undo failed: "+op.SuccessMessage)
				return err
			}
			e.cache.Invalidate(regions...)
			return nil
		})
	}

	if op.SuccessMessage != "" {
		e.notices.Success(op.Owner, op.SuccessMessage, action)
	}

	return result, nil
}
