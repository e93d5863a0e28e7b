package notice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxPerOwner caps retained notices per session so an idle tab cannot grow
// the list without bound.
const maxPerOwner = 50

// Center holds per-owner notices. An owner is a session id while anonymous
// and a user id once authenticated.
type Center struct {
	mu      sync.Mutex
	notices map[uuid.UUID][]*Notice
}

// NewCenter creates an empty notification center
func NewCenter() *Center {
	return &Center{notices: make(map[uuid.UUID][]*Notice)}
}

// Publish adds a notice for the owner. undo may be nil.
func (c *Center) Publish(owner uuid.UUID, level Level, message string, undo *Action) *Notice {
	n := &Notice{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		Undoable:  undo != nil,
		CreatedAt: time.Now(),
		action:    undo,
	}

	c.mu.Lock()
	list := append(c.notices[owner], n)
	if len(list) > maxPerOwner {
		dropped := list[:len(list)-maxPerOwner]
		for _, old := range dropped {
			if old.action != nil {
				old.action.revoke()
			}
		}
		list = list[len(list)-maxPerOwner:]
	}
	c.notices[owner] = list
	c.mu.Unlock()

	log.Debug().
		Str("owner", owner.String()).
		Str("level", string(level)).
		Str("message", message).
		Bool("undoable", n.Undoable).
		Msg("Notice published")

	return n
}

// Success publishes a success notice
func (c *Center) Success(owner uuid.UUID, message string, undo *Action) *Notice {
	return c.Publish(owner, LevelSuccess, message, undo)
}

// Info publishes an informational notice
func (c *Center) Info(owner uuid.UUID, message string) *Notice {
	return c.Publish(owner, LevelInfo, message, nil)
}

// List returns the owner's notices, oldest first.
func (c *Center) List(owner uuid.UUID) []*Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Notice(nil), c.notices[owner]...)
}

// Dismiss removes a notice. A pending undo action is revoked, never offered
// again.
func (c *Center) Dismiss(owner, noticeID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.notices[owner]
	for i, n := range list {
		if n.ID == noticeID {
			if n.action != nil {
				n.action.revoke()
			}
			c.notices[owner] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNoticeNotFound
}

// Undo invokes the notice's compensating action. The notice stays listed
// (no longer undoable) so the UI can show the rollback happened.
func (c *Center) Undo(ctx context.Context, owner, noticeID uuid.UUID) error {
	c.mu.Lock()
	var target *Notice
	for _, n := range c.notices[owner] {
		if n.ID == noticeID {
			target = n
			break
		}
	}
	c.mu.Unlock()

	if target == nil {
		return ErrNoticeNotFound
	}
	if target.action == nil {
		return ErrNotUndoable
	}

	if err := target.action.Invoke(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	target.Undoable = false
	c.mu.Unlock()
	return nil
}
