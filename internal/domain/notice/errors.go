package notice

import "errors"

var (
	ErrNoticeNotFound = errors.New("notice not found")
	ErrNotUndoable    = errors.New("notice has no undo action")
	ErrActionConsumed = errors.New("undo action already consumed")
)
