package cart

import "errors"

var (
	ErrItemNotFound     = errors.New("item not in cart")
	ErrMinQuantity      = errors.New("minimum cart quantity for a time-based item is 1")
	ErrNotAuthenticated = errors.New("merge requires an authenticated user")
)
