package booking

import "errors"

var (
	ErrOutsideHours    = errors.New("requested window falls outside the studio's working hours")
	ErrDayNotAvailable = errors.New("studio is closed on the requested day")
	ErrInvalidWindow   = errors.New("invalid booking window")
)
