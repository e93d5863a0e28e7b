package block

import "errors"

var (
	ErrNoAvailableDays      = errors.New("no available days inside the requested range")
	ErrMissingWindow        = errors.New("slot mode requires a date, start time and hours")
	ErrMissingRange         = errors.New("range mode requires a start and end date")
	ErrConfirmationRequired = errors.New("range block requires confirmation")
	ErrOutsideHours         = errors.New("requested window falls outside the studio's working hours")
)
