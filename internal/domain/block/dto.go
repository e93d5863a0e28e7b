package block

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects how much of the calendar one block request covers.
type Mode string

const (
	// ModeSlot blocks a single window on a single date.
	ModeSlot Mode = "slot"
	// ModeDay blocks a date's entire working hours.
	ModeDay Mode = "day"
	// ModeRange blocks every available day between two dates.
	ModeRange Mode = "range"
)

// Request is one block-time-slot request. StartTime and Hours apply to slot
// mode; StartDate and EndDate to range mode.
type Request struct {
	StudioID    uuid.UUID `json:"studio_id" validate:"required"`
	Mode        Mode      `json:"mode" validate:"required,block_mode"`
	BookingDate time.Time `json:"booking_date,omitempty"`
	StartTime   string    `json:"start_time,omitempty" validate:"omitempty,clock"`
	Hours       int       `json:"hours,omitempty" validate:"omitempty,min=1"`
	StartDate   time.Time `json:"start_date,omitempty"`
	EndDate     time.Time `json:"end_date,omitempty"`

	// Confirm executes a range block. A range request without it only
	// previews the dates that would be blocked.
	Confirm bool `json:"confirm,omitempty"`
}

// Summary reports the outcome of a block run, date by date.
type Summary struct {
	Requested int         `json:"requested"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Dates     []DayResult `json:"dates,omitempty"`
}

// DayResult is one date's outcome within a range run.
type DayResult struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// Preview lists the dates a range block would cover, pending confirmation.
type Preview struct {
	Dates     []time.Time `json:"dates"`
	Confirmed bool        `json:"confirmed"`
}
