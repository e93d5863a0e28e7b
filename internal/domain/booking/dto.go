package booking

import (
	"time"

	"github.com/google/uuid"
)

// ReserveRequest asks for a hold on an item's time slot.
type ReserveRequest struct {
	ItemID      uuid.UUID `json:"item_id" validate:"required"`
	StudioID    uuid.UUID `json:"studio_id" validate:"required"`
	BookingDate time.Time `json:"booking_date" validate:"required"`
	StartTime   string    `json:"start_time" validate:"required,clock"`
	Hours       int       `json:"hours" validate:"required,min=1"`
}

// ExtendRequest extends an existing reservation.
type ExtendRequest struct {
	Hours int `json:"hours" validate:"required,min=1"`
}
