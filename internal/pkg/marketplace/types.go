package marketplace

import (
	"time"

	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/domain/slots"
)

// ReservationStatus is the server-owned reservation lifecycle state. The
// client only requests transitions; it never asserts a state.
type ReservationStatus string

const (
	ReservationHeld      ReservationStatus = "held"
	ReservationApproved  ReservationStatus = "approved"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

// Reservation is a server-held time-slot hold against an item.
type Reservation struct {
	ID          uuid.UUID         `json:"id"`
	ItemID      uuid.UUID         `json:"item_id"`
	StudioID    uuid.UUID         `json:"studio_id"`
	BookingDate time.Time         `json:"booking_date"`
	Hours       int               `json:"hours"`
	Status      ReservationStatus `json:"status"`
}

// CartItem is one cart line. A nil ReservationID marks a local-only intent
// that has not reserved a slot yet.
type CartItem struct {
	ItemID        uuid.UUID  `json:"item_id"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	Quantity      int        `json:"quantity"`
	Total         float64    `json:"total"`
	BookingDate   time.Time  `json:"booking_date"`
	StudioID      uuid.UUID  `json:"studio_id"`
	StudioName    string     `json:"studio_name"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
}

// Cart is an ordered collection of cart lines.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Total returns the recomputed cart total; stored line totals are never
// trusted for the sum.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ReserveRequest asks the marketplace to hold a time slot for an item.
type ReserveRequest struct {
	ItemID      uuid.UUID `json:"item_id"`
	StudioID    uuid.UUID `json:"studio_id"`
	BookingDate time.Time `json:"booking_date"`
	Hours       int       `json:"hours"`
}

// BlockRequest reserves a window on a studio's own calendar so customers
// cannot book it. No customer order is attached.
type BlockRequest struct {
	StudioID    uuid.UUID `json:"studio_id"`
	BookingDate time.Time `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	Hours       int       `json:"hours"`
}

// AddItemRequest adds a single item to the server cart.
type AddItemRequest struct {
	ItemID      uuid.UUID `json:"item_id"`
	BookingDate time.Time `json:"booking_date"`
	StartTime   string    `json:"start_time,omitempty"`
	Hours       int       `json:"hours,omitempty"`
}

// StudioAvailability is the published availability for one studio.
type StudioAvailability struct {
	StudioID     uuid.UUID          `json:"studio_id"`
	Availability slots.Availability `json:"availability"`
}

// WishlistItem is one wishlist entry.
type WishlistItem struct {
	ItemID  uuid.UUID `json:"item_id"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}
