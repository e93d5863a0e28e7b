package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventType discriminates the marketplace push events.
type EventType string

const (
	EventAvailabilityChanged EventType = "availability_changed"
	EventReservationChanged  EventType = "reservation_changed"
	EventConnectionError     EventType = "connection_error"
)

// Envelope is the wire frame every push event arrives in.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AvailabilityChanged announces that an item's bookable slots moved; cached
// availability for its studio is stale.
type AvailabilityChanged struct {
	ItemID   uuid.UUID `json:"item_id"`
	StudioID uuid.UUID `json:"studio_id"`
}

// ReservationChanged announces that a costumer's holds expired or were
// released server-side.
type ReservationChanged struct {
	CostumerID     uuid.UUID   `json:"costumer_id"`
	ReservationIDs []uuid.UUID `json:"reservation_ids"`
}

// ConnectionError is pushed by the marketplace before it drops the socket.
type ConnectionError struct {
	Reason string `json:"reason"`
}
