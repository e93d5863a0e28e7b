package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/pkg/marketplace"
)

// AddItemRequest adds one item to the caller's cart.
type AddItemRequest struct {
	ItemID      uuid.UUID `json:"item_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Price       float64   `json:"price" validate:"gte=0"`
	BookingDate time.Time `json:"booking_date" validate:"required"`
	StartTime   string    `json:"start_time,omitempty" validate:"omitempty,clock"`
	Hours       int       `json:"hours,omitempty" validate:"omitempty,min=1"`
	StudioID    uuid.UUID `json:"studio_id" validate:"required"`
	StudioName  string    `json:"studio_name"`
}

// RemoveItemRequest removes one cart line.
type RemoveItemRequest struct {
	ItemID      uuid.UUID `json:"item_id" validate:"required"`
	BookingDate time.Time `json:"booking_date"`
}

// QuantityRequest addresses an existing cart line for increment/decrement.
type QuantityRequest struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
}

// CartResponse is the cart with its recomputed total.
type CartResponse struct {
	Items []marketplace.CartItem `json:"items"`
	Total float64                `json:"total"`
}

// MergeResponse reports the offline -> server cart flush.
type MergeResponse struct {
	Merged int `json:"merged"`
}

func toCartResponse(cart marketplace.Cart) CartResponse {
	return CartResponse{Items: cart.Items, Total: cart.Total()}
}
