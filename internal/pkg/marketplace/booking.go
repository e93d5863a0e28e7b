package marketplace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ReserveTimeSlot asks the marketplace to hold one time slot.
func (c *Client) ReserveTimeSlot(ctx context.Context, userID uuid.UUID, req ReserveRequest) (*Reservation, error) {
	var reservation Reservation
	path := fmt.Sprintf("/api/v1/users/%s/reservations", userID)
	if err := c.doJSON(ctx, http.MethodPost, path, req, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ReserveTimeSlots holds consecutive slots for a multi-hour booking in one
// call; the marketplace returns one reservation per held hour.
func (c *Client) ReserveTimeSlots(ctx context.Context, userID uuid.UUID, req ReserveRequest) ([]Reservation, error) {
	var reservations []Reservation
	path := fmt.Sprintf("/api/v1/users/%s/reservations/batch", userID)
	if err := c.doJSON(ctx, http.MethodPost, path, req, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// ReleaseTimeSlot releases a held slot.
func (c *Client) ReleaseTimeSlot(ctx context.Context, userID, reservationID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/users/%s/reservations/%s", userID, reservationID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// ReserveStudioTimeSlot blocks a window on the studio's own calendar.
func (c *Client) ReserveStudioTimeSlot(ctx context.Context, req BlockRequest) error {
	path := fmt.Sprintf("/api/v1/studios/%s/blocks", req.StudioID)
	return c.doJSON(ctx, http.MethodPost, path, req, nil)
}

// CancelReservation requests the held -> cancelled transition.
func (c *Client) CancelReservation(ctx context.Context, reservationID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/reservations/%s/cancel", reservationID)
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// ApproveReservation requests the held -> approved transition.
func (c *Client) ApproveReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	path := fmt.Sprintf("/api/v1/reservations/%s/approve", reservationID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ExtendReservation extends a held slot by the given number of hours.
func (c *Client) ExtendReservation(ctx context.Context, reservationID uuid.UUID, hours int) (*Reservation, error) {
	var reservation Reservation
	path := fmt.Sprintf("/api/v1/reservations/%s/extend", reservationID)
	body := map[string]int{"hours": hours}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// GetStudioAvailability fetches the published availability for a studio.
func (c *Client) GetStudioAvailability(ctx context.Context, studioID uuid.UUID) (*StudioAvailability, error) {
	var availability StudioAvailability
	path := fmt.Sprintf("/api/v1/studios/%s/availability", studioID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}
