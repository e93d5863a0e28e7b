package booking

import (
	"github.com/go-chi/chi/v5"

	"github.com/rently/rently-api/internal/middleware"
)

// Routes returns the bookings router. Every operation needs a known user;
// availability reads are mounted separately and stay public.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequireUser())

	r.Post("/", h.Reserve)
	r.Post("/batch", h.ReserveBatch)
	r.Delete("/{reservationID}", h.Release)
	r.Post("/{reservationID}/cancel", h.Cancel)
	r.Post("/{reservationID}/approve", h.Approve)
	r.Post("/{reservationID}/extend", h.Extend)

	return r
}
