package wishlist

import (
	"github.com/go-chi/chi/v5"

	"github.com/rently/rently-api/internal/middleware"
)

// Routes returns the wishlist router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequireUser())

	r.Get("/", h.List)
	r.Put("/{itemID}", h.Add)
	r.Delete("/{itemID}", h.Remove)

	return r
}
