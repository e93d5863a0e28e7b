package cart

import (
	"github.com/go-chi/chi/v5"

	"github.com/rently/rently-api/internal/middleware"
)

// Routes returns the cart router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Delete("/items/{itemID}", h.RemoveItem)
	r.Post("/items/{itemID}/increment", h.Increment)
	r.Post("/items/{itemID}/decrement", h.Decrement)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser())
		r.Post("/merge", h.Merge)
	})

	return r
}
