package block

import (
	"github.com/go-chi/chi/v5"

	"github.com/rently/rently-api/internal/middleware"
)

// Routes returns the blocks router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequireUser())
	r.Post("/", h.Block)

	return r
}
