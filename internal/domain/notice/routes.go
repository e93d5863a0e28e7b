package notice

import "github.com/go-chi/chi/v5"

// Routes returns the notices router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Delete("/{noticeID}", h.Dismiss)
	r.Post("/{noticeID}/undo", h.Undo)

	return r
}
