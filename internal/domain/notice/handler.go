package notice

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/middleware"
	"github.com/rently/rently-api/internal/pkg/response"
)

// Handler handles notice HTTP requests
type Handler struct {
	center *Center
}

// NewHandler creates notice handler
func NewHandler(center *Center) *Handler {
	return &Handler{center: center}
}

// owner resolves the notice owner: the user id once authenticated, the
// session id before.
func owner(r *http.Request) uuid.UUID {
	if userID := middleware.GetUserID(r.Context()); userID != uuid.Nil {
		return userID
	}
	return middleware.GetSessionID(r.Context())
}

// List handles GET /notices
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.center.List(owner(r)))
}

// Dismiss handles DELETE /notices/{noticeID}
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	noticeID, err := uuid.Parse(chi.URLParam(r, "noticeID"))
	if err != nil {
		response.BadRequest(w, "invalid notice id")
		return
	}

	if err := h.center.Dismiss(owner(r), noticeID); err != nil {
		response.NotFound(w, "notice not found")
		return
	}
	response.NoContent(w)
}

// Undo handles POST /notices/{noticeID}/undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	noticeID, err := uuid.Parse(chi.URLParam(r, "noticeID"))
	if err != nil {
		response.BadRequest(w, "invalid notice id")
		return
	}

	err = h.center.Undo(r.Context(), owner(r), noticeID)
	switch {
	case err == nil:
		response.NoContent(w)
	case errors.Is(err, ErrNoticeNotFound):
		response.NotFound(w, "notice not found")
	case errors.Is(err, ErrNotUndoable), errors.Is(err, ErrActionConsumed):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w)
	}
}
