package wishlist

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/middleware"
	"github.com/rently/rently-api/internal/pkg/errorhandler"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/response"
)

// Handler handles wishlist HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates wishlist handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /wishlist
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, items)
}

// Add handles PUT /wishlist/{itemID}
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	if err := h.service.Add(r.Context(), middleware.GetUserID(r.Context()), itemID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

// Remove handles DELETE /wishlist/{itemID}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	if err := h.service.Remove(r.Context(), middleware.GetUserID(r.Context()), itemID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *marketplace.APIError
	if errors.As(err, &apiErr) {
		response.Error(w, apiErr.Status, apiErr.Code, apiErr.Message)
		return
	}
	errorhandler.HandleError(ctx, w, http.StatusBadGateway, "MARKETPLACE_UNAVAILABLE", "marketplace unavailable", err)
}
