package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/middleware"
	"github.com/rently/rently-api/internal/pkg/errorhandler"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/response"
	"github.com/rently/rently-api/internal/pkg/validator"
)

// Handler handles cart HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates cart handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func session(r *http.Request) Session {
	return Session{
		SessionID: middleware.GetSessionID(r.Context()),
		UserID:    middleware.GetUserID(r.Context()),
	}
}

// Get handles GET /cart
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), session(r))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, toCartResponse(cart))
}

// AddItem handles POST /cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	cart, err := h.service.AddItem(r.Context(), session(r), req)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.Created(w, toCartResponse(cart))
}

// RemoveItem handles DELETE /cart/items/{itemID}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), session(r), RemoveItemRequest{ItemID: itemID})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, toCartResponse(cart))
}

// Clear handles DELETE /cart
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), session(r))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, toCartResponse(cart))
}

// Increment handles POST /cart/items/{itemID}/increment
func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	cart, err := h.service.Increment(r.Context(), session(r), itemID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, toCartResponse(cart))
}

// Decrement handles POST /cart/items/{itemID}/decrement
func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	cart, err := h.service.Decrement(r.Context(), session(r), itemID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, toCartResponse(cart))
}

// Merge handles POST /cart/merge
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	merged, err := h.service.Merge(r.Context(), session(r))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, MergeResponse{Merged: merged})
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		response.NotFound(w, "item not in cart")
	case errors.Is(err, ErrMinQuantity):
		response.BadRequest(w, ErrMinQuantity.Error())
	case errors.Is(err, ErrNotAuthenticated):
		response.Unauthorized(w, "authentication required")
	default:
		var apiErr *marketplace.APIError
		if errors.As(err, &apiErr) {
			response.Error(w, apiErr.Status, apiErr.Code, apiErr.Message)
			return
		}
		errorhandler.HandleError(ctx, w, http.StatusBadGateway, "MARKETPLACE_UNAVAILABLE", "marketplace unavailable", err)
	}
}
