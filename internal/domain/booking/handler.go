package booking

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

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Availability handles GET /availability/{studioID}
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	studioID, err := uuid.Parse(chi.URLParam(r, "studioID"))
	if err != nil {
		response.BadRequest(w, "invalid studio id")
		return
	}

	av, err := h.service.Availability(r.Context(), studioID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, av)
}

// Reserve handles POST /bookings
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	res, err := h.service.Reserve(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.Created(w, res)
}

// ReserveBatch handles POST /bookings/batch
func (h *Handler) ReserveBatch(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	reservations, err := h.service.ReserveBatch(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.Created(w, reservations)
}

// Release handles DELETE /bookings/{reservationID}
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(chi.URLParam(r, "reservationID"))
	if err != nil {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	if err := h.service.Release(r.Context(), middleware.GetUserID(r.Context()), reservationID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

// Cancel handles POST /bookings/{reservationID}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(chi.URLParam(r, "reservationID"))
	if err != nil {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	if err := h.service.Cancel(r.Context(), middleware.GetUserID(r.Context()), reservationID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

// Approve handles POST /bookings/{reservationID}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(chi.URLParam(r, "reservationID"))
	if err != nil {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	res, err := h.service.Approve(r.Context(), middleware.GetUserID(r.Context()), reservationID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, res)
}

// Extend handles POST /bookings/{reservationID}/extend
func (h *Handler) Extend(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(chi.URLParam(r, "reservationID"))
	if err != nil {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	var req ExtendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	res, err := h.service.Extend(r.Context(), middleware.GetUserID(r.Context()), reservationID, req.Hours)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, res)
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDayNotAvailable), errors.Is(err, ErrOutsideHours):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrInvalidWindow):
		response.BadRequest(w, err.Error())
	default:
		var apiErr *marketplace.APIError
		if errors.As(err, &apiErr) {
			response.Error(w, apiErr.Status, apiErr.Code, apiErr.Message)
			return
		}
		errorhandler.HandleError(ctx, w, http.StatusBadGateway, "MARKETPLACE_UNAVAILABLE", "marketplace unavailable", err)
	}
}
