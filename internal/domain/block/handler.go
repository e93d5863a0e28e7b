package block

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rently/rently-api/internal/middleware"
	"github.com/rently/rently-api/internal/pkg/errorhandler"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/response"
	"github.com/rently/rently-api/internal/pkg/validator"
)

// Handler handles block HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates block handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Block handles POST /blocks. A range request without confirm returns the
// date preview; everything else executes and returns the run summary.
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	if req.Mode == ModeRange && !req.Confirm {
		preview, err := h.service.Preview(r.Context(), req)
		if err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}
		response.OK(w, preview)
		return
	}

	summary, err := h.service.Block(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	response.OK(w, summary)
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingWindow),
		errors.Is(err, ErrMissingRange),
		errors.Is(err, ErrNoAvailableDays):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrConfirmationRequired), errors.Is(err, ErrOutsideHours):
		response.Conflict(w, err.Error())
	default:
		var apiErr *marketplace.APIError
		if errors.As(err, &apiErr) {
			response.Error(w, apiErr.Status, apiErr.Code, apiErr.Message)
			return
		}
		errorhandler.HandleError(ctx, w, http.StatusBadGateway, "MARKETPLACE_UNAVAILABLE", "marketplace unavailable", err)
	}
}
