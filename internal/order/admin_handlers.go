package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardkraft/backend-cards/internal/common"
	"github.com/cardkraft/backend-cards/internal/events"
)

// AdminHandler provides administrative order management endpoints.
type AdminHandler struct {
	Store  store
	Events *events.Bus
}

type patchStatusRequest struct {
	Status string `json:"status"`
}

// PatchStatus updates the order status with state-machine validation.
func (h *AdminHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	target := strings.ToUpper(strings.TrimSpace(req.Status))
	switch target {
	case StatusInProduction, StatusShipped, StatusDelivered, StatusCanceled:
	default:
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unsupported status", nil)
		return
	}
	ord, err := h.Store.UpdateStatus(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}
	if target == StatusCanceled && h.Events != nil {
		_, _ = h.Events.Emit(r.Context(), events.TopicOrderCanceled, ord.ID, map[string]any{
			"orderId": ord.ID,
			"status":  ord.Status,
		})
	}
	common.JSONData(w, http.StatusOK, ord)
}
