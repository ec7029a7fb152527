package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cardkraft/backend-cards/internal/common"
)

type orderCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

type cartCounter interface {
	CountCarts(ctx context.Context) (int64, error)
}

// Handler exposes the admin surface: feature toggles and a small dashboard.
type Handler struct {
	Toggles *Toggles
	Orders  orderCounter
	Carts   cartCounter
}

// ListToggles handles GET /api/v1/admin/features. Every known feature is
// reported; ones never toggled default to enabled.
func (h *Handler) ListToggles(w http.ResponseWriter, r *http.Request) {
	if h.Toggles == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "feature toggles not configured", nil)
		return
	}
	flags, err := h.Toggles.Enabled(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := make(map[string]bool, len(KnownFeatures()))
	for _, feature := range KnownFeatures() {
		enabled, ok := flags[feature]
		out[feature] = !ok || enabled
	}
	common.JSONData(w, http.StatusOK, out)
}

type setToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetToggle handles PUT /api/v1/admin/features/{name}.
func (h *Handler) SetToggle(w http.ResponseWriter, r *http.Request) {
	if h.Toggles == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "feature toggles not configured", nil)
		return
	}
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	var req setToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "enabled must be true or false", nil)
		return
	}
	if err := h.Toggles.Set(r.Context(), name, *req.Enabled); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"feature": name, "enabled": *req.Enabled})
}

// Dashboard handles GET /api/v1/admin/dashboard: order counts by status,
// revenue of non-canceled orders, and the number of live session carts.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	counts, err := h.Orders.CountByStatus(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	revenue, err := h.Orders.Revenue(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := map[string]any{
		"orders":      counts,
		"ordersTotal": total,
		"revenue":     revenue,
	}
	if h.Carts != nil {
		carts, err := h.Carts.CountCarts(r.Context())
		if err != nil {
			common.WriteError(w, err)
			return
		}
		out["activeCarts"] = carts
	}
	common.JSONData(w, http.StatusOK, out)
}
