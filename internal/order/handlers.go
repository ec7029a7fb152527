package order

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cardkraft/backend-cards/internal/common"
)

type store interface {
	GetByID(ctx context.Context, id string) (Order, error)
	ListForUser(ctx context.Context, userID string, page, perPage int) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id, target string) (Order, error)
}

// Handler exposes customer-facing order endpoints.
type Handler struct {
	Store store
}

// Get handles GET /api/v1/orders/{id}. The order id works as a capability so
// guest checkouts can still look up their order.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	ord, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, ord)
}

// List handles GET /api/v1/orders for the authenticated customer.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20, 100)
	orders, total, err := h.Store.ListForUser(r.Context(), userID, page, perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSONList(w, http.StatusOK, orders, common.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
	})
}
