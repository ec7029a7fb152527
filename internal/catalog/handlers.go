package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cardkraft/backend-cards/internal/common"
	"github.com/cardkraft/backend-cards/internal/pricing"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	Service *Service
}

// Products handles GET /api/v1/products with filters, sorting, and pagination.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	filter, err := h.Service.ParseListFilter(r.URL.Query())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.Service.List(r.Context(), filter)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.JSONList(w, http.StatusOK, result.Items, common.Pagination{
		Page:       result.Page,
		PerPage:    result.Limit,
		TotalItems: int(result.Total),
	})
}

// ProductDetail handles GET /api/v1/products/{slug}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	detail, err := h.Service.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, detail)
}

// Options handles GET /api/v1/options. The customization surface is static
// per deployment, so the payload is assembled in process.
func (h *Handler) Options(w http.ResponseWriter, _ *http.Request) {
	common.JSONData(w, http.StatusOK, map[string]any{
		"paperWeights":  []int{int(pricing.Weight350), int(pricing.Weight600)},
		"cardSizes":     []pricing.CardSize{pricing.SizeStandard, pricing.SizeUS, pricing.SizeSquare},
		"treatments":    []pricing.TreatmentTier{pricing.TierNone, pricing.TierSingle, pricing.TierBoth},
		"metals":        []pricing.Metal{pricing.MetalNone, pricing.MetalGold, pricing.MetalSilver, pricing.MetalCopper, pricing.MetalRoseGold},
		"paperTypes":    []pricing.PaperType{pricing.PaperMatt, pricing.PaperSoftSuede, pricing.PaperMohawk, pricing.PaperKeycolor, pricing.PaperCotton},
		"designKinds":   []pricing.DesignKind{pricing.DesignUpload, pricing.DesignExpert},
		"quantityTiers": pricing.QuantityTiers(),
	})
}
