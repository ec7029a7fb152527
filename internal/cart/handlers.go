package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/cardkraft/backend-cards/internal/common"
	"github.com/cardkraft/backend-cards/internal/obs"
	"github.com/cardkraft/backend-cards/internal/pricing"
)

// ProductRef is the catalog data the cart needs to price a configuration.
type ProductRef struct {
	ID        string
	Name      string
	BasePrice decimal.Decimal
	Category  string
}

// CatalogProvider resolves products for pricing. The catalog is read-only
// input; the cart never mutates it.
type CatalogProvider interface {
	GetForPricing(ctx context.Context, productID string) (ProductRef, bool, error)
}

// FeatureSource reports which storefront features are currently enabled.
type FeatureSource interface {
	Enabled(ctx context.Context) (map[string]bool, error)
}

// Feature names understood by the configuration path.
const (
	FeatureFoil          = "foil"
	FeatureEmboss        = "emboss"
	FeatureEdgePaint     = "edge-paint"
	FeatureElectroplate  = "electroplating"
	FeatureDesignService = "design-service"
)

// ConfigPayload is the wire form of a customer's option selections. Option
// strings are normalised permissively; unknown values price as baseline.
type ConfigPayload struct {
	ProductID         string `json:"productId" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,gt=0"`
	PaperWeight       int    `json:"paperWeight"`
	CardSize          string `json:"cardSize"`
	Foil              string `json:"foil"`
	Emboss            string `json:"emboss"`
	EdgePaint         string `json:"edgePaint"`
	ElectroplateFront string `json:"electroplateFront"`
	ElectroplateBack  string `json:"electroplateBack"`
	PaperType         string `json:"paperType"`
	Design            struct {
		Requested bool   `json:"requested"`
		Kind      string `json:"kind"`
	} `json:"design"`
}

// ToConfiguration resolves the payload against a base price.
func (p ConfigPayload) ToConfiguration(basePrice decimal.Decimal) pricing.Configuration {
	return pricing.Configuration{
		BasePrice:         basePrice,
		PaperWeight:       pricing.ParsePaperWeight(p.PaperWeight),
		CardSize:          pricing.ParseCardSize(p.CardSize),
		Quantity:          p.Quantity,
		Foil:              pricing.ParseTreatmentTier(p.Foil),
		Emboss:            pricing.ParseTreatmentTier(p.Emboss),
		EdgePaint:         pricing.ParseTreatmentTier(p.EdgePaint),
		ElectroplateFront: pricing.ParseMetal(p.ElectroplateFront),
		ElectroplateBack:  pricing.ParseMetal(p.ElectroplateBack),
		PaperType:         pricing.ParsePaperType(p.PaperType),
		Design: pricing.DesignService{
			Requested: p.Design.Requested,
			Kind:      pricing.ParseDesignKind(p.Design.Kind),
		},
	}
}

// ApplyFeatureFlags strips selections for disabled features, pricing them as
// their free baseline. Missing flags mean enabled.
func ApplyFeatureFlags(cfg pricing.Configuration, flags map[string]bool) pricing.Configuration {
	disabled := func(name string) bool {
		enabled, ok := flags[name]
		return ok && !enabled
	}
	if disabled(FeatureFoil) {
		cfg.Foil = pricing.TierNone
	}
	if disabled(FeatureEmboss) {
		cfg.Emboss = pricing.TierNone
	}
	if disabled(FeatureEdgePaint) {
		cfg.EdgePaint = pricing.TierNone
	}
	if disabled(FeatureElectroplate) {
		cfg.ElectroplateFront = pricing.MetalNone
		cfg.ElectroplateBack = pricing.MetalNone
	}
	if disabled(FeatureDesignService) {
		cfg.Design = pricing.DesignService{}
	}
	return cfg
}

// Handler wires the cart service and pricing preview to HTTP.
type Handler struct {
	Svc      *Service
	Catalog  CatalogProvider
	Features FeatureSource
	Validate *validator.Validate
	Currency string
}

// Create allocates a new session cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	view, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("create")
	h.writeView(w, http.StatusCreated, view)
}

// Get returns cart contents and derived totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	view, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeView(w, http.StatusOK, view)
}

// Quote prices a configuration without touching any cart.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	payload, ref, ok := h.resolvePayload(w, r)
	if !ok {
		return
	}
	cfg, err := h.buildConfiguration(r.Context(), payload, ref)
	if err != nil {
		h.writeError(w, err)
		return
	}
	breakdown := pricing.ComputeBreakdown(cfg)
	obs.IncQuoteComputed()
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"productId":         ref.ID,
			"productName":       ref.Name,
			"config":            cfg,
			"breakdown":         breakdown,
			"supportedQuantity": pricing.IsSupportedQuantity(cfg.Quantity),
			"currency":          h.Currency,
		},
	})
}

// AddItem prices the configuration and merges it into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	payload, ref, ok := h.resolvePayload(w, r)
	if !ok {
		return
	}
	cfg, err := h.buildConfiguration(r.Context(), payload, ref)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), NewLineItem(ref.ID, ref.Name, cfg))
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("add")
	h.writeView(w, http.StatusOK, view)
}

// UpdateItem sets the quantity for lines matching the product id.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		Quantity int `json:"quantity" validate:"required,gt=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "quantity must be positive", nil)
		return
	}
	view, err := h.Svc.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productId"), payload.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("update")
	h.writeView(w, http.StatusOK, view)
}

// RemoveItem deletes lines matching the product id.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	view, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("remove")
	h.writeView(w, http.StatusOK, view)
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	view, err := h.Svc.Clear(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("clear")
	h.writeView(w, http.StatusOK, view)
}

func (h *Handler) resolvePayload(w http.ResponseWriter, r *http.Request) (ConfigPayload, ProductRef, bool) {
	var payload ConfigPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return ConfigPayload{}, ProductRef{}, false
	}
	payload.ProductID = strings.TrimSpace(payload.ProductID)
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId is required and quantity must be positive", nil)
		return ConfigPayload{}, ProductRef{}, false
	}
	if h.Catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return ConfigPayload{}, ProductRef{}, false
	}
	ref, found, err := h.Catalog.GetForPricing(r.Context(), payload.ProductID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load product", nil)
		return ConfigPayload{}, ProductRef{}, false
	}
	if !found {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
		return ConfigPayload{}, ProductRef{}, false
	}
	return payload, ref, true
}

func (h *Handler) buildConfiguration(ctx context.Context, payload ConfigPayload, ref ProductRef) (pricing.Configuration, error) {
	cfg := payload.ToConfiguration(ref.BasePrice)
	if h.Features == nil {
		return cfg, nil
	}
	flags, err := h.Features.Enabled(ctx)
	if err != nil {
		// Toggles are advisory; an unreachable flag store must not block pricing.
		return cfg, nil
	}
	return ApplyFeatureFlags(cfg, flags), nil
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

func (h *Handler) writeView(w http.ResponseWriter, status int, view View) {
	items := view.Items
	if items == nil {
		items = []LineItem{}
	}
	common.JSON(w, status, map[string]any{
		"data": map[string]any{
			"id":       view.ID,
			"items":    items,
			"totals":   view.Totals,
			"currency": h.Currency,
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
}
