package cart

import (
	"github.com/shopspring/decimal"

	"github.com/cardkraft/backend-cards/internal/pricing"
)

// LineItem is one configured product entry in the cart. Quantity and LineTotal
// mutate on merge and quantity updates; Breakdown stays as computed when the
// item was first priced, so merged lines keep their original per-unit price.
type LineItem struct {
	ProductID   string                `json:"productId"`
	ProductName string                `json:"productName"`
	Quantity    int                   `json:"quantity"`
	Config      pricing.Configuration `json:"config"`
	Breakdown   pricing.Breakdown     `json:"breakdown"`
	LineTotal   decimal.Decimal       `json:"lineTotal"`
}

// NewLineItem prices a configuration and wraps it as a cart line.
func NewLineItem(productID, productName string, cfg pricing.Configuration) LineItem {
	breakdown := pricing.ComputeBreakdown(cfg)
	return LineItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    cfg.Quantity,
		Config:      cfg,
		Breakdown:   breakdown,
		LineTotal:   breakdown.TotalPrice,
	}
}

// Totals are the order-level figures derived from the current line items.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Aggregator owns the line items for one session cart and derives order
// totals after every mutation. It is an explicit instance passed around by
// the caller; there is no shared global cart. Single writer, not safe for
// concurrent use.
type Aggregator struct {
	shipping decimal.Decimal
	taxBps   int64
	items    []LineItem
	totals   Totals
}

// NewAggregator builds an empty aggregator with the given flat shipping fee
// and tax rate in basis points.
func NewAggregator(shippingFlat decimal.Decimal, taxRateBps int64) *Aggregator {
	return NewAggregatorWithItems(shippingFlat, taxRateBps, nil)
}

// NewAggregatorWithItems restores an aggregator from previously stored lines.
func NewAggregatorWithItems(shippingFlat decimal.Decimal, taxRateBps int64, items []LineItem) *Aggregator {
	a := &Aggregator{
		shipping: shippingFlat,
		taxBps:   taxRateBps,
		items:    append([]LineItem(nil), items...),
	}
	a.recompute()
	return a
}

// mergeKey identifies configurations that collapse into one line item.
// The design service selection is intentionally absent: two configurations
// differing only in design service merge into one line and the incoming
// design selection is discarded. That matches the storefront's observed
// behavior and is pinned by a test rather than changed here.
type mergeKey struct {
	ProductID         string
	PaperWeight       pricing.PaperWeight
	CardSize          pricing.CardSize
	Foil              pricing.TreatmentTier
	Emboss            pricing.TreatmentTier
	EdgePaint         pricing.TreatmentTier
	ElectroplateFront pricing.Metal
	ElectroplateBack  pricing.Metal
	PaperType         pricing.PaperType
}

func keyOf(item LineItem) mergeKey {
	return mergeKey{
		ProductID:         item.ProductID,
		PaperWeight:       item.Config.PaperWeight,
		CardSize:          item.Config.CardSize,
		Foil:              item.Config.Foil,
		Emboss:            item.Config.Emboss,
		EdgePaint:         item.Config.EdgePaint,
		ElectroplateFront: item.Config.ElectroplateFront,
		ElectroplateBack:  item.Config.ElectroplateBack,
		PaperType:         item.Config.PaperType,
	}
}

// AddItem merges the incoming line into an existing one with the same
// configuration or appends it, preserving insertion order. A merge adds
// quantities and re-derives the line total from the original per-unit price;
// it never re-prices the combined quantity as a fresh breakdown.
func (a *Aggregator) AddItem(item LineItem) Totals {
	key := keyOf(item)
	for i := range a.items {
		if keyOf(a.items[i]) != key {
			continue
		}
		existing := &a.items[i]
		existing.Quantity += item.Quantity
		existing.Config.Quantity = existing.Quantity
		existing.LineTotal = existing.Breakdown.PerUnitPrice.Mul(decimal.NewFromInt(int64(existing.Quantity)))
		return a.recompute()
	}
	a.items = append(a.items, item)
	return a.recompute()
}

// RemoveItem drops every line matching the product id. Missing ids are a
// no-op, not an error.
func (a *Aggregator) RemoveItem(productID string) Totals {
	kept := a.items[:0]
	for _, item := range a.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	a.items = kept
	return a.recompute()
}

// UpdateQuantity sets the quantity on every line matching the product id and
// re-derives each line total from its stored per-unit price. The quantity is
// not validated here; callers guard against zero or negative values.
func (a *Aggregator) UpdateQuantity(productID string, quantity int) Totals {
	for i := range a.items {
		if a.items[i].ProductID != productID {
			continue
		}
		item := &a.items[i]
		item.Quantity = quantity
		item.Config.Quantity = quantity
		item.LineTotal = item.Breakdown.PerUnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	}
	return a.recompute()
}

// Clear empties the cart.
func (a *Aggregator) Clear() Totals {
	a.items = nil
	return a.recompute()
}

// Items returns a copy of the current lines in insertion order.
func (a *Aggregator) Items() []LineItem {
	return append([]LineItem(nil), a.items...)
}

// Totals returns the current derived totals. They are always consistent with
// the line items; every mutator recomputes before returning.
func (a *Aggregator) Totals() Totals {
	return a.totals
}

// Len reports the number of line items.
func (a *Aggregator) Len() int {
	return len(a.items)
}

func (a *Aggregator) recompute() Totals {
	subtotal := decimal.Zero
	for _, item := range a.items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	tax := subtotal.Mul(decimal.NewFromInt(a.taxBps)).Div(decimal.NewFromInt(10000))
	a.totals = Totals{
		Subtotal: subtotal,
		Shipping: a.shipping,
		Tax:      tax,
		Total:    subtotal.Add(a.shipping).Add(tax),
	}
	return a.totals
}
