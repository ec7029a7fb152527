package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Status values an order moves through. Print orders go straight into
// production once received; there is no payment gate in this service.
const (
	StatusReceived     = "RECEIVED"
	StatusInProduction = "IN_PRODUCTION"
	StatusShipped      = "SHIPPED"
	StatusDelivered    = "DELIVERED"
	StatusCanceled     = "CANCELED"
)

// Order is a placed print order with its frozen pricing.
type Order struct {
	ID              string          `json:"id"`
	UserID          *string         `json:"userId,omitempty"`
	CartID          string          `json:"cartId"`
	Status          string          `json:"status"`
	Currency        string          `json:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress json.RawMessage `json:"shippingAddress,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Items           []Item          `json:"items,omitempty"`
}

// Item is one configured line frozen at checkout time.
type Item struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Config      json.RawMessage `json:"config"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// AllowedTransition reports whether an order may move from one status to
// another. Cancelation is only possible before the cards ship.
func AllowedTransition(from, to string) bool {
	switch from {
	case StatusReceived:
		return to == StatusInProduction || to == StatusCanceled
	case StatusInProduction:
		return to == StatusShipped || to == StatusCanceled
	case StatusShipped:
		return to == StatusDelivered
	default:
		return false
	}
}
