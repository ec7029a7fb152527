package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardkraft/backend-cards/internal/cart"
	"github.com/cardkraft/backend-cards/internal/common"
	"github.com/cardkraft/backend-cards/internal/events"
	"github.com/cardkraft/backend-cards/internal/lock"
	"github.com/cardkraft/backend-cards/internal/obs"
	"github.com/cardkraft/backend-cards/internal/order"
)

// Addr is the delivery address captured at checkout.
type Addr struct {
	ReceiverName string `json:"receiverName" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Country      string `json:"country"`
}

// Input is the checkout request payload.
type Input struct {
	CartID  string  `json:"cartId" validate:"required"`
	Address Addr    `json:"address" validate:"required"`
	Notes   *string `json:"notes"`
}

// Output is returned once the order is placed.
type Output struct {
	OrderID  string      `json:"orderId"`
	Status   string      `json:"status"`
	Totals   cart.Totals `json:"totals"`
	Currency string      `json:"currency"`
}

type cartProvider interface {
	Get(ctx context.Context, id string) (cart.View, error)
	Clear(ctx context.Context, id string) (cart.View, error)
}

type orderCreator interface {
	Create(ctx context.Context, o order.Order) (order.Order, error)
}

// Service turns a session cart into a placed order. The order freezes the
// cart's prices; later catalog changes never reprice a placed order.
type Service struct {
	Carts    cartProvider
	Orders   orderCreator
	Events   *events.Bus
	Currency string
	Logger   *zerolog.Logger

	// Lock serialises checkouts for the same cart. Idempotency keys dedupe
	// replays of one request; the lock covers two distinct requests racing
	// on one cart. Optional.
	Lock *lock.Locker
}

// Create places an order from the cart's current contents and clears the cart.
func (s *Service) Create(ctx context.Context, userID *string, in Input) (Output, error) {
	if s == nil || s.Carts == nil || s.Orders == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if s.Lock != nil {
		var out Output
		err := s.Lock.WithLock(ctx, "checkout:cart:"+in.CartID, 30*time.Second, func(ctx context.Context) error {
			var err error
			out, err = s.create(ctx, userID, in)
			return err
		})
		return out, err
	}
	return s.create(ctx, userID, in)
}

func (s *Service) create(ctx context.Context, userID *string, in Input) (Output, error) {
	view, err := s.Carts.Get(ctx, in.CartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return Output{}, common.NotFound("cart not found")
		}
		return Output{}, fmt.Errorf("load cart: %w", err)
	}
	if len(view.Items) == 0 {
		return Output{}, common.BadRequest("cart is empty")
	}

	address, err := json.Marshal(in.Address)
	if err != nil {
		return Output{}, fmt.Errorf("encode address: %w", err)
	}
	items := make([]order.Item, 0, len(view.Items))
	for _, line := range view.Items {
		cfg, err := json.Marshal(line.Config)
		if err != nil {
			return Output{}, fmt.Errorf("encode line config: %w", err)
		}
		items = append(items, order.Item{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Config:      cfg,
			UnitPrice:   line.Breakdown.PerUnitPrice,
			LineTotal:   line.LineTotal,
		})
	}

	ord, err := s.Orders.Create(ctx, order.Order{
		UserID:          userID,
		CartID:          in.CartID,
		Status:          order.StatusReceived,
		Currency:        s.Currency,
		Subtotal:        view.Totals.Subtotal,
		Shipping:        view.Totals.Shipping,
		Tax:             view.Totals.Tax,
		Total:           view.Totals.Total,
		ShippingAddress: address,
		Notes:           in.Notes,
		Items:           items,
	})
	if err != nil {
		return Output{}, fmt.Errorf("create order: %w", err)
	}
	obs.IncOrderPlaced()

	// The order is committed; a failed cart clear only leaves a stale cart
	// behind, so it is logged and not surfaced.
	if _, err := s.Carts.Clear(ctx, in.CartID); err != nil && s.Logger != nil {
		s.Logger.Error().Err(err).Str("cart_id", in.CartID).Str("order_id", ord.ID).Msg("clear cart after checkout")
	}

	if s.Events != nil {
		payload := map[string]any{
			"orderId": ord.ID,
			"cartId":  in.CartID,
			"total":   ord.Total.String(),
		}
		if userID != nil && *userID != "" {
			payload["userId"] = *userID
		}
		if _, err := s.Events.Emit(ctx, events.TopicOrderCreated, ord.ID, payload); err != nil && s.Logger != nil {
			s.Logger.Error().Err(err).Str("order_id", ord.ID).Msg("emit order created")
		}
	}

	return Output{
		OrderID:  ord.ID,
		Status:   ord.Status,
		Totals:   view.Totals,
		Currency: s.Currency,
	}, nil
}
