package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cardkraft/backend-cards/internal/cart"
	"github.com/cardkraft/backend-cards/internal/checkout"
	"github.com/cardkraft/backend-cards/internal/common"
	"github.com/cardkraft/backend-cards/internal/events"
	"github.com/cardkraft/backend-cards/internal/order"
	"github.com/cardkraft/backend-cards/internal/pricing"
)

type stubCarts struct {
	views   map[string]cart.View
	cleared []string
}

func (s *stubCarts) Get(_ context.Context, id string) (cart.View, error) {
	view, ok := s.views[id]
	if !ok {
		return cart.View{}, cart.ErrNotFound
	}
	return view, nil
}

func (s *stubCarts) Clear(_ context.Context, id string) (cart.View, error) {
	s.cleared = append(s.cleared, id)
	view := s.views[id]
	view.Items = nil
	return view, nil
}

type stubOrders struct {
	created *order.Order
	err     error
}

func (s *stubOrders) Create(_ context.Context, o order.Order) (order.Order, error) {
	if s.err != nil {
		return order.Order{}, s.err
	}
	o.ID = "order-1"
	if o.Status == "" {
		o.Status = order.StatusReceived
	}
	s.created = &o
	return o, nil
}

type memoryEventStore struct {
	events []events.Event
}

func (m *memoryEventStore) Insert(_ context.Context, topic, aggregateID string, payload []byte) (events.Event, error) {
	ev := events.Event{ID: "ev-1", Topic: topic, AggregateID: aggregateID, Payload: payload}
	m.events = append(m.events, ev)
	return ev, nil
}

func cartWithItems(t *testing.T) cart.View {
	t.Helper()
	cfg := pricing.Configuration{
		BasePrice:   decimal.NewFromInt(499),
		PaperWeight: pricing.Weight600,
		CardSize:    pricing.SizeStandard,
		Quantity:    250,
		Foil:        pricing.TierSingle,
		PaperType:   pricing.PaperCotton,
	}
	agg := cart.NewAggregatorWithItems(decimal.NewFromInt(100), 1800, []cart.LineItem{
		cart.NewLineItem("p1", "Classic Card", cfg),
	})
	return cart.View{ID: "cart-1", Items: agg.Items(), Totals: agg.Totals()}
}

func validInput() checkout.Input {
	return checkout.Input{
		CartID: "cart-1",
		Address: checkout.Addr{
			ReceiverName: "Asha Rao",
			Phone:        "+91-9000000000",
			AddressLine1: "12 MG Road",
			City:         "Bengaluru",
			PostalCode:   "560001",
			Country:      "IN",
		},
	}
}

func TestCheckoutPlacesOrderFromCart(t *testing.T) {
	carts := &stubCarts{views: map[string]cart.View{"cart-1": cartWithItems(t)}}
	orders := &stubOrders{}
	store := &memoryEventStore{}
	svc := &checkout.Service{
		Carts:    carts,
		Orders:   orders,
		Events:   &events.Bus{Store: store},
		Currency: "INR",
	}

	out, err := svc.Create(context.Background(), nil, validInput())
	require.NoError(t, err)
	require.Equal(t, "order-1", out.OrderID)
	require.Equal(t, order.StatusReceived, out.Status)

	require.NotNil(t, orders.created)
	require.Len(t, orders.created.Items, 1)
	require.Equal(t, 250, orders.created.Items[0].Quantity)
	// The order freezes the cart's totals verbatim.
	require.True(t, orders.created.Total.Equal(out.Totals.Total))
	require.True(t, orders.created.Subtotal.Equal(out.Totals.Subtotal))

	require.Equal(t, []string{"cart-1"}, carts.cleared)
	require.Len(t, store.events, 1)
	require.Equal(t, events.TopicOrderCreated, store.events[0].Topic)
	require.Equal(t, "order-1", store.events[0].AggregateID)
}

func TestCheckoutAttachesUser(t *testing.T) {
	carts := &stubCarts{views: map[string]cart.View{"cart-1": cartWithItems(t)}}
	orders := &stubOrders{}
	svc := &checkout.Service{Carts: carts, Orders: orders, Currency: "INR"}

	user := "user-7"
	_, err := svc.Create(context.Background(), &user, validInput())
	require.NoError(t, err)
	require.NotNil(t, orders.created.UserID)
	require.Equal(t, "user-7", *orders.created.UserID)
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	empty := cart.View{ID: "cart-1"}
	carts := &stubCarts{views: map[string]cart.View{"cart-1": empty}}
	svc := &checkout.Service{Carts: carts, Orders: &stubOrders{}, Currency: "INR"}

	_, err := svc.Create(context.Background(), nil, validInput())
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
	require.Empty(t, carts.cleared)
}

func TestCheckoutUnknownCartIs404(t *testing.T) {
	svc := &checkout.Service{Carts: &stubCarts{}, Orders: &stubOrders{}, Currency: "INR"}
	_, err := svc.Create(context.Background(), nil, validInput())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCheckoutOrderFailureKeepsCart(t *testing.T) {
	carts := &stubCarts{views: map[string]cart.View{"cart-1": cartWithItems(t)}}
	svc := &checkout.Service{Carts: carts, Orders: &stubOrders{err: errors.New("db down")}, Currency: "INR"}

	_, err := svc.Create(context.Background(), nil, validInput())
	require.Error(t, err)
	require.Empty(t, carts.cleared, "cart must survive a failed order insert")
}
