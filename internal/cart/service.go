package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// View is the API-facing shape of a session cart.
type View struct {
	ID     string     `json:"id"`
	Items  []LineItem `json:"items"`
	Totals Totals     `json:"totals"`
}

// Service loads session carts from the store, applies mutations through an
// Aggregator, and writes snapshots back. Mutations respond from the in-memory
// aggregator; the snapshot write is fire-and-forget, so a slow or failed
// Redis write never delays or changes what the customer sees.
type Service struct {
	Store          *Store
	ShippingFlat   decimal.Decimal
	TaxRateBps     int64
	Logger         *zerolog.Logger
	PersistTimeout time.Duration
}

func (s *Service) persistTimeout() time.Duration {
	if s == nil || s.PersistTimeout <= 0 {
		return 3 * time.Second
	}
	return s.PersistTimeout
}

// Create allocates a new empty cart and stores it synchronously so the id is
// resolvable on the next request.
func (s *Service) Create(ctx context.Context) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	id := uuid.NewString()
	if err := s.Store.Save(ctx, id, nil); err != nil {
		return View{}, err
	}
	agg := NewAggregator(s.ShippingFlat, s.TaxRateBps)
	return s.view(id, agg), nil
}

// Get returns the current cart contents and derived totals.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	agg, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(id, agg), nil
}

// AddItem merges or appends a priced line item and returns the new totals.
func (s *Service) AddItem(ctx context.Context, id string, item LineItem) (View, error) {
	agg, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	agg.AddItem(item)
	s.persistAsync(id, agg.Items())
	return s.view(id, agg), nil
}

// UpdateQuantity sets the quantity on lines matching the product id.
// Callers validate the quantity; the aggregator does not.
func (s *Service) UpdateQuantity(ctx context.Context, id, productID string, quantity int) (View, error) {
	agg, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	agg.UpdateQuantity(productID, quantity)
	s.persistAsync(id, agg.Items())
	return s.view(id, agg), nil
}

// RemoveItem drops lines matching the product id. Unknown ids are a no-op.
func (s *Service) RemoveItem(ctx context.Context, id, productID string) (View, error) {
	agg, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	agg.RemoveItem(productID)
	s.persistAsync(id, agg.Items())
	return s.view(id, agg), nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, id string) (View, error) {
	agg, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	agg.Clear()
	s.persistAsync(id, agg.Items())
	return s.view(id, agg), nil
}

func (s *Service) load(ctx context.Context, id string) (*Aggregator, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("cart service not configured")
	}
	items, ok, err := s.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return NewAggregatorWithItems(s.ShippingFlat, s.TaxRateBps, items), nil
}

func (s *Service) view(id string, agg *Aggregator) View {
	return View{ID: id, Items: agg.Items(), Totals: agg.Totals()}
}

func (s *Service) persistAsync(id string, items []LineItem) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout())
		defer cancel()
		if err := s.Store.Save(ctx, id, items); err != nil && s.Logger != nil {
			s.Logger.Error().Err(err).Str("cart_id", id).Msg("persist cart snapshot")
		}
	}()
}
