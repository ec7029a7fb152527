package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshot is the serialized form of a session cart kept in Redis.
type snapshot struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Store persists session cart snapshots in Redis keyed by cart id. The
// in-memory aggregator remains authoritative for responses; the snapshot is
// only what survives between requests.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func cartKey(id string) string {
	return "cart:" + id
}

// Load fetches the stored lines for a cart. The second return reports whether
// the cart exists.
func (s *Store) Load(ctx context.Context, id string) ([]LineItem, bool, error) {
	if s == nil || s.R == nil {
		return nil, false, errors.New("cart store not configured")
	}
	data, err := s.R.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load cart %s: %w", id, err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return snap.Items, true, nil
}

// Save writes the cart snapshot and refreshes its TTL.
func (s *Store) Save(ctx context.Context, id string, items []LineItem) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	data, err := json.Marshal(snapshot{ID: id, Items: items, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", id, err)
	}
	if err := s.R.Set(ctx, cartKey(id), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", id, err)
	}
	return nil
}

// Delete removes the cart snapshot entirely.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	return s.R.Del(ctx, cartKey(id)).Err()
}

// CountCarts scans for live cart snapshots. Used by the admin dashboard, so
// an approximate (mid-scan) count is acceptable.
func (s *Store) CountCarts(ctx context.Context) (int64, error) {
	if s == nil || s.R == nil {
		return 0, errors.New("cart store not configured")
	}
	var count int64
	iter := s.R.Scan(ctx, 0, cartKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan carts: %w", err)
	}
	return count, nil
}
