package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/cardkraft/backend-cards/internal/cart"
)

const togglesKey = "features:toggles"

// KnownFeatures lists the customization features that can be toggled
// storefront-wide. Anything absent from the store counts as enabled.
func KnownFeatures() []string {
	return []string{
		cart.FeatureFoil,
		cart.FeatureEmboss,
		cart.FeatureEdgePaint,
		cart.FeatureElectroplate,
		cart.FeatureDesignService,
	}
}

// Toggles stores feature switches in a Redis hash. It satisfies the cart's
// FeatureSource so disabled finishes price as their free baseline.
type Toggles struct {
	R *redis.Client
}

// Enabled returns the current flag map. Missing features are simply absent.
func (t *Toggles) Enabled(ctx context.Context) (map[string]bool, error) {
	if t == nil || t.R == nil {
		return nil, errors.New("feature toggles not configured")
	}
	raw, err := t.R.HGetAll(ctx, togglesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load feature toggles: %w", err)
	}
	flags := make(map[string]bool, len(raw))
	for name, value := range raw {
		flags[name] = value == "1" || strings.EqualFold(value, "true")
	}
	return flags, nil
}

// Set flips one feature switch.
func (t *Toggles) Set(ctx context.Context, name string, enabled bool) error {
	if t == nil || t.R == nil {
		return errors.New("feature toggles not configured")
	}
	name = strings.TrimSpace(name)
	known := false
	for _, feature := range KnownFeatures() {
		if feature == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown feature %q", name)
	}
	value := "0"
	if enabled {
		value = "1"
	}
	if err := t.R.HSet(ctx, togglesKey, name, value).Err(); err != nil {
		return fmt.Errorf("set feature toggle: %w", err)
	}
	return nil
}
