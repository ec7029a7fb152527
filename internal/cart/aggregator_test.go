package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cardkraft/backend-cards/internal/pricing"
)

func testConfig(qty int) pricing.Configuration {
	return pricing.Configuration{
		BasePrice:         decimal.NewFromInt(499),
		PaperWeight:       pricing.Weight600,
		CardSize:          pricing.SizeStandard,
		Quantity:          qty,
		Foil:              pricing.TierSingle,
		Emboss:            pricing.TierNone,
		EdgePaint:         pricing.TierNone,
		ElectroplateFront: pricing.MetalNone,
		ElectroplateBack:  pricing.MetalNone,
		PaperType:         pricing.PaperCotton,
	}
}

func newTestAggregator() *Aggregator {
	return NewAggregator(decimal.NewFromInt(100), 1800)
}

func TestAddItemMergePreservesOriginalUnitPrice(t *testing.T) {
	agg := newTestAggregator()
	first := NewLineItem("p1", "Classic", testConfig(100))
	second := NewLineItem("p1", "Classic", testConfig(150))
	agg.AddItem(first)
	agg.AddItem(second)

	items := agg.Items()
	if len(items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(items))
	}
	if items[0].Quantity != 250 {
		t.Fatalf("expected merged quantity 250, got %d", items[0].Quantity)
	}
	want := first.Breakdown.PerUnitPrice.Mul(decimal.NewFromInt(250))
	if !items[0].LineTotal.Equal(want) {
		t.Fatalf("expected line total %s from original per-unit price, got %s", want, items[0].LineTotal)
	}
	// A fresh 250-quantity breakdown differs because flat surcharges amortize
	// differently; the merge must not re-price.
	fresh := pricing.ComputeBreakdown(testConfig(250))
	if items[0].LineTotal.Equal(fresh.TotalPrice) && !want.Equal(fresh.TotalPrice) {
		t.Fatal("merge re-priced the combined quantity")
	}
}

func TestAddItemDifferentConfigurationsStaySeparate(t *testing.T) {
	agg := newTestAggregator()
	a := testConfig(100)
	b := testConfig(100)
	b.PaperType = pricing.PaperMohawk
	agg.AddItem(NewLineItem("p1", "Classic", a))
	agg.AddItem(NewLineItem("p1", "Classic", b))
	if agg.Len() != 2 {
		t.Fatalf("expected two lines, got %d", agg.Len())
	}
}

// Two configurations differing only in design service merge into one line and
// the incoming design selection is dropped. This pins the storefront's
// current behavior; changing the merge key needs product sign-off.
func TestAddItemMergeIgnoresDesignService(t *testing.T) {
	agg := newTestAggregator()
	plain := testConfig(100)
	withDesign := testConfig(100)
	withDesign.Design = pricing.DesignService{Requested: true, Kind: pricing.DesignExpert}

	agg.AddItem(NewLineItem("p1", "Classic", plain))
	agg.AddItem(NewLineItem("p1", "Classic", withDesign))

	items := agg.Items()
	if len(items) != 1 {
		t.Fatalf("expected design-only difference to merge, got %d lines", len(items))
	}
	if items[0].Config.Design.Requested {
		t.Fatal("merge should keep the existing line's design selection")
	}
}

func TestTotalsConsistency(t *testing.T) {
	agg := newTestAggregator()
	agg.AddItem(NewLineItem("p1", "Classic", testConfig(100)))
	agg.AddItem(NewLineItem("p2", "Premium", testConfig(250)))

	totals := agg.Totals()
	wantTax := totals.Subtotal.Mul(decimal.RequireFromString("0.18"))
	if !totals.Tax.Equal(wantTax) {
		t.Fatalf("expected tax %s, got %s", wantTax, totals.Tax)
	}
	wantTotal := totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)
	if !totals.Total.Equal(wantTotal) {
		t.Fatalf("expected total %s, got %s", wantTotal, totals.Total)
	}

	var sum decimal.Decimal
	for _, item := range agg.Items() {
		sum = sum.Add(item.LineTotal)
	}
	if !totals.Subtotal.Equal(sum) {
		t.Fatalf("subtotal %s does not match line sum %s", totals.Subtotal, sum)
	}
}

func TestUpdateQuantityUsesStoredPerUnitPrice(t *testing.T) {
	agg := newTestAggregator()
	item := NewLineItem("p1", "Classic", testConfig(100))
	agg.AddItem(item)
	totals := agg.UpdateQuantity("p1", 500)

	lines := agg.Items()
	want := item.Breakdown.PerUnitPrice.Mul(decimal.NewFromInt(500))
	if !lines[0].LineTotal.Equal(want) {
		t.Fatalf("expected line total %s, got %s", want, lines[0].LineTotal)
	}
	if !totals.Subtotal.Equal(want) {
		t.Fatalf("expected subtotal %s, got %s", want, totals.Subtotal)
	}
}

func TestRemoveItemUnknownIDIsNoOp(t *testing.T) {
	agg := newTestAggregator()
	agg.AddItem(NewLineItem("p1", "Classic", testConfig(100)))
	before := agg.Totals()
	after := agg.RemoveItem("missing")
	if agg.Len() != 1 || !after.Total.Equal(before.Total) {
		t.Fatal("removing an unknown product must not change the cart")
	}
}

func TestClearResetsTotalsToShipping(t *testing.T) {
	agg := newTestAggregator()
	agg.AddItem(NewLineItem("p1", "Classic", testConfig(100)))
	totals := agg.Clear()
	if !totals.Subtotal.IsZero() || !totals.Tax.IsZero() {
		t.Fatalf("expected zero subtotal and tax, got %s / %s", totals.Subtotal, totals.Tax)
	}
	if !totals.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total to equal flat shipping, got %s", totals.Total)
	}
	// Idempotent: clearing again changes nothing.
	again := agg.Clear()
	if !again.Total.Equal(totals.Total) || agg.Len() != 0 {
		t.Fatal("clear is not idempotent")
	}
}

func TestItemsPreserveInsertionOrder(t *testing.T) {
	agg := newTestAggregator()
	cfgA := testConfig(100)
	cfgB := testConfig(100)
	cfgB.CardSize = pricing.SizeUS
	cfgC := testConfig(100)
	cfgC.CardSize = pricing.SizeSquare
	agg.AddItem(NewLineItem("a", "A", cfgA))
	agg.AddItem(NewLineItem("b", "B", cfgB))
	agg.AddItem(NewLineItem("c", "C", cfgC))
	agg.RemoveItem("b")

	items := agg.Items()
	if len(items) != 2 || items[0].ProductID != "a" || items[1].ProductID != "c" {
		t.Fatalf("unexpected order after removal: %#v", items)
	}
}

func TestApplyFeatureFlagsStripsDisabledSelections(t *testing.T) {
	cfg := testConfig(100)
	cfg.ElectroplateFront = pricing.MetalGold
	cfg.Design = pricing.DesignService{Requested: true, Kind: pricing.DesignExpert}

	flags := map[string]bool{
		FeatureFoil:          false,
		FeatureElectroplate:  false,
		FeatureDesignService: false,
	}
	got := ApplyFeatureFlags(cfg, flags)
	if got.Foil != pricing.TierNone {
		t.Fatalf("expected foil stripped, got %s", got.Foil)
	}
	if got.ElectroplateFront != pricing.MetalNone {
		t.Fatalf("expected electroplating stripped, got %s", got.ElectroplateFront)
	}
	if got.Design.Requested {
		t.Fatal("expected design service stripped")
	}
	// Absent flags leave selections alone.
	if got.PaperType != pricing.PaperCotton {
		t.Fatalf("paper type should be untouched, got %s", got.PaperType)
	}
}
