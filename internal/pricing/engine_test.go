package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func baselineConfig(basePrice string, qty int) Configuration {
	return Configuration{
		BasePrice:         decimal.RequireFromString(basePrice),
		PaperWeight:       Weight350,
		CardSize:          SizeStandard,
		Quantity:          qty,
		Foil:              TierNone,
		Emboss:            TierNone,
		EdgePaint:         TierNone,
		ElectroplateFront: MetalNone,
		ElectroplateBack:  MetalNone,
		PaperType:         PaperMatt,
	}
}

func TestComputeBreakdownDeterministic(t *testing.T) {
	cfg := baselineConfig("499", 250)
	cfg.Foil = TierBoth
	cfg.PaperType = PaperCotton
	first := ComputeBreakdown(cfg)
	for i := 0; i < 10; i++ {
		again := ComputeBreakdown(cfg)
		if !again.TotalPrice.Equal(first.TotalPrice) || !again.PerUnitPrice.Equal(first.PerUnitPrice) {
			t.Fatalf("breakdown changed between calls: %v vs %v", again, first)
		}
	}
}

func TestComputeBreakdownBaselineHasNoAddOns(t *testing.T) {
	b := ComputeBreakdown(baselineConfig("100", 500))
	if !b.AddOnTotal.IsZero() {
		t.Fatalf("expected zero add-on total, got %s", b.AddOnTotal)
	}
	want := b.UnitPrice.Mul(decimal.NewFromInt(500))
	if !b.TotalPrice.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, b.TotalPrice)
	}
}

func TestComputeBreakdownMultiplierComposition(t *testing.T) {
	cfg := baselineConfig("100", 100)
	cfg.PaperWeight = Weight600
	cfg.CardSize = SizeSquare
	b := ComputeBreakdown(cfg)
	if !b.UnitPrice.Equal(decimal.NewFromInt(144)) {
		t.Fatalf("expected unit price 144, got %s", b.UnitPrice)
	}
	if !b.BaseSubtotal.Equal(decimal.NewFromInt(14400)) {
		t.Fatalf("expected base subtotal 14400, got %s", b.BaseSubtotal)
	}
}

func TestComputeBreakdownFlatSurchargesIgnoreQuantity(t *testing.T) {
	for _, qty := range QuantityTiers() {
		plain := ComputeBreakdown(baselineConfig("250", qty))
		treated := baselineConfig("250", qty)
		treated.Foil = TierBoth
		treated.Emboss = TierSingle
		withAddOns := ComputeBreakdown(treated)
		delta := withAddOns.TotalPrice.Sub(plain.TotalPrice)
		if !delta.Equal(decimal.NewFromInt(1300)) {
			t.Fatalf("qty %d: expected surcharge delta 1300, got %s", qty, delta)
		}
	}
}

func TestComputeBreakdownPerUnitDerivation(t *testing.T) {
	cfg := baselineConfig("499", 250)
	cfg.Foil = TierSingle
	cfg.EdgePaint = TierSingle
	b := ComputeBreakdown(cfg)
	want := b.TotalPrice.Div(decimal.NewFromInt(250))
	if !b.PerUnitPrice.Equal(want) {
		t.Fatalf("expected per-unit %s, got %s", want, b.PerUnitPrice)
	}
}

func TestComputeBreakdownEndToEnd(t *testing.T) {
	cfg := baselineConfig("499", 250)
	cfg.PaperWeight = Weight600
	cfg.Foil = TierSingle
	cfg.PaperType = PaperCotton
	b := ComputeBreakdown(cfg)

	if !b.UnitPrice.Equal(decimal.RequireFromString("598.8")) {
		t.Fatalf("expected unit price 598.8, got %s", b.UnitPrice)
	}
	if !b.BaseSubtotal.Equal(decimal.NewFromInt(149700)) {
		t.Fatalf("expected base subtotal 149700, got %s", b.BaseSubtotal)
	}
	if !b.AddOnTotal.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected add-on total 800, got %s", b.AddOnTotal)
	}
	if !b.TotalPrice.Equal(decimal.NewFromInt(150500)) {
		t.Fatalf("expected total 150500, got %s", b.TotalPrice)
	}
	if !b.PerUnitPrice.Equal(decimal.NewFromInt(602)) {
		t.Fatalf("expected per-unit 602, got %s", b.PerUnitPrice)
	}
}

func TestComputeBreakdownElectroplatingPerSide(t *testing.T) {
	cfg := baselineConfig("100", 100)
	cfg.ElectroplateFront = MetalGold
	cfg.ElectroplateBack = MetalRoseGold
	b := ComputeBreakdown(cfg)
	if !b.AddOnTotal.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected 600 per plated side, got %s", b.AddOnTotal)
	}
}

func TestComputeBreakdownDesignServiceOnlyChargesExpert(t *testing.T) {
	upload := baselineConfig("100", 100)
	upload.Design = DesignService{Requested: true, Kind: DesignUpload}
	if b := ComputeBreakdown(upload); !b.AddOnTotal.IsZero() {
		t.Fatalf("upload design should be free, got %s", b.AddOnTotal)
	}

	notRequested := baselineConfig("100", 100)
	notRequested.Design = DesignService{Requested: false, Kind: DesignExpert}
	if b := ComputeBreakdown(notRequested); !b.AddOnTotal.IsZero() {
		t.Fatalf("unrequested design should be free, got %s", b.AddOnTotal)
	}

	expert := baselineConfig("100", 100)
	expert.Design = DesignService{Requested: true, Kind: DesignExpert}
	if b := ComputeBreakdown(expert); !b.AddOnTotal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected expert design surcharge 500, got %s", b.AddOnTotal)
	}
}

// Unknown variants must price as baseline, not error.
func TestComputeBreakdownUnknownVariantsFallBack(t *testing.T) {
	cfg := baselineConfig("100", 100)
	cfg.PaperWeight = PaperWeight(425)
	cfg.CardSize = CardSize("a4")
	cfg.Foil = TreatmentTier("triple")
	cfg.ElectroplateFront = Metal("chrome")
	cfg.PaperType = PaperType("vellum")
	b := ComputeBreakdown(cfg)
	if !b.UnitPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected baseline unit price 100, got %s", b.UnitPrice)
	}
	if !b.AddOnTotal.IsZero() {
		t.Fatalf("expected zero add-ons for unknown variants, got %s", b.AddOnTotal)
	}
}

// Edge paint has no "both" tier; it falls back to the free baseline.
func TestComputeBreakdownEdgePaintHasNoBothTier(t *testing.T) {
	cfg := baselineConfig("100", 100)
	cfg.EdgePaint = TierBoth
	if b := ComputeBreakdown(cfg); !b.AddOnTotal.IsZero() {
		t.Fatalf("edge paint 'both' should price as none, got %s", b.AddOnTotal)
	}
}

func TestParseOptionFallbacks(t *testing.T) {
	if got := ParsePaperWeight(425); got != Weight350 {
		t.Fatalf("expected 350 fallback, got %d", got)
	}
	if got := ParseCardSize(" US "); got != SizeUS {
		t.Fatalf("expected us, got %s", got)
	}
	if got := ParseTreatmentTier("triple"); got != TierNone {
		t.Fatalf("expected none fallback, got %s", got)
	}
	if got := ParseMetal("Rose-Gold"); got != MetalRoseGold {
		t.Fatalf("expected rose-gold, got %s", got)
	}
	if got := ParsePaperType("vellum"); got != PaperMatt {
		t.Fatalf("expected matt fallback, got %s", got)
	}
	if !IsSupportedQuantity(750) || IsSupportedQuantity(751) {
		t.Fatal("quantity tier membership incorrect")
	}
}
