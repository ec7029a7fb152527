package pricing

import "github.com/shopspring/decimal"

// Configuration is one customer-selected card customization ready for pricing.
type Configuration struct {
	BasePrice         decimal.Decimal `json:"basePrice"`
	PaperWeight       PaperWeight     `json:"paperWeight"`
	CardSize          CardSize        `json:"cardSize"`
	Quantity          int             `json:"quantity"`
	Foil              TreatmentTier   `json:"foil"`
	Emboss            TreatmentTier   `json:"emboss"`
	EdgePaint         TreatmentTier   `json:"edgePaint"`
	ElectroplateFront Metal           `json:"electroplateFront"`
	ElectroplateBack  Metal           `json:"electroplateBack"`
	PaperType         PaperType       `json:"paperType"`
	Design            DesignService   `json:"design"`
}

// Breakdown is the fully itemized price for one configuration.
type Breakdown struct {
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	BaseSubtotal decimal.Decimal `json:"baseSubtotal"`
	AddOnTotal   decimal.Decimal `json:"addOnTotal"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	PerUnitPrice decimal.Decimal `json:"perUnitPrice"`
}

// Flat surcharges. Treatments are priced as production setup charges applied
// once per configured line item, never per card. Do not scale these with
// quantity.
var (
	foilSingle     = decimal.NewFromInt(500)
	foilBoth       = decimal.NewFromInt(900)
	embossSingle   = decimal.NewFromInt(400)
	embossBoth     = decimal.NewFromInt(750)
	edgePaintPrice = decimal.NewFromInt(450)
	platePerSide   = decimal.NewFromInt(600)
	expertDesign   = decimal.NewFromInt(500)
	paperSurcharge = map[PaperType]decimal.Decimal{
		PaperSoftSuede: decimal.NewFromInt(100),
		PaperMohawk:    decimal.NewFromInt(150),
		PaperKeycolor:  decimal.NewFromInt(250),
		PaperCotton:    decimal.NewFromInt(300),
	}
)

// ComputeBreakdown prices a configuration. Pure computation, no I/O.
//
// Unrecognized enum variants price as their free baseline rather than failing;
// the option types resolve them through their default switch arms. The caller
// is responsible for rejecting nonsensical numeric input (quantity <= 0,
// negative base price) before calling.
func ComputeBreakdown(cfg Configuration) Breakdown {
	unit := cfg.BasePrice.
		Mul(cfg.PaperWeight.Multiplier()).
		Mul(cfg.CardSize.Multiplier())

	qty := decimal.NewFromInt(int64(cfg.Quantity))
	base := unit.Mul(qty)

	addOn := foilPrice(cfg.Foil).
		Add(embossPrice(cfg.Emboss)).
		Add(edgePaint(cfg.EdgePaint)).
		Add(platePrice(cfg.ElectroplateFront)).
		Add(platePrice(cfg.ElectroplateBack)).
		Add(paperPrice(cfg.PaperType)).
		Add(designPrice(cfg.Design))

	total := base.Add(addOn)

	per := decimal.Zero
	if cfg.Quantity > 0 {
		per = total.Div(qty)
	}

	return Breakdown{
		UnitPrice:    unit,
		BaseSubtotal: base,
		AddOnTotal:   addOn,
		TotalPrice:   total,
		PerUnitPrice: per,
	}
}

func foilPrice(tier TreatmentTier) decimal.Decimal {
	switch tier {
	case TierSingle:
		return foilSingle
	case TierBoth:
		return foilBoth
	default:
		return decimal.Zero
	}
}

func embossPrice(tier TreatmentTier) decimal.Decimal {
	switch tier {
	case TierSingle:
		return embossSingle
	case TierBoth:
		return embossBoth
	default:
		return decimal.Zero
	}
}

// edgePaint has no "both" tier in the catalog; anything other than single,
// including "both", prices as none.
func edgePaint(tier TreatmentTier) decimal.Decimal {
	if tier == TierSingle {
		return edgePaintPrice
	}
	return decimal.Zero
}

// platePrice is flat per side; all metals share one price.
func platePrice(metal Metal) decimal.Decimal {
	switch metal {
	case MetalGold, MetalSilver, MetalCopper, MetalRoseGold:
		return platePerSide
	default:
		return decimal.Zero
	}
}

func paperPrice(paper PaperType) decimal.Decimal {
	if price, ok := paperSurcharge[paper]; ok {
		return price
	}
	return decimal.Zero
}

// designPrice charges only for the expert service; uploads are free.
func designPrice(d DesignService) decimal.Decimal {
	if d.Requested && d.Kind == DesignExpert {
		return expertDesign
	}
	return decimal.Zero
}
