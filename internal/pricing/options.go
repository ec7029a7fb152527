package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaperWeight is the card stock weight in GSM.
type PaperWeight int

const (
	Weight350 PaperWeight = 350
	Weight600 PaperWeight = 600
)

// Multiplier returns the unit-price multiplier for the paper weight.
// Anything other than 600 GSM prices as the 350 baseline.
func (w PaperWeight) Multiplier() decimal.Decimal {
	switch w {
	case Weight600:
		return decimal.RequireFromString("1.2")
	default:
		return decimal.NewFromInt(1)
	}
}

// CardSize is the physical card format.
type CardSize string

const (
	SizeStandard CardSize = "standard"
	SizeUS       CardSize = "us"
	SizeSquare   CardSize = "square"
)

// Multiplier returns the unit-price multiplier for the card size.
func (s CardSize) Multiplier() decimal.Decimal {
	switch s {
	case SizeUS:
		return decimal.RequireFromString("1.05")
	case SizeSquare:
		return decimal.RequireFromString("1.2")
	default:
		return decimal.NewFromInt(1)
	}
}

// TreatmentTier selects how many sides of the card a finishing treatment covers.
type TreatmentTier string

const (
	TierNone   TreatmentTier = "none"
	TierSingle TreatmentTier = "single"
	TierBoth   TreatmentTier = "both"
)

// Metal is an electroplating finish for one side of the card.
type Metal string

const (
	MetalNone     Metal = "none"
	MetalGold     Metal = "gold"
	MetalSilver   Metal = "silver"
	MetalCopper   Metal = "copper"
	MetalRoseGold Metal = "rose-gold"
)

// PaperType is the card stock material. Matt is the free baseline.
type PaperType string

const (
	PaperMatt      PaperType = "matt"
	PaperSoftSuede PaperType = "soft-suede"
	PaperMohawk    PaperType = "mohawk"
	PaperKeycolor  PaperType = "keycolor"
	PaperCotton    PaperType = "cotton"
)

// DesignKind distinguishes a customer upload from the paid expert design service.
type DesignKind string

const (
	DesignUpload DesignKind = "upload"
	DesignExpert DesignKind = "expert"
)

// DesignService captures whether the customer asked for design help and which kind.
type DesignService struct {
	Requested bool       `json:"requested"`
	Kind      DesignKind `json:"kind"`
}

// ParsePaperWeight maps a GSM value onto a known weight, falling back to 350.
func ParsePaperWeight(gsm int) PaperWeight {
	if PaperWeight(gsm) == Weight600 {
		return Weight600
	}
	return Weight350
}

// ParseCardSize normalises a size string, falling back to standard.
func ParseCardSize(value string) CardSize {
	switch CardSize(strings.ToLower(strings.TrimSpace(value))) {
	case SizeUS:
		return SizeUS
	case SizeSquare:
		return SizeSquare
	default:
		return SizeStandard
	}
}

// ParseTreatmentTier normalises a tier string, falling back to none.
func ParseTreatmentTier(value string) TreatmentTier {
	switch TreatmentTier(strings.ToLower(strings.TrimSpace(value))) {
	case TierSingle:
		return TierSingle
	case TierBoth:
		return TierBoth
	default:
		return TierNone
	}
}

// ParseMetal normalises an electroplating metal string, falling back to none.
func ParseMetal(value string) Metal {
	switch Metal(strings.ToLower(strings.TrimSpace(value))) {
	case MetalGold:
		return MetalGold
	case MetalSilver:
		return MetalSilver
	case MetalCopper:
		return MetalCopper
	case MetalRoseGold:
		return MetalRoseGold
	default:
		return MetalNone
	}
}

// ParsePaperType normalises a paper type string, falling back to matt.
func ParsePaperType(value string) PaperType {
	switch PaperType(strings.ToLower(strings.TrimSpace(value))) {
	case PaperSoftSuede:
		return PaperSoftSuede
	case PaperMohawk:
		return PaperMohawk
	case PaperKeycolor:
		return PaperKeycolor
	case PaperCotton:
		return PaperCotton
	default:
		return PaperMatt
	}
}

// ParseDesignKind normalises a design kind string, falling back to upload.
func ParseDesignKind(value string) DesignKind {
	if DesignKind(strings.ToLower(strings.TrimSpace(value))) == DesignExpert {
		return DesignExpert
	}
	return DesignUpload
}

// QuantityTiers returns the discrete print-run sizes the catalog offers.
// Other quantities still price, they are just not guaranteed tiers.
func QuantityTiers() []int {
	return []int{100, 250, 500, 750, 1000, 2000, 5000}
}

// IsSupportedQuantity reports whether qty is one of the offered print-run tiers.
func IsSupportedQuantity(qty int) bool {
	for _, tier := range QuantityTiers() {
		if qty == tier {
			return true
		}
	}
	return false
}
