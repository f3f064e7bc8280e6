package sizing

import (
	"fmt"
	"math"

	"atr-trader/internal/types"
)

// Config holds the sizing limits.
type Config struct {
	RiskPerTrade           float64 // fraction of equity risked per trade
	MaxExposurePct         float64
	MaxValuePerTrade       float64 // 0 disables the cap
	BuyingPowerUsageFactor float64
	AllowMultiplePositions bool
	ScaleInMultiplier      float64
}

// Inputs is everything the sizing computation reads.
type Inputs struct {
	Equity               float64
	CurrentPrice         float64
	RiskAmount           float64 // per-share risk, the current ATR
	CurrentPositionValue float64 // signed
	CurrentQty           int
	BuyingPower          float64 // <= 0 means unknown, cap disabled
}

// Calculate computes the order quantity as the minimum across four
// independently derived caps, one per risk dimension. A result below one
// share tells the caller to skip the trade this cycle; it is never an error.
//
// RiskAmount must be validated positive before calling; a zero or negative
// risk amount here is a broken invariant and panics, as do non-finite inputs.
func Calculate(in Inputs, cfg Config) types.PositionSizing {
	mustBeFinite("equity", in.Equity)
	mustBeFinite("current price", in.CurrentPrice)
	mustBeFinite("risk amount", in.RiskAmount)
	mustBeFinite("position value", in.CurrentPositionValue)
	if in.RiskAmount <= 0 {
		panic(fmt.Sprintf("sizing: non-positive risk amount %v", in.RiskAmount))
	}
	if in.CurrentPrice <= 0 {
		panic(fmt.Sprintf("sizing: non-positive price %v", in.CurrentPrice))
	}

	multiplier := 1.0
	if in.CurrentQty != 0 && cfg.AllowMultiplePositions {
		multiplier = cfg.ScaleInMultiplier
	}

	riskQty := int(math.Floor(in.Equity * cfg.RiskPerTrade * multiplier / in.RiskAmount))

	headroom := in.Equity*cfg.MaxExposurePct/100 - math.Abs(in.CurrentPositionValue)
	if headroom < 0 {
		headroom = 0
	}
	exposureQty := int(math.Floor(headroom / in.CurrentPrice))

	maxValueQty := math.MaxInt
	if cfg.MaxValuePerTrade > 0 {
		maxValueQty = int(math.Floor(cfg.MaxValuePerTrade / in.CurrentPrice))
	}

	buyingPowerQty := math.MaxInt
	if in.BuyingPower > 0 {
		buyingPowerQty = int(math.Floor(in.BuyingPower * cfg.BuyingPowerUsageFactor / in.CurrentPrice))
	}

	qty := riskQty
	for _, c := range []int{exposureQty, maxValueQty, buyingPowerQty} {
		if c < qty {
			qty = c
		}
	}

	return types.PositionSizing{
		Quantity:       qty,
		RiskAmount:     in.RiskAmount,
		SizeMultiplier: multiplier,
		RiskBasedQty:   riskQty,
		ExposureQty:    exposureQty,
		MaxValueQty:    maxValueQty,
		BuyingPowerQty: buyingPowerQty,
	}
}

func mustBeFinite(name string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("sizing: non-finite %s: %v", name, v))
	}
}
