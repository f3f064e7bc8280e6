package engine

import (
	"atr-trader/internal/types"
)

// ExitConfig controls how the bracket exit legs are derived from entry price
// and per-share risk.
type ExitConfig struct {
	RRRatio        float64
	PriceBufferPct float64 // percentage of entry price
	MinPriceBuffer float64 // absolute clamp, price units
	MaxPriceBuffer float64
}

// computeExits derives the stop-loss and take-profit prices for a bracket
// order. The protective stop distance is the larger of the ATR-derived risk
// amount and a dynamic price buffer (percentage of entry, clamped to the
// configured bounds) that guards against stale-quote broker rejections. The
// take-profit keeps the configured reward:risk ratio against the actual stop
// distance.
func computeExits(side types.Side, entry, riskAmount float64, cfg ExitConfig) (takeProfit, stopLoss float64) {
	buffer := entry * cfg.PriceBufferPct / 100
	if buffer < cfg.MinPriceBuffer {
		buffer = cfg.MinPriceBuffer
	}
	if buffer > cfg.MaxPriceBuffer {
		buffer = cfg.MaxPriceBuffer
	}

	stopDist := riskAmount
	if buffer > stopDist {
		stopDist = buffer
	}
	profitDist := stopDist * cfg.RRRatio

	if side == types.SideBuy {
		return entry + profitDist, entry - stopDist
	}
	return entry - profitDist, entry + stopDist
}
