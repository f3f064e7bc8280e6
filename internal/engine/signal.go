package engine

import (
	"math"

	"atr-trader/internal/types"
)

// SignalConfig controls how strict the bar-over-bar comparison is. The sell
// side mirrors every rule.
type SignalConfig struct {
	AllowEqualClose   bool
	RequireHigherHigh bool
	RequireHigherLow  bool
}

// A candle whose body is under this share of its range counts as a doji.
const dojiBodyRatio = 0.1

// detectSignal compares the current bar against the previous one and returns
// the trade direction, if any. Pure function of the two bars.
func detectSignal(curr, prev types.Bar, cfg SignalConfig) (types.Side, bool) {
	buy := curr.Close > prev.Close
	if cfg.AllowEqualClose {
		buy = curr.Close >= prev.Close
	}
	if cfg.RequireHigherHigh {
		buy = buy && curr.High > prev.High
	}
	if cfg.RequireHigherLow {
		buy = buy && curr.Low > prev.Low
	}
	if buy {
		return types.SideBuy, true
	}

	sell := curr.Close < prev.Close
	if cfg.AllowEqualClose {
		sell = curr.Close <= prev.Close
	}
	if cfg.RequireHigherHigh {
		sell = sell && curr.High < prev.High
	}
	if cfg.RequireHigherLow {
		sell = sell && curr.Low < prev.Low
	}
	if sell {
		return types.SideSell, true
	}

	return "", false
}

// passFilters applies the direction-independent eligibility filters:
// volatility expansion, volume expansion and a non-doji body. All three must
// pass. Returns the first failing filter's name for logging.
func passFilters(snap types.MarketSnapshot, avgATRMultiplier float64) (bool, string) {
	if snap.ATR <= snap.AvgATR*avgATRMultiplier {
		return false, "atr_expansion"
	}
	if float64(snap.Curr.Volume) <= snap.AvgVol {
		return false, "volume_expansion"
	}
	barRange := snap.Curr.High - snap.Curr.Low
	if barRange <= 0 || math.Abs(snap.Curr.Close-snap.Curr.Open) < barRange*dojiBodyRatio {
		return false, "doji"
	}
	return true, ""
}
