package risk

import (
	"fmt"
	"math"

	"atr-trader/internal/types"
)

// GateConfig holds the per-cycle risk limits.
type GateConfig struct {
	DailyMaxLoss      float64 // negative fraction, e.g. -0.02
	DailyProfitTarget float64 // positive fraction, e.g. 0.04
	MaxExposurePct    float64 // e.g. 50
}

// EvaluateTradeGate decides whether trading is permitted this cycle. Pure and
// deterministic: no I/O, no clock, no state. All three checks are always
// computed, even when an earlier one already fails — downstream diagnostics
// read the individual fields regardless of the final verdict.
//
// Non-finite inputs or negative equity are broken invariants upstream, not
// runtime conditions, and panic.
func EvaluateTradeGate(initialEquity, currentEquity, exposurePct float64, hoursOK bool, cfg GateConfig) types.TradeGateResult {
	mustBeFinite("initial equity", initialEquity)
	mustBeFinite("current equity", currentEquity)
	mustBeFinite("exposure pct", exposurePct)
	if initialEquity < 0 || currentEquity < 0 {
		panic(fmt.Sprintf("risk: negative equity (initial=%v current=%v)", initialEquity, currentEquity))
	}

	var dailyPnL float64
	if initialEquity != 0 {
		dailyPnL = (currentEquity - initialEquity) / initialEquity
	}

	r := types.TradeGateResult{
		DailyPnL:   dailyPnL,
		HoursOK:    hoursOK,
		PnLOK:      dailyPnL > cfg.DailyMaxLoss && dailyPnL < cfg.DailyProfitTarget,
		ExposureOK: exposurePct <= cfg.MaxExposurePct,
	}
	r.Allowed = r.HoursOK && r.PnLOK && r.ExposureOK
	return r
}

func mustBeFinite(name string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("risk: non-finite %s: %v", name, v))
	}
}
