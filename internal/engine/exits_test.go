package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"atr-trader/internal/types"
)

func exitCfg() ExitConfig {
	return ExitConfig{
		RRRatio:        2.0,
		PriceBufferPct: 0.1,
		MinPriceBuffer: 0.05,
		MaxPriceBuffer: 5.0,
	}
}

func TestComputeExitsATRDominates(t *testing.T) {
	// Buffer is 102.4 * 0.1% = 0.1024; the 2.0 ATR risk wins.
	tp, sl := computeExits(types.SideBuy, 102.4, 2.0, exitCfg())
	assert.InDelta(t, 100.4, sl, 1e-9)
	assert.InDelta(t, 106.4, tp, 1e-9)

	tp, sl = computeExits(types.SideSell, 102.4, 2.0, exitCfg())
	assert.InDelta(t, 104.4, sl, 1e-9)
	assert.InDelta(t, 98.4, tp, 1e-9)
}

func TestComputeExitsBufferDominates(t *testing.T) {
	// 1% of 500 is 5.0; a 1.2 risk amount gets widened to the buffer and
	// the take-profit scales off the widened stop.
	cfg := exitCfg()
	cfg.PriceBufferPct = 1.0
	tp, sl := computeExits(types.SideBuy, 500, 1.2, cfg)
	assert.InDelta(t, 495.0, sl, 1e-9)
	assert.InDelta(t, 510.0, tp, 1e-9)
}

func TestComputeExitsBufferClampedLow(t *testing.T) {
	// 0.1% of a 10-rupee stock is 0.01, below the 0.05 floor.
	cfg := exitCfg()
	tp, sl := computeExits(types.SideBuy, 10, 0.01, cfg)
	assert.InDelta(t, 10-0.05, sl, 1e-9)
	assert.InDelta(t, 10+0.10, tp, 1e-9)
}

func TestComputeExitsBufferClampedHigh(t *testing.T) {
	// 1% of 50000 is 500, clamped to the 5.0 ceiling.
	cfg := exitCfg()
	cfg.PriceBufferPct = 1.0
	tp, sl := computeExits(types.SideBuy, 50000, 1.0, cfg)
	assert.InDelta(t, 50000-5.0, sl, 1e-9)
	assert.InDelta(t, 50000+10.0, tp, 1e-9)
}

func TestComputeExitsRewardRiskRatio(t *testing.T) {
	cfg := exitCfg()
	cfg.RRRatio = 3.0
	tp, sl := computeExits(types.SideBuy, 100, 2.0, cfg)
	assert.InDelta(t, 3.0, (tp-100)/(100-sl), 1e-9)
}
