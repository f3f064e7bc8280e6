package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseCfg() Config {
	return Config{
		RiskPerTrade:           0.05,
		MaxExposurePct:         100,
		MaxValuePerTrade:       0,
		BuyingPowerUsageFactor: 0.9,
		AllowMultiplePositions: false,
		ScaleInMultiplier:      0.5,
	}
}

func TestRiskBasedQuantity(t *testing.T) {
	// 10000 equity at 5% risk against a 2.0 ATR is 250 shares.
	s := Calculate(Inputs{
		Equity:       10000,
		CurrentPrice: 10,
		RiskAmount:   2.0,
	}, baseCfg())

	assert.Equal(t, 250, s.RiskBasedQty)
	assert.Equal(t, 250, s.Quantity)
	assert.Equal(t, 1.0, s.SizeMultiplier)
	assert.Equal(t, 2.0, s.RiskAmount)
}

func TestQuantityIsMinimumOfAllCaps(t *testing.T) {
	cfg := baseCfg()
	cfg.MaxExposurePct = 50
	cfg.MaxValuePerTrade = 3000
	in := Inputs{
		Equity:       10000,
		CurrentPrice: 10,
		RiskAmount:   0.5, // riskQty 1000
		BuyingPower:  2000,
	}
	s := Calculate(in, cfg)

	assert.Equal(t, 1000, s.RiskBasedQty)
	assert.Equal(t, 500, s.ExposureQty)    // 5000 headroom / 10
	assert.Equal(t, 300, s.MaxValueQty)    // 3000 / 10
	assert.Equal(t, 180, s.BuyingPowerQty) // 2000 * 0.9 / 10
	assert.Equal(t, 180, s.Quantity)
}

func TestExposureHeadroomClampsAtZero(t *testing.T) {
	cfg := baseCfg()
	cfg.MaxExposurePct = 50
	s := Calculate(Inputs{
		Equity:               10000,
		CurrentPrice:         10,
		RiskAmount:           1,
		CurrentPositionValue: 6000, // already over the 5000 cap
	}, cfg)

	assert.Equal(t, 0, s.ExposureQty)
	assert.Equal(t, 0, s.Quantity, "overexposed account sizes to zero, caller skips")
}

func TestShortPositionValueCountsAgainstExposure(t *testing.T) {
	cfg := baseCfg()
	cfg.MaxExposurePct = 50
	s := Calculate(Inputs{
		Equity:               10000,
		CurrentPrice:         10,
		RiskAmount:           1,
		CurrentPositionValue: -4000,
	}, cfg)

	assert.Equal(t, 100, s.ExposureQty) // (5000 - 4000) / 10
}

func TestDisabledCapsAreUnbounded(t *testing.T) {
	s := Calculate(Inputs{
		Equity:       10000,
		CurrentPrice: 10,
		RiskAmount:   2,
		BuyingPower:  0, // unknown
	}, baseCfg())

	assert.Equal(t, math.MaxInt, s.MaxValueQty)
	assert.Equal(t, math.MaxInt, s.BuyingPowerQty)
	assert.Equal(t, s.RiskBasedQty, s.Quantity)
}

func TestScaleInMultiplierAppliedOnlyWhenPositioned(t *testing.T) {
	cfg := baseCfg()
	cfg.AllowMultiplePositions = true

	flat := Calculate(Inputs{Equity: 10000, CurrentPrice: 10, RiskAmount: 2}, cfg)
	assert.Equal(t, 1.0, flat.SizeMultiplier)
	assert.Equal(t, 250, flat.RiskBasedQty)

	held := Calculate(Inputs{Equity: 10000, CurrentPrice: 10, RiskAmount: 2, CurrentQty: 100}, cfg)
	assert.Equal(t, 0.5, held.SizeMultiplier)
	assert.Equal(t, 125, held.RiskBasedQty)

	// Scaling disabled: multiplier stays 1 even with an open position.
	cfg.AllowMultiplePositions = false
	held = Calculate(Inputs{Equity: 10000, CurrentPrice: 10, RiskAmount: 2, CurrentQty: 100}, cfg)
	assert.Equal(t, 1.0, held.SizeMultiplier)
}

func TestFractionalSharesFloored(t *testing.T) {
	s := Calculate(Inputs{
		Equity:       1000,
		CurrentPrice: 10,
		RiskAmount:   7, // 1000*0.05/7 = 7.14
	}, baseCfg())

	assert.Equal(t, 7, s.Quantity)
}

func TestSubShareResultMeansSkip(t *testing.T) {
	s := Calculate(Inputs{
		Equity:       100,
		CurrentPrice: 10,
		RiskAmount:   50, // 100*0.05/50 = 0.1
	}, baseCfg())

	assert.Equal(t, 0, s.Quantity)
}

func TestCalculatePanicsOnBrokenInputs(t *testing.T) {
	in := Inputs{Equity: 10000, CurrentPrice: 10, RiskAmount: 2}

	bad := in
	bad.RiskAmount = 0
	require.Panics(t, func() { Calculate(bad, baseCfg()) })

	bad = in
	bad.RiskAmount = -1
	require.Panics(t, func() { Calculate(bad, baseCfg()) })

	bad = in
	bad.CurrentPrice = 0
	require.Panics(t, func() { Calculate(bad, baseCfg()) })

	bad = in
	bad.Equity = math.NaN()
	require.Panics(t, func() { Calculate(bad, baseCfg()) })

	bad = in
	bad.CurrentPositionValue = math.Inf(-1)
	require.Panics(t, func() { Calculate(bad, baseCfg()) })
}
