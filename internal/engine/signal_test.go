package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"atr-trader/internal/types"
)

func bar(open, high, low, close float64, vol int64) types.Bar {
	return types.Bar{Open: open, High: high, Low: low, Close: close, Volume: vol}
}

func TestDetectSignalStrictClose(t *testing.T) {
	cfg := SignalConfig{}
	prev := bar(100, 101, 99, 100.5, 1000)

	side, ok := detectSignal(bar(100.5, 102, 100, 101, 1000), prev, cfg)
	assert.True(t, ok)
	assert.Equal(t, types.SideBuy, side)

	side, ok = detectSignal(bar(100.5, 101, 99, 100, 1000), prev, cfg)
	assert.True(t, ok)
	assert.Equal(t, types.SideSell, side)

	// Equal close is no signal under the strict comparison.
	_, ok = detectSignal(bar(100.5, 101, 99, 100.5, 1000), prev, cfg)
	assert.False(t, ok)
}

func TestDetectSignalAllowEqualClose(t *testing.T) {
	cfg := SignalConfig{AllowEqualClose: true}
	prev := bar(100, 101, 99, 100.5, 1000)

	// Equal close resolves to the buy side first.
	side, ok := detectSignal(bar(100.5, 101, 99, 100.5, 1000), prev, cfg)
	assert.True(t, ok)
	assert.Equal(t, types.SideBuy, side)
}

func TestDetectSignalHigherHighHigherLow(t *testing.T) {
	cfg := SignalConfig{RequireHigherHigh: true, RequireHigherLow: true}
	prev := bar(100, 101, 99, 100.5, 1000)

	// Close up, but no higher high: rejected.
	_, ok := detectSignal(bar(100.5, 101, 99.5, 101, 1000), prev, cfg)
	assert.False(t, ok)

	// Close up, higher high, but no higher low: rejected.
	_, ok = detectSignal(bar(100.5, 102, 99, 101, 1000), prev, cfg)
	assert.False(t, ok)

	// All three: buy.
	side, ok := detectSignal(bar(100.5, 102, 99.5, 101, 1000), prev, cfg)
	assert.True(t, ok)
	assert.Equal(t, types.SideBuy, side)

	// Mirrored sell: close down, lower high, lower low.
	side, ok = detectSignal(bar(100.5, 100.5, 98.5, 99.5, 1000), prev, cfg)
	assert.True(t, ok)
	assert.Equal(t, types.SideSell, side)

	// Close down but higher high: rejected on the sell side too.
	_, ok = detectSignal(bar(100.5, 102, 98.5, 99.5, 1000), prev, cfg)
	assert.False(t, ok)
}

func TestPassFilters(t *testing.T) {
	snap := types.MarketSnapshot{
		ATR:    2.0,
		AvgATR: 1.5,
		AvgVol: 1500,
		Curr:   bar(100.6, 103, 99.5, 102.4, 2000),
	}

	ok, failed := passFilters(snap, 1.0)
	assert.True(t, ok)
	assert.Empty(t, failed)

	// No volatility expansion.
	flat := snap
	flat.ATR = 1.4
	ok, failed = passFilters(flat, 1.0)
	assert.False(t, ok)
	assert.Equal(t, "atr_expansion", failed)

	// Multiplier raises the bar: 2.0 is not above 1.5*1.5.
	ok, failed = passFilters(snap, 1.5)
	assert.False(t, ok)
	assert.Equal(t, "atr_expansion", failed)

	// No volume expansion.
	thin := snap
	thin.Curr.Volume = 1500
	ok, failed = passFilters(thin, 1.0)
	assert.False(t, ok)
	assert.Equal(t, "volume_expansion", failed)

	// Doji body: tiny body against the full range.
	doji := snap
	doji.Curr = bar(100, 103, 99.5, 100.2, 2000)
	ok, failed = passFilters(doji, 1.0)
	assert.False(t, ok)
	assert.Equal(t, "doji", failed)

	// Degenerate bar with no range.
	degenerate := snap
	degenerate.Curr = bar(100, 100, 100, 100, 2000)
	ok, failed = passFilters(degenerate, 1.0)
	assert.False(t, ok)
	assert.Equal(t, "doji", failed)
}
