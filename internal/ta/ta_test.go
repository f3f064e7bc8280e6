package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A series whose true range is 2 on every bar: flat closes, 101 highs,
// 99 lows. Wilder smoothing of a constant is the constant.
func constantRangeSeries(n int) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	for i := range highs {
		highs[i] = 101
		lows[i] = 99
		closes[i] = 100
	}
	return
}

func TestATRConstantRange(t *testing.T) {
	highs, lows, closes := constantRangeSeries(30)
	atr := ATR(highs, lows, closes, 14)
	assert.InDelta(t, 2.0, atr, 1e-9)
}

func TestATRInsufficientData(t *testing.T) {
	highs, lows, closes := constantRangeSeries(10)
	assert.True(t, math.IsNaN(ATR(highs, lows, closes, 14)))
}

func TestATRSeriesStripsWarmup(t *testing.T) {
	highs, lows, closes := constantRangeSeries(30)
	series := ATRSeries(highs, lows, closes, 14)
	require.Len(t, series, 16)
	for _, v := range series {
		assert.InDelta(t, 2.0, v, 1e-9)
	}
}

func TestATRSeriesRejectsMismatchedLengths(t *testing.T) {
	highs, lows, closes := constantRangeSeries(30)
	assert.Nil(t, ATRSeries(highs[:29], lows, closes, 14))
	assert.Nil(t, ATRSeries(highs, lows, closes, 0))
}

func TestAvgATRConstantRange(t *testing.T) {
	highs, lows, closes := constantRangeSeries(80)
	avg := AvgATR(highs, lows, closes, 14, 50)
	assert.InDelta(t, 2.0, avg, 1e-9)
}

func TestAvgATRShortSeriesUsesWhatExists(t *testing.T) {
	// Only 16 ATR values exist against a 50 window; the mean still comes back.
	highs, lows, closes := constantRangeSeries(30)
	avg := AvgATR(highs, lows, closes, 14, 50)
	assert.InDelta(t, 2.0, avg, 1e-9)
}

func TestSMA(t *testing.T) {
	assert.InDelta(t, 3.0, SMA([]float64{1, 2, 3, 4, 5}, 5), 1e-9)
	assert.InDelta(t, 4.5, SMA([]float64{1, 2, 3, 4, 5}, 2), 1e-9)
	assert.True(t, math.IsNaN(SMA([]float64{1, 2}, 5)))
}

func TestAvgVolume(t *testing.T) {
	assert.InDelta(t, 2000, AvgVolume([]int64{500, 1000, 3000}, 2), 1e-9)
	assert.True(t, math.IsNaN(AvgVolume([]int64{500}, 2)))
	assert.True(t, math.IsNaN(AvgVolume(nil, 0)))
}
