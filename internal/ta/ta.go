package ta

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// ATR returns the current average true range over the last `period` bars.
// Returns NaN when there is not enough data.
func ATR(highs, lows, closes []float64, period int) float64 {
	series := ATRSeries(highs, lows, closes, period)
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// ATRSeries returns the valid portion of the ATR series (Wilder smoothing,
// as computed by TA-Lib). The warm-up period is stripped.
func ATRSeries(highs, lows, closes []float64, period int) []float64 {
	if period <= 0 || len(highs) != len(lows) || len(lows) != len(closes) {
		return nil
	}
	if len(closes) < period+1 {
		return nil
	}
	out := talib.Atr(highs, lows, closes, period)
	return out[period:]
}

// AvgATR returns the mean ATR over up to `window` most recent ATR values,
// the longer-window volatility baseline the current ATR is compared against.
func AvgATR(highs, lows, closes []float64, period, window int) float64 {
	series := ATRSeries(highs, lows, closes, period)
	if len(series) == 0 || window <= 0 {
		return math.NaN()
	}
	if len(series) > window {
		series = series[len(series)-window:]
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// SMA returns the simple moving average of the last n values.
func SMA(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return math.NaN()
	}
	out := talib.Sma(values, n)
	return out[len(out)-1]
}

// AvgVolume returns the mean volume over the last n bars.
func AvgVolume(volumes []int64, n int) float64 {
	if n <= 0 || len(volumes) < n {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range volumes[len(volumes)-n:] {
		sum += float64(v)
	}
	return sum / float64(n)
}
