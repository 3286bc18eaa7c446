package calculator

import (
	"math"

	"github.com/markcheno/go-talib"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/errors"
)

// CalculateRange scans the most recent window bars and returns the highest
// high and the lowest low. Fewer bars than window scans them all.
func CalculateRange(bars []model.OHLCV, window int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.Wrap(errors.ErrEmptySeries, "no bars provided")
	}
	n := len(bars)
	start := n - window
	if start < 0 || window <= 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// SupportResistance places the last close against the recent range.
// A level is "near" when the gap is under proximity as a fraction of close.
func SupportResistance(bars []model.OHLCV, window int, proximity float64) (model.SupportResistanceContext, error) {
	high, low, err := CalculateRange(bars, window)
	if err != nil {
		return model.SupportResistanceContext{}, err
	}
	ctx := model.SupportResistanceContext{Support: low, Resistance: high}
	last := bars[len(bars)-1].Close
	if last > 0 {
		ctx.NearResistance = (high-last)/last < proximity
		ctx.NearSupport = (last-low)/last < proximity
	}
	return ctx, nil
}

// Slope returns the least-squares slope of values against their index.
func Slope(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	out := talib.LinearRegSlope(values, len(values))
	return out[len(out)-1]
}

// TrendScore grades the moving-average stack at the last bar:
// 100 strong uptrend, 75 uptrend, 50 sideways, 25 downtrend, 0 strong downtrend.
func TrendScore(price float64, ma20, ma60, ma120 *float64) int {
	if ma20 == nil || ma60 == nil {
		return 50
	}
	switch {
	case price > *ma20 && *ma20 > *ma60:
		if ma120 != nil && *ma60 > *ma120 {
			return 100
		}
		return 75
	case price < *ma20 && *ma20 < *ma60:
		if ma120 != nil && *ma60 < *ma120 {
			return 0
		}
		return 25
	default:
		return 50
	}
}
