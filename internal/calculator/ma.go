package calculator

import (
	"math"

	"github.com/markcheno/go-talib"

	"SignalSentinel/pkg/errors"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Wrap(errors.ErrInvalidInput, "period must be positive")
	}
	if len(prices) < period {
		return 0, errors.Wrap(errors.ErrInvalidInput, "not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns the rolling simple moving average aligned with values.
// Bars before the first full window are NaN.
func SMASeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sma := talib.Sma(values, period)
	copy(out[period-1:], sma[period-1:])
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Value returns series[i] and whether it is defined.
func Value(series []float64, i int) (float64, bool) {
	if i < 0 || i >= len(series) || math.IsNaN(series[i]) {
		return 0, false
	}
	return series[i], true
}

func ptr(series []float64, i int) *float64 {
	v, ok := Value(series, i)
	if !ok {
		return nil
	}
	return &v
}
