package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func bar(i int, o, h, l, c float64) model.OHLCV {
	return model.OHLCV{Time: t0.AddDate(0, 0, i), Open: o, High: h, Low: l, Close: c, Volume: 1000}
}

// closeBars builds doji-like bars around each close with constant volume.
func closeBars(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = bar(i, c, c+0.5, math.Max(c-0.5, 0), c)
	}
	return bars
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func constant(n int, v float64) []float64 {
	return linear(n, v, 0)
}

func indicators(t *testing.T, bars []model.OHLCV) *calculator.Indicators {
	t.Helper()
	eng := calculator.NewEngine(config.DefaultScoring().Indicators)
	ind, err := eng.Compute(model.PriceSeries{Symbol: "TEST", Bars: bars})
	require.NoError(t, err)
	return ind
}
