package strategy

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// RSI zones.
const (
	ZoneOverbought = "overbought"
	ZoneStrong     = "strong"
	ZoneNeutral    = "neutral"
	ZoneWeak       = "weak"
	ZoneOversold   = "oversold"
)

// Directional trend bands, shared by RSI trend and MA disparity wording.
const (
	TrendStrongUp   = "strong_uptrend"
	TrendUp         = "uptrend"
	TrendSideways   = "sideways"
	TrendDown       = "downtrend"
	TrendStrongDown = "strong_downtrend"
)

// rsiZone bands an RSI value.
func rsiZone(rsi float64) string {
	switch {
	case rsi >= 70:
		return ZoneOverbought
	case rsi >= 60:
		return ZoneStrong
	case rsi >= 40:
		return ZoneNeutral
	case rsi >= 30:
		return ZoneWeak
	default:
		return ZoneOversold
	}
}

// rsiTrend bands the regression slope of recent RSI values.
func rsiTrend(values []float64) string {
	slope := calculator.Slope(values)
	switch {
	case slope > 2:
		return TrendStrongUp
	case slope > 0.5:
		return TrendUp
	case slope > -0.5:
		return TrendSideways
	case slope > -2:
		return TrendDown
	default:
		return TrendStrongDown
	}
}

// labelPoints converts a label into the 0~100 points used by score blends.
// Caution carries no directional weight.
func labelPoints(l model.SignalLabel) float64 {
	switch l {
	case model.StrongBuy:
		return 100
	case model.Buy:
		return 75
	case model.Sell:
		return 25
	case model.StrongSell:
		return 0
	default:
		return 50
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// definedTail returns the defined values among the last n entries of series.
func definedTail(series []float64, n int) []float64 {
	start := len(series) - n
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, n)
	for i := start; i < len(series); i++ {
		if v, ok := calculator.Value(series, i); ok {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
