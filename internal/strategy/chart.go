package strategy

import (
	"math"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

const (
	extremaMinDistance = 3
	triangleBars       = 10
	triangleTolerance  = 0.001
)

// DetectChartPatterns scans the trailing window of bars for multi-bar formations.
func DetectChartPatterns(bars []model.OHLCV, window int) []Pattern {
	if len(bars) < window {
		return nil
	}
	start := len(bars) - window
	w := bars[start:]
	highs := make([]float64, len(w))
	lows := make([]float64, len(w))
	closes := make([]float64, len(w))
	for i, b := range w {
		highs[i], lows[i], closes[i] = b.High, b.Low, b.Close
	}

	last := len(bars) - 1
	hit := func(name string, label model.SignalLabel, rel, idx int) Pattern {
		return Pattern{
			Name: name, Kind: KindChart, Label: label,
			Reliability: rel, Index: idx, Time: bars[idx].Time,
		}
	}

	var out []Pattern
	peaks := FindPeaks(highs, extremaMinDistance)
	troughs := FindTroughs(lows, extremaMinDistance)

	if headAndShoulders(highs, peaks, 1) {
		out = append(out, hit("head_and_shoulders", model.Sell, 85, start+peaks[len(peaks)-1]))
	}
	neg := make([]float64, len(lows))
	for i, v := range lows {
		neg[i] = -v
	}
	if headAndShoulders(neg, troughs, -1) {
		out = append(out, hit("inverse_head_and_shoulders", model.Buy, 85, start+troughs[len(troughs)-1]))
	}
	if name, label, rel := triangle(highs, lows); name != "" {
		out = append(out, hit(name, label, rel, last))
	}

	// a double top wins over a double bottom
	switch {
	case len(peaks) >= 2 && within(highs[peaks[len(peaks)-2]], highs[peaks[len(peaks)-1]], 0.03):
		out = append(out, hit("double_top", model.Sell, 80, start+peaks[len(peaks)-1]))
	case len(troughs) >= 2 && within(lows[troughs[len(troughs)-2]], lows[troughs[len(troughs)-1]], 0.03):
		out = append(out, hit("double_bottom", model.Buy, 80, start+troughs[len(troughs)-1]))
	}

	if cupAndHandle(highs, lows, closes) {
		out = append(out, hit("cup_and_handle", model.Buy, 85, last))
	}
	return out
}

// FindPeaks returns indices at least dist bars from both edges whose value is
// >= every neighbor within dist and strictly greater than at least one.
func FindPeaks(values []float64, dist int) []int {
	var out []int
	for i := dist; i < len(values)-dist; i++ {
		dominates, strict := true, false
		for j := i - dist; j <= i+dist; j++ {
			if j == i {
				continue
			}
			if values[i] < values[j] {
				dominates = false
				break
			}
			if values[i] > values[j] {
				strict = true
			}
		}
		if dominates && strict {
			out = append(out, i)
		}
	}
	return out
}

// FindTroughs mirrors FindPeaks.
func FindTroughs(values []float64, dist int) []int {
	neg := make([]float64, len(values))
	for i, v := range values {
		neg[i] = -v
	}
	return FindPeaks(neg, dist)
}

// headAndShoulders checks the last three extrema of values. sign is -1 when
// values were negated for troughs, so shoulder ratios use the real prices.
func headAndShoulders(values []float64, idx []int, sign float64) bool {
	if len(idx) < 3 {
		return false
	}
	l := values[idx[len(idx)-3]] * sign
	h := values[idx[len(idx)-2]] * sign
	r := values[idx[len(idx)-1]] * sign
	if l == 0 {
		return false
	}
	if sign > 0 {
		return h > l*1.02 && h > r*1.02 && within(l, r, 0.05)
	}
	return h < l*0.98 && h < r*0.98 && within(l, r, 0.05)
}

// within reports whether b is strictly within tol (fractional) of a.
func within(a, b, tol float64) bool {
	if a == 0 {
		return false
	}
	return math.Abs(a-b)/math.Abs(a) < tol
}

// triangle reads the raw regression slopes of the last 10 highs and lows.
// Flat means a slope under triangleTolerance in price units per bar.
func triangle(highs, lows []float64) (string, model.SignalLabel, int) {
	if len(highs) < triangleBars {
		return "", model.Neutral, 0
	}
	hs := calculator.Slope(highs[len(highs)-triangleBars:])
	ls := calculator.Slope(lows[len(lows)-triangleBars:])
	flatHigh := math.Abs(hs) < triangleTolerance
	flatLow := math.Abs(ls) < triangleTolerance

	switch {
	case flatHigh && flatLow:
		return "symmetric_triangle", model.Neutral, 70
	case flatHigh && ls > 0:
		return "ascending_triangle", model.Buy, 75
	case hs < 0 && flatLow:
		return "descending_triangle", model.Sell, 75
	}
	return "", model.Neutral, 0
}

// cupAndHandle needs a drop of more than 20% from the first-half high to the
// lowest low around the midpoint, then a close 5-15% below the second-half high.
func cupAndHandle(highs, lows, closes []float64) bool {
	n := len(closes)
	if n < chartPatternBars {
		return false
	}
	mid := n / 2
	leftHigh := maxOf(highs[:mid])
	cupLow := minOf(lows[mid-3 : mid+3])
	rightHigh := maxOf(highs[mid:])
	if leftHigh <= 0 || rightHigh <= 0 || (leftHigh-cupLow)/leftHigh <= 0.20 {
		return false
	}
	handle := (rightHigh - closes[n-1]) / rightHigh
	return handle > 0.05 && handle < 0.15
}

func maxOf(values []float64) float64 {
	out := math.Inf(-1)
	for _, v := range values {
		out = math.Max(out, v)
	}
	return out
}

func minOf(values []float64) float64 {
	out := math.Inf(1)
	for _, v := range values {
		out = math.Min(out, v)
	}
	return out
}
