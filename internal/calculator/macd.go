package calculator

// emaSeries is an exponential moving average seeded with the first value,
// alpha = 2/(span+1).
func emaSeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACDSeries returns the MACD line, its signal line and the histogram.
// MACD is defined from bar slow-1, signal and histogram from bar slow+signal-2.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	n := len(closes)
	macd, sig, hist = nanSeries(n), nanSeries(n), nanSeries(n)
	if n == 0 || fast <= 0 || slow <= 0 || signal <= 0 {
		return macd, sig, hist
	}

	emaFast := emaSeries(closes, fast)
	emaSlow := emaSeries(closes, slow)
	line := make([]float64, n)
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := emaSeries(line, signal)

	for i := slow - 1; i < n; i++ {
		macd[i] = line[i]
	}
	for i := slow + signal - 2; i < n; i++ {
		sig[i] = signalLine[i]
		hist[i] = line[i] - signalLine[i]
	}
	return macd, sig, hist
}
