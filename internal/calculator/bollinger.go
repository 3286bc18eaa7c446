package calculator

import "math"

// Bands holds the Bollinger series aligned with the input closes.
type Bands struct {
	Upper    []float64
	Middle   []float64
	Lower    []float64
	PercentB []float64 // NaN where Upper == Lower
	Width    []float64 // (Upper-Lower)/Middle, NaN where Middle == 0
}

// BollingerSeries computes Middle = SMA(period) and Upper/Lower = Middle ± k
// sample standard deviations.
func BollingerSeries(closes []float64, period int, k float64) Bands {
	n := len(closes)
	b := Bands{
		Upper:    nanSeries(n),
		Middle:   SMASeries(closes, period),
		Lower:    nanSeries(n),
		PercentB: nanSeries(n),
		Width:    nanSeries(n),
	}
	if period < 2 || n < period {
		return b
	}

	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		mid := b.Middle[i]

		lo, hi := window[0], window[0]
		for _, v := range window {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}

		var sd float64
		if hi == lo {
			// constant window: pin the mean so rolling-sum noise cannot open the band
			mid = window[0]
			b.Middle[i] = mid
		} else {
			var ss float64
			for _, v := range window {
				d := v - mid
				ss += d * d
			}
			sd = math.Sqrt(ss / float64(period-1))
		}

		upper := mid + k*sd
		lower := mid - k*sd
		b.Upper[i] = upper
		b.Lower[i] = lower
		if upper > lower {
			b.PercentB[i] = (closes[i] - lower) / (upper - lower)
		}
		if mid != 0 {
			b.Width[i] = (upper - lower) / mid
		}
	}
	return b
}
