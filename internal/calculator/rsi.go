package calculator

// RSISeries computes RSI from the simple mean of gains and losses over the
// last period deltas. The first defined value is at index period.
// flat[i] is true when the window had neither gains nor losses; RSI is 100
// there, the same sentinel as any window without losses.
func RSISeries(closes []float64, period int) (rsi []float64, flat []bool) {
	rsi = nanSeries(len(closes))
	flat = make([]bool, len(closes))
	if period <= 0 {
		return rsi, flat
	}

	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change // make positive
			}
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		rsi[i] = rsiFromAvg(avgGain, avgLoss)
		flat[i] = avgGain == 0 && avgLoss == 0
	}
	return rsi, flat
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
