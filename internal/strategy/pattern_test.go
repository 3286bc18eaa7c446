package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// decliningBars builds n bearish candles stepping down one point per bar.
func decliningBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 - float64(i)
		o := c + 0.8
		bars[i] = bar(i, o, o+0.1, c-0.1, c)
	}
	return bars
}

func names(ps []Pattern) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestCandlestickPattern_HammerAfterDecline(t *testing.T) {
	bars := decliningBars(19)
	bars = append(bars, bar(19, 81.5, 82.1, 79.5, 82))
	ind := indicators(t, bars)

	a := CandlestickPattern{}.Analyze(ind, config.DefaultScoring())
	require.Len(t, a.Candles, 1)
	assert.Equal(t, "hammer", a.Candles[0].Name)
	assert.Equal(t, 19, a.Candles[0].Index)
	assert.Empty(t, a.Charts)

	// (75 + 100) / 2
	assert.InDelta(t, 87.5, a.Signal.Score, 1e-9)
	assert.Equal(t, model.StrongBuy, a.Signal.Label)
	assert.Equal(t, 75, a.Signal.Reliability)
}

func TestDetectCandles_Engulfing(t *testing.T) {
	bull := []model.OHLCV{
		bar(0, 101, 101.2, 99.8, 100),
		bar(1, 99.5, 102.2, 99.4, 102),
	}
	assert.Contains(t, names(DetectCandles(bull, 5)), "bullish_engulfing")

	bear := []model.OHLCV{
		bar(0, 100, 101.2, 99.8, 101),
		bar(1, 101.5, 101.6, 98.8, 99),
	}
	assert.Contains(t, names(DetectCandles(bear, 5)), "bearish_engulfing")
}

func TestDetectCandles_MorningStar(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 110, 110.5, 99.5, 100),
		bar(1, 99, 99.6, 98.2, 98.8),
		bar(2, 99, 107.5, 98.9, 107),
	}
	assert.Contains(t, names(DetectCandles(bars, 5)), "morning_star")
}

func TestDetectCandles_EngulfingNeedsStrictOverlap(t *testing.T) {
	// open equals the prior close
	bars := []model.OHLCV{
		bar(0, 101, 101.2, 99.8, 100),
		bar(1, 100, 102.2, 99.9, 102),
	}
	assert.NotContains(t, names(DetectCandles(bars, 5)), "bullish_engulfing")

	// close equals the prior open
	bars[1] = bar(1, 99.5, 101.2, 99.4, 101)
	assert.NotContains(t, names(DetectCandles(bars, 5)), "bullish_engulfing")

	bear := []model.OHLCV{
		bar(0, 100, 101.2, 99.8, 101),
		bar(1, 101, 101.1, 98.8, 99),
	}
	assert.NotContains(t, names(DetectCandles(bear, 5)), "bearish_engulfing")
}

func TestDetectCandles_StarBodyRatio(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 110, 110.5, 99.5, 100),
		bar(1, 99, 99.5, 94.5, 95), // body 40% of the first
		bar(2, 96, 107.5, 95.9, 107),
	}
	got := DetectCandles(bars, 5)
	require.Contains(t, names(got), "morning_star")
	assert.Equal(t, 2, got[len(got)-1].Index)

	bars[1] = bar(1, 99, 99.5, 93.5, 94) // exactly half
	assert.NotContains(t, names(DetectCandles(bars, 5)), "morning_star")
}

func TestDetectCandles_CompositesOnlyOnLastBar(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 101, 101.2, 99.8, 100),
		bar(1, 99.5, 102.2, 99.4, 102), // engulfs bar 0
		bar(2, 102, 102.6, 101.7, 102.3),
		bar(3, 102.3, 102.9, 102, 102.6),
	}
	assert.Empty(t, DetectCandles(bars, 5))
}

func TestDetectCandles_TrendReadOverWindow(t *testing.T) {
	// a hammer two bars before the end still counts while the window is falling
	bars := decliningBars(8)
	bars[5] = bar(5, 93.5, 94.1, 91.5, 94)
	got := DetectCandles(bars, 5)
	require.Equal(t, []string{"hammer"}, names(got))
	assert.Equal(t, 5, got[0].Index)

	// a flat window has no trend, so the same shape is ignored
	flat := closeBars(constant(8, 94))
	flat[5] = bar(5, 93.5, 94.1, 91.5, 94)
	assert.NotContains(t, names(DetectCandles(flat, 5)), "hammer")
}

func TestDetectCandles_Doji(t *testing.T) {
	got := DetectCandles([]model.OHLCV{bar(0, 100, 101, 99, 100.05)}, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "doji", got[0].Name)
	assert.Equal(t, model.Neutral, got[0].Label)
}

func TestCandlestickPattern_NeutralOnlyScoresFifty(t *testing.T) {
	// every closeBars candle is a doji
	ind := indicators(t, closeBars(constant(30, 100)))
	a := CandlestickPattern{}.Analyze(ind, config.DefaultScoring())
	assert.NotEmpty(t, a.Candles)
	assert.Equal(t, 50.0, a.Signal.Score)
	assert.Equal(t, model.Neutral, a.Signal.Label)
}

func TestFindPeaks(t *testing.T) {
	values := []float64{1, 2, 5, 2, 1, 0, 1, 2, 3, 2, 1}
	assert.Equal(t, []int{2, 8}, FindPeaks(values, 2))
	assert.Equal(t, []int{5}, FindTroughs(values, 2))
	assert.Empty(t, FindPeaks(constant(10, 3), 2), "a flat window has no peak")

	// a tied top is a peak on both bars
	assert.Equal(t, []int{3, 4}, FindPeaks([]float64{1, 2, 3, 5, 5, 3, 2, 1}, 2))
}

func TestDetectChartPatterns_HeadAndShoulders(t *testing.T) {
	highs := constant(20, 100)
	highs[4], highs[10], highs[16] = 110, 120, 110.5
	bars := make([]model.OHLCV, len(highs))
	for i, h := range highs {
		bars[i] = bar(i, h-1, h, h-2, h-1)
	}

	got := DetectChartPatterns(bars, 20)
	assert.Contains(t, names(got), "head_and_shoulders")
	assert.NotContains(t, names(got), "double_top")
}

func TestDetectChartPatterns_DoubleBottom(t *testing.T) {
	lows := constant(20, 100)
	lows[6], lows[13] = 90, 90.5
	bars := make([]model.OHLCV, len(lows))
	for i, l := range lows {
		bars[i] = bar(i, l+1, 102, l, l+1)
	}

	got := DetectChartPatterns(bars, 20)
	require.Contains(t, names(got), "double_bottom")
	for _, p := range got {
		if p.Name == "double_bottom" {
			assert.Equal(t, model.Buy, p.Label)
			assert.Equal(t, 13, p.Index)
		}
	}
}

func TestCupAndHandle(t *testing.T) {
	closes := []float64{
		100, 98, 95, // left rim
		90, 80, 75, 70, 72, // into the cup
		78, 85, 92, 97, 99, 100, // recovery
		98, 96, 94, 93, 92, 91, // handle
	}
	assert.True(t, cupAndHandle(closes, closes, closes))
	assert.False(t, cupAndHandle(constant(20, 100), constant(20, 100), constant(20, 100)))

	// the handle bounds are exclusive
	for _, last := range []float64{95, 85} {
		edge := append([]float64{}, closes...)
		edge[19] = last
		assert.False(t, cupAndHandle(edge, edge, edge), "close %v", last)
	}

	// the low of bar 6 sits outside the midpoint window
	shallow := append([]float64{}, closes...)
	shallow[7], shallow[8] = 85, 88
	assert.False(t, cupAndHandle(shallow, shallow, shallow))
}

func TestTriangle(t *testing.T) {
	tests := []struct {
		name  string
		highs []float64
		lows  []float64
		want  string
		label model.SignalLabel
	}{
		{"flat envelopes", constant(10, 100), constant(10, 90), "symmetric_triangle", model.Neutral},
		{"rising lows", constant(10, 100), linear(10, 90, 0.5), "ascending_triangle", model.Buy},
		{"slope under tolerance", linear(10, 100, 0.0005), linear(10, 90, 0.5), "ascending_triangle", model.Buy},
		{"falling highs", linear(10, 110, -0.5), constant(10, 90), "descending_triangle", model.Sell},
		{"converging", linear(10, 110, -0.5), linear(10, 90, 0.5), "", model.Neutral},
		{"rising channel", linear(10, 100, 1), linear(10, 90, 1), "", model.Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, label, _ := triangle(tt.highs, tt.lows)
			assert.Equal(t, tt.want, name)
			assert.Equal(t, tt.label, label)
		})
	}

	name, _, _ := triangle(constant(9, 100), constant(9, 90))
	assert.Empty(t, name, "needs 10 bars")
}

func TestDetectChartPatterns_DoubleTopWinsOverBottom(t *testing.T) {
	bars := make([]model.OHLCV, 20)
	for i := range bars {
		h, l := 100.0, 98.0
		switch i {
		case 4, 12:
			h = 110
		case 8, 16:
			l = 90
		}
		bars[i] = bar(i, (h+l)/2, h, l, (h+l)/2)
	}

	got := DetectChartPatterns(bars, 20)
	require.Equal(t, []string{"double_top"}, names(got))
	assert.Equal(t, 12, got[0].Index)
}
