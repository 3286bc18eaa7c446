package strategy

import (
	"fmt"
	"math"
	"strings"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// Pattern kinds.
const (
	KindCandlestick = "candlestick"
	KindChart       = "chart"
)

const (
	patternMinBars   = 20
	candleLookback   = 5
	chartPatternBars = 20
	chartWeight      = 1.5
)

// Pattern is a detected candlestick or chart formation.
type Pattern struct {
	Name        string
	Kind        string
	Label       model.SignalLabel // buy, sell or neutral
	Reliability int
	Index       int
	Time        time.Time
}

// PatternAnalysis is the full read of the pattern detector.
type PatternAnalysis struct {
	Signal  model.Signal
	Candles []Pattern
	Charts  []Pattern
}

// CandlestickPattern scores recent candlestick and chart formations.
type CandlestickPattern struct{}

func (CandlestickPattern) Category() model.Category { return model.CategoryPattern }

func (d CandlestickPattern) Compute(ind *calculator.Indicators, cfg config.Scoring) model.Signal {
	return d.Analyze(ind, cfg).Signal
}

// Analyze scans the last bars for formations and blends them into one score.
func (d CandlestickPattern) Analyze(ind *calculator.Indicators, cfg config.Scoring) PatternAnalysis {
	if ind.Len() < patternMinBars {
		return PatternAnalysis{Signal: neutralSignal(d.Category())}
	}
	a := PatternAnalysis{
		Candles: DetectCandles(ind.Series.Bars, candleLookback),
		Charts:  DetectChartPatterns(ind.Series.Bars, chartPatternBars),
	}

	sum, count, reliability := 0.0, 0, 0
	add := func(p Pattern, weight float64) {
		reliability = max(reliability, p.Reliability)
		switch p.Label {
		case model.Buy:
			sum += float64(p.Reliability) * weight
		case model.Sell:
			sum -= float64(p.Reliability) * weight
		default:
			return
		}
		count++
	}
	for _, p := range a.Candles {
		add(p, 1)
	}
	for _, p := range a.Charts {
		add(p, chartWeight)
	}

	score := 50.0
	if count > 0 {
		score = clamp((sum/float64(count)+100)/2, 0, 100)
	}
	if reliability == 0 {
		reliability = 50
	}

	a.Signal = model.Signal{
		Category:    d.Category(),
		Label:       Classify(score, cfg.Thresholds.Pattern),
		Score:       score,
		Rationale:   a.rationale(),
		Reliability: reliability,
	}
	return a
}

func (a PatternAnalysis) rationale() string {
	if len(a.Candles) == 0 && len(a.Charts) == 0 {
		return "no patterns detected"
	}
	var names []string
	for _, p := range append(append([]Pattern{}, a.Candles...), a.Charts...) {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Label))
	}
	return strings.Join(names, ", ")
}

// candle splits a bar into body and shadows.
type candle struct {
	open, high, low, close float64
	body, upper, lower     float64
	rng                    float64
}

func newCandle(b model.OHLCV) candle {
	return candle{
		open:  b.Open,
		high:  b.High,
		low:   b.Low,
		close: b.Close,
		body:  math.Abs(b.Close - b.Open),
		upper: b.High - math.Max(b.Open, b.Close),
		lower: math.Min(b.Open, b.Close) - b.Low,
		rng:   b.High - b.Low,
	}
}

func (c candle) bullish() bool { return c.close > c.open }
func (c candle) bearish() bool { return c.close < c.open }

// recentTrend is "up" or "down" when the close moved more than 3% across the
// last periods bars. Shorter series have no trend.
func recentTrend(bars []model.OHLCV, periods int) string {
	n := len(bars)
	if n < periods {
		return ""
	}
	ch := pctChange(bars[n-periods].Close, bars[n-1].Close)
	switch {
	case ch < -3:
		return "down"
	case ch > 3:
		return "up"
	}
	return ""
}

// DetectCandles finds single-candle patterns on each of the last lookback
// bars, oldest first, then the two and three candle patterns that end on the
// final bar. One trend read over the window applies to every bar in it.
func DetectCandles(bars []model.OHLCV, lookback int) []Pattern {
	n := len(bars)
	if n == 0 {
		return nil
	}
	trend := recentTrend(bars, candleLookback)

	var out []Pattern
	hit := func(i int, name string, label model.SignalLabel, rel int) {
		out = append(out, Pattern{
			Name: name, Kind: KindCandlestick, Label: label,
			Reliability: rel, Index: i, Time: bars[i].Time,
		})
	}

	for i := max(0, n-lookback); i < n; i++ {
		c := newCandle(bars[i])
		if c.rng <= 0 {
			continue
		}
		if c.body <= 0.1*c.rng {
			hit(i, "doji", model.Neutral, 60)
		}
		longLower := c.lower > 2*c.body && c.upper < 0.3*c.body
		longUpper := c.upper > 2*c.body && c.lower < 0.3*c.body
		smallBody := c.body < 0.3*c.rng
		if longLower && smallBody && trend == "down" {
			hit(i, "hammer", model.Buy, 75)
		}
		if longUpper && smallBody && trend == "down" {
			hit(i, "inverted_hammer", model.Buy, 70)
		}
		if longUpper && c.bearish() && trend == "up" {
			hit(i, "shooting_star", model.Sell, 75)
		}
		if longLower && c.bearish() && trend == "up" {
			hit(i, "hanging_man", model.Sell, 70)
		}
	}

	last := n - 1
	c := newCandle(bars[last])
	if n >= 2 {
		p := newCandle(bars[last-1])
		if p.bearish() && c.bullish() && c.open < p.close && c.close > p.open {
			hit(last, "bullish_engulfing", model.Buy, 80)
		}
		if p.bullish() && c.bearish() && c.open > p.close && c.close < p.open {
			hit(last, "bearish_engulfing", model.Sell, 80)
		}
	}
	if n >= 3 {
		first, star := newCandle(bars[last-2]), newCandle(bars[last-1])
		mid := (first.open + first.close) / 2
		small := star.body < 0.5*first.body
		if first.bearish() && small && c.bullish() && c.close > mid {
			hit(last, "morning_star", model.Buy, 85)
		}
		if first.bullish() && small && c.bearish() && c.close < mid {
			hit(last, "evening_star", model.Sell, 85)
		}
	}
	return out
}
