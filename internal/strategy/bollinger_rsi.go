package strategy

import (
	"fmt"
	"sort"
	"strings"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// Band positions of the close relative to the Bollinger bands.
const (
	PositionAboveUpper = "above_upper"
	PositionUpperHalf  = "upper_half"
	PositionLowerHalf  = "lower_half"
	PositionBelowLower = "below_lower"
)

// Band width states.
const (
	BandSqueeze   = "squeeze"
	BandExpansion = "expansion"
	BandNormal    = "normal"
)

// Breakout kinds.
const (
	BreakoutUpper      = "upper"
	BreakoutLower      = "lower"
	BreakoutMiddleUp   = "middle_up"
	BreakoutMiddleDown = "middle_down"
)

// Divergence kinds.
const (
	DivergenceBullish = "bullish"
	DivergenceBearish = "bearish"
)

const (
	divergenceLookback    = 20
	divergenceExtrema     = 3
	divergenceReliability = 75
	bandWidthLookback     = 20
	rsiTrendBars          = 5
)

// Breakout is a band crossing between the previous and the last bar.
type Breakout struct {
	Kind  string
	Label model.SignalLabel
}

// Divergence is a disagreement between price extremes and RSI.
type Divergence struct {
	Kind        string
	Reliability int
	First, Last int // bar indices compared
}

// BollingerRsiAnalysis is the full read of the Bollinger/RSI detector.
type BollingerRsiAnalysis struct {
	Signal model.Signal

	Position   string
	BandState  string
	PercentB   *float64
	Breakout   *Breakout
	Divergence *Divergence

	RSI      float64
	RSIZone  string
	RSITrend string

	BBSignal  model.SignalLabel
	RSISignal model.SignalLabel

	Suggestions []model.Suggestion
}

// BollingerRsi combines band position, breakouts, RSI zone, RSI trend and divergence.
type BollingerRsi struct{}

func (BollingerRsi) Category() model.Category { return model.CategoryBollingerRsi }

// MinBars is the shortest series the detector scores.
func (BollingerRsi) MinBars(p config.IndicatorParams) int {
	return max(p.BollingerPeriod, p.RSIPeriod) + 10
}

func (d BollingerRsi) Compute(ind *calculator.Indicators, cfg config.Scoring) model.Signal {
	return d.Analyze(ind, cfg).Signal
}

func (d BollingerRsi) Suggest(ind *calculator.Indicators, cfg config.Scoring) []model.Suggestion {
	return d.Analyze(ind, cfg).Suggestions
}

// Analyze scores the last bar.
func (d BollingerRsi) Analyze(ind *calculator.Indicators, cfg config.Scoring) BollingerRsiAnalysis {
	n := ind.Len()
	last := n - 1
	if n < d.MinBars(cfg.Indicators) {
		return BollingerRsiAnalysis{Signal: neutralSignal(d.Category())}
	}
	upper, okU := calculator.Value(ind.BB.Upper, last)
	mid, okM := calculator.Value(ind.BB.Middle, last)
	lower, okL := calculator.Value(ind.BB.Lower, last)
	rsi, okR := calculator.Value(ind.RSI, last)
	if !okU || !okM || !okL || !okR {
		return BollingerRsiAnalysis{Signal: neutralSignal(d.Category())}
	}

	closePrice := ind.Closes[last]
	a := BollingerRsiAnalysis{
		Position:   bandPosition(closePrice, upper, mid, lower),
		BandState:  bandState(ind.BB.Width),
		PercentB:   ind.Latest().BBPercentB,
		Breakout:   detectBreakout(ind, last),
		Divergence: DetectDivergence(ind.Highs, ind.Lows, ind.RSI, divergenceLookback),
		RSI:        rsi,
		RSIZone:    rsiZone(rsi),
		RSITrend:   rsiTrend(definedTail(ind.RSI, rsiTrendBars)),
	}
	a.BBSignal = bbSignal(a.Breakout, a.PercentB)
	a.RSISignal = rsiSignal(a.RSIZone, a.RSITrend, a.Divergence)

	w := cfg.BollingerRsi.RSIWeight
	score := clamp((labelPoints(a.BBSignal)+labelPoints(a.RSISignal)*w)/(1+w), 0, 100)

	reliability := 50
	if a.Divergence != nil {
		reliability = a.Divergence.Reliability
	}

	a.Signal = model.Signal{
		Category:    d.Category(),
		Label:       Classify(score, cfg.Thresholds.Detector),
		Score:       score,
		Rationale:   a.rationale(),
		Reliability: reliability,
	}
	a.Suggestions = a.suggest(closePrice, upper, mid, lower)
	return a
}

func (a BollingerRsiAnalysis) rationale() string {
	parts := []string{
		fmt.Sprintf("price %s, bands %s", a.Position, a.BandState),
		fmt.Sprintf("RSI %.1f %s/%s", a.RSI, a.RSIZone, a.RSITrend),
	}
	if a.Breakout != nil {
		parts = append(parts, a.Breakout.Kind+" band breakout")
	}
	if a.Divergence != nil {
		parts = append(parts, a.Divergence.Kind+" divergence")
	}
	return strings.Join(parts, "; ")
}

func bandPosition(c, upper, mid, lower float64) string {
	switch {
	case c > upper:
		return PositionAboveUpper
	case c > mid:
		return PositionUpperHalf
	case c > lower:
		return PositionLowerHalf
	default:
		return PositionBelowLower
	}
}

// bandState compares the latest width with the trailing average width.
func bandState(width []float64) string {
	tail := definedTail(width, bandWidthLookback)
	if len(tail) == 0 {
		return BandNormal
	}
	cur := tail[len(tail)-1]
	avg := mean(tail)
	switch {
	case avg == 0:
		return BandNormal
	case cur < avg*0.7:
		return BandSqueeze
	case cur > avg*1.3:
		return BandExpansion
	default:
		return BandNormal
	}
}

func detectBreakout(ind *calculator.Indicators, last int) *Breakout {
	prev := last - 1
	if prev < 0 {
		return nil
	}
	pu, ok1 := calculator.Value(ind.BB.Upper, prev)
	pm, ok2 := calculator.Value(ind.BB.Middle, prev)
	pl, ok3 := calculator.Value(ind.BB.Lower, prev)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	u, m, l := ind.BB.Upper[last], ind.BB.Middle[last], ind.BB.Lower[last]
	pc, c := ind.Closes[prev], ind.Closes[last]

	switch {
	case pc <= pu && c > u:
		return &Breakout{Kind: BreakoutUpper, Label: model.Caution}
	case pc >= pl && c < l:
		return &Breakout{Kind: BreakoutLower, Label: model.Buy}
	case pc <= pm && c > m:
		return &Breakout{Kind: BreakoutMiddleUp, Label: model.Buy}
	case pc >= pm && c < m:
		return &Breakout{Kind: BreakoutMiddleDown, Label: model.Sell}
	}
	return nil
}

// DetectDivergence compares the earliest and latest of the three most extreme
// highs and lows in the trailing window against RSI at the same bars.
func DetectDivergence(highs, lows, rsi []float64, lookback int) *Divergence {
	n := len(highs)
	start := max(0, n-lookback)

	peaks := withRSI(extremeIndices(highs, start, n, divergenceExtrema, true), rsi)
	troughs := withRSI(extremeIndices(lows, start, n, divergenceExtrema, false), rsi)
	if len(peaks) < 2 || len(troughs) < 2 {
		return nil
	}

	lf, ll := troughs[0], troughs[len(troughs)-1]
	if lows[ll] < lows[lf] && rsi[ll] > rsi[lf] {
		return &Divergence{Kind: DivergenceBullish, Reliability: divergenceReliability, First: lf, Last: ll}
	}
	hf, hl := peaks[0], peaks[len(peaks)-1]
	if highs[hl] > highs[hf] && rsi[hl] < rsi[hf] {
		return &Divergence{Kind: DivergenceBearish, Reliability: divergenceReliability, First: hf, Last: hl}
	}
	return nil
}

// extremeIndices returns the k most extreme indices of values[start:end] in
// chronological order. Ties resolve to the earlier bar.
func extremeIndices(values []float64, start, end, k int, highest bool) []int {
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if highest {
			return values[idx[a]] > values[idx[b]]
		}
		return values[idx[a]] < values[idx[b]]
	})
	if len(idx) > k {
		idx = idx[:k]
	}
	sort.Ints(idx)
	return idx
}

func withRSI(idx []int, rsi []float64) []int {
	out := idx[:0]
	for _, i := range idx {
		if _, ok := calculator.Value(rsi, i); ok {
			out = append(out, i)
		}
	}
	return out
}

func bbSignal(b *Breakout, percentB *float64) model.SignalLabel {
	if b != nil {
		return b.Label
	}
	if percentB == nil {
		return model.Neutral
	}
	switch pb := *percentB; {
	case pb > 1.0:
		return model.Caution
	case pb > 0.8:
		return model.Neutral
	case pb > 0.5:
		return model.Buy
	case pb > 0.2:
		return model.Neutral
	default:
		return model.StrongBuy
	}
}

func rsiSignal(zone, trend string, div *Divergence) model.SignalLabel {
	if div != nil {
		if div.Kind == DivergenceBullish {
			return model.Buy
		}
		return model.Sell
	}
	up := trend == TrendUp || trend == TrendStrongUp
	down := trend == TrendDown || trend == TrendStrongDown

	switch zone {
	case ZoneOversold:
		return model.StrongBuy
	case ZoneWeak:
		if up {
			return model.Buy
		}
	case ZoneNeutral:
		if up {
			return model.Buy
		}
		if down {
			return model.Sell
		}
	case ZoneStrong:
		if down {
			return model.Sell
		}
	case ZoneOverbought:
		return model.Caution
	}
	return model.Neutral
}

func (a BollingerRsiAnalysis) suggest(c, upper, mid, lower float64) []model.Suggestion {
	cat := model.CategoryBollingerRsi
	var out []model.Suggestion

	lowerHalf := a.Position == PositionBelowLower || a.Position == PositionLowerHalf
	upperHalf := a.Position == PositionAboveUpper || a.Position == PositionUpperHalf

	if a.RSIZone == ZoneOversold && lowerHalf {
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "oversold_bounce", Action: model.ActionBuy, Confidence: 85,
			Reason: "RSI oversold near the lower band",
			Entry:  price(c), Target: price(mid), StopLoss: scaled(lower, 0.98),
		})
	}
	if a.RSIZone == ZoneOverbought && upperHalf {
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "overbought_pullback", Action: model.ActionSell, Confidence: 75,
			Reason: "RSI overbought near the upper band",
			Entry:  price(c), Target: price(mid), StopLoss: scaled(upper, 1.02),
		})
	}
	if a.BandState == BandSqueeze && a.RSIZone == ZoneNeutral {
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "squeeze_breakout", Action: model.ActionWait, Confidence: 70,
			Reason: "bands squeezed, wait for a directional break",
			Entry:  price(c), Target: price(upper), StopLoss: price(lower),
		})
	}
	if d := a.Divergence; d != nil {
		s := model.Suggestion{Source: cat, Confidence: d.Reliability, Entry: price(c)}
		if d.Kind == DivergenceBullish {
			s.Strategy, s.Action, s.Reason = "bullish_divergence", model.ActionBuy, "price lower low with higher RSI"
			s.Target, s.StopLoss = price(upper), scaled(c, 0.97)
		} else {
			s.Strategy, s.Action, s.Reason = "bearish_divergence", model.ActionSell, "price higher high with lower RSI"
			s.Target, s.StopLoss = price(lower), scaled(c, 1.03)
		}
		out = append(out, s)
	}
	if b := a.Breakout; b != nil {
		switch b.Kind {
		case BreakoutMiddleUp:
			out = append(out, model.Suggestion{
				Source: cat, Strategy: "middle_band_breakout", Action: model.ActionBuy, Confidence: 65,
				Reason: "close crossed above the middle band",
				Entry:  price(c), Target: price(upper), StopLoss: scaled(mid, 0.98),
			})
		case BreakoutMiddleDown:
			out = append(out, model.Suggestion{
				Source: cat, Strategy: "middle_band_breakdown", Action: model.ActionSell, Confidence: 65,
				Reason: "close crossed below the middle band",
				Entry:  price(c), Target: price(lower), StopLoss: scaled(mid, 1.02),
			})
		}
	}
	return rankSuggestions(out, 3)
}
