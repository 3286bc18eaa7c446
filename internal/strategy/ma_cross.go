package strategy

import (
	"fmt"
	"strings"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// Cross kinds.
const (
	CrossGolden = "golden"
	CrossDead   = "dead"
)

// Alignment states of the close and moving-average stack.
const (
	AlignPerfectBull = "perfect_bull"
	AlignPartialBull = "partial_bull"
	AlignMixed       = "mixed"
	AlignPartialBear = "partial_bear"
	AlignPerfectBear = "perfect_bear"
	AlignUnknown     = "unknown"
)

// Disparity bands.
const (
	DisparityOverbought = "overbought"
	DisparityStrong     = "strong"
	DisparityNeutral    = "neutral"
	DisparityWeak       = "weak"
	DisparityOversold   = "oversold"
)

const maCrossMinBars = 125

// CrossPair is a short/long moving-average pair watched for crosses.
type CrossPair struct {
	Short, Long int
	Reliability int
}

// Name renders the pair as "MA20xMA60".
func (p CrossPair) Name() string { return fmt.Sprintf("MA%dxMA%d", p.Short, p.Long) }

// CrossPairs are scanned in this order.
var CrossPairs = []CrossPair{
	{Short: 5, Long: 20, Reliability: 60},
	{Short: 5, Long: 60, Reliability: 70},
	{Short: 20, Long: 60, Reliability: 85},
	{Short: 60, Long: 120, Reliability: 90},
}

// CrossEvent is a moving-average cross on a specific bar.
type CrossEvent struct {
	Pair        CrossPair
	Kind        string
	Index       int
	Time        time.Time
	Reliability int
}

// MACrossAnalysis is the full read of the moving-average detector.
type MACrossAnalysis struct {
	Signal model.Signal

	Crosses        []CrossEvent
	Alignment      string
	AlignmentScore float64
	Disparity      float64
	DisparityBand  string

	Suggestions []model.Suggestion
}

// MovingAverageCross scores crosses, alignment and disparity of the MA stack.
type MovingAverageCross struct{}

func (MovingAverageCross) Category() model.Category { return model.CategoryMACross }

func (d MovingAverageCross) Compute(ind *calculator.Indicators, cfg config.Scoring) model.Signal {
	return d.Analyze(ind, cfg).Signal
}

func (d MovingAverageCross) Suggest(ind *calculator.Indicators, cfg config.Scoring) []model.Suggestion {
	return d.Analyze(ind, cfg).Suggestions
}

// Analyze scores the last bar.
func (d MovingAverageCross) Analyze(ind *calculator.Indicators, cfg config.Scoring) MACrossAnalysis {
	if ind.Len() < maCrossMinBars {
		return MACrossAnalysis{Signal: neutralSignal(d.Category()), Alignment: AlignUnknown}
	}

	a := MACrossAnalysis{Crosses: DetectCrosses(ind, cfg.MACross.Lookback)}
	a.Alignment, a.AlignmentScore = Alignment(ind)
	a.Disparity = disparity(ind)
	a.DisparityBand = disparityBand(a.Disparity)

	score := 50.0
	reliability := 0
	for _, c := range a.Crosses {
		pts := float64(c.Reliability) * 0.3
		if c.Kind == CrossDead {
			pts = -pts
		}
		score += pts
		reliability = max(reliability, c.Reliability)
	}
	if reliability == 0 {
		reliability = 50
	}
	score += (a.AlignmentScore - 50) * 0.4
	score += disparityAdjustment(a.DisparityBand)
	score = clamp(score, 0, 100)

	a.Signal = model.Signal{
		Category:    d.Category(),
		Label:       Classify(score, cfg.Thresholds.Detector),
		Score:       score,
		Rationale:   a.rationale(),
		Reliability: reliability,
	}
	a.Suggestions = a.suggest(ind)
	return a
}

func (a MACrossAnalysis) rationale() string {
	parts := []string{
		"alignment " + a.Alignment,
		fmt.Sprintf("disparity %.1f (%s)", a.Disparity, a.DisparityBand),
	}
	for _, c := range a.Crosses {
		parts = append(parts, fmt.Sprintf("%s %s cross", c.Pair.Name(), c.Kind))
	}
	return strings.Join(parts, "; ")
}

// DetectCrosses scans the last lookback bars for transitions on every pair.
// Events are ordered by pair, then by bar.
func DetectCrosses(ind *calculator.Indicators, lookback int) []CrossEvent {
	n := ind.Len()
	start := max(1, n-lookback)
	var events []CrossEvent
	for _, p := range CrossPairs {
		s, l := ind.MA(p.Short), ind.MA(p.Long)
		for i := start; i < n; i++ {
			ps, ok1 := calculator.Value(s, i-1)
			pl, ok2 := calculator.Value(l, i-1)
			cs, ok3 := calculator.Value(s, i)
			cl, ok4 := calculator.Value(l, i)
			if !ok1 || !ok2 || !ok3 || !ok4 {
				continue
			}
			kind := ""
			switch {
			case ps <= pl && cs > cl:
				kind = CrossGolden
			case ps >= pl && cs < cl:
				kind = CrossDead
			default:
				continue
			}
			events = append(events, CrossEvent{
				Pair:        p,
				Kind:        kind,
				Index:       i,
				Time:        ind.Series.Bars[i].Time,
				Reliability: p.Reliability,
			})
		}
	}
	return events
}

// Alignment grades close > MA5 > MA20 > MA60 > MA120 at the last bar.
func Alignment(ind *calculator.Indicators) (string, float64) {
	last := ind.Len() - 1
	chain := []float64{0}
	if last >= 0 {
		chain[0] = ind.Closes[last]
	}
	for _, w := range calculator.MAWindows {
		v, ok := calculator.Value(ind.MA(w), last)
		if !ok {
			return AlignUnknown, 50
		}
		chain = append(chain, v)
	}

	bull, bear := 0, 0
	for i := 0; i+1 < len(chain); i++ {
		if chain[i] > chain[i+1] {
			bull++
		}
		if chain[i] < chain[i+1] {
			bear++
		}
	}
	switch {
	case bull == 4:
		return AlignPerfectBull, 100
	case bear == 4:
		return AlignPerfectBear, 0
	case bull >= 3:
		return AlignPartialBull, 50 + 10*float64(bull)
	case bull <= 1:
		return AlignPartialBear, 50 - 10*float64(4-bull)
	default:
		return AlignMixed, 50
	}
}

// disparity averages close/MA over MA20, MA60 and MA120, in percent.
func disparity(ind *calculator.Indicators) float64 {
	last := ind.Len() - 1
	c := ind.Closes[last]
	var vals []float64
	for _, w := range []int{20, 60, 120} {
		if m, ok := calculator.Value(ind.MA(w), last); ok && m != 0 {
			vals = append(vals, c/m*100)
		}
	}
	if len(vals) == 0 {
		return 100
	}
	return mean(vals)
}

func disparityBand(d float64) string {
	switch {
	case d >= 110:
		return DisparityOverbought
	case d >= 105:
		return DisparityStrong
	case d >= 95:
		return DisparityNeutral
	case d >= 90:
		return DisparityWeak
	default:
		return DisparityOversold
	}
}

func disparityAdjustment(band string) float64 {
	switch band {
	case DisparityOverbought:
		return -15
	case DisparityStrong:
		return 10
	case DisparityWeak:
		return -10
	case DisparityOversold:
		return 15
	}
	return 0
}

func (a MACrossAnalysis) suggest(ind *calculator.Indicators) []model.Suggestion {
	cat := model.CategoryMACross
	last := ind.Len() - 1
	c := ind.Closes[last]
	ma20, _ := calculator.Value(ind.MA20, last)

	var golden, dead *CrossEvent
	for i := range a.Crosses {
		e := &a.Crosses[i]
		if e.Kind == CrossGolden && (golden == nil || e.Reliability > golden.Reliability) {
			golden = e
		}
		if e.Kind == CrossDead && (dead == nil || e.Reliability > dead.Reliability) {
			dead = e
		}
	}

	var out []model.Suggestion
	if golden != nil {
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "golden_cross", Action: model.ActionBuy, Confidence: golden.Reliability,
			Reason: golden.Pair.Name() + " golden cross",
			Entry:  price(c), Target: scaled(c, 1.10), StopLoss: scaled(c, 0.95),
		})
	}
	if dead != nil {
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "dead_cross", Action: model.ActionSell, Confidence: dead.Reliability,
			Reason: dead.Pair.Name() + " dead cross",
			Entry:  price(c), Target: scaled(c, 0.90), StopLoss: scaled(c, 1.05),
		})
	}
	switch a.Alignment {
	case AlignPerfectBull:
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "trend_following", Action: model.ActionBuy, Confidence: 90,
			Reason: "moving averages in perfect bullish order",
			Entry:  price(c), Target: scaled(c, 1.10), StopLoss: price(ma20),
		})
	case AlignPerfectBear:
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "stay_out", Action: model.ActionSell, Confidence: 85,
			Reason: "moving averages in perfect bearish order",
			Entry:  price(c), Target: scaled(c, 0.90), StopLoss: price(ma20),
		})
	}
	if a.DisparityBand == DisparityOversold && a.Alignment != AlignPerfectBear {
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "mean_reversion", Action: model.ActionBuy, Confidence: 70,
			Reason: "price stretched far below its averages",
			Entry:  price(c), Target: price(ma20), StopLoss: scaled(c, 0.95),
		})
	}
	if a.DisparityBand == DisparityOverbought && a.Alignment != AlignPerfectBull {
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "take_profit", Action: model.ActionSell, Confidence: 75,
			Reason: "price stretched far above its averages",
			Entry:  price(c), Target: price(ma20), StopLoss: scaled(c, 1.05),
		})
	}
	return rankSuggestions(out, 3)
}
