package strategy

import (
	"fmt"
	"strings"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// Volume levels by ratio to the 20-bar average.
const (
	LevelExtremeSurge = "extreme_surge"
	LevelSurge        = "surge"
	LevelHigh         = "high"
	LevelNormal       = "normal"
	LevelLow          = "low"
	LevelVeryLow      = "very_low"
)

// Surge kinds.
const (
	SurgeExtreme = "extreme_surge"
	SurgeNormal  = "surge"
	SurgeDecline = "decline"
)

// Volume trend bands.
const (
	VolumeIncreasing         = "increasing"
	VolumeSlightlyIncreasing = "slightly_increasing"
	VolumeStable             = "stable"
	VolumeSlightlyDecreasing = "slightly_decreasing"
	VolumeDecreasing         = "decreasing"
)

// Price-volume patterns.
const (
	PVBullishConfirmation = "bullish_confirmation"
	PVBullishWeak         = "bullish_weak"
	PVBearishConfirmation = "bearish_confirmation"
	PVBearishWeak         = "bearish_weak"
	PVConsolidationHigh   = "consolidation_high_volume"
	PVConsolidation       = "consolidation"
	PVMixed               = "mixed"
)

// Cues attached to surges and price-volume patterns.
const (
	CueAttention       = "attention"
	CueCaution         = "caution"
	CueStrongBuy       = "strong_buy"
	CueStrongSell      = "strong_sell"
	CueWatch           = "watch"
	CueBreakoutPending = "breakout_pending"
	CueNeutral         = "neutral"
)

const (
	volumeMinBars   = 20
	volumeTrendBars = 10
	pvPatternBars   = 10
	volumeAvgWindow = 20
)

// Surge is an unusual volume reading on the last bar.
type Surge struct {
	Kind        string
	Reliability int
	Cue         string
}

// PriceVolumePattern relates the recent price move to the volume change.
type PriceVolumePattern struct {
	Name         string
	Cue          string
	Reliability  int
	PriceChange  float64 // percent
	VolumeChange float64 // percent
}

// VolumeAnalysis is the full read of the volume detector.
type VolumeAnalysis struct {
	Signal model.Signal

	Ratio      float64 // percent of the 20-bar average
	Level      string
	Trend      string
	TrendSlope float64
	Surge      *Surge
	Spike      bool
	Pattern    PriceVolumePattern

	TradingValue      float64
	TradingValueRatio float64

	Suggestions []model.Suggestion
}

// Volume scores participation on the last bar.
type Volume struct{}

func (Volume) Category() model.Category { return model.CategoryVolume }

func (d Volume) Compute(ind *calculator.Indicators, cfg config.Scoring) model.Signal {
	return d.Analyze(ind, cfg).Signal
}

func (d Volume) Suggest(ind *calculator.Indicators, cfg config.Scoring) []model.Suggestion {
	return d.Analyze(ind, cfg).Suggestions
}

// Context summarizes volume for the aggregator. ok is false when the
// series is too short for a 20-bar average.
func (Volume) Context(ind *calculator.Indicators, cfg config.Scoring) (model.VolumeContext, bool) {
	ratio, ok := volumeRatio(ind)
	if !ok {
		return model.VolumeContext{}, false
	}
	return model.VolumeContext{
		Ratio: ratio / 100,
		Spike: isSpike(ratio, cfg),
		Level: volumeLevel(ratio),
	}, true
}

// isSpike reports a last-bar volume strictly above SpikeRatio times the average.
func isSpike(ratio float64, cfg config.Scoring) bool {
	return ratio > cfg.Volume.SpikeRatio*100
}

// Analyze scores the last bar.
func (d Volume) Analyze(ind *calculator.Indicators, cfg config.Scoring) VolumeAnalysis {
	ratio, ok := volumeRatio(ind)
	if ind.Len() < volumeMinBars || !ok {
		return VolumeAnalysis{Signal: neutralSignal(d.Category())}
	}
	last := ind.Len() - 1
	avg, _ := calculator.Value(ind.VolumeMA20, last)

	a := VolumeAnalysis{
		Ratio:   ratio,
		Level:   volumeLevel(ratio),
		Surge:   detectSurge(ratio),
		Spike:   isSpike(ratio, cfg),
		Pattern: priceVolumePattern(ind.Closes, ind.Volumes),
	}
	a.TrendSlope, a.Trend = volumeTrend(ind.Volumes, avg)
	a.TradingValue, a.TradingValueRatio = tradingValue(ind.Closes, ind.Volumes)

	score := 50 + levelAdjustment(a.Level) + cueAdjustment(a.Pattern.Cue)
	reliability := a.Pattern.Reliability
	if a.Surge != nil {
		score += surgeAdjustment(a.Surge.Kind)
		reliability = a.Surge.Reliability
	}
	score = clamp(score, 0, 100)

	a.Signal = model.Signal{
		Category:    d.Category(),
		Label:       Classify(score, cfg.Thresholds.Volume),
		Score:       score,
		Rationale:   a.rationale(),
		Reliability: reliability,
	}
	a.Suggestions = a.suggest(ind)
	return a
}

func (a VolumeAnalysis) rationale() string {
	parts := []string{
		fmt.Sprintf("volume %.0f%% of average (%s)", a.Ratio, a.Level),
		"trend " + a.Trend,
		"pattern " + a.Pattern.Name,
	}
	if a.Surge != nil {
		parts = append(parts, a.Surge.Kind)
	}
	return strings.Join(parts, "; ")
}

// volumeRatio returns the last volume as a percentage of its 20-bar average.
// A zero average yields 100.
func volumeRatio(ind *calculator.Indicators) (float64, bool) {
	last := ind.Len() - 1
	avg, ok := calculator.Value(ind.VolumeMA20, last)
	if !ok {
		return 0, false
	}
	if avg == 0 {
		return 100, true
	}
	return ind.Volumes[last] / avg * 100, true
}

func volumeLevel(ratio float64) string {
	switch {
	case ratio >= 200:
		return LevelExtremeSurge
	case ratio >= 150:
		return LevelSurge
	case ratio >= 120:
		return LevelHigh
	case ratio >= 80:
		return LevelNormal
	case ratio >= 50:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

func detectSurge(ratio float64) *Surge {
	switch {
	case ratio >= 200:
		return &Surge{Kind: SurgeExtreme, Reliability: 90, Cue: CueAttention}
	case ratio >= 150:
		return &Surge{Kind: SurgeNormal, Reliability: 80, Cue: CueAttention}
	case ratio <= 50:
		return &Surge{Kind: SurgeDecline, Reliability: 70, Cue: CueCaution}
	}
	return nil
}

func volumeTrend(volumes []float64, avg float64) (float64, string) {
	if len(volumes) < volumeTrendBars || avg == 0 {
		return 0, VolumeStable
	}
	slope := calculator.Slope(volumes[len(volumes)-volumeTrendBars:]) / avg * 100
	switch {
	case slope > 5:
		return slope, VolumeIncreasing
	case slope > 2:
		return slope, VolumeSlightlyIncreasing
	case slope > -2:
		return slope, VolumeStable
	case slope > -5:
		return slope, VolumeSlightlyDecreasing
	default:
		return slope, VolumeDecreasing
	}
}

func priceVolumePattern(closes, volumes []float64) PriceVolumePattern {
	n := len(closes)
	if n < pvPatternBars {
		return PriceVolumePattern{Name: PVMixed, Cue: CueNeutral, Reliability: 50}
	}
	p := PriceVolumePattern{
		PriceChange:  pctChange(closes[n-5], closes[n-1]),
		VolumeChange: pctChange(mean(volumes[n-10:n-5]), mean(volumes[n-5:])),
	}
	pc, vc := p.PriceChange, p.VolumeChange
	switch {
	case pc > 2 && vc > 20:
		p.Name, p.Cue, p.Reliability = PVBullishConfirmation, CueStrongBuy, 85
	case pc > 2 && vc < -10:
		p.Name, p.Cue, p.Reliability = PVBullishWeak, CueCaution, 60
	case pc < -2 && vc > 20:
		p.Name, p.Cue, p.Reliability = PVBearishConfirmation, CueStrongSell, 85
	case pc < -2 && vc < -10:
		p.Name, p.Cue, p.Reliability = PVBearishWeak, CueWatch, 65
	case pc >= -2 && pc <= 2 && vc > 30:
		p.Name, p.Cue, p.Reliability = PVConsolidationHigh, CueBreakoutPending, 70
	case pc >= -2 && pc <= 2:
		p.Name, p.Cue, p.Reliability = PVConsolidation, CueNeutral, 50
	default:
		p.Name, p.Cue, p.Reliability = PVMixed, CueNeutral, 50
	}
	return p
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// tradingValue returns volume*close on the last bar and its ratio to the
// trailing 20-bar mean. A zero mean yields a ratio of 1.
func tradingValue(closes, volumes []float64) (float64, float64) {
	n := len(closes)
	values := make([]float64, n)
	for i := range closes {
		values[i] = closes[i] * volumes[i]
	}
	cur := values[n-1]
	avg, err := calculator.CalculateSMA(values, volumeAvgWindow)
	if err != nil || avg == 0 {
		return cur, 1
	}
	return cur, cur / avg
}

func levelAdjustment(level string) float64 {
	switch level {
	case LevelExtremeSurge:
		return 15
	case LevelSurge:
		return 10
	case LevelHigh:
		return 5
	case LevelLow:
		return -5
	case LevelVeryLow:
		return -10
	}
	return 0
}

func surgeAdjustment(kind string) float64 {
	switch kind {
	case SurgeExtreme:
		return 10
	case SurgeNormal:
		return 7
	case SurgeDecline:
		return -10
	}
	return 0
}

func cueAdjustment(cue string) float64 {
	switch cue {
	case CueStrongBuy:
		return 20
	case CueStrongSell:
		return -20
	case CueCaution:
		return -5
	case CueWatch:
		return 5
	}
	return 0
}

func (a VolumeAnalysis) suggest(ind *calculator.Indicators) []model.Suggestion {
	cat := model.CategoryVolume
	c := ind.Closes[ind.Len()-1]

	var out []model.Suggestion
	switch a.Pattern.Name {
	case PVBullishConfirmation:
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "volume_breakout", Action: model.ActionBuy, Confidence: 85,
			Reason: "price rising on expanding volume",
			Entry:  price(c), Target: scaled(c, 1.05), StopLoss: scaled(c, 0.97),
		})
	case PVBearishConfirmation:
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "volume_breakdown", Action: model.ActionSell, Confidence: 85,
			Reason: "price falling on expanding volume",
			Entry:  price(c), Target: scaled(c, 0.95), StopLoss: scaled(c, 1.03),
		})
	case PVConsolidationHigh:
		out = append(out, model.Suggestion{
			Source: cat, Strategy: "breakout_watch", Action: model.ActionWait, Confidence: 70,
			Reason: "volume building inside a range",
			Entry:  price(c), Target: price(ind.SR.Resistance), StopLoss: price(ind.SR.Support),
		})
	}
	if a.Surge != nil {
		switch {
		case a.Surge.Kind == SurgeExtreme && a.Pattern.PriceChange > 0:
			out = append(out, model.Suggestion{
				Source: cat, Strategy: "surge_momentum", Action: model.ActionBuy, Confidence: 75,
				Reason: "extreme volume on an up move",
				Entry:  price(c), Target: scaled(c, 1.07), StopLoss: scaled(c, 0.96),
			})
		case a.Surge.Kind == SurgeDecline:
			out = append(out, model.Suggestion{
				Source: cat, Strategy: "low_participation", Action: model.ActionWait, Confidence: 60,
				Reason: "volume dried up, signals are less reliable",
				Entry:  price(c), Target: price(c), StopLoss: scaled(c, 0.97),
			})
		}
	}
	return rankSuggestions(out, 3)
}
