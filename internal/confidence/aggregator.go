package confidence

import (
	"math"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
	"SignalSentinel/pkg/errors"
)

// Reason and uncertainty categories, in report order.
const (
	CategoryTechnical         = "technical"
	CategorySentiment         = "sentiment"
	CategoryVolume            = "volume"
	CategorySupportResistance = "support_resistance"
)

// fullHistoryBars is the history every detector needs to score.
const fullHistoryBars = 125

// Inputs is everything the fold reads. Nil pointers mean the context is missing.
type Inputs struct {
	Symbol string
	AsOf   time.Time
	Bars   int

	Snapshot  model.IndicatorSnapshot
	RSIFlat   bool   // RSI window at the last bar had neither gains nor losses
	Trend     int    // 0~100, see calculator.TrendScore
	Alignment string // strategy.Align*
	Cross     string // MA20xMA60 cross on the last bar: strategy.CrossGolden, CrossDead or ""

	Signals   []model.Signal
	Sentiment *model.SentimentScore
	Volume    *model.VolumeContext
	SR        *model.SupportResistanceContext
}

// Analysis is one full run over a price series.
type Analysis struct {
	Result      model.ConfidenceResult
	Snapshot    model.IndicatorSnapshot
	Suggestions []model.Suggestion
	Opinion     Opinion
}

// Aggregator turns a price series and a sentiment score into a ConfidenceResult.
// It is immutable after construction and safe for concurrent use.
type Aggregator struct {
	cfg       config.Scoring
	engine    *calculator.Engine
	detectors []strategy.Detector
}

// NewAggregator creates an Aggregator. With no detectors it uses strategy.DefaultDetectors.
func NewAggregator(cfg config.Scoring, detectors ...strategy.Detector) *Aggregator {
	if len(detectors) == 0 {
		detectors = strategy.DefaultDetectors()
	}
	return &Aggregator{
		cfg:       cfg,
		engine:    calculator.NewEngine(cfg.Indicators),
		detectors: append([]strategy.Detector(nil), detectors...),
	}
}

// Config returns the scoring configuration.
func (a *Aggregator) Config() config.Scoring { return a.cfg }

// Analyze computes indicators, runs every detector and aggregates the result.
// It fails only on malformed input; short series degrade to neutral defaults.
func (a *Aggregator) Analyze(series model.PriceSeries, sentiment *model.SentimentScore) (*Analysis, error) {
	ind, err := a.engine.Compute(series)
	if err != nil {
		return nil, errors.Wrapf(err, "analyze %s", series.Symbol)
	}

	in := Inputs{
		Symbol:    series.Symbol,
		AsOf:      series.Last().Time,
		Bars:      ind.Len(),
		Snapshot:  ind.Latest(),
		RSIFlat:   ind.RSIDegenerate(ind.Len() - 1),
		Trend:     ind.TrendScore(),
		Cross:     lastCross(ind),
		Sentiment: sentiment,
	}
	in.Alignment, _ = strategy.Alignment(ind)
	if vc, ok := (strategy.Volume{}).Context(ind, a.cfg); ok {
		in.Volume = &vc
	}
	sr := ind.SR
	in.SR = &sr

	var suggestions []model.Suggestion
	for _, d := range a.detectors {
		in.Signals = append(in.Signals, d.Compute(ind, a.cfg))
		if adv, ok := d.(strategy.Advisor); ok {
			suggestions = append(suggestions, adv.Suggest(ind, a.cfg)...)
		}
	}

	res := a.Aggregate(in)
	return &Analysis{
		Result:      res,
		Snapshot:    in.Snapshot,
		Suggestions: suggestions,
		Opinion:     BuildOpinion(res),
	}, nil
}

// lastCross reports an MA20xMA60 cross on the final bar.
func lastCross(ind *calculator.Indicators) string {
	for _, e := range strategy.DetectCrosses(ind, 1) {
		if e.Pair.Short == 20 && e.Pair.Long == 60 {
			return e.Kind
		}
	}
	return ""
}

// Aggregate folds the inputs into a result. It is pure: the same inputs
// always give the same result.
func (a *Aggregator) Aggregate(in Inputs) model.ConfidenceResult {
	var reasons []model.Reason
	var uncertainties []model.Uncertainty
	collect := func(base float64, contribs []Contribution) float64 {
		score, r, u := fold(base, contribs)
		reasons = append(reasons, r...)
		uncertainties = append(uncertainties, u...)
		return score
	}

	tech := collect(0.5, technicalContributions(in, a.cfg))
	sentBase, sentContribs := sentimentContributions(in, a.cfg)
	sent := collect(sentBase, sentContribs)
	vol := collect(0.5, volumeContributions(in, a.cfg))
	sr := collect(0.5, supportResistanceContributions(in, a.cfg))
	uncertainties = append(uncertainties, additionalUncertainties(in)...)

	w := a.cfg.Weights
	total := (tech*w.Technical + sent*w.Sentiment + vol*w.Volume + sr*w.SupportResistance) * 100
	total = clamp(total, 0, 100)

	return model.ConfidenceResult{
		Symbol:        in.Symbol,
		AsOf:          in.AsOf,
		Score:         total,
		Signal:        strategy.Classify(total, a.cfg.Thresholds.Aggregate),
		Reasons:       reasons,
		Uncertainties: uncertainties,
		Breakdown: model.Breakdown{
			Technical:         percent(tech),
			Sentiment:         percent(sent),
			Volume:            percent(vol),
			SupportResistance: percent(sr),
		},
		Signals: append([]model.Signal(nil), in.Signals...),
	}
}

// percent converts a 0~1 sub-score to 0~100 with one decimal.
func percent(v float64) float64 {
	return math.Round(v*1000) / 10
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
