package confidence

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
	"SignalSentinel/pkg/errors"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func series(closes []float64) model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time: t0.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: math.Max(c-0.5, 0), Close: c, Volume: 1000,
		}
	}
	return model.PriceSeries{Symbol: "TEST", Bars: bars}
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func f(v float64) *float64 { return &v }

func factors(us []model.Uncertainty) []string {
	var out []string
	for _, u := range us {
		out = append(out, u.Factor)
	}
	return out
}

func TestAnalyze_RisingSeries(t *testing.T) {
	agg := NewAggregator(config.DefaultScoring())
	a, err := agg.Analyze(series(linear(150, 100, 1)), nil)
	require.NoError(t, err)

	res := a.Result
	assert.Contains(t, []model.SignalLabel{model.Buy, model.StrongBuy}, res.Signal)
	require.NotNil(t, a.Snapshot.MACDHist)
	assert.Greater(t, *a.Snapshot.MACDHist, 0.0)
	assert.InDelta(t, 63.9, res.Score, 0.05)
	assert.Equal(t, 86.0, res.Breakdown.Technical)
	assert.Equal(t, 50.0, res.Breakdown.Sentiment)
	assert.Equal(t, 45.0, res.Breakdown.SupportResistance)

	// overbought RSI is read as trend confirmation, not a penalty
	assert.Contains(t, factors(res.Uncertainties), "Uptrend confirmation")
	for _, r := range res.Reasons {
		assert.NotEqual(t, "RSI", r.Indicator)
		assert.NotEqual(t, "RSI zone", r.Indicator)
	}
	assert.Len(t, res.Signals, 4)
	assert.NotEmpty(t, a.Suggestions)
	assert.NotEmpty(t, a.Opinion.Headline)
}

func TestAnalyze_FlatSeries(t *testing.T) {
	agg := NewAggregator(config.DefaultScoring())
	a, err := agg.Analyze(series(linear(100, 100, 0)), nil)
	require.NoError(t, err)

	require.NotNil(t, a.Snapshot.BBWidth)
	assert.InDelta(t, 0, *a.Snapshot.BBWidth, 1e-12)
	require.NotNil(t, a.Snapshot.RSI)
	assert.Equal(t, 100.0, *a.Snapshot.RSI)

	res := a.Result
	assert.Equal(t, model.Neutral, res.Signal)
	assert.InDelta(t, 54.5, res.Score, 1e-9)

	fs := factors(res.Uncertainties)
	assert.Contains(t, fs, "Flat RSI window")
	assert.Contains(t, fs, "Short history")
	assert.Contains(t, fs, "Insufficient data")
	assert.Contains(t, fs, "No news")
}

func TestAnalyze_RejectsMalformedSeries(t *testing.T) {
	agg := NewAggregator(config.DefaultScoring())
	_, err := agg.Analyze(model.PriceSeries{Symbol: "EMPTY"}, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptySeries))
}

func TestNewAggregator_CustomDetectors(t *testing.T) {
	agg := NewAggregator(config.DefaultScoring(), strategy.Volume{})
	a, err := agg.Analyze(series(linear(30, 100, 1)), nil)
	require.NoError(t, err)
	require.Len(t, a.Result.Signals, 1)
	assert.Equal(t, model.CategoryVolume, a.Result.Signals[0].Category)
}

func extremeInputs(bullish bool) Inputs {
	sign := 1.0
	score := 100.0
	rsi, trend, cross, sent := 10.0, 100, strategy.CrossGolden, 5.0
	if !bullish {
		sign, score = -1, 0
		rsi, trend, cross, sent = 95, 0, strategy.CrossDead, -3
	}
	var signals []model.Signal
	for _, d := range strategy.DefaultDetectors() {
		signals = append(signals, model.Signal{Category: d.Category(), Score: score, Reliability: 90})
	}
	return Inputs{
		Symbol: "X",
		Bars:   200,
		Snapshot: model.IndicatorSnapshot{
			RSI: f(rsi), MACD: f(sign), MACDSignal: f(0), MACDHist: f(sign), BBPercentB: f(0.5),
		},
		Trend:     trend,
		Alignment: strategy.AlignMixed,
		Cross:     cross,
		Signals:   signals,
		Sentiment: &model.SentimentScore{OverallScore: sent, OverallSentiment: "positive", TotalNews: 20, PositiveCount: 20},
		Volume:    &model.VolumeContext{Ratio: 3, Spike: bullish, Level: "extreme_surge"},
		SR:        &model.SupportResistanceContext{NearSupport: bullish, NearResistance: !bullish},
	}
}

func TestAggregate_ClampsExtremes(t *testing.T) {
	agg := NewAggregator(config.DefaultScoring())

	hi := agg.Aggregate(extremeInputs(true))
	assert.LessOrEqual(t, hi.Score, 100.0)
	assert.Equal(t, 100.0, hi.Breakdown.Technical)
	assert.Equal(t, 100.0, hi.Breakdown.Sentiment)
	assert.Equal(t, model.StrongBuy, hi.Signal)

	lo := agg.Aggregate(extremeInputs(false))
	assert.GreaterOrEqual(t, lo.Score, 0.0)
	assert.Equal(t, 0.0, lo.Breakdown.Technical)
	assert.Equal(t, 0.0, lo.Breakdown.Sentiment)
	assert.Equal(t, model.StrongSell, lo.Signal)
}

func TestAggregate_MixedCategoryExtremes(t *testing.T) {
	in := extremeInputs(true)
	in.Sentiment.OverallScore = 0
	res := NewAggregator(config.DefaultScoring()).Aggregate(in)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 100.0)
}

func TestAggregate_ReasonOrderFollowsCategories(t *testing.T) {
	res := NewAggregator(config.DefaultScoring()).Aggregate(extremeInputs(true))
	rank := map[string]int{
		CategoryTechnical:         0,
		CategorySentiment:         1,
		CategoryVolume:            2,
		CategorySupportResistance: 3,
	}
	require.NotEmpty(t, res.Reasons)
	prev := 0
	for _, r := range res.Reasons {
		cur, ok := rank[r.Category]
		require.True(t, ok, "unknown category %q", r.Category)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, CategorySupportResistance, res.Reasons[len(res.Reasons)-1].Category)
}

func TestAggregate_Deterministic(t *testing.T) {
	agg := NewAggregator(config.DefaultScoring())
	in := extremeInputs(false)
	assert.Equal(t, agg.Aggregate(in), agg.Aggregate(in))
}

func TestAggregate_PerfectBearSuppressesOversold(t *testing.T) {
	in := Inputs{
		Bars:      200,
		Snapshot:  model.IndicatorSnapshot{RSI: f(20)},
		Trend:     50,
		Alignment: strategy.AlignPerfectBear,
	}
	res := NewAggregator(config.DefaultScoring()).Aggregate(in)
	assert.Contains(t, factors(res.Uncertainties), "Downtrend confirmation")
	assert.Equal(t, 50.0, res.Breakdown.Technical)
}

func TestSentimentContributions(t *testing.T) {
	cfg := config.DefaultScoring()

	base, cs := sentimentContributions(Inputs{}, cfg)
	assert.Equal(t, 0.5, base)
	require.Len(t, cs, 1)
	assert.NotNil(t, cs[0].Uncertainty)

	in := Inputs{Sentiment: &model.SentimentScore{
		OverallScore: 0.2, OverallSentiment: "negative", TotalNews: 3, NegativeCount: 2,
	}}
	base, cs = sentimentContributions(in, cfg)
	assert.Equal(t, 0.2, base)
	require.Len(t, cs, 2)
	assert.Equal(t, "Few news items", cs[0].Uncertainty.Factor)
	assert.Equal(t, -20.0, cs[1].Reason.Impact)
	assert.Equal(t, 0.0, cs[1].Delta)
}

func TestVolumeContributions_ElseIfChain(t *testing.T) {
	cfg := config.DefaultScoring()
	tests := []struct {
		name  string
		vc    *model.VolumeContext
		want  float64
		flags int
	}{
		{"spike", &model.VolumeContext{Ratio: 2, Spike: true}, 0.65, 0},
		{"rising", &model.VolumeContext{Ratio: 1.3}, 0.58, 0},
		{"thin", &model.VolumeContext{Ratio: 0.5}, 0.45, 1},
		{"normal", &model.VolumeContext{Ratio: 1}, 0.5, 0},
		{"missing", nil, 0.5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _, us := fold(0.5, volumeContributions(Inputs{Volume: tt.vc}, cfg))
			assert.InDelta(t, tt.want, score, 1e-9)
			assert.Len(t, us, tt.flags)
		})
	}
}

func TestSupportResistanceContributions(t *testing.T) {
	in := Inputs{SR: &model.SupportResistanceContext{
		Support: 95, Resistance: 105, NearSupport: true, NearResistance: true,
	}}
	score, rs, us := fold(0.5, supportResistanceContributions(in, config.DefaultScoring()))
	assert.InDelta(t, 0.55, score, 1e-9)
	assert.Len(t, rs, 2)
	assert.Len(t, us, 1)
}
