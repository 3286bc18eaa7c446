package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds raw price data for analysis. Bars are ordered by strictly
// increasing Time; analyzers read it and never write to it.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar, or the zero bar for an empty series.
func (s PriceSeries) Last() OHLCV {
	if len(s.Bars) == 0 {
		return OHLCV{}
	}
	return s.Bars[len(s.Bars)-1]
}

// Clone returns a copy that shares no memory with s.
func (s PriceSeries) Clone() PriceSeries {
	bars := make([]OHLCV, len(s.Bars))
	copy(bars, s.Bars)
	return PriceSeries{Symbol: s.Symbol, Bars: bars, FetchedAt: s.FetchedAt}
}

func (s PriceSeries) Opens() []float64   { return s.extract(func(b OHLCV) float64 { return b.Open }) }
func (s PriceSeries) Highs() []float64   { return s.extract(func(b OHLCV) float64 { return b.High }) }
func (s PriceSeries) Lows() []float64    { return s.extract(func(b OHLCV) float64 { return b.Low }) }
func (s PriceSeries) Closes() []float64  { return s.extract(func(b OHLCV) float64 { return b.Close }) }
func (s PriceSeries) Volumes() []float64 { return s.extract(func(b OHLCV) float64 { return b.Volume }) }

func (s PriceSeries) extract(field func(OHLCV) float64) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = field(b)
	}
	return out
}

// SentimentScore is the externally computed news sentiment for a symbol.
type SentimentScore struct {
	OverallScore     float64 `json:"overall_score" yaml:"overall_score"` // 0.0 ~ 1.0
	OverallSentiment string  `json:"overall_sentiment" yaml:"overall_sentiment"`
	PositiveCount    int     `json:"positive_count" yaml:"positive_count"`
	NegativeCount    int     `json:"negative_count" yaml:"negative_count"`
	NeutralCount     int     `json:"neutral_count" yaml:"neutral_count"`
	TotalNews        int     `json:"total_news" yaml:"total_news"`
}

// VolumeContext summarizes the latest bar's volume against its 20-bar average.
type VolumeContext struct {
	Ratio float64 // current / avg20, 1.0 when the average is zero
	Spike bool
	Level string
}

// SupportResistanceContext describes how close the last close sits to the
// recent trading range.
type SupportResistanceContext struct {
	Support        float64
	Resistance     float64
	NearSupport    bool
	NearResistance bool
}
