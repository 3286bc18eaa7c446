package config

import (
	"math"

	"SignalSentinel/pkg/errors"
)

// Scoring holds every weight, threshold and window the analysis core reads.
// It is passed by value into the engine, detectors and aggregator and never
// modified after Load.
type Scoring struct {
	Indicators        IndicatorParams       `yaml:"indicators"`
	Weights           Weights               `yaml:"weights"`
	Technical         TechnicalRules        `yaml:"technical"`
	BollingerRsi      BollingerRsiParams    `yaml:"bollinger_rsi"`
	MACross           MACrossParams         `yaml:"ma_cross"`
	Volume            VolumeParams          `yaml:"volume"`
	Sentiment         SentimentParams       `yaml:"sentiment"`
	SupportResistance SupportResistanceRule `yaml:"support_resistance"`
	Thresholds        ThresholdSet          `yaml:"thresholds"`
}

// IndicatorParams are the window sizes used by the indicator engine.
type IndicatorParams struct {
	RSIPeriod       int     `yaml:"rsi_period"`
	MACDFast        int     `yaml:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal"`
	BollingerPeriod int     `yaml:"bollinger_period"`
	BollingerK      float64 `yaml:"bollinger_k"`
	SRWindow        int     `yaml:"sr_window"`
	SRProximity     float64 `yaml:"sr_proximity"`
}

// Weights are the category weights of the final confidence score.
type Weights struct {
	Technical         float64 `yaml:"technical"`
	Sentiment         float64 `yaml:"sentiment"`
	Volume            float64 `yaml:"volume"`
	SupportResistance float64 `yaml:"support_resistance"`
}

// TechnicalRules drive the technical sub-score. Points are percentage
// points added to the 0.5 base (15 points = +0.15); bonuses are raw deltas.
type TechnicalRules struct {
	RSIOversold         float64 `yaml:"rsi_oversold"`
	RSIWeak             float64 `yaml:"rsi_weak"`
	RSIOverbought       float64 `yaml:"rsi_overbought"`
	RSIOversoldPoints   float64 `yaml:"rsi_oversold_points"`
	RSIWeakPoints       float64 `yaml:"rsi_weak_points"`
	RSIOverboughtPoints float64 `yaml:"rsi_overbought_points"`
	MACDPoints          float64 `yaml:"macd_points"`
	TrendPoints         float64 `yaml:"trend_points"`
	VolumeSpikePoints   float64 `yaml:"volume_spike_points"`
	SupportPoints       float64 `yaml:"support_points"`
	CrossPoints         float64 `yaml:"cross_points"`

	// RSIZoneBonus is applied on top of the RSI points and does not
	// depend on BollingerRsiParams.RSIWeight.
	RSIZoneBonus float64 `yaml:"rsi_zone_bonus"`
	TrendBonus   float64 `yaml:"trend_bonus"`

	// DetectorPointScale converts a detector score into points: (score-50)*scale.
	DetectorPointScale float64 `yaml:"detector_point_scale"`
}

type BollingerRsiParams struct {
	RSIWeight float64 `yaml:"rsi_weight"`
}

type MACrossParams struct {
	// Lookback is the number of trailing transitions scanned; 1 checks only the last bar.
	Lookback int `yaml:"lookback"`
}

// VolumeParams covers both the volume detector and the aggregator's volume sub-score.
type VolumeParams struct {
	SpikeRatio float64 `yaml:"spike_ratio"`
	SpikeBonus float64 `yaml:"spike_bonus"`
	HighRatio  float64 `yaml:"high_ratio"`
	HighBonus  float64 `yaml:"high_bonus"`
	LowRatio   float64 `yaml:"low_ratio"`
	LowPenalty float64 `yaml:"low_penalty"`
}

type SentimentParams struct {
	MinNews      int     `yaml:"min_news"`
	ReasonImpact float64 `yaml:"reason_impact"`
}

type SupportResistanceRule struct {
	SupportBonus      float64 `yaml:"support_bonus"`
	ResistancePenalty float64 `yaml:"resistance_penalty"`
}

// Thresholds map a 0~100 score to a label. A score >= StrongBuy is strong_buy,
// >= Buy is buy and so on down to Sell; anything lower is strong_sell.
// Two equal thresholds make the lower of the two labels unreachable.
type Thresholds struct {
	StrongBuy float64 `yaml:"strong_buy"`
	Buy       float64 `yaml:"buy"`
	Neutral   float64 `yaml:"neutral"`
	Caution   float64 `yaml:"caution"`
	Sell      float64 `yaml:"sell"`
}

// ThresholdSet groups the per-component threshold tables.
type ThresholdSet struct {
	Aggregate Thresholds `yaml:"aggregate"`
	Detector  Thresholds `yaml:"detector"`
	Volume    Thresholds `yaml:"volume"`
	Pattern   Thresholds `yaml:"pattern"`
}

// DefaultScoring returns the production scoring configuration.
func DefaultScoring() Scoring {
	return Scoring{
		Indicators: IndicatorParams{
			RSIPeriod:       14,
			MACDFast:        12,
			MACDSlow:        26,
			MACDSignal:      9,
			BollingerPeriod: 20,
			BollingerK:      2,
			SRWindow:        20,
			SRProximity:     0.03,
		},
		Weights: Weights{
			Technical:         0.40,
			Sentiment:         0.30,
			Volume:            0.20,
			SupportResistance: 0.10,
		},
		Technical: TechnicalRules{
			RSIOversold:         30,
			RSIWeak:             40,
			RSIOverbought:       70,
			RSIOversoldPoints:   15,
			RSIWeakPoints:       8,
			RSIOverboughtPoints: 15,
			MACDPoints:          15,
			TrendPoints:         10,
			VolumeSpikePoints:   15,
			SupportPoints:       10,
			CrossPoints:         15,
			RSIZoneBonus:        0.15,
			TrendBonus:          0.10,
			DetectorPointScale:  0.2,
		},
		BollingerRsi: BollingerRsiParams{RSIWeight: 1.2},
		MACross:      MACrossParams{Lookback: 1},
		Volume: VolumeParams{
			SpikeRatio: 1.5,
			SpikeBonus: 0.15,
			HighRatio:  1.2,
			HighBonus:  0.08,
			LowRatio:   0.7,
			LowPenalty: 0.05,
		},
		Sentiment: SentimentParams{MinNews: 5, ReasonImpact: 20},
		SupportResistance: SupportResistanceRule{
			SupportBonus:      0.10,
			ResistancePenalty: 0.05,
		},
		Thresholds: ThresholdSet{
			// sell sits at 100-60 = 40, the same cut as neutral, so it never fires
			Aggregate: Thresholds{StrongBuy: 75, Buy: 60, Neutral: 40, Caution: 40, Sell: 40},
			Detector:  Thresholds{StrongBuy: 80, Buy: 65, Neutral: 35, Caution: 35, Sell: 20},
			Volume:    Thresholds{StrongBuy: 75, Buy: 60, Neutral: 40, Caution: 40, Sell: 25},
			Pattern:   Thresholds{StrongBuy: 75, Buy: 60, Neutral: 40, Caution: 40, Sell: 25},
		},
	}
}

// Validate checks that the thresholds are ascending and that all periods and
// weights are usable.
func (s Scoring) Validate() error {
	p := s.Indicators
	periods := []struct {
		field string
		value int
	}{
		{"indicators.rsi_period", p.RSIPeriod},
		{"indicators.macd_fast", p.MACDFast},
		{"indicators.macd_slow", p.MACDSlow},
		{"indicators.macd_signal", p.MACDSignal},
		{"indicators.bollinger_period", p.BollingerPeriod},
		{"indicators.sr_window", p.SRWindow},
		{"ma_cross.lookback", s.MACross.Lookback},
	}
	for _, pp := range periods {
		if pp.value <= 0 {
			return errors.NewValidationError(pp.field, "must be positive", pp.value)
		}
	}
	if p.BollingerPeriod < 2 {
		return errors.NewValidationError("indicators.bollinger_period", "must be at least 2", p.BollingerPeriod)
	}
	if p.MACDFast >= p.MACDSlow {
		return errors.NewValidationError("indicators.macd_fast", "must be shorter than macd_slow", p.MACDFast)
	}
	if p.BollingerK <= 0 {
		return errors.NewValidationError("indicators.bollinger_k", "must be positive", p.BollingerK)
	}
	if p.SRProximity <= 0 || p.SRProximity >= 1 {
		return errors.NewValidationError("indicators.sr_proximity", "must be in (0,1)", p.SRProximity)
	}

	w := s.Weights
	for field, v := range map[string]float64{
		"weights.technical":          w.Technical,
		"weights.sentiment":          w.Sentiment,
		"weights.volume":             w.Volume,
		"weights.support_resistance": w.SupportResistance,
	} {
		if v < 0 || math.IsNaN(v) {
			return errors.NewValidationError(field, "must not be negative", v)
		}
	}
	if sum := w.Technical + w.Sentiment + w.Volume + w.SupportResistance; sum <= 0 {
		return errors.NewValidationError("weights", "must not all be zero", sum)
	}
	if s.BollingerRsi.RSIWeight < 0 {
		return errors.NewValidationError("bollinger_rsi.rsi_weight", "must not be negative", s.BollingerRsi.RSIWeight)
	}

	tables := []struct {
		field string
		t     Thresholds
	}{
		{"thresholds.aggregate", s.Thresholds.Aggregate},
		{"thresholds.detector", s.Thresholds.Detector},
		{"thresholds.volume", s.Thresholds.Volume},
		{"thresholds.pattern", s.Thresholds.Pattern},
	}
	for _, tt := range tables {
		if err := tt.t.Validate(); err != nil {
			return errors.Wrap(err, tt.field)
		}
	}
	return nil
}

// Validate checks Sell <= Caution <= Neutral <= Buy <= StrongBuy.
func (t Thresholds) Validate() error {
	ordered := []float64{t.Sell, t.Caution, t.Neutral, t.Buy, t.StrongBuy}
	for i := 1; i < len(ordered); i++ {
		if ordered[i] < ordered[i-1] {
			return errors.NewValidationError("thresholds", "must be ascending from sell to strong_buy", ordered)
		}
	}
	return nil
}
