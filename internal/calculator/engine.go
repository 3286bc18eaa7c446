package calculator

import (
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// MAWindows are the price moving averages every snapshot carries.
var MAWindows = []int{5, 20, 60, 120}

// Engine derives indicator series from a price series. It holds only its
// immutable parameters and is safe for concurrent use.
type Engine struct {
	params config.IndicatorParams
}

// NewEngine creates an Engine with the given window sizes.
func NewEngine(p config.IndicatorParams) *Engine {
	return &Engine{params: p}
}

// Params returns the engine's window sizes.
func (e *Engine) Params() config.IndicatorParams { return e.params }

// Indicators holds full-length series aligned with Series.Bars. NaN marks an
// undefined value; use Value, Snapshot or Latest to read them safely.
type Indicators struct {
	Series model.PriceSeries
	Params config.IndicatorParams

	Opens   []float64
	Highs   []float64
	Lows    []float64
	Closes  []float64
	Volumes []float64

	MA5   []float64
	MA20  []float64
	MA60  []float64
	MA120 []float64

	RSI     []float64
	rsiFlat []bool

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	BB Bands

	VolumeMA5  []float64
	VolumeMA20 []float64
	VolumeMA60 []float64

	SR model.SupportResistanceContext
}

// Compute validates the series and derives every indicator from an owned copy.
// Short input is not an error: indicators without enough history stay undefined.
func (e *Engine) Compute(series model.PriceSeries) (*Indicators, error) {
	if err := ValidateSeries(series); err != nil {
		return nil, err
	}
	s := series.Clone()
	p := e.params

	ind := &Indicators{
		Series:  s,
		Params:  p,
		Opens:   s.Opens(),
		Highs:   s.Highs(),
		Lows:    s.Lows(),
		Closes:  s.Closes(),
		Volumes: s.Volumes(),
	}

	ind.MA5 = SMASeries(ind.Closes, 5)
	ind.MA20 = SMASeries(ind.Closes, 20)
	ind.MA60 = SMASeries(ind.Closes, 60)
	ind.MA120 = SMASeries(ind.Closes, 120)

	ind.RSI, ind.rsiFlat = RSISeries(ind.Closes, p.RSIPeriod)
	ind.MACD, ind.MACDSignal, ind.MACDHist = MACDSeries(ind.Closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	ind.BB = BollingerSeries(ind.Closes, p.BollingerPeriod, p.BollingerK)

	ind.VolumeMA5 = SMASeries(ind.Volumes, 5)
	ind.VolumeMA20 = SMASeries(ind.Volumes, 20)
	ind.VolumeMA60 = SMASeries(ind.Volumes, 60)

	sr, err := SupportResistance(s.Bars, p.SRWindow, p.SRProximity)
	if err != nil {
		return nil, err
	}
	ind.SR = sr

	return ind, nil
}

// Len returns the number of bars.
func (ind *Indicators) Len() int { return len(ind.Closes) }

// MA returns the price moving average for one of MAWindows, or nil.
func (ind *Indicators) MA(window int) []float64 {
	switch window {
	case 5:
		return ind.MA5
	case 20:
		return ind.MA20
	case 60:
		return ind.MA60
	case 120:
		return ind.MA120
	}
	return nil
}

// RSIDegenerate reports whether the RSI window ending at bar i was flat.
func (ind *Indicators) RSIDegenerate(i int) bool {
	return i >= 0 && i < len(ind.rsiFlat) && ind.rsiFlat[i]
}

// Snapshot returns the indicator values at bar i.
func (ind *Indicators) Snapshot(i int) model.IndicatorSnapshot {
	if i < 0 || i >= ind.Len() {
		return model.IndicatorSnapshot{}
	}
	return model.IndicatorSnapshot{
		Time:       ind.Series.Bars[i].Time,
		Close:      ind.Closes[i],
		MA5:        ptr(ind.MA5, i),
		MA20:       ptr(ind.MA20, i),
		MA60:       ptr(ind.MA60, i),
		MA120:      ptr(ind.MA120, i),
		RSI:        ptr(ind.RSI, i),
		MACD:       ptr(ind.MACD, i),
		MACDSignal: ptr(ind.MACDSignal, i),
		MACDHist:   ptr(ind.MACDHist, i),
		BBUpper:    ptr(ind.BB.Upper, i),
		BBMiddle:   ptr(ind.BB.Middle, i),
		BBLower:    ptr(ind.BB.Lower, i),
		BBPercentB: ptr(ind.BB.PercentB, i),
		BBWidth:    ptr(ind.BB.Width, i),
		VolumeMA5:  ptr(ind.VolumeMA5, i),
		VolumeMA20: ptr(ind.VolumeMA20, i),
		VolumeMA60: ptr(ind.VolumeMA60, i),
	}
}

// Latest returns the snapshot at the last bar.
func (ind *Indicators) Latest() model.IndicatorSnapshot {
	return ind.Snapshot(ind.Len() - 1)
}

// TrendScore grades the moving-average stack at the last bar.
func (ind *Indicators) TrendScore() int {
	snap := ind.Latest()
	return TrendScore(snap.Close, snap.MA20, snap.MA60, snap.MA120)
}
