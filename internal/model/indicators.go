package model

import "time"

// IndicatorSnapshot holds all computed technical indicators at one bar.
// A nil field means the indicator is undefined there (not enough history,
// or a degenerate denominator).
type IndicatorSnapshot struct {
	Time  time.Time
	Close float64

	MA5   *float64
	MA20  *float64
	MA60  *float64
	MA120 *float64

	RSI *float64

	MACD       *float64
	MACDSignal *float64
	MACDHist   *float64

	BBUpper    *float64
	BBMiddle   *float64
	BBLower    *float64
	BBPercentB *float64
	BBWidth    *float64

	VolumeMA5  *float64
	VolumeMA20 *float64
	VolumeMA60 *float64
}
