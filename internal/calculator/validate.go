package calculator

import (
	"math"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/errors"
)

// ValidateSeries rejects input that breaks the price series contract:
// no bars, timestamps that do not strictly increase, or bars with
// non-finite, negative or inverted fields.
func ValidateSeries(s model.PriceSeries) error {
	if len(s.Bars) == 0 {
		return errors.Wrapf(errors.ErrEmptySeries, "symbol %q", s.Symbol)
	}
	for i, b := range s.Bars {
		if b.Time.IsZero() {
			return errors.Wrapf(errors.ErrMalformedBar, "bar %d: missing timestamp", i)
		}
		fields := []struct {
			name  string
			value float64
		}{
			{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}, {"volume", b.Volume},
		}
		for _, f := range fields {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
				return errors.Wrapf(errors.ErrMalformedBar, "bar %d: %s=%v", i, f.name, f.value)
			}
		}
		if b.High < b.Low {
			return errors.Wrapf(errors.ErrMalformedBar, "bar %d: high %.4f < low %.4f", i, b.High, b.Low)
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return errors.Wrapf(errors.ErrNonMonotonic, "bar %d at %s", i, b.Time.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
