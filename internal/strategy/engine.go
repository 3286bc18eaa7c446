package strategy

import (
	"sort"

	"github.com/shopspring/decimal"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// Detector reduces one indicator family to a normalized Signal.
// Implementations are stateless; Compute never fails and returns the
// neutral default when the series is too short.
type Detector interface {
	Category() model.Category
	Compute(ind *calculator.Indicators, cfg config.Scoring) model.Signal
}

// Advisor is implemented by detectors that also produce trade playbooks.
type Advisor interface {
	Suggest(ind *calculator.Indicators, cfg config.Scoring) []model.Suggestion
}

// DefaultDetectors returns the four built-in detectors in report order.
func DefaultDetectors() []Detector {
	return []Detector{
		BollingerRsi{},
		MovingAverageCross{},
		Volume{},
		CandlestickPattern{},
	}
}

// insufficientRationale marks the neutral default so callers can detect it.
const insufficientRationale = "insufficient data"

// neutralSignal is the documented default for a series below a detector's minimum length.
func neutralSignal(cat model.Category) model.Signal {
	return model.Signal{
		Category:  cat,
		Label:     model.Neutral,
		Score:     50,
		Rationale: insufficientRationale,
	}
}

// IsInsufficient reports whether sig is a detector's short-input default.
func IsInsufficient(sig model.Signal) bool {
	return sig.Reliability == 0 && sig.Rationale == insufficientRationale
}

// price rounds a price level for display in suggestions.
func price(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// scaled returns v*factor as a rounded price level.
func scaled(v, factor float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(factor)).Round(2)
}

// rankSuggestions keeps the n most confident suggestions, stable on ties.
func rankSuggestions(s []model.Suggestion, n int) []model.Suggestion {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Confidence > s[j].Confidence })
	if len(s) > n {
		s = s[:n]
	}
	return s
}
