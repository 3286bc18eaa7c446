package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SignalLabel is the discrete verdict of a detector or of the aggregator.
// Values are ordered from most bearish to most bullish, so labels compare
// with < and >.
type SignalLabel int

const (
	StrongSell SignalLabel = iota
	Sell
	Caution
	Neutral
	Buy
	StrongBuy
)

var labelNames = [...]string{
	StrongSell: "strong_sell",
	Sell:       "sell",
	Caution:    "caution",
	Neutral:    "neutral",
	Buy:        "buy",
	StrongBuy:  "strong_buy",
}

// Labels lists every label in ascending order.
var Labels = []SignalLabel{StrongSell, Sell, Caution, Neutral, Buy, StrongBuy}

func (l SignalLabel) String() string {
	if l < StrongSell || l > StrongBuy {
		return fmt.Sprintf("SignalLabel(%d)", int(l))
	}
	return labelNames[l]
}

// ParseSignalLabel converts the text form back into a label.
func ParseSignalLabel(s string) (SignalLabel, error) {
	for i, name := range labelNames {
		if name == s {
			return SignalLabel(i), nil
		}
	}
	return Neutral, fmt.Errorf("unknown signal label %q", s)
}

func (l SignalLabel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *SignalLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseSignalLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Category identifies which detector produced a Signal.
type Category string

const (
	CategoryBollingerRsi Category = "bollinger_rsi"
	CategoryMACross      Category = "ma_cross"
	CategoryVolume       Category = "volume"
	CategoryPattern      Category = "pattern"
)

// Signal is one detector's normalized verdict.
type Signal struct {
	Category    Category
	Label       SignalLabel
	Score       float64 // 0 ~ 100
	Rationale   string
	Reliability int // 0 ~ 100, 0 when the detector had too little data
}

// Reason records one applied contribution to the confidence score.
type Reason struct {
	Category    string
	Indicator   string
	Description string
	Impact      float64 // signed percentage points
}

// ImpactString renders the impact the way reports show it, e.g. "+15%".
func (r Reason) ImpactString() string {
	return fmt.Sprintf("%+.0f%%", r.Impact)
}

// Uncertainty is a caveat that does not move the score.
type Uncertainty struct {
	Factor         string
	Description    string
	Recommendation string
}

// Breakdown holds per-category scores on a 0 ~ 100 scale.
type Breakdown struct {
	Technical         float64
	Sentiment         float64
	Volume            float64
	SupportResistance float64
}

// ConfidenceResult is the final output of the aggregator.
type ConfidenceResult struct {
	Symbol        string
	AsOf          time.Time
	Score         float64 // 0 ~ 100
	Signal        SignalLabel
	Reasons       []Reason
	Uncertainties []Uncertainty
	Breakdown     Breakdown
	Signals       []Signal
}

// Suggestion is an advisory trade playbook. It never feeds the score.
type Suggestion struct {
	Source     Category
	Strategy   string
	Action     string // buy, sell or wait
	Confidence int
	Reason     string
	Entry      decimal.Decimal
	Target     decimal.Decimal
	StopLoss   decimal.Decimal
}

// Suggestion actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionWait = "wait"
)
