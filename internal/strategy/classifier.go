package strategy

import (
	"math"

	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// tiers lists the threshold table from the most bullish label down.
func tiers(t config.Thresholds) []struct {
	MinScore float64
	Label    model.SignalLabel
} {
	return []struct {
		MinScore float64
		Label    model.SignalLabel
	}{
		{t.StrongBuy, model.StrongBuy},
		{t.Buy, model.Buy},
		{t.Neutral, model.Neutral},
		{t.Caution, model.Caution},
		{t.Sell, model.Sell},
	}
}

// Classify maps a 0~100 score to a label. Each threshold is inclusive, so a
// score equal to t.StrongBuy is already strong_buy. NaN maps to neutral.
func Classify(score float64, t config.Thresholds) model.SignalLabel {
	if math.IsNaN(score) {
		return model.Neutral
	}
	for _, tier := range tiers(t) {
		if score >= tier.MinScore {
			return tier.Label
		}
	}
	return model.StrongSell
}
