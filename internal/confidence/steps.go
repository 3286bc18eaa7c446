package confidence

import (
	"fmt"

	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

// Contribution is one scoring step's effect on a category sub-score.
// Delta is in score units (0.15 = 15 points); Reason and Uncertainty are optional.
type Contribution struct {
	Delta       float64
	Reason      *model.Reason
	Uncertainty *model.Uncertainty
}

// fold applies contributions in order from base and clamps the result to [0,1].
func fold(base float64, contribs []Contribution) (float64, []model.Reason, []model.Uncertainty) {
	score := base
	var reasons []model.Reason
	var uncertainties []model.Uncertainty
	for _, c := range contribs {
		score += c.Delta
		if c.Reason != nil {
			reasons = append(reasons, *c.Reason)
		}
		if c.Uncertainty != nil {
			uncertainties = append(uncertainties, *c.Uncertainty)
		}
	}
	return clamp(score, 0, 1), reasons, uncertainties
}

func scored(category, indicator, description string, delta float64) Contribution {
	return Contribution{
		Delta: delta,
		Reason: &model.Reason{
			Category:    category,
			Indicator:   indicator,
			Description: description,
			Impact:      delta * 100,
		},
	}
}

func flagged(factor, description, recommendation string) Contribution {
	return Contribution{Uncertainty: &model.Uncertainty{
		Factor:         factor,
		Description:    description,
		Recommendation: recommendation,
	}}
}

// technicalContributions scores snapshot events, detector signals and the
// RSI zone and trend bonuses.
func technicalContributions(in Inputs, cfg config.Scoring) []Contribution {
	r := cfg.Technical
	pts := func(p float64) float64 { return p / 100 }
	var out []Contribution

	bull := in.Alignment == strategy.AlignPerfectBull
	bear := in.Alignment == strategy.AlignPerfectBear
	snap := in.Snapshot

	// RSI events
	var rsi float64
	rsiKnown := snap.RSI != nil && !in.RSIFlat
	if snap.RSI != nil {
		rsi = *snap.RSI
	}
	switch {
	case snap.RSI != nil && in.RSIFlat:
		out = append(out, flagged("Flat RSI window",
			"RSI has no gains or losses in its window and reads 100 by convention",
			"Ignore RSI until the price moves"))
	case rsiKnown && rsi < r.RSIOversold:
		if bear {
			out = append(out, flagged("Downtrend confirmation",
				fmt.Sprintf("RSI %.1f is oversold inside a fully bearish moving-average stack", rsi),
				"Oversold can persist in a strong downtrend, wait for a reversal"))
		} else {
			out = append(out, scored(CategoryTechnical, "RSI",
				fmt.Sprintf("RSI %.1f oversold", rsi), pts(r.RSIOversoldPoints)))
		}
	case rsiKnown && rsi < r.RSIWeak:
		out = append(out, scored(CategoryTechnical, "RSI",
			fmt.Sprintf("RSI %.1f weak", rsi), pts(r.RSIWeakPoints)))
	case rsiKnown && rsi > r.RSIOverbought:
		if bull {
			out = append(out, flagged("Uptrend confirmation",
				fmt.Sprintf("RSI %.1f is overbought inside a fully bullish moving-average stack", rsi),
				"Overbought can persist in a strong uptrend, trail stops instead of selling"))
		} else {
			out = append(out, scored(CategoryTechnical, "RSI",
				fmt.Sprintf("RSI %.1f overbought", rsi), -pts(r.RSIOverboughtPoints)))
		}
	}

	// MACD
	if snap.MACD != nil && snap.MACDSignal != nil && snap.MACDHist != nil {
		m, s, h := *snap.MACD, *snap.MACDSignal, *snap.MACDHist
		switch {
		case h > 0 && m > s:
			out = append(out, scored(CategoryTechnical, "MACD", "MACD above signal line", pts(r.MACDPoints)))
		case h < 0 && m < s:
			out = append(out, scored(CategoryTechnical, "MACD", "MACD below signal line", -pts(r.MACDPoints)))
		}
	}

	switch {
	case in.Trend >= 75:
		out = append(out, scored(CategoryTechnical, "Trend", "price above rising moving averages", pts(r.TrendPoints)))
	case in.Trend <= 25:
		out = append(out, scored(CategoryTechnical, "Trend", "price below falling moving averages", -pts(r.TrendPoints)))
	}

	if in.Volume != nil && in.Volume.Spike {
		out = append(out, scored(CategoryTechnical, "Volume",
			fmt.Sprintf("volume spike %.1fx average", in.Volume.Ratio), pts(r.VolumeSpikePoints)))
	}
	if in.SR != nil && in.SR.NearSupport {
		out = append(out, scored(CategoryTechnical, "Support",
			fmt.Sprintf("close near support %.2f", in.SR.Support), pts(r.SupportPoints)))
	}
	switch in.Cross {
	case strategy.CrossGolden:
		out = append(out, scored(CategoryTechnical, "MA20xMA60", "golden cross", pts(r.CrossPoints)))
	case strategy.CrossDead:
		out = append(out, scored(CategoryTechnical, "MA20xMA60", "dead cross", -pts(r.CrossPoints)))
	}

	// detector signals
	for _, sig := range in.Signals {
		delta := pts((sig.Score - 50) * r.DetectorPointScale)
		if delta == 0 {
			continue
		}
		out = append(out, scored(CategoryTechnical, string(sig.Category),
			fmt.Sprintf("%s: %s", sig.Label, sig.Rationale), delta))
	}

	// zone and trend bonuses
	switch {
	case rsiKnown && rsi < r.RSIOversold && !bear:
		out = append(out, scored(CategoryTechnical, "RSI zone",
			fmt.Sprintf("RSI %.1f in oversold zone", rsi), r.RSIZoneBonus))
	case rsiKnown && rsi > r.RSIOverbought && !bull:
		out = append(out, scored(CategoryTechnical, "RSI zone",
			fmt.Sprintf("RSI %.1f in overbought zone", rsi), -r.RSIZoneBonus))
	}
	switch {
	case in.Trend >= 75:
		out = append(out, scored(CategoryTechnical, "Trend strength",
			fmt.Sprintf("trend score %d", in.Trend), r.TrendBonus))
	case in.Trend <= 25:
		out = append(out, scored(CategoryTechnical, "Trend strength",
			fmt.Sprintf("trend score %d", in.Trend), -r.TrendBonus))
	}
	return out
}

// sentimentContributions returns the sentiment base score and its
// annotations. The score is taken as is; the reason impact is informational.
func sentimentContributions(in Inputs, cfg config.Scoring) (float64, []Contribution) {
	s := in.Sentiment
	if s == nil || s.TotalNews == 0 {
		return 0.5, []Contribution{flagged("No news",
			"no news was available for sentiment analysis",
			"Check recent news manually")}
	}

	var out []Contribution
	if s.TotalNews < cfg.Sentiment.MinNews {
		out = append(out, flagged("Few news items",
			fmt.Sprintf("only %d news items were analyzed", s.TotalNews),
			"Collect more news before relying on sentiment"))
	}

	impact := cfg.Sentiment.ReasonImpact
	ratio := func(n int) float64 { return float64(n) / float64(s.TotalNews) * 100 }
	reason := model.Reason{Category: CategorySentiment, Indicator: "News sentiment"}
	switch s.OverallSentiment {
	case "positive":
		reason.Description = fmt.Sprintf("%.0f%% positive of %d news", ratio(s.PositiveCount), s.TotalNews)
		reason.Impact = impact
	case "negative":
		reason.Description = fmt.Sprintf("%.0f%% negative of %d news", ratio(s.NegativeCount), s.TotalNews)
		reason.Impact = -impact
	default:
		reason.Description = fmt.Sprintf("neutral across %d news", s.TotalNews)
	}
	out = append(out, Contribution{Reason: &reason})

	return clamp(s.OverallScore, 0, 1), out
}

func volumeContributions(in Inputs, cfg config.Scoring) []Contribution {
	v := in.Volume
	if v == nil {
		return []Contribution{flagged("No volume context",
			"not enough bars for a 20-bar volume average",
			"Judge liquidity manually")}
	}
	p := cfg.Volume
	switch {
	case v.Spike:
		return []Contribution{scored(CategoryVolume, "Volume",
			fmt.Sprintf("volume spike (%.1fx)", v.Ratio), p.SpikeBonus)}
	case v.Ratio > p.HighRatio:
		return []Contribution{scored(CategoryVolume, "Volume",
			fmt.Sprintf("volume rising (%.1fx)", v.Ratio), p.HighBonus)}
	case v.Ratio < p.LowRatio:
		c := flagged("Thin volume",
			fmt.Sprintf("volume at %.0f%% of average", v.Ratio*100),
			"Orders may fill poorly")
		c.Delta = -p.LowPenalty
		return []Contribution{c}
	}
	return nil
}

func supportResistanceContributions(in Inputs, cfg config.Scoring) []Contribution {
	sr := in.SR
	if sr == nil {
		return nil
	}
	var out []Contribution
	if sr.NearSupport {
		out = append(out, scored(CategorySupportResistance, "Support",
			fmt.Sprintf("near support %.2f", sr.Support), cfg.SupportResistance.SupportBonus))
	}
	if sr.NearResistance {
		c := scored(CategorySupportResistance, "Resistance",
			fmt.Sprintf("near resistance %.2f", sr.Resistance), -cfg.SupportResistance.ResistancePenalty)
		c.Uncertainty = &model.Uncertainty{
			Factor:         "Resistance overhead",
			Description:    fmt.Sprintf("close is near resistance %.2f", sr.Resistance),
			Recommendation: "Wait for a confirmed breakout",
		}
		out = append(out, c)
	}
	return out
}

// additionalUncertainties flags band extremes, short history and detectors
// that fell back to their neutral default.
func additionalUncertainties(in Inputs) []model.Uncertainty {
	var out []model.Uncertainty
	if pb := in.Snapshot.BBPercentB; pb != nil {
		switch {
		case *pb > 0.9:
			out = append(out, model.Uncertainty{
				Factor:         "High volatility",
				Description:    "close is near the upper Bollinger band",
				Recommendation: "A sharp pullback is possible",
			})
		case *pb < 0.1:
			out = append(out, model.Uncertainty{
				Factor:         "High volatility",
				Description:    "close is near the lower Bollinger band",
				Recommendation: "Further downside is possible before a rebound",
			})
		}
	}
	if in.Bars < fullHistoryBars {
		out = append(out, model.Uncertainty{
			Factor:         "Short history",
			Description:    fmt.Sprintf("only %d bars, %d needed for every indicator", in.Bars, fullHistoryBars),
			Recommendation: "Load a longer history",
		})
	}
	for _, sig := range in.Signals {
		if strategy.IsInsufficient(sig) {
			out = append(out, model.Uncertainty{
				Factor:         "Insufficient data",
				Description:    fmt.Sprintf("%s detector had too few bars and stayed neutral", sig.Category),
				Recommendation: "Load a longer history",
			})
		}
	}
	return out
}
