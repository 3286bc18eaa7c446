package notifier

import (
	"fmt"
	"strings"

	"SignalSentinel/internal/confidence"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"
)

// FormatAnalysisReport renders one analysis as a plain-text report.
func FormatAnalysisReport(a *confidence.Analysis) string {
	res := a.Result
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 SignalSentinel | %s | %s\n\n", res.Symbol, res.AsOf.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Confidence: %.1f (%s)\n", res.Score, res.Signal))
	b.WriteString(fmt.Sprintf("%s\n\n", a.Opinion.Headline))

	// Price and indicators
	snap := a.Snapshot
	b.WriteString(fmt.Sprintf("Close: %.2f\n", snap.Close))
	b.WriteString(fmt.Sprintf("MA5/20/60/120: %s / %s / %s / %s\n",
		optional(snap.MA5, "%.2f"), optional(snap.MA20, "%.2f"),
		optional(snap.MA60, "%.2f"), optional(snap.MA120, "%.2f")))
	b.WriteString(fmt.Sprintf("RSI: %s | MACD hist: %s | %%B: %s\n\n",
		optional(snap.RSI, "%.1f"), optional(snap.MACDHist, "%+.3f"), optional(snap.BBPercentB, "%.2f")))

	bd := res.Breakdown
	b.WriteString("📈 Breakdown:\n")
	b.WriteString(fmt.Sprintf("  technical %.1f | sentiment %.1f | volume %.1f | s/r %.1f\n\n",
		bd.Technical, bd.Sentiment, bd.Volume, bd.SupportResistance))

	if len(res.Signals) > 0 {
		b.WriteString("🔎 Detectors:\n")
		for _, s := range res.Signals {
			b.WriteString(fmt.Sprintf("  %-14s %5.1f %-11s (reliability %d) %s\n",
				s.Category, s.Score, s.Label, s.Reliability, s.Rationale))
		}
		b.WriteString("\n")
	}

	if len(res.Reasons) > 0 {
		b.WriteString("✅ Reasons:\n")
		for _, r := range res.Reasons {
			b.WriteString(fmt.Sprintf("  [%s] %s: %s %s\n", r.Category, r.Indicator, r.Description, r.ImpactString()))
		}
		b.WriteString("\n")
	}

	if len(res.Uncertainties) > 0 {
		b.WriteString("⚠️ Uncertainties:\n")
		for _, u := range res.Uncertainties {
			b.WriteString(fmt.Sprintf("  %s: %s", u.Factor, u.Description))
			if u.Recommendation != "" {
				b.WriteString(fmt.Sprintf(" (%s)", u.Recommendation))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(a.Suggestions) > 0 {
		b.WriteString("💡 Suggestions:\n")
		for _, s := range a.Suggestions {
			b.WriteString(formatSuggestion(s))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Strategy: %s\n", a.Opinion.Strategy))
	return b.String()
}

func formatSuggestion(s model.Suggestion) string {
	line := fmt.Sprintf("  %s %s (%d%%): %s", strings.ToUpper(s.Action), s.Strategy, s.Confidence, s.Reason)
	if !s.Entry.IsZero() {
		line += fmt.Sprintf(" entry %s", s.Entry.StringFixed(2))
	}
	if !s.Target.IsZero() {
		line += fmt.Sprintf(" target %s", s.Target.StringFixed(2))
	}
	if !s.StopLoss.IsZero() {
		line += fmt.Sprintf(" stop %s", s.StopLoss.StringFixed(2))
	}
	return line + "\n"
}

// FormatHistory renders recorded runs as a compact table, newest first.
func FormatHistory(symbol string, records []recorder.AnalysisRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 History | %s\n\n", symbol))
	if len(records) == 0 {
		b.WriteString("No recorded analyses\n")
		return b.String()
	}
	for _, r := range records {
		b.WriteString(fmt.Sprintf("%s  %5.1f  %-11s close %.2f  reasons %d  caveats %d\n",
			r.AsOf.Format("2006-01-02"), r.Score, r.Signal, r.Close, r.Reasons, r.Uncertainties))
	}
	return b.String()
}

func optional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
