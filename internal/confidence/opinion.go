package confidence

import (
	"sort"

	"SignalSentinel/internal/model"
)

const opinionFactors = 3

// Opinion is a short narrative derived from a result.
type Opinion struct {
	Headline  string
	Positives []string
	Negatives []string
	Strategy  string
}

var opinionPhrases = map[model.SignalLabel]struct{ headline, strategy string }{
	model.StrongBuy:  {"Strong buy: most indicators agree on upside", "Consider entering in tranches with a stop below support"},
	model.Buy:        {"Buy: the balance of evidence is positive", "Consider a partial position and add on confirmation"},
	model.Neutral:    {"Neutral: signals are mixed", "Wait for a clearer setup"},
	model.Caution:    {"Caution: conditions are stretched", "Tighten stops and avoid new entries"},
	model.Sell:       {"Sell: the balance of evidence is negative", "Consider reducing exposure"},
	model.StrongSell: {"Strong sell: most indicators point lower", "Stay out or exit on strength"},
}

// BuildOpinion summarizes the strongest positive and negative reasons of res.
func BuildOpinion(res model.ConfidenceResult) Opinion {
	var pos, neg []model.Reason
	for _, r := range res.Reasons {
		switch {
		case r.Impact > 0:
			pos = append(pos, r)
		case r.Impact < 0:
			neg = append(neg, r)
		}
	}
	sort.SliceStable(pos, func(i, j int) bool { return pos[i].Impact > pos[j].Impact })
	sort.SliceStable(neg, func(i, j int) bool { return neg[i].Impact < neg[j].Impact })

	phrase := opinionPhrases[res.Signal]
	return Opinion{
		Headline:  phrase.headline,
		Positives: descriptions(pos, opinionFactors),
		Negatives: descriptions(neg, opinionFactors),
		Strategy:  phrase.strategy,
	}
}

func descriptions(rs []model.Reason, n int) []string {
	var out []string
	for i := 0; i < len(rs) && i < n; i++ {
		out = append(out, rs[i].Description)
	}
	return out
}
