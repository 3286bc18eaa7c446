package collector

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/errors"
)

// FileSentiment reads a precomputed sentiment score per symbol from a YAML
// or JSON file. Symbols without a configured file have no sentiment.
type FileSentiment struct {
	Files map[string]string // symbol -> path
}

// NewFileSentiment creates a FileSentiment over the given symbol-to-path map.
func NewFileSentiment(files map[string]string) *FileSentiment {
	return &FileSentiment{Files: files}
}

func (f *FileSentiment) Sentiment(ctx context.Context, symbol string) (*model.SentimentScore, error) {
	path := f.Files[symbol]
	if path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrNotFound, "sentiment file %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var s model.SentimentScore
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if s.OverallScore < 0 || s.OverallScore > 1 {
		return nil, errors.NewValidationError("overall_score", "must be within [0, 1]", s.OverallScore)
	}
	if s.TotalNews == 0 {
		s.TotalNews = s.PositiveCount + s.NegativeCount + s.NeutralCount
	}
	return &s, nil
}
