package collector

import (
	"context"

	"SignalSentinel/internal/model"
)

// Fetcher defines the interface for loading a symbol's price history.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string) (model.PriceSeries, error)
	Name() string
}

// SentimentSource supplies a precomputed sentiment score for a symbol.
// A nil score with a nil error means no sentiment is available.
type SentimentSource interface {
	Sentiment(ctx context.Context, symbol string) (*model.SentimentScore, error)
}
