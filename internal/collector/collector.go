package collector

import (
	"context"
	"math"
	"time"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/errors"
	"SignalSentinel/pkg/logger"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Count int
	Bars  []model.OHLCV
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol string) (model.PriceSeries, error) {
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	bars := m.Bars
	if bars == nil {
		bars = generateMockBars(m.Price, m.Count)
	}
	return model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

// generateMockBars produces a gently oscillating daily series ending yesterday.
func generateMockBars(basePrice float64, count int) []model.OHLCV {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.02*math.Sin(float64(i)/7))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000 * (1 + 0.3*math.Cos(float64(i)/3)),
		}
	}
	return bars
}

// Input is everything one analysis needs for a symbol.
type Input struct {
	Series    model.PriceSeries
	Sentiment *model.SentimentScore
}

// Collector orchestrates price and sentiment loading for a symbol.
type Collector struct {
	Fetcher   Fetcher
	Sentiment SentimentSource
	log       *logger.Logger
}

// NewCollector creates a new Collector. sentiment may be nil.
func NewCollector(fetcher Fetcher, sentiment SentimentSource, log *logger.Logger) *Collector {
	if log == nil {
		log = logger.Get()
	}
	return &Collector{
		Fetcher:   fetcher,
		Sentiment: sentiment,
		log:       log.With("component", "collector", "source", fetcher.Name()),
	}
}

// Collect loads the price series and, when available, the sentiment score.
// A sentiment failure is logged and the analysis proceeds without it.
func (c *Collector) Collect(ctx context.Context, symbol string) (*Input, error) {
	series, err := c.Fetcher.FetchBars(ctx, symbol)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch bars for %s", symbol)
	}
	in := &Input{Series: series}

	if c.Sentiment == nil {
		return in, nil
	}
	s, err := c.Sentiment.Sentiment(ctx, symbol)
	if err != nil {
		c.log.Warnw("Sentiment unavailable, continuing without it", "symbol", symbol, "error", err)
		return in, nil
	}
	in.Sentiment = s
	return in, nil
}
