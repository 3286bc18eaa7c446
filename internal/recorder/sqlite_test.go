package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/logger"
)

func ptr(v float64) *float64 { return &v }

func sampleResult(symbol string, score float64, label model.SignalLabel) model.ConfidenceResult {
	return model.ConfidenceResult{
		Symbol: symbol,
		AsOf:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Score:  score,
		Signal: label,
		Reasons: []model.Reason{
			{Category: "technical", Indicator: "RSI", Description: "Oversold", Impact: 15},
			{Category: "volume", Indicator: "Volume", Description: "Surge", Impact: 10},
		},
		Uncertainties: []model.Uncertainty{
			{Factor: "No news", Description: "No sentiment data", Recommendation: "Check news manually"},
		},
		Breakdown: model.Breakdown{Technical: 80, Sentiment: 50, Volume: 60, SupportResistance: 45},
		Signals: []model.Signal{
			{Category: model.CategoryVolume, Label: model.Buy, Score: 65, Reliability: 70, Rationale: "surge"},
		},
	}
}

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "sentinel.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecordAndHistory(t *testing.T) {
	r := openTemp(t)

	first, err := r.RecordAnalysis(sampleResult("AAPL", 63.9, model.Buy), model.IndicatorSnapshot{Close: 101, RSI: ptr(28)})
	require.NoError(t, err)
	second, err := r.RecordAnalysis(sampleResult("AAPL", 41.2, model.Caution), model.IndicatorSnapshot{Close: 99})
	require.NoError(t, err)
	_, err = r.RecordAnalysis(sampleResult("MSFT", 70, model.StrongBuy), model.IndicatorSnapshot{Close: 300})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	hist, err := r.History("AAPL", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	assert.Equal(t, second, hist[0].ID, "newest first")
	assert.Equal(t, model.Caution, hist[0].Signal)
	assert.Equal(t, 41.2, hist[0].Score)
	assert.Equal(t, 99.0, hist[0].Close)

	assert.Equal(t, first, hist[1].ID)
	assert.Equal(t, model.Buy, hist[1].Signal)
	assert.Equal(t, 2, hist[1].Reasons)
	assert.Equal(t, 1, hist[1].Uncertainties)
	assert.Equal(t, 80.0, hist[1].Breakdown.Technical)
	assert.True(t, hist[1].AsOf.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSQLiteRecorder_HistoryLimit(t *testing.T) {
	r := openTemp(t)
	for i := 0; i < 5; i++ {
		_, err := r.RecordAnalysis(sampleResult("AAPL", float64(i), model.Neutral), model.IndicatorSnapshot{})
		require.NoError(t, err)
	}

	hist, err := r.History("AAPL", 3)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, 4.0, hist[0].Score)

	none, err := r.History("NONE", 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.db")
	r, err := NewSQLiteRecorder(path, logger.Nop())
	require.NoError(t, err)
	_, err = r.RecordAnalysis(sampleResult("AAPL", 55, model.Neutral), model.IndicatorSnapshot{})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, logger.Nop())
	require.NoError(t, err)
	defer r.Close()
	hist, err := r.History("AAPL", 1)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	id, err := r.RecordAnalysis(sampleResult("AAPL", 50, model.Neutral), model.IndicatorSnapshot{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	hist, err := r.History("AAPL", 5)
	assert.NoError(t, err)
	assert.Empty(t, hist)
	assert.NoError(t, r.Close())
}
