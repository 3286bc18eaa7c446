package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/pkg/errors"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultScoring(), cfg.Scoring)
	assert.Equal(t, "0 0 18 * * 1-5", cfg.Schedule.AnalysisCron)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
watchlist:
  - symbol: AAPL
    csv: data/AAPL.csv
scoring:
  weights:
    technical: 0.5
  thresholds:
    aggregate:
      strong_buy: 80
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Watchlist, 1)
	assert.Equal(t, "AAPL", cfg.Watchlist[0].Symbol)
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Technical)
	// untouched siblings keep their defaults
	assert.Equal(t, 0.30, cfg.Scoring.Weights.Sentiment)
	assert.Equal(t, 80.0, cfg.Scoring.Thresholds.Aggregate.StrongBuy)
	assert.Equal(t, 60.0, cfg.Scoring.Thresholds.Aggregate.Buy)
	assert.Equal(t, 14, cfg.Scoring.Indicators.RSIPeriod)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SQLITE_PATH", "/tmp/bare.db")
	t.Setenv("SENTINEL_CRON_ANALYSIS", "0 */5 * * * *")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/bare.db", cfg.Database.SQLitePath)
	assert.Equal(t, "0 */5 * * * *", cfg.Schedule.AnalysisCron)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Watchlist(t *testing.T) {
	cfg := Default()
	cfg.Watchlist = []WatchItem{{Symbol: "BTC"}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestScoringValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scoring)
		ok     bool
	}{
		{"defaults", func(s *Scoring) {}, true},
		{"zero rsi period", func(s *Scoring) { s.Indicators.RSIPeriod = 0 }, false},
		{"fast not shorter than slow", func(s *Scoring) { s.Indicators.MACDFast = 26 }, false},
		{"negative weight", func(s *Scoring) { s.Weights.Volume = -0.1 }, false},
		{"all weights zero", func(s *Scoring) { s.Weights = Weights{} }, false},
		{"proximity out of range", func(s *Scoring) { s.Indicators.SRProximity = 1.5 }, false},
		{"descending thresholds", func(s *Scoring) { s.Thresholds.Volume.Buy = 90 }, false},
		{"collapsed thresholds allowed", func(s *Scoring) {
			s.Thresholds.Pattern = Thresholds{StrongBuy: 50, Buy: 50, Neutral: 50, Caution: 50, Sell: 50}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultScoring()
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
