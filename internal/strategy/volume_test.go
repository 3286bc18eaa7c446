package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
)

// surgeBars is 19 bars at volume 1000 followed by one bar that lands at
// exactly 300% of the 20-bar average.
func surgeBars() []model.OHLCV {
	bars := closeBars(constant(20, 100))
	bars[19].Volume = 57000.0 / 17
	return bars
}

func TestVolume_ExtremeSurge(t *testing.T) {
	cfg := config.DefaultScoring()
	ind := indicators(t, surgeBars())

	a := Volume{}.Analyze(ind, cfg)
	assert.InDelta(t, 300.0, a.Ratio, 1e-9)
	assert.Equal(t, LevelExtremeSurge, a.Level)
	require.NotNil(t, a.Surge)
	assert.Equal(t, SurgeExtreme, a.Surge.Kind)
	assert.Equal(t, 90, a.Surge.Reliability)
	assert.True(t, a.Spike)
	assert.Equal(t, PVConsolidationHigh, a.Pattern.Name)
	assert.InDelta(t, 3.0, a.TradingValueRatio, 1e-9)

	// 50 + 15 (level) + 10 (surge)
	assert.InDelta(t, 75.0, a.Signal.Score, 1e-9)
	assert.Equal(t, model.StrongBuy, a.Signal.Label)
	assert.Equal(t, 90, a.Signal.Reliability)

	ctx, ok := Volume{}.Context(ind, cfg)
	require.True(t, ok)
	assert.InDelta(t, 3.0, ctx.Ratio, 1e-9)
	assert.True(t, ctx.Spike)
	assert.Equal(t, LevelExtremeSurge, ctx.Level)
}

func TestIsSpike(t *testing.T) {
	cfg := config.DefaultScoring()
	assert.False(t, isSpike(149.9, cfg))
	assert.False(t, isSpike(150, cfg), "exactly 1.5x is not a spike")
	assert.True(t, isSpike(150.01, cfg))

	cfg.Volume.SpikeRatio = 2
	assert.False(t, isSpike(200, cfg))
	assert.True(t, isSpike(250, cfg))
}

func TestVolume_ZeroAverageIsNormal(t *testing.T) {
	bars := closeBars(constant(25, 100))
	for i := range bars {
		bars[i].Volume = 0
	}
	ind := indicators(t, bars)

	a := Volume{}.Analyze(ind, config.DefaultScoring())
	assert.Equal(t, 100.0, a.Ratio)
	assert.Equal(t, LevelNormal, a.Level)
	assert.Nil(t, a.Surge)
	assert.False(t, a.Spike)
}

func TestVolume_ShortSeries(t *testing.T) {
	ind := indicators(t, closeBars(constant(19, 100)))

	assert.True(t, IsInsufficient(Volume{}.Compute(ind, config.DefaultScoring())))
	_, ok := Volume{}.Context(ind, config.DefaultScoring())
	assert.False(t, ok)
}

func TestPriceVolumePattern(t *testing.T) {
	vol := func(prev, cur float64) []float64 {
		return append(constant(5, prev), constant(5, cur)...)
	}
	tests := []struct {
		name    string
		closes  []float64
		volumes []float64
		want    string
	}{
		{"rally on volume", linear(10, 100, 1), vol(1000, 1500), PVBullishConfirmation},
		{"rally drying up", linear(10, 100, 1), vol(1000, 800), PVBullishWeak},
		{"selloff on volume", linear(10, 100, -1), vol(1000, 1500), PVBearishConfirmation},
		{"selloff drying up", linear(10, 100, -1), vol(1000, 800), PVBearishWeak},
		{"range with volume", constant(10, 100), vol(1000, 1400), PVConsolidationHigh},
		{"quiet range", constant(10, 100), vol(1000, 1000), PVConsolidation},
		{"rally flat volume", linear(10, 100, 1), vol(1000, 1000), PVMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, priceVolumePattern(tt.closes, tt.volumes).Name)
		})
	}
}

func TestVolumeLevel(t *testing.T) {
	assert.Equal(t, LevelExtremeSurge, volumeLevel(200))
	assert.Equal(t, LevelSurge, volumeLevel(150))
	assert.Equal(t, LevelHigh, volumeLevel(120))
	assert.Equal(t, LevelNormal, volumeLevel(80))
	assert.Equal(t, LevelLow, volumeLevel(50))
	assert.Equal(t, LevelVeryLow, volumeLevel(49.9))
}
