package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/logger"
)

func TestRecordAnalysis(t *testing.T) {
	before := testutil.ToFloat64(Analyses.WithLabelValues("buy"))

	RecordAnalysis("AAPL", 63.9, model.Buy, 20*time.Millisecond)
	RecordAnalysis("AAPL", 58.1, model.Buy, 10*time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(Analyses.WithLabelValues("buy")))
	assert.Equal(t, 58.1, testutil.ToFloat64(ConfidenceScore.WithLabelValues("AAPL")), "gauge keeps the latest")
}

func TestRecordFailure(t *testing.T) {
	before := testutil.ToFloat64(AnalysisFailures.WithLabelValues(StageCollect))
	RecordFailure(StageCollect)
	assert.Equal(t, before+1, testutil.ToFloat64(AnalysisFailures.WithLabelValues(StageCollect)))
}

func TestHandlerExposesMetrics(t *testing.T) {
	Init()
	Init()
	RecordFailure(StageNotify)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "signalsentinel_analysis_failures_total"))
}

func TestServe_DisabledAndShutdown(t *testing.T) {
	assert.NoError(t, Serve(context.Background(), "", logger.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", logger.Nop()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
