package metrics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/errors"
	"SignalSentinel/pkg/logger"
)

// Failure stages.
const (
	StageCollect = "collect"
	StageAnalyze = "analyze"
	StageRecord  = "record"
	StageNotify  = "notify"
)

var (
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalsentinel_analyses_total",
			Help: "Total number of completed analyses",
		},
		[]string{"signal"}, // strong_sell ~ strong_buy
	)

	AnalysisFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalsentinel_analysis_failures_total",
			Help: "Total number of failed analysis stages",
		},
		[]string{"stage"}, // collect|analyze|record|notify
	)

	ConfidenceScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signalsentinel_confidence_score",
			Help: "Latest confidence score per symbol (0 ~ 100)",
		},
		[]string{"symbol"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signalsentinel_analysis_duration_seconds",
			Help:    "Per-symbol analysis duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)
)

var registerOnce sync.Once

// Init registers all metrics with Prometheus. It is safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Analyses)
		prometheus.MustRegister(AnalysisFailures)
		prometheus.MustRegister(ConfidenceScore)
		prometheus.MustRegister(AnalysisDuration)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAnalysis records one successful analysis.
func RecordAnalysis(symbol string, score float64, signal model.SignalLabel, duration time.Duration) {
	Analyses.WithLabelValues(signal.String()).Inc()
	ConfidenceScore.WithLabelValues(symbol).Set(score)
	AnalysisDuration.Observe(duration.Seconds())
}

// RecordFailure counts a failed stage.
func RecordFailure(stage string) {
	AnalysisFailures.WithLabelValues(stage).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr disables it.
func Serve(ctx context.Context, addr string, log *logger.Logger) error {
	if addr == "" {
		return nil
	}
	if log == nil {
		log = logger.Get()
	}
	log = log.With("component", "metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Metrics listener started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "metrics listener")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("Stopping metrics listener")
		return srv.Shutdown(shutdownCtx)
	}
}
