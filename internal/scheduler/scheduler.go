package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/confidence"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/pkg/errors"
	"SignalSentinel/pkg/logger"
)

// sendRetries is how many times a failed report is resent.
const sendRetries = 2

// Outcome is the result of one symbol in a batch run.
type Outcome struct {
	Symbol   string
	RunID    string
	Analysis *confidence.Analysis
	Err      error
}

// Scheduler runs the watchlist analysis on a cron schedule.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Aggregator *confidence.Aggregator
	Notifier   notifier.Notifier
	Recorder   recorder.Recorder
	Symbols    []string
	Ctx        context.Context

	log *logger.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, agg *confidence.Aggregator,
	n notifier.Notifier, rec recorder.Recorder, symbols []string, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Get()
	}
	log = log.With("component", "scheduler")
	cl := cronLogger{log}
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		Collector:  col,
		Aggregator: agg,
		Notifier:   n,
		Recorder:   rec,
		Symbols:    symbols,
		Ctx:        ctx,
		log:        log,
	}
}

// Register adds the watchlist analysis job.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunOnce() }); err != nil {
		return errors.Wrapf(err, "register analysis task %q", spec)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Infow("Scheduler started", "symbols", len(s.Symbols))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// RunOnce analyzes every symbol in order. A failing symbol is logged and
// counted, and the batch moves on to the next one.
func (s *Scheduler) RunOnce() []Outcome {
	s.log.Infow("Running watchlist analysis", "symbols", len(s.Symbols))
	out := make([]Outcome, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		if err := s.Ctx.Err(); err != nil {
			s.log.Warnw("Batch cancelled", "remaining", len(s.Symbols)-len(out))
			break
		}
		o := s.analyzeSymbol(sym)
		if o.Err != nil {
			s.log.Errorw("Symbol analysis failed", "symbol", sym, "error", o.Err)
		}
		out = append(out, o)
	}
	return out
}

func (s *Scheduler) analyzeSymbol(symbol string) Outcome {
	o := Outcome{Symbol: symbol}
	start := time.Now()

	in, err := s.Collector.Collect(s.Ctx, symbol)
	if err != nil {
		metrics.RecordFailure(metrics.StageCollect)
		o.Err = err
		return o
	}

	a, err := s.analyze(in)
	if err != nil {
		metrics.RecordFailure(metrics.StageAnalyze)
		o.Err = err
		return o
	}
	o.Analysis = a
	res := a.Result
	metrics.RecordAnalysis(symbol, res.Score, res.Signal, time.Since(start))

	alerts := s.alerts(a)

	// Recording and delivery failures do not invalidate the analysis.
	if o.RunID, err = s.Recorder.RecordAnalysis(res, a.Snapshot); err != nil {
		metrics.RecordFailure(metrics.StageRecord)
		s.log.Errorw("Record analysis failed", "symbol", symbol, "error", err)
	}

	report := notifier.FormatAnalysisReport(a)
	if len(alerts) > 0 {
		report = strings.Join(alerts, "\n") + "\n\n" + report
	}
	if err := notifier.SendWithRetry(s.Ctx, s.Notifier, report, sendRetries, s.log); err != nil {
		metrics.RecordFailure(metrics.StageNotify)
		s.log.Errorw("Send report failed", "symbol", symbol, "error", err)
	}

	s.log.Infow("Symbol analyzed", "symbol", symbol, "score", res.Score, "signal", res.Signal.String(),
		"run_id", o.RunID, "took", time.Since(start))
	return o
}

// analyze runs the aggregator and turns a detector panic into an error so
// one symbol cannot stop the batch.
func (s *Scheduler) analyze(in *collector.Input) (a *confidence.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, errors.Wrapf(errors.ErrInternal, "analyze %s: %v", in.Series.Symbol, r)
		}
	}()
	return s.Aggregator.Analyze(in.Series, in.Sentiment)
}

// alerts compares a fresh analysis with the last recorded run and flags
// label changes and RSI extremes.
func (s *Scheduler) alerts(a *confidence.Analysis) []string {
	var out []string
	res := a.Result

	prev, err := s.Recorder.History(res.Symbol, 1)
	if err != nil {
		s.log.Warnw("Load previous run failed", "symbol", res.Symbol, "error", err)
	} else if len(prev) == 1 && prev[0].Signal != res.Signal {
		out = append(out, fmt.Sprintf("🔔 Signal change: %s → %s (%.1f → %.1f)",
			prev[0].Signal, res.Signal, prev[0].Score, res.Score))
	}

	if rsi := a.Snapshot.RSI; rsi != nil {
		rules := s.Aggregator.Config().Technical
		switch {
		case *rsi < rules.RSIOversold:
			out = append(out, fmt.Sprintf("🎣 RSI %.0f is oversold", *rsi))
		case *rsi > rules.RSIOverbought:
			out = append(out, fmt.Sprintf("⚠️ RSI %.0f is overbought, consider partial profit taking", *rsi))
		}
	}
	return out
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
