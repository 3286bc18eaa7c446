package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/confidence"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/pkg/errors"
	"SignalSentinel/pkg/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and executes one mode. Deferred cleanup always runs
// because failures are returned instead of exiting.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sentinel", flag.ContinueOnError)
	var (
		cfgPath   = fs.String("config", "configs/config.yaml", "path to the YAML config")
		csvPath   = fs.String("csv", "", "analyze a single CSV file and exit")
		symbol    = fs.String("symbol", "", "symbol for -csv, -mock or -history (defaults to the CSV file name)")
		sentiment = fs.String("sentiment", "", "sentiment YAML/JSON file for -csv")
		once      = fs.Bool("once", false, "run the watchlist analysis once and exit")
		history   = fs.Int("history", 0, "print the last N recorded analyses for -symbol and exit")
		mock      = fs.Bool("mock", false, "analyze generated bars for -symbol and exit")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	// .env is optional
	_ = godotenv.Load()

	if v := os.Getenv("CONFIG_PATH"); v != "" && !isFlagSet(fs, "config") {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Env); err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer logger.Sync()
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "validate config")
	}

	rec := openRecorder(cfg, log)
	defer rec.Close()

	agg := confidence.NewAggregator(cfg.Scoring)

	switch {
	case *history > 0:
		if *symbol == "" {
			return errors.New("-history needs -symbol")
		}
		records, err := rec.History(*symbol, *history)
		if err != nil {
			return errors.Wrapf(err, "load history for %s", *symbol)
		}
		_, err = fmt.Fprint(stdout, notifier.FormatHistory(*symbol, records))
		return err

	case *csvPath != "":
		sym := *symbol
		if sym == "" {
			sym = strings.TrimSuffix(filepath.Base(*csvPath), filepath.Ext(*csvPath))
		}
		fetcher := collector.NewCSVFetcher(map[string]string{sym: *csvPath})
		return errors.Wrapf(analyzeOne(agg, rec, fetcher, sym, *sentiment, stdout, log), "analyze %s", *csvPath)

	case *mock:
		sym := *symbol
		if sym == "" {
			sym = "MOCK"
		}
		fetcher := &collector.MockFetcher{Price: 100, Count: 250}
		return errors.Wrapf(analyzeOne(agg, rec, fetcher, sym, *sentiment, stdout, log), "analyze %s", sym)
	}

	if len(cfg.Watchlist) == 0 {
		return errors.Newf("watchlist in %s is empty; use -csv or -mock for a single symbol", *cfgPath)
	}
	return runWatchlist(cfg, agg, rec, *once, stdout, log)
}

// analyzeOne runs a one-shot analysis of symbol and prints the report.
func analyzeOne(agg *confidence.Aggregator, rec recorder.Recorder, fetcher collector.Fetcher, symbol, sentimentPath string,
	stdout io.Writer, log *logger.Logger) error {
	var sent collector.SentimentSource
	if sentimentPath != "" {
		sent = collector.NewFileSentiment(map[string]string{symbol: sentimentPath})
	}
	col := collector.NewCollector(fetcher, sent, log)

	ctx := context.Background()
	in, err := col.Collect(ctx, symbol)
	if err != nil {
		return err
	}
	a, err := agg.Analyze(in.Series, in.Sentiment)
	if err != nil {
		return err
	}
	if id, err := rec.RecordAnalysis(a.Result, a.Snapshot); err != nil {
		log.Warnw("Record analysis failed", "symbol", symbol, "error", err)
	} else {
		log.Debugw("Analysis recorded", "symbol", symbol, "run_id", id)
	}
	return notifier.NewWriterNotifier(stdout).Send(ctx, notifier.FormatAnalysisReport(a))
}

// runWatchlist runs the configured watchlist once or on the cron schedule.
func runWatchlist(cfg *config.Config, agg *confidence.Aggregator, rec recorder.Recorder, once bool,
	stdout io.Writer, log *logger.Logger) error {
	csvFiles := make(map[string]string, len(cfg.Watchlist))
	sentimentFiles := make(map[string]string, len(cfg.Watchlist))
	symbols := make([]string, 0, len(cfg.Watchlist))
	for _, w := range cfg.Watchlist {
		csvFiles[w.Symbol] = w.CSV
		if w.Sentiment != "" {
			sentimentFiles[w.Symbol] = w.Sentiment
		}
		symbols = append(symbols, w.Symbol)
	}
	col := collector.NewCollector(collector.NewCSVFetcher(csvFiles), collector.NewFileSentiment(sentimentFiles), log)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Init()
	go func() {
		if err := metrics.Serve(ctx, cfg.Metrics.ListenAddr, log); err != nil {
			log.Errorw("Metrics listener stopped", "error", err)
		}
	}()

	if once {
		sched := scheduler.NewScheduler(ctx, col, agg, notifier.NewWriterNotifier(stdout), rec, symbols, log)
		failed := 0
		for _, o := range sched.RunOnce() {
			if o.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			log.Warnw("Watchlist run finished with failures", "failed", failed, "total", len(symbols))
		}
		return nil
	}

	sched := scheduler.NewScheduler(ctx, col, agg, notifier.NewLogNotifier(log), rec, symbols, log)
	if err := sched.Register(cfg.Schedule.AnalysisCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, running the watchlist now")
		go sched.RunOnce()
	}

	log.Infow("SignalSentinel is running. Press Ctrl+C to stop.", "cron", cfg.Schedule.AnalysisCron)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping...")
	cancel()
	return nil
}

func openRecorder(cfg *config.Config, log *logger.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Warnw("Create database directory failed, using noop recorder", "error", err)
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warnw("Init SQLite recorder failed, using noop recorder", "error", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
