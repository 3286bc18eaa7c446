package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"SignalSentinel/pkg/errors"
)

// WatchItem is one symbol analyzed by the scheduler.
type WatchItem struct {
	Symbol    string `yaml:"symbol"`
	CSV       string `yaml:"csv"`
	Sentiment string `yaml:"sentiment"`
}

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level string `yaml:"level"`
		Env   string `yaml:"env"`
	} `yaml:"log"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Watchlist []WatchItem `yaml:"watchlist"`
	Scoring   Scoring     `yaml:"scoring"`
}

// envOverrides are read with prefix SENTINEL, falling back to the bare names
// (SENTINEL_SQLITE_PATH, then SQLITE_PATH).
type envOverrides struct {
	LogLevel     string `envconfig:"LOG_LEVEL"`
	LogEnv       string `envconfig:"LOG_ENV"`
	AnalysisCron string `envconfig:"CRON_ANALYSIS"`
	SQLitePath   string `envconfig:"SQLITE_PATH"`
	MetricsAddr  string `envconfig:"METRICS_ADDR"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{Scoring: DefaultScoring()}
	cfg.Log.Level = "info"
	cfg.Log.Env = "development"
	cfg.Schedule.AnalysisCron = "0 0 18 * * 1-5"
	cfg.Database.SQLitePath = "data/signal_sentinel.db"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	var env envOverrides
	if err := envconfig.Process("SENTINEL", &env); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogEnv != "" {
		cfg.Log.Env = env.LogEnv
	}
	if env.AnalysisCron != "" {
		cfg.Schedule.AnalysisCron = env.AnalysisCron
	}
	if env.SQLitePath != "" {
		cfg.Database.SQLitePath = env.SQLitePath
	}
	if env.MetricsAddr != "" {
		cfg.Metrics.ListenAddr = env.MetricsAddr
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Schedule.AnalysisCron == "" {
		return errors.NewValidationError("schedule.analysis_cron", "is required", "")
	}
	for i, w := range c.Watchlist {
		if w.Symbol == "" {
			return errors.NewValidationError("watchlist.symbol", "is required", i)
		}
		if w.CSV == "" {
			return errors.NewValidationError("watchlist.csv", "is required", w.Symbol)
		}
	}
	return c.Scoring.Validate()
}
