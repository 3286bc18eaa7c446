package recorder

import (
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"SignalSentinel/internal/model"
	"SignalSentinel/pkg/errors"
	"SignalSentinel/pkg/logger"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = logger.Get()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// WAL lets dashboards read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	r := &SQLiteRecorder{db: db, log: log.With("component", "recorder"), now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	r.log.Infow("SQLite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			seq                INTEGER PRIMARY KEY AUTOINCREMENT,
			id                 TEXT NOT NULL UNIQUE,
			symbol             TEXT NOT NULL,
			as_of              INTEGER NOT NULL,
			created_at         INTEGER NOT NULL,
			score              REAL,
			signal             TEXT,
			close              REAL,
			rsi                REAL,
			macd_hist          REAL,
			bb_percent_b       REAL,
			technical          REAL,
			sentiment          REAL,
			volume             REAL,
			support_resistance REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol, seq)`,

		`CREATE TABLE IF NOT EXISTS analysis_reasons (
			analysis_id TEXT NOT NULL,
			position    INTEGER NOT NULL,
			category    TEXT,
			indicator   TEXT,
			description TEXT,
			impact      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reasons_analysis ON analysis_reasons(analysis_id)`,

		`CREATE TABLE IF NOT EXISTS analysis_uncertainties (
			analysis_id    TEXT NOT NULL,
			position       INTEGER NOT NULL,
			factor         TEXT,
			description    TEXT,
			recommendation TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_uncertainties_analysis ON analysis_uncertainties(analysis_id)`,

		`CREATE TABLE IF NOT EXISTS detector_signals (
			analysis_id TEXT NOT NULL,
			category    TEXT,
			label       TEXT,
			score       REAL,
			reliability INTEGER,
			rationale   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_analysis ON detector_signals(analysis_id)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrapf(err, "exec %q", s[:40])
		}
	}
	return nil
}

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// RecordAnalysis writes one run and its child rows in a single transaction.
func (r *SQLiteRecorder) RecordAnalysis(res model.ConfidenceResult, snap model.IndicatorSnapshot) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	tx, err := r.db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	b := res.Breakdown
	_, err = tx.Exec(`INSERT INTO analyses
		(id, symbol, as_of, created_at, score, signal, close, rsi, macd_hist, bb_percent_b,
		 technical, sentiment, volume, support_resistance)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, res.Symbol, res.AsOf.Unix(), r.now().Unix(), res.Score, res.Signal.String(),
		snap.Close, nullable(snap.RSI), nullable(snap.MACDHist), nullable(snap.BBPercentB),
		b.Technical, b.Sentiment, b.Volume, b.SupportResistance,
	)
	if err != nil {
		return "", errors.Wrap(err, "insert analysis")
	}

	for i, reason := range res.Reasons {
		if _, err := tx.Exec(`INSERT INTO analysis_reasons
			(analysis_id, position, category, indicator, description, impact)
			VALUES (?,?,?,?,?,?)`,
			id, i, reason.Category, reason.Indicator, reason.Description, reason.Impact,
		); err != nil {
			return "", errors.Wrap(err, "insert reason")
		}
	}
	for i, u := range res.Uncertainties {
		if _, err := tx.Exec(`INSERT INTO analysis_uncertainties
			(analysis_id, position, factor, description, recommendation)
			VALUES (?,?,?,?,?)`,
			id, i, u.Factor, u.Description, u.Recommendation,
		); err != nil {
			return "", errors.Wrap(err, "insert uncertainty")
		}
	}
	for _, sig := range res.Signals {
		if _, err := tx.Exec(`INSERT INTO detector_signals
			(analysis_id, category, label, score, reliability, rationale)
			VALUES (?,?,?,?,?,?)`,
			id, string(sig.Category), sig.Label.String(), sig.Score, sig.Reliability, sig.Rationale,
		); err != nil {
			return "", errors.Wrap(err, "insert detector signal")
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit")
	}
	r.log.Debugw("Analysis recorded", "id", id, "symbol", res.Symbol, "score", res.Score)
	return id, nil
}

// History returns up to limit runs for symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT a.id, a.symbol, a.as_of, a.created_at, a.score, a.signal, a.close,
			a.technical, a.sentiment, a.volume, a.support_resistance,
			(SELECT COUNT(*) FROM analysis_reasons WHERE analysis_id = a.id),
			(SELECT COUNT(*) FROM analysis_uncertainties WHERE analysis_id = a.id)
		FROM analyses a
		WHERE a.symbol = ?
		ORDER BY a.seq DESC
		LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var (
			rec           AnalysisRecord
			asOf, created int64
			signal        string
		)
		if err := rows.Scan(&rec.ID, &rec.Symbol, &asOf, &created, &rec.Score, &signal, &rec.Close,
			&rec.Breakdown.Technical, &rec.Breakdown.Sentiment, &rec.Breakdown.Volume,
			&rec.Breakdown.SupportResistance, &rec.Reasons, &rec.Uncertainties); err != nil {
			return nil, errors.Wrap(err, "scan history")
		}
		rec.AsOf = time.Unix(asOf, 0).UTC()
		rec.CreatedAt = time.Unix(created, 0).UTC()
		if rec.Signal, err = model.ParseSignalLabel(signal); err != nil {
			return nil, errors.Wrapf(err, "analysis %s", rec.ID)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("Closing SQLite recorder")
	return r.db.Close()
}
