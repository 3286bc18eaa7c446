package recorder

import (
	"time"

	"SignalSentinel/internal/model"
)

// AnalysisRecord is one persisted analysis run.
type AnalysisRecord struct {
	ID        string
	Symbol    string
	AsOf      time.Time
	CreatedAt time.Time
	Score     float64
	Signal    model.SignalLabel
	Close     float64
	Breakdown model.Breakdown

	Reasons       int
	Uncertainties int
}

// Recorder persists analysis results for later audit.
type Recorder interface {
	// RecordAnalysis stores a result with its reasons, uncertainties and
	// detector signals, and returns the run ID.
	RecordAnalysis(res model.ConfidenceResult, snap model.IndicatorSnapshot) (string, error)
	// History returns the most recent runs for symbol, newest first.
	History(symbol string, limit int) ([]AnalysisRecord, error)
	Close() error
}
