package recorder

import (
	"time"

	"MarketForecaster/internal/model"
)

// RunRecord holds the outcome of one forecast run.
type RunRecord struct {
	RunID       string
	Ticker      string
	Source      string
	StartDate   time.Time
	Seed        uint64
	Config      model.SimulationConfig
	Stats       model.ReturnStatistics
	Summary     *model.SummaryResult
	Charts      []string
	RenderError string
}

// Recorder appends run outcomes to a journal for later analysis.
// Records are never read back by the forecaster.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}
