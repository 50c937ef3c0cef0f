package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"MarketForecaster/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(id string) *RunRecord {
	return &RunRecord{
		RunID:     id,
		Ticker:    "AAPL",
		Source:    "mock",
		StartDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:      42,
		Config:    model.SimulationConfig{NumSimulations: 100, HorizonDays: 30},
		Stats:     model.ReturnStatistics{MeanDailyReturn: 0.001, DailyReturnStdDev: 0.02, LastPrice: 180, Observations: 500},
		Summary: &model.SummaryResult{
			StartPrice:            180,
			ProbabilityAboveStart: 0.53,
			HorizonDays:           30,
			Stats:                 model.TerminalStats{Mean: 181, Median: 180.5, P05: 150, P95: 215, Min: 120, Max: 260},
		},
		Charts: []string{"paths.png", "terminal_hist.png"},
	}
}

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordRun(sampleRun("run-1")))
	require.NoError(t, r.RecordRun(sampleRun("run-2")))

	n, err := r.CountRuns("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var prob float64
	var charts string
	require.NoError(t, r.db.QueryRow(
		`SELECT prob_above_start, charts FROM forecast_runs WHERE run_id = ?`, "run-1").Scan(&prob, &charts))
	assert.Equal(t, 0.53, prob)
	assert.Equal(t, "paths.png,terminal_hist.png", charts)
}

func TestSQLiteRecorder_DuplicateRunID(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordRun(sampleRun("same")))
	assert.Error(t, r.RecordRun(sampleRun("same")))
}

func TestSQLiteRecorder_MissingSummary(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	rec := sampleRun("x")
	rec.Summary = nil
	assert.Error(t, r.RecordRun(rec))
}

func TestNoopRecorder(t *testing.T) {
	r := NewNoopRecorder()
	assert.NoError(t, r.RecordRun(sampleRun("x")))
	assert.NoError(t, r.Close())
}
