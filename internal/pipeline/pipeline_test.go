package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"MarketForecaster/internal/collector"
	"MarketForecaster/internal/forecast"
	"MarketForecaster/internal/model"
	"MarketForecaster/internal/recorder"
	"MarketForecaster/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	fan      [][]float64
	bins     []model.Bin
	marker   float64
	titles   []string
	pathsErr error
}

func (r *fakeRenderer) RenderPaths(title string, series [][]float64) (string, error) {
	r.titles = append(r.titles, title)
	r.fan = series
	if r.pathsErr != nil {
		return "", r.pathsErr
	}
	return "out/paths.png", nil
}

func (r *fakeRenderer) RenderHistogram(title string, bins []model.Bin, marker float64) (string, error) {
	r.titles = append(r.titles, title)
	r.bins = bins
	r.marker = marker
	return "out/terminal_hist.png", nil
}

type fakeRecorder struct {
	runs []*recorder.RunRecord
	err  error
}

func (r *fakeRecorder) RecordRun(rec *recorder.RunRecord) error {
	r.runs = append(r.runs, rec)
	return r.err
}

func (r *fakeRecorder) Close() error { return nil }

type fakeNotifier struct{ sent []string }

func (n *fakeNotifier) Send(_ context.Context, text string) error {
	n.sent = append(n.sent, text)
	return nil
}

func bars(prices ...float64) []model.OHLCV {
	start := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	out := make([]model.OHLCV, len(prices))
	for i, p := range prices {
		out[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: p, AdjClose: p}
	}
	return out
}

func opts(sims, days, plot int) Options {
	return Options{
		Ticker:        "TEST",
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Simulation:    model.SimulationConfig{NumSimulations: sims, HorizonDays: days},
		PlotPaths:     plot,
		HistogramBins: 10,
		Seed:          42,
	}
}

func TestRun_FlatHistory(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{DailyData: bars(100, 100, 100, 100)}, "TEST", time.Time{})
	r := &fakeRenderer{}
	rec := &fakeRecorder{}
	n := &fakeNotifier{}

	res, err := NewForecaster(col, r, rec, n, opts(5000, 30, 100)).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.RenderErr)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 0.0, res.Stats.MeanDailyReturn)
	assert.Equal(t, 0.0, res.Stats.DailyReturnStdDev)
	assert.Equal(t, 100.0, res.Summary.StartPrice)
	assert.Equal(t, 0.0, res.Summary.ProbabilityAboveStart)
	require.Len(t, res.Summary.Terminal, 5000)
	for _, p := range res.Summary.Terminal {
		require.Equal(t, 100.0, p)
	}

	// renderer saw the first 100 paths with the start price prepended
	require.Len(t, r.fan, 100)
	assert.Len(t, r.fan[0], 31)
	assert.Equal(t, 100.0, r.fan[0][0])
	assert.Len(t, r.bins, 10)
	assert.Equal(t, 100.0, r.marker)
	assert.Equal(t, []string{
		"TEST Monte Carlo Simulation (30 trading days)",
		"Distribution of Terminal Prices after 30 days",
	}, r.titles)
	assert.Equal(t, []string{"out/paths.png", "out/terminal_hist.png"}, res.Summary.Charts)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, res.RunID, rec.runs[0].RunID)
	assert.Equal(t, "mock", rec.runs[0].Source)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "TEST Monte Carlo forecast")
}

func TestRun_PlotPathsClamped(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{DailyData: bars(100, 101, 99, 102)}, "TEST", time.Time{})

	r := &fakeRenderer{}
	_, err := NewForecaster(col, r, nil, nil, opts(3, 5, 0)).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.fan, 1)

	r = &fakeRenderer{}
	_, err = NewForecaster(col, r, nil, nil, opts(3, 5, 50)).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.fan, 3)
}

func TestRun_SeedIsReproducible(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{DailyData: bars(100, 103, 98, 101, 104, 99, 102)}, "TEST", time.Time{})

	a, err := NewForecaster(col, nil, nil, nil, opts(500, 20, 10)).Run(context.Background())
	require.NoError(t, err)
	b, err := NewForecaster(col, nil, nil, nil, opts(500, 20, 10)).Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Summary.Terminal, b.Summary.Terminal)
	assert.Equal(t, a.Summary.ProbabilityAboveStart, b.Summary.ProbabilityAboveStart)
	assert.Empty(t, a.Summary.Charts, "noop renderer writes nothing")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fetcher collector.Fetcher
		opts    Options
		want    error
	}{
		{"unavailable", &collector.MockFetcher{Err: errors.New("no network")}, opts(10, 10, 1), collector.ErrDataUnavailable},
		{"empty", &collector.MockFetcher{DailyData: []model.OHLCV{}}, opts(10, 10, 1), collector.ErrDataUnavailable},
		{"one price", &collector.MockFetcher{DailyData: bars(100)}, opts(10, 10, 1), forecast.ErrInsufficientData},
		{"zero sims", &collector.MockFetcher{DailyData: bars(100, 101)}, opts(0, 10, 1), forecast.ErrInvalidConfig},
		{"zero days", &collector.MockFetcher{DailyData: bars(100, 101)}, opts(10, 0, 1), forecast.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{}
			rec := &fakeRecorder{}
			col := collector.NewCollector(tt.fetcher, "TEST", time.Time{})
			_, err := NewForecaster(col, r, rec, nil, tt.opts).Run(context.Background())
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, r.titles, "nothing rendered on failure")
			assert.Empty(t, rec.runs, "nothing recorded on failure")
		})
	}
}

func TestRun_RenderFailureKeepsSummary(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{DailyData: bars(100, 101, 102)}, "TEST", time.Time{})
	diskFull := errors.New("disk full")
	r := &fakeRenderer{pathsErr: diskFull}
	rec := &fakeRecorder{}

	res, err := NewForecaster(col, r, rec, nil, opts(100, 5, 10)).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, errors.Is(res.RenderErr, diskFull))
	assert.Equal(t, 102.0, res.Summary.StartPrice)
	assert.Len(t, res.Summary.Terminal, 100)
	assert.Equal(t, []string{"out/terminal_hist.png"}, res.Summary.Charts)

	require.Len(t, rec.runs, 1)
	assert.Contains(t, rec.runs[0].RenderError, "disk full")
}

func TestRun_RecorderFailureIsNotFatal(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{DailyData: bars(100, 101, 102)}, "TEST", time.Time{})
	_, err := NewForecaster(col, nil, &fakeRecorder{err: errors.New("locked")}, nil, opts(10, 5, 1)).Run(context.Background())
	assert.NoError(t, err)
}

func TestRun_WithPlotRenderer(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{DailyData: bars(100, 102, 101, 103, 102)}, "TEST", time.Time{})
	dir := t.TempDir()

	res, err := NewForecaster(col, render.NewPlotRenderer(dir), nil, nil, opts(200, 10, 20)).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.RenderErr)
	assert.Equal(t, []string{
		filepath.Join(dir, "paths.png"),
		filepath.Join(dir, "terminal_hist.png"),
	}, res.Summary.Charts)
}
