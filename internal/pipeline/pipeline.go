// Package pipeline runs one forecast end to end: collect history, estimate
// return statistics, simulate paths, summarize, render, record and notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketForecaster/internal/collector"
	"MarketForecaster/internal/forecast"
	"MarketForecaster/internal/model"
	"MarketForecaster/internal/notifier"
	"MarketForecaster/internal/recorder"
	"MarketForecaster/internal/render"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Options are the per-run forecast settings.
type Options struct {
	Ticker        string
	StartDate     time.Time
	Simulation    model.SimulationConfig
	PlotPaths     int // non-positive is clamped to 1
	HistogramBins int // non-positive uses forecast.DefaultHistogramBins
	Seed          uint64
}

// Result is everything a run produced. When rendering fails, Summary is still
// valid and RenderErr says what went wrong.
type Result struct {
	RunID     string
	Stats     model.ReturnStatistics
	Summary   model.SummaryResult
	RenderErr error
}

// Forecaster wires the collector and the output sinks around the numeric core.
type Forecaster struct {
	Collector *collector.Collector
	Renderer  render.Renderer
	Recorder  recorder.Recorder
	Notifier  notifier.Notifier // optional
	Options   Options
}

// NewForecaster creates a Forecaster. Nil renderer and recorder become no-ops.
func NewForecaster(col *collector.Collector, r render.Renderer, rec recorder.Recorder, n notifier.Notifier, opts Options) *Forecaster {
	if r == nil {
		r = render.NewNoopRenderer()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Forecaster{Collector: col, Renderer: r, Recorder: rec, Notifier: n, Options: opts}
}

// Run performs one forecast. Data, estimation and simulation failures abort
// the run before anything is written. Rendering, recording and notification
// failures do not: rendering errors land in Result.RenderErr, the others are logged.
func (f *Forecaster) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	entry := log.WithFields(log.Fields{"run": runID, "ticker": f.Options.Ticker})
	entry.Info("forecast run started")

	series, err := f.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	stats, err := forecast.Estimate(series)
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}
	entry.WithFields(log.Fields{
		"mean":  fmt.Sprintf("%.6f", stats.MeanDailyReturn),
		"std":   fmt.Sprintf("%.6f", stats.DailyReturnStdDev),
		"last":  fmt.Sprintf("%.2f", stats.LastPrice),
		"count": stats.Observations,
	}).Info("return statistics estimated")

	paths, err := forecast.Simulate(stats, f.Options.Simulation, forecast.NewSource(f.Options.Seed))
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	sum, err := forecast.Summarize(paths, stats.LastPrice)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	entry.WithFields(log.Fields{
		"p_up":   fmt.Sprintf("%.4f", sum.ProbabilityAboveStart),
		"median": fmt.Sprintf("%.2f", sum.Stats.Median),
		"p05":    fmt.Sprintf("%.2f", sum.Stats.P05),
		"p95":    fmt.Sprintf("%.2f", sum.Stats.P95),
	}).Info("terminal distribution summarized")

	res := &Result{RunID: runID, Stats: stats, Summary: sum}
	res.Summary.Charts, res.RenderErr = f.render(paths, stats.LastPrice)
	if res.RenderErr != nil {
		entry.Errorf("render charts: %v", res.RenderErr)
	}

	f.record(entry, res)
	f.notify(ctx, entry, res)
	return res, nil
}

func (f *Forecaster) render(paths model.PathMatrix, start float64) ([]string, error) {
	days := f.Options.Simulation.HorizonDays
	var charts []string
	var errs []error

	fan := forecast.FanSeries(paths, start, f.Options.PlotPaths)
	title := fmt.Sprintf("%s Monte Carlo Simulation (%d trading days)", f.Options.Ticker, days)
	if p, err := f.Renderer.RenderPaths(title, fan); err != nil {
		errs = append(errs, fmt.Errorf("fan chart: %w", err))
	} else if p != "" {
		charts = append(charts, p)
	}

	bins := forecast.HistogramBins(paths.Terminal(), f.Options.HistogramBins)
	title = fmt.Sprintf("Distribution of Terminal Prices after %d days", days)
	if p, err := f.Renderer.RenderHistogram(title, bins, start); err != nil {
		errs = append(errs, fmt.Errorf("histogram: %w", err))
	} else if p != "" {
		charts = append(charts, p)
	}

	return charts, errors.Join(errs...)
}

func (f *Forecaster) record(entry *log.Entry, res *Result) {
	rec := &recorder.RunRecord{
		RunID:     res.RunID,
		Ticker:    f.Options.Ticker,
		Source:    f.Collector.Fetcher.Name(),
		StartDate: f.Options.StartDate,
		Seed:      f.Options.Seed,
		Config:    f.Options.Simulation,
		Stats:     res.Stats,
		Summary:   &res.Summary,
		Charts:    res.Summary.Charts,
	}
	if res.RenderErr != nil {
		rec.RenderError = res.RenderErr.Error()
	}
	if err := f.Recorder.RecordRun(rec); err != nil {
		entry.Warnf("record run: %v", err)
	}
}

func (f *Forecaster) notify(ctx context.Context, entry *log.Entry, res *Result) {
	if f.Notifier == nil {
		return
	}
	msg := notifier.FormatReport(f.Options.Ticker, &res.Stats, f.Options.Simulation, &res.Summary)
	if err := f.Notifier.Send(ctx, msg); err != nil {
		entry.Warnf("send notification: %v", err)
	}
}
