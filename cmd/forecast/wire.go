package main

import (
	"fmt"

	"MarketForecaster/internal/collector"
	"MarketForecaster/internal/config"
	"MarketForecaster/internal/model"
	"MarketForecaster/internal/notifier"
	"MarketForecaster/internal/pipeline"
	"MarketForecaster/internal/recorder"
	"MarketForecaster/internal/render"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot/vg"
)

type application struct {
	Forecaster *pipeline.Forecaster
	recorder   recorder.Recorder
}

func (a *application) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Warnf("close recorder: %v", err)
	}
}

// applyFlags overrides config values with flags given on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("ticker") {
		cfg.Forecast.Ticker = c.String("ticker")
	}
	if c.IsSet("start") {
		cfg.Forecast.StartDate = c.String("start")
	}
	if c.IsSet("days") {
		cfg.Forecast.HorizonDays = c.Int("days")
	}
	if c.IsSet("sims") {
		cfg.Forecast.NumSimulations = c.Int("sims")
	}
	if c.IsSet("plot-paths") {
		cfg.Forecast.PlotPaths = c.Int("plot-paths")
	}
	if c.IsSet("bins") {
		cfg.Forecast.HistogramBins = c.Int("bins")
	}
	if c.IsSet("seed") {
		cfg.Forecast.Seed = c.Uint64("seed")
	}
	if c.IsSet("out") {
		cfg.Output.Dir = c.String("out")
	}
	if c.IsSet("csv") {
		cfg.DataSource.CSVPath = c.String("csv")
		if !c.IsSet("source") {
			cfg.DataSource.Kind = "csv"
		}
	}
	if c.IsSet("source") {
		cfg.DataSource.Kind = c.String("source")
	}
	if c.Bool("no-plots") {
		cfg.Output.Disabled = true
	}
	if c.IsSet("cron") {
		cfg.Schedule.Cron = c.String("cron")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Kind {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "csv":
		return collector.NewCSVFetcher(cfg.DataSource.CSVPath), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource.Kind)
	}
}

func newRenderer(cfg *config.Config) render.Renderer {
	if cfg.Output.Disabled {
		return render.NewNoopRenderer()
	}
	r := render.NewPlotRenderer(cfg.Output.Dir)
	r.PathsFile = cfg.Output.PathsFile
	r.HistogramFile = cfg.Output.HistogramFile
	r.Width = vg.Length(cfg.Output.WidthInches) * vg.Inch
	r.Height = vg.Length(cfg.Output.HeightInches) * vg.Inch
	return r
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warnf("init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newNotifier(cfg *config.Config) notifier.Notifier {
	if cfg.Telegram.BotToken == "" {
		return nil
	}
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
}

func build(cfg *config.Config) (*application, error) {
	start, err := cfg.Start()
	if err != nil {
		return nil, err
	}
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.Forecast.Ticker, start)
	rec := newRecorder(cfg)
	opts := pipeline.Options{
		Ticker:    cfg.Forecast.Ticker,
		StartDate: start,
		Simulation: model.SimulationConfig{
			NumSimulations: cfg.Forecast.NumSimulations,
			HorizonDays:    cfg.Forecast.HorizonDays,
		},
		PlotPaths:     cfg.Forecast.PlotPaths,
		HistogramBins: cfg.Forecast.HistogramBins,
		Seed:          cfg.Forecast.Seed,
	}
	f := pipeline.NewForecaster(col, newRenderer(cfg), rec, newNotifier(cfg), opts)
	return &application{Forecaster: f, recorder: rec}, nil
}
