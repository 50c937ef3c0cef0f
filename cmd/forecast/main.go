package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"MarketForecaster/internal/config"
	"MarketForecaster/internal/logger"
	"MarketForecaster/internal/notifier"
	"MarketForecaster/internal/pipeline"
	"MarketForecaster/internal/scheduler"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "forecast",
		Usage:  "Monte Carlo price forecast for a single instrument",
		Flags:  flags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "configs/config.yaml", EnvVars: []string{"CONFIG_PATH"}, Usage: "YAML config file"},
		&cli.StringFlag{Name: "ticker", Aliases: []string{"t"}, Usage: "instrument symbol"},
		&cli.StringFlag{Name: "start", Usage: "history start date (YYYY-MM-DD)"},
		&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Usage: "forecast horizon in trading days"},
		&cli.IntFlag{Name: "sims", Aliases: []string{"n"}, Usage: "number of simulated paths"},
		&cli.IntFlag{Name: "plot-paths", Usage: "paths drawn on the fan chart"},
		&cli.IntFlag{Name: "bins", Usage: "histogram bins"},
		&cli.Uint64Flag{Name: "seed", Usage: "random seed, 0 for nondeterministic"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "chart output directory"},
		&cli.StringFlag{Name: "source", Usage: "data source: yahoo, rest, csv, mock"},
		&cli.StringFlag{Name: "csv", Usage: "CSV file with date and adj_close columns"},
		&cli.BoolFlag{Name: "no-plots", Usage: "skip chart rendering"},
		&cli.StringFlag{Name: "cron", Usage: "re-run on this six-field cron schedule instead of once"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, error"},
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), 2)
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("config validation: %v", err), 2)
	}
	if err := logger.Setup(cfg.Log.Level, os.Stderr); err != nil {
		log.Warn(err)
	}

	app, err := build(cfg)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer app.Close()

	if cfg.Schedule.Cron != "" {
		return runScheduled(c.Context, cfg, app.Forecaster)
	}
	return runOnce(c.Context, app.Forecaster)
}

func runOnce(ctx context.Context, f *pipeline.Forecaster) error {
	res, err := f.Run(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("forecast: %v", err), 1)
	}
	printSummary(res)
	if res.RenderErr != nil {
		return cli.Exit(fmt.Sprintf("render charts: %v", res.RenderErr), 1)
	}
	return nil
}

func runScheduled(ctx context.Context, cfg *config.Config, f *pipeline.Forecaster) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, f)
	sched.OnResult = func(res *pipeline.Result, err error) {
		if err == nil {
			printSummary(res)
		}
	}
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	sched.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, running forecast now")
		sched.Trigger()
	}

	log.Info("forecaster is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info("shutdown signal received, stopping...")
	sched.Stop()
	log.WithField("runs", sched.Runs()).Info("forecaster stopped")
	return nil
}

func printSummary(res *pipeline.Result) {
	if res == nil {
		return
	}
	fmt.Print(notifier.FormatConsoleSummary(&res.Summary))
	s := res.Summary.Stats
	fmt.Println(color.HiBlackString("Terminal price median %.2f, 5%%-95%% band %.2f to %.2f",
		s.Median, s.P05, s.P95))
}
