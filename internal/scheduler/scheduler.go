package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"MarketForecaster/internal/pipeline"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Runner performs one forecast.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Scheduler re-runs the forecast on a cron schedule. A tick that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Ctx      context.Context
	OnResult func(*pipeline.Result, error) // optional

	running atomic.Bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	runs    int
}

// NewScheduler creates a new Scheduler. Cron specs use the six-field format
// with a leading seconds field.
func NewScheduler(ctx context.Context, r Runner) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		Runner: r,
		Ctx:    ctx,
	}
}

// Register adds the forecast job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.forecastTask); err != nil {
		return fmt.Errorf("register forecast task %q: %w", spec, err)
	}
	log.WithField("cron", spec).Info("forecast task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running forecast to finish,
// including one started by Trigger.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	log.Info("scheduler stopped")
}

// RunNow executes the forecast immediately (for RUN_ON_START). It is skipped
// when a scheduled run is already in progress, and vice versa.
func (s *Scheduler) RunNow() {
	s.forecastTask()
}

// Trigger runs RunNow in the background. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.forecastTask()
	}()
}

// Runs reports how many forecasts have completed, successfully or not.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) forecastTask() {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn("forecast already running, skipping")
		return
	}
	defer s.running.Store(false)

	if err := s.Ctx.Err(); err != nil {
		log.Warnf("forecast task skipped: %v", err)
		return
	}
	log.Info("running scheduled forecast")
	res, err := s.Runner.Run(s.Ctx)
	if err != nil {
		log.Errorf("scheduled forecast: %v", err)
	}

	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	if s.OnResult != nil {
		s.OnResult(res, err)
	}
}
