package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// dailySpec fires the batch once per night, after the day has rolled over
// everywhere the deployment cares about.
const dailySpec = "0 2 * * *"

// Scheduler drives the Runner on a daily tick.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger zerolog.Logger
}

// NewScheduler creates a scheduler around the given runner.
func NewScheduler(runner *Runner, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the daily batch and launches the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(dailySpec, func() {
		today := time.Now()
		s.logger.Info().Time("tick", today).Msg("Daily job batch starting")
		s.runner.RunAll(context.Background(), today)
		s.logger.Info().Msg("Daily job batch finished")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", dailySpec).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}
