package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/bootstrap"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/jobs"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/logger"
)

func main() {
	jobName := flag.String("job", "", "run a single job by name and exit (empty: run the daily scheduler)")
	flag.Parse()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to setup database")
		os.Exit(1)
	}
	defer database.Close()

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to setup dependencies")
		os.Exit(1)
	}

	// One-shot mode for manual runs and external schedulers.
	if *jobName != "" {
		if err := deps.JobRunner.Run(context.Background(), *jobName, time.Now()); err != nil {
			lgr.Error().Err(err).Str("job", *jobName).Msg("Job failed")
			os.Exit(1)
		}
		return
	}

	scheduler := jobs.NewScheduler(deps.JobRunner, lgr)
	if err := scheduler.Start(); err != nil {
		lgr.Error().Err(err).Msg("Failed to start scheduler")
		os.Exit(1)
	}

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-osSignals
	lgr.Info().Str("signal", sig.String()).Msg("Received OS signal, stopping scheduler...")

	scheduler.Stop()
}
