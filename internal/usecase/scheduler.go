package usecase

import (
	"context"
	"log/slog"
	"time"

	"mediacontacts/internal/ports"
)

// Scheduler binds the ticking driver to the import pipeline.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring import runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.pipeline.ProcessRun(ctx, trigger); err != nil {
			s.logger.Error("import run failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
