package job

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs background jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a scheduler that recovers panicking jobs and skips a run while the previous one is still going
func NewScheduler(logger *zap.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		logger: logger,
	}
}

// Add registers job under a standard cron spec or a descriptor such as "@every 1m"
func (s *Scheduler) Add(name, spec string, job cron.Job) error {
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", name, spec, err)
	}
	s.logger.Info("Job scheduled", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents further runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
