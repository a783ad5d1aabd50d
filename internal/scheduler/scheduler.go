package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Pruner deletes history records stamped before a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler periodically prunes weather history older than the retention age.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pruner    Pruner
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// New creates a new Scheduler.
func New(pruner Pruner, retention, interval time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		log:       log,
	}
}

// Start schedules the retention job and starts the underlying scheduler.
// A zero retention disables the job.
func (s *Scheduler) Start() error {
	if s.retention <= 0 {
		s.log.Info("scheduler: history retention disabled; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce prunes every record older than the retention age.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	n, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("scheduler: history pruning failed", zap.Error(err))
		return
	}
	s.log.Info("scheduler: history pruned", zap.Int64("records", n), zap.Time("cutoff", cutoff))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
