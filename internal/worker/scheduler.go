package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// JobLock guards a job so that only one replica runs it at a time.
type JobLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// LockFactory returns the lock for a job key.
type LockFactory func(key string, ttl time.Duration) JobLock

// Job is a named periodic task.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	locks   LockFactory
	lockTTL time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// SchedulerDependencies bundles scheduler collaborators.
type SchedulerDependencies struct {
	Cron    *cron.Cron
	Locks   LockFactory
	LockTTL time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// NewScheduler builds a scheduler; nothing runs until Start.
func NewScheduler(deps SchedulerDependencies) *Scheduler {
	c := deps.Cron
	if c == nil {
		c = cron.New(cron.WithLocation(time.UTC))
	}
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Scheduler{
		cron:    c,
		locks:   deps.Locks,
		lockTTL: ttl,
		logger:  observability.OrNop(deps.Logger).Named("scheduler"),
		metrics: deps.Metrics,
	}
}

// Register adds job to the cron table.
func (s *Scheduler) Register(job Job) error {
	if _, err := s.cron.AddFunc(job.Schedule, func() { s.RunNow(context.Background(), job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Schedule, err)
	}
	s.logger.Info("job scheduled", zap.String("job", job.Name), zap.String("schedule", job.Schedule))
	return nil
}

// Start begins running registered jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// RunNow executes job once under its lock. It returns false when another holder had the lock.
func (s *Scheduler) RunNow(ctx context.Context, job Job) bool {
	logger := s.logger.With(zap.String("job", job.Name))
	if s.locks != nil {
		lock := s.locks("helpdesk:jobs:"+job.Name, s.lockTTL)
		acquired, err := lock.TryLock(ctx)
		if err != nil {
			logger.Warn("job lock unavailable", zap.Error(err))
			s.metrics.RecordJob(job.Name, false)
			return false
		}
		if !acquired {
			logger.Debug("job held by another instance")
			return false
		}
		defer func() {
			if err := lock.Unlock(ctx); err != nil {
				logger.Warn("job unlock failed", zap.Error(err))
			}
		}()
	}

	started := time.Now()
	err := job.Run(ctx)
	s.metrics.RecordJob(job.Name, err == nil)
	if err != nil {
		logger.Error("job failed", zap.Duration("took", time.Since(started)), zap.Error(err))
		return true
	}
	logger.Info("job finished", zap.Duration("took", time.Since(started)))
	return true
}

// TicketJobs returns the retention cleanup and SLA sweep jobs.
func TicketJobs(tickets *service.TicketService, cfg config.JobsConfig, logger *zap.Logger) []Job {
	logger = observability.OrNop(logger)
	return []Job{
		{
			Name:     "ticket_cleanup",
			Schedule: cfg.CleanupSchedule,
			Run: func(ctx context.Context) error {
				res, err := tickets.CleanupOldTickets(ctx)
				if err != nil {
					return err
				}
				for _, w := range res.Warnings {
					logger.Warn("cleanup side effect failed", zap.String("step", w.Step), zap.Error(w.Err))
				}
				return nil
			},
		},
		{
			Name:     "sla_sweep",
			Schedule: cfg.SLASweepSchedule,
			Run: func(ctx context.Context) error {
				n, err := tickets.MarkSLAViolations(ctx)
				if err != nil {
					return err
				}
				if n > 0 {
					logger.Info("sla violations marked", zap.Int("tickets", n))
				}
				return nil
			},
		},
	}
}
