package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/casedesk-api/aggregate"
)

// sweepTimeout bounds a single orphan sweep
const sweepTimeout = 5 * time.Minute

// Sweeper removes child records whose case no longer exists
type Sweeper interface {
	SweepOrphans(ctx context.Context) ([]aggregate.OrphanReport, error)
}

// Scheduler handles periodic background jobs for record integrity
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	schedule string
}

// NewScheduler creates a new scheduler instance. schedule is a standard
// five field cron expression evaluated in UTC.
func NewScheduler(sweeper Sweeper, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		sweeper:  sweeper,
		schedule: schedule,
	}
}

// Start registers the orphan sweep and begins running jobs
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.SweepOrphans); err != nil {
		zap.S().Errorw("failed to register orphan sweep job", "schedule", s.schedule, "error", err)
		return err
	}

	s.cron.Start()
	zap.S().Infow("integrity scheduler started", "schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("integrity scheduler stopped")
}

// SweepOrphans runs one reconciliation pass
func (s *Scheduler) SweepOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	reports, err := s.sweeper.SweepOrphans(ctx)
	if err != nil {
		zap.S().Errorw("orphan sweep failed", "error", err)
		return
	}

	var removed int64
	for _, r := range reports {
		removed += r.Removed
	}
	zap.S().Infow("orphan sweep complete",
		"collections", len(reports),
		"removed", removed,
		"duration", time.Since(start))
}
