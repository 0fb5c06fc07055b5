package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/planwerk/cockpit-backend/internal/platform/logger"
)

// DefaultSchedule runs the audit nightly at 03:00. The expression has a
// seconds field.
const DefaultSchedule = "0 0 3 * * *"

const runTimeout = 10 * time.Minute

type Scheduler struct {
	c       *cron.Cron
	auditor *Auditor
	log     *logger.Logger
}

func NewScheduler(auditor *Auditor, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		c:       cron.New(cron.WithSeconds()),
		auditor: auditor,
		log:     log.With("component", "audit_scheduler"),
	}
}

// Start registers the audit under spec and starts the cron loop. Runs
// triggered after ctx is cancelled are skipped.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = DefaultSchedule
	}
	_, err := s.c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule orphan audit %q: %w", spec, err)
	}

	s.c.Start()
	s.log.Info("orphan audit scheduled", "schedule", spec)
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	rctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if _, err := s.auditor.Run(rctx); err != nil {
		s.log.Error("orphan audit failed", "error", err)
	}
}

// Stop halts the cron loop and waits for a running audit to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
	s.log.Info("orphan audit scheduler stopped")
}
