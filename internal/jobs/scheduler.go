package jobs

import (
	"context"
	"time"

	"reward_platform/internal/logger"
	"reward_platform/internal/service"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the midnight counter reset. Missed or repeated runs are
// harmless because the reset itself is date-guarded; accounts touched before
// the cron fires are reset lazily on read.
type Scheduler struct {
	cron  *cron.Cron
	reset *service.ResetService
}

func NewScheduler(reset *service.ResetService) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		reset: reset,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := s.reset.RunDaily(ctx); err != nil {
			logger.Error("scheduled daily reset failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
