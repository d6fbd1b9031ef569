package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-co-op/gocron"
)

// Scheduler triggers refresh runs on a fixed interval
type Scheduler struct {
	svc      *Service
	interval time.Duration
	logger   ectologger.Logger
}

func NewScheduler(svc *Service, interval time.Duration, logger ectologger.Logger) *Scheduler {
	return &Scheduler{
		svc:      svc,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the scheduler until the context is cancelled. Scheduled runs that
// collide with an in-flight run are skipped, not queued.
func (s *Scheduler) Start(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)

	s.logger.Infof("Starting refresh scheduler: interval=%s", s.interval)

	_, err := scheduler.Every(s.interval).Do(func() {
		if _, err := s.svc.Execute(ctx, TriggerSchedule); err != nil {
			if errors.Is(err, ErrRunInFlight) {
				s.logger.Warn("Skipping scheduled refresh, previous run still in flight")
				return
			}
			s.logger.WithError(err).Error("Scheduled refresh failed")
		}
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to schedule refresh job")
		return err
	}

	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	s.logger.Info("Refresh scheduler stopped")
	return nil
}
