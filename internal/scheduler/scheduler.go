// Package scheduler triggers the credit engine from inside the process, for
// deployments without an external cron.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/pkg/logger"
	"welcomeapp-be/internal/service"
)

type Scheduler struct {
	service  service.ICreditConsumptionService
	interval time.Duration
	logger   logger.ILogger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(svc service.ICreditConsumptionService, interval time.Duration, logger logger.ILogger) *Scheduler {
	return &Scheduler{
		service:  svc,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the job every interval until ctx is cancelled or Stop is called.
// The first run happens after one full interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("SCHEDULER", "Credit consumption scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	summary, err := s.service.ConsumeCredits(ctx, entity.CronTriggerScheduler)
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			s.logger.Info("SCHEDULER", "Skipped tick, a run is already in progress", nil)
			return
		}
		s.logger.Error("SCHEDULER", "Scheduled credit consumption failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.logger.Info("SCHEDULER", "Scheduled credit consumption finished", map[string]interface{}{
		"users_processed":  summary.UsersProcessed,
		"credits_consumed": summary.CreditsConsumed,
		"errors":           len(summary.Errors),
	})
}
