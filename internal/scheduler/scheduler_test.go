package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"welcomeapp-be/internal/dto"
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/pkg/logger"
	"welcomeapp-be/internal/service"

	"github.com/stretchr/testify/assert"
)

type countingService struct {
	calls   atomic.Int32
	trigger atomic.Value
	err     error
}

func (c *countingService) ConsumeCredits(ctx context.Context, trigger entity.CronTrigger) (*dto.ConsumptionRunSummary, error) {
	c.calls.Add(1)
	c.trigger.Store(trigger)
	if c.err != nil {
		return nil, c.err
	}
	return &dto.ConsumptionRunSummary{Success: true}, nil
}

func (c *countingService) ConsumeCreditsAt(ctx context.Context, trigger entity.CronTrigger, now time.Time) (*dto.ConsumptionRunSummary, error) {
	return c.ConsumeCredits(ctx, trigger)
}

func (c *countingService) Preview(ctx context.Context, now time.Time) ([]dto.AccountDecision, error) {
	return nil, nil
}

func (c *countingService) LastRun(ctx context.Context) (*dto.ConsumptionRunSummary, error) {
	return nil, nil
}

func TestScheduler_RunsOnEveryTick(t *testing.T) {
	svc := &countingService{}
	s := New(svc, 10*time.Millisecond, logger.NewNopLogger())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return svc.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, entity.CronTriggerScheduler, svc.trigger.Load())

	stopped := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, svc.calls.Load(), "no runs after Stop")
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	svc := &countingService{err: service.ErrRunInProgress}
	s := New(svc, 10*time.Millisecond, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return svc.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
