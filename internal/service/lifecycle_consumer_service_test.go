package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"welcomeapp-be/internal/dto"
	"welcomeapp-be/internal/pkg/logger"
	"welcomeapp-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu        sync.Mutex
	grace     []string
	suspended []string
	err       error
}

func (m *fakeMailer) SendGracePeriodStarted(toEmail string, graceEndsAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grace = append(m.grace, toEmail)
	return m.err
}

func (m *fakeMailer) SendAccountSuspended(toEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suspended = append(m.suspended, toEmail)
	return m.err
}

func (m *fakeMailer) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.grace), len(m.suspended)
}

type fakeForwarder struct {
	mu       sync.Mutex
	received []events.Event
}

func (f *fakeForwarder) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, event)
	return nil
}

func (f *fakeForwarder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func TestLifecycleConsumer_EmailsAndForwards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	mail := &fakeMailer{}
	forwarder := &fakeForwarder{}
	consumer := NewLifecycleConsumerService(pubSub, LifecycleTopic, mail, forwarder, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewLifecyclePublisher(LifecycleTopic, pubSub)
	endsAt := runNow.Add(7 * 24 * time.Hour)

	require.NoError(t, publisher.Publish(ctx, dto.AccountLifecycleEvent{
		Type:          events.TypeGracePeriodStarted,
		UserEmail:     "b@example.com",
		AccountStatus: "grace_period",
		GraceEndsAt:   &endsAt,
		OccurredAt:    runNow,
	}))
	require.NoError(t, publisher.Publish(ctx, dto.AccountLifecycleEvent{
		Type:          events.TypeAccountSuspended,
		UserEmail:     "c@example.com",
		AccountStatus: "suspended",
		OccurredAt:    runNow,
	}))

	assert.Eventually(t, func() bool {
		grace, suspended := mail.counts()
		return grace == 1 && suspended == 1 && forwarder.count() == 2
	}, 2*time.Second, 10*time.Millisecond)

	// gochannel delivers asynchronously, so match by type rather than position
	forwarder.mu.Lock()
	defer forwarder.mu.Unlock()
	byType := make(map[string]events.Event, len(forwarder.received))
	for _, e := range forwarder.received {
		byType[e.EventType()] = e
	}
	require.Len(t, byType, 2)

	grace := byType[events.TypeGracePeriodStarted]
	require.NotNil(t, grace)
	assert.Equal(t, "b@example.com", grace.Payload()["user_email"])
	assert.Equal(t, endsAt.Format(time.RFC3339), grace.Payload()["grace_ends_at"])

	suspended := byType[events.TypeAccountSuspended]
	require.NotNil(t, suspended)
	assert.Equal(t, "c@example.com", suspended.Payload()["user_email"])
}

func TestWithError_DoesNotMutateDetails(t *testing.T) {
	details := map[string]interface{}{"type": events.TypeAccountSuspended, "user_email": "c@example.com"}

	got := withError(details, errors.New("smtp down"))

	assert.Equal(t, "smtp down", got["error"])
	assert.Equal(t, "c@example.com", got["user_email"])
	assert.NotContains(t, details, "error")
	assert.Len(t, details, 2)
}

func TestLifecycleConsumer_MailFailureStillForwards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	mail := &fakeMailer{err: errors.New("smtp down")}
	forwarder := &fakeForwarder{}
	consumer := NewLifecycleConsumerService(pubSub, LifecycleTopic, mail, forwarder, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewLifecyclePublisher(LifecycleTopic, pubSub)
	require.NoError(t, publisher.Publish(ctx, dto.AccountLifecycleEvent{
		Type:       events.TypeAccountSuspended,
		UserEmail:  "c@example.com",
		OccurredAt: runNow,
	}))

	assert.Eventually(t, func() bool { return forwarder.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestLifecycleConsumer_WithoutOptionalSinks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	consumer := NewLifecycleConsumerService(pubSub, LifecycleTopic, nil, nil, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewLifecyclePublisher(LifecycleTopic, pubSub)
	assert.NoError(t, publisher.Publish(ctx, dto.AccountLifecycleEvent{
		Type:       events.TypeAccountSuspended,
		UserEmail:  "c@example.com",
		OccurredAt: runNow,
	}))
}
