// FILE: internal/service/lifecycle_consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"welcomeapp-be/internal/dto"
	"welcomeapp-be/internal/pkg/logger"
	"welcomeapp-be/internal/pkg/mailer"
	"welcomeapp-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder ships lifecycle events to other services (NATS JetStream in production)
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type ILifecycleConsumerService interface {
	Consume(ctx context.Context) error
}

type lifecycleConsumerService struct {
	subscriber   message.Subscriber
	topicName    string
	emailService mailer.IEmailService
	forwarder    EventForwarder
	logger       logger.ILogger
}

// NewLifecycleConsumerService wires the lifecycle side effects. emailService and
// forwarder may be nil when SMTP or NATS are not configured.
func NewLifecycleConsumerService(
	subscriber message.Subscriber,
	topicName string,
	emailService mailer.IEmailService,
	forwarder EventForwarder,
	logger logger.ILogger,
) ILifecycleConsumerService {
	return &lifecycleConsumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		emailService: emailService,
		forwarder:    forwarder,
		logger:       logger,
	}
}

func (cs *lifecycleConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: side effects are best effort and must not replay
func (cs *lifecycleConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var event dto.AccountLifecycleEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("LIFECYCLE", "Failed to unmarshal lifecycle event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	details := map[string]interface{}{
		"type":       event.Type,
		"user_email": event.UserEmail,
	}

	if cs.emailService != nil {
		if err := cs.sendEmail(event); err != nil {
			cs.logger.Warn("LIFECYCLE", "Failed to send lifecycle email", withError(details, err))
		}
	}

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, toBusEvent(event)); err != nil {
			cs.logger.Warn("LIFECYCLE", "Failed to forward lifecycle event", withError(details, err))
		}
	}

	cs.logger.Info("LIFECYCLE", "Lifecycle event handled", details)
}

func (cs *lifecycleConsumerService) sendEmail(event dto.AccountLifecycleEvent) error {
	switch event.Type {
	case events.TypeGracePeriodStarted:
		endsAt := event.OccurredAt
		if event.GraceEndsAt != nil {
			endsAt = *event.GraceEndsAt
		}
		return cs.emailService.SendGracePeriodStarted(event.UserEmail, endsAt)
	case events.TypeAccountSuspended:
		return cs.emailService.SendAccountSuspended(event.UserEmail)
	}
	return nil
}

// withError copies details so the shared map stays clean for the final Info line
func withError(details map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}

func toBusEvent(event dto.AccountLifecycleEvent) events.Event {
	return events.AccountEvent{
		Type:           event.Type,
		UserEmail:      event.UserEmail,
		CreditsBalance: event.CreditsBalance,
		AccountStatus:  event.AccountStatus,
		GraceEndsAt:    event.GraceEndsAt,
		OccurredAt:     event.OccurredAt,
	}
}
