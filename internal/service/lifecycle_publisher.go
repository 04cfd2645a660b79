package service

import (
	"context"
	"encoding/json"

	"welcomeapp-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// LifecycleTopic is the in-process topic carrying account lifecycle transitions
const LifecycleTopic = "account.lifecycle"

type ILifecyclePublisher interface {
	Publish(ctx context.Context, event dto.AccountLifecycleEvent) error
}

type lifecyclePublisher struct {
	topicName string
	publisher message.Publisher
}

func NewLifecyclePublisher(topicName string, publisher message.Publisher) ILifecyclePublisher {
	return &lifecyclePublisher{
		topicName: topicName,
		publisher: publisher,
	}
}

func (p *lifecyclePublisher) Publish(ctx context.Context, event dto.AccountLifecycleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", event.Type)

	return p.publisher.Publish(p.topicName, msg)
}
