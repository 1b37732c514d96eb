package service

import (
	"context"
	"encoding/json"

	"source-intel-be/internal/dto"
	"source-intel-be/pkg/synthesis"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// DecisionTopic is the in-process topic every committed decision is published on.
const DecisionTopic = "synthesis.decisions"

type IPublisherService interface {
	PublishDecision(ctx context.Context, d synthesis.Decision) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) PublishDecision(ctx context.Context, d synthesis.Decision) error {
	payload, err := json.Marshal(dto.DecisionMessage{Decision: d})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}
