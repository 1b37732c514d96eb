package service

import (
	"context"
	"encoding/json"

	"source-intel-be/internal/dto"
	"source-intel-be/internal/entity"
	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/repository/contract"
	"source-intel-be/pkg/events"
	"source-intel-be/pkg/synthesis"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// EventPublisher is the outbound event bus (NATS JetStream in production).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// SessionBroadcaster pushes frames to clients streaming a session.
type SessionBroadcaster interface {
	SendToSession(sessionID string, payload []byte)
}

type IEventRelayService interface {
	Consume(ctx context.Context) error
}

// eventRelayService drains the decision topic and fans each decision out to
// the audit store, the session stream and the external event bus. Every
// outlet is optional.
type eventRelayService struct {
	subscriber message.Subscriber
	topicName  string
	repo       contract.SynthesisDecisionRepository
	stream     SessionBroadcaster
	bus        EventPublisher
	logger     logger.ILogger
}

func NewEventRelayService(
	subscriber message.Subscriber,
	topicName string,
	repo contract.SynthesisDecisionRepository,
	stream SessionBroadcaster,
	bus EventPublisher,
	log logger.ILogger,
) IEventRelayService {
	return &eventRelayService{
		subscriber: subscriber,
		topicName:  topicName,
		repo:       repo,
		stream:     stream,
		bus:        bus,
		logger:     log,
	}
}

func (rs *eventRelayService) Consume(ctx context.Context) error {
	messages, err := rs.subscriber.Subscribe(ctx, rs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			rs.processMessage(msg)
		}
	}()

	return nil
}

func (rs *eventRelayService) processMessage(msg *message.Message) {
	ctx := msg.Context()

	var payload dto.DecisionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		rs.logger.Error("SYNTHESIS", "Failed to decode decision message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // A malformed payload never becomes valid.
		return
	}
	d := payload.Decision

	if rs.repo != nil {
		if err := rs.repo.Create(ctx, toDecisionEntity(d)); err != nil {
			rs.logger.Error("SYNTHESIS", "Failed to record decision", map[string]interface{}{
				"decision_id": d.ID,
				"error":       err.Error(),
			})
		}
	}

	outgoing := []events.BaseEvent{events.NewSourcesSelected(d)}
	if evt, ok := events.NewContextSwitched(d); ok {
		outgoing = append(outgoing, evt)
	}

	for _, evt := range outgoing {
		if rs.stream != nil {
			if frame, err := json.Marshal(evt); err == nil {
				rs.stream.SendToSession(d.SessionID, frame)
			}
		}
		if rs.bus != nil {
			if err := rs.bus.Publish(ctx, evt); err != nil {
				rs.logger.Warn("SYNTHESIS", "Failed to publish event", map[string]interface{}{
					"type":  evt.Type,
					"error": err.Error(),
				})
			}
		}
	}

	msg.Ack()
}

func toDecisionEntity(d synthesis.Decision) *entity.SynthesisDecision {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		id = uuid.New()
	}
	e := &entity.SynthesisDecision{
		Id:                id,
		SessionId:         d.SessionID,
		Query:             d.Query,
		Context:           d.Context.String(),
		Confidence:        d.Confidence,
		SelectedSources:   d.SelectedSources,
		PerSourceScores:   d.PerSourceScores,
		SynthesisQuality:  d.SynthesisQuality,
		TargetQuality:     d.TargetQuality,
		TargetReached:     d.TargetReached,
		ContextSwitched:   d.ContextSwitched,
		TransitionTension: d.TransitionTension,
		RegistryVersion:   d.RegistryVersion,
		CreatedAt:         d.CreatedAt,
	}
	if d.PreviousContext != nil {
		prev := d.PreviousContext.String()
		e.PreviousContext = &prev
	}
	return e
}
