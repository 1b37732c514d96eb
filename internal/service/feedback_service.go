package service

import (
	"context"
	"errors"
	"os"

	"source-intel-be/internal/pkg/logger"
	"source-intel-be/pkg/events"
	pktNats "source-intel-be/pkg/nats"
	"source-intel-be/pkg/synthesis"
)

// EventSubscriber is the inbound side of the event bus.
type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

// FeedbackService applies credibility updates computed by external systems
// (or by another API instance) to the local registry.
type FeedbackService struct {
	registry   *synthesis.Registry
	subscriber EventSubscriber
	durable    string
	logger     logger.ILogger
}

func NewFeedbackService(registry *synthesis.Registry, sub EventSubscriber, log logger.ILogger) *FeedbackService {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return &FeedbackService{
		registry:   registry,
		subscriber: sub,
		// One durable per instance: every replica must apply every update.
		durable: "synthesis-credibility-" + pktNats.SanitizeDurable(host),
		logger:  log,
	}
}

// Start begins listening to the event bus.
func (s *FeedbackService) Start() {
	subject := pktNats.SubjectFor(events.TypeSourceCredibilityUpdated)
	if err := s.subscriber.Subscribe(subject, s.durable, s.HandleEvent); err != nil {
		s.logger.Error("FEEDBACK", "Failed to start credibility subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("FEEDBACK", "Listening for credibility updates", map[string]interface{}{"subject": subject, "durable": s.durable})
}

// HandleEvent applies one update. Invalid updates are logged and acknowledged
// since redelivering them cannot succeed.
func (s *FeedbackService) HandleEvent(_ context.Context, event events.Event) error {
	if event.EventType() != events.TypeSourceCredibilityUpdated {
		return nil
	}

	id, upd, ok := events.CredibilityFromPayload(event.Payload())
	if !ok {
		s.logger.Warn("FEEDBACK", "Ignoring malformed credibility update", map[string]interface{}{"payload": event.Payload()})
		return nil
	}

	src, err := s.registry.UpdateCredibility(id, upd)
	switch {
	case err == nil:
		s.logger.Info("FEEDBACK", "Source credibility updated", map[string]interface{}{
			"source_id":        src.ID,
			"authority_score":  src.AuthorityScore,
			"base_quality":     src.BaseQuality,
			"registry_version": s.registry.Snapshot().Version,
		})
		return nil
	case errors.Is(err, synthesis.ErrSourceNotFound), errors.Is(err, synthesis.ErrInvalidSource), errors.Is(err, synthesis.ErrInvalidInput):
		s.logger.Warn("FEEDBACK", "Rejected credibility update", map[string]interface{}{
			"source_id": id,
			"error":     err.Error(),
		})
		return nil
	default:
		return err
	}
}
