package events

import (
	"time"

	"source-intel-be/pkg/synthesis"
)

const (
	TypeSourcesSelected          = "SOURCES_SELECTED"
	TypeContextSwitched          = "CONTEXT_SWITCHED"
	TypeSourceCredibilityUpdated = "SOURCE_CREDIBILITY_UPDATED"
)

// OccurredAtKey carries the original timestamp inside payloads so it survives the NATS hop.
const OccurredAtKey = "occurred_at"

func NewSourcesSelected(d synthesis.Decision) BaseEvent {
	return BaseEvent{
		Type: TypeSourcesSelected,
		Data: map[string]interface{}{
			"decision_id":       d.ID,
			"session_id":        d.SessionID,
			"context":           d.Context.String(),
			"confidence":        d.Confidence,
			"selected_sources":  d.SelectedSources,
			"synthesis_quality": d.SynthesisQuality,
			"target_reached":    d.TargetReached,
			"per_source_scores": d.PerSourceScores,
			"registry_version":  d.RegistryVersion,
			OccurredAtKey:       d.CreatedAt.Format(time.RFC3339Nano),
		},
		OccurredAt: d.CreatedAt,
	}
}

// NewContextSwitched reports a switch. ok is false when d did not switch context.
func NewContextSwitched(d synthesis.Decision) (BaseEvent, bool) {
	if !d.ContextSwitched || d.PreviousContext == nil {
		return BaseEvent{}, false
	}
	return BaseEvent{
		Type: TypeContextSwitched,
		Data: map[string]interface{}{
			"decision_id":        d.ID,
			"session_id":         d.SessionID,
			"from":               d.PreviousContext.String(),
			"to":                 d.Context.String(),
			"transition_tension": d.TransitionTension,
			OccurredAtKey:        d.CreatedAt.Format(time.RFC3339Nano),
		},
		OccurredAt: d.CreatedAt,
	}, true
}

func NewSourceCredibilityUpdated(sourceID string, upd synthesis.CredibilityUpdate, at time.Time) BaseEvent {
	data := map[string]interface{}{
		"source_id":   sourceID,
		OccurredAtKey: at.Format(time.RFC3339Nano),
	}
	if upd.AuthorityScore != nil {
		data["authority_score"] = *upd.AuthorityScore
	}
	if upd.BaseQuality != nil {
		data["base_quality"] = *upd.BaseQuality
	}
	return BaseEvent{Type: TypeSourceCredibilityUpdated, Data: data, OccurredAt: at}
}

// CredibilityFromPayload decodes a SOURCE_CREDIBILITY_UPDATED payload after a JSON round trip.
func CredibilityFromPayload(payload map[string]interface{}) (string, synthesis.CredibilityUpdate, bool) {
	id, _ := payload["source_id"].(string)
	if id == "" {
		return "", synthesis.CredibilityUpdate{}, false
	}
	var upd synthesis.CredibilityUpdate
	if v, ok := payload["authority_score"].(float64); ok {
		upd.AuthorityScore = &v
	}
	if v, ok := payload["base_quality"].(float64); ok {
		upd.BaseQuality = &v
	}
	if upd.AuthorityScore == nil && upd.BaseQuality == nil {
		return "", synthesis.CredibilityUpdate{}, false
	}
	return id, upd, true
}
