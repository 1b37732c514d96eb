package entity

import (
	"time"

	"github.com/google/uuid"
)

type SynthesisDecision struct {
	Id                uuid.UUID
	SessionId         string
	Query             string
	Context           string
	Confidence        float64
	SelectedSources   []string
	PerSourceScores   map[string]float64
	SynthesisQuality  float64
	TargetQuality     float64
	TargetReached     bool
	ContextSwitched   bool
	PreviousContext   *string
	TransitionTension float64
	RegistryVersion   uint64
	CreatedAt         time.Time
}
