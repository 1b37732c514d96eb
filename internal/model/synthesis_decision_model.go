package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SynthesisDecision struct {
	Id                uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	SessionId         string                      `gorm:"type:varchar(128);not null;index"`
	Query             string                      `gorm:"type:text;not null"`
	Context           string                      `gorm:"type:varchar(40);not null;index"`
	Confidence        float64                     `gorm:"not null"`
	SelectedSources   datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	PerSourceScores   datatypes.JSON              `gorm:"type:jsonb"`
	SynthesisQuality  float64                     `gorm:"not null"`
	TargetQuality     float64                     `gorm:"not null"`
	TargetReached     bool                        `gorm:"not null;default:false"`
	ContextSwitched   bool                        `gorm:"not null;default:false"`
	PreviousContext   *string                     `gorm:"type:varchar(40)"`
	TransitionTension float64                     `gorm:"not null;default:0"`
	RegistryVersion   int64                       `gorm:"not null;default:0"`
	CreatedAt         time.Time                   `gorm:"not null;index"`
}

func (SynthesisDecision) TableName() string {
	return "synthesis_decisions"
}
