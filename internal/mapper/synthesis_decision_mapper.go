package mapper

import (
	"encoding/json"

	"source-intel-be/internal/entity"
	"source-intel-be/internal/model"

	"gorm.io/datatypes"
)

type SynthesisDecisionMapper struct{}

func NewSynthesisDecisionMapper() *SynthesisDecisionMapper {
	return &SynthesisDecisionMapper{}
}

func (m *SynthesisDecisionMapper) ToEntity(d *model.SynthesisDecision) *entity.SynthesisDecision {
	if d == nil {
		return nil
	}

	scores := map[string]float64{}
	if len(d.PerSourceScores) > 0 {
		// Rows written by this mapper always hold a JSON object.
		_ = json.Unmarshal(d.PerSourceScores, &scores)
	}

	return &entity.SynthesisDecision{
		Id:                d.Id,
		SessionId:         d.SessionId,
		Query:             d.Query,
		Context:           d.Context,
		Confidence:        d.Confidence,
		SelectedSources:   append([]string(nil), d.SelectedSources...),
		PerSourceScores:   scores,
		SynthesisQuality:  d.SynthesisQuality,
		TargetQuality:     d.TargetQuality,
		TargetReached:     d.TargetReached,
		ContextSwitched:   d.ContextSwitched,
		PreviousContext:   d.PreviousContext,
		TransitionTension: d.TransitionTension,
		RegistryVersion:   uint64(d.RegistryVersion),
		CreatedAt:         d.CreatedAt,
	}
}

func (m *SynthesisDecisionMapper) ToModel(e *entity.SynthesisDecision) (*model.SynthesisDecision, error) {
	if e == nil {
		return nil, nil
	}

	scores, err := json.Marshal(e.PerSourceScores)
	if err != nil {
		return nil, err
	}

	return &model.SynthesisDecision{
		Id:                e.Id,
		SessionId:         e.SessionId,
		Query:             e.Query,
		Context:           e.Context,
		Confidence:        e.Confidence,
		SelectedSources:   datatypes.JSONSlice[string](e.SelectedSources),
		PerSourceScores:   datatypes.JSON(scores),
		SynthesisQuality:  e.SynthesisQuality,
		TargetQuality:     e.TargetQuality,
		TargetReached:     e.TargetReached,
		ContextSwitched:   e.ContextSwitched,
		PreviousContext:   e.PreviousContext,
		TransitionTension: e.TransitionTension,
		RegistryVersion:   int64(e.RegistryVersion),
		CreatedAt:         e.CreatedAt,
	}, nil
}

func (m *SynthesisDecisionMapper) ToEntities(models []*model.SynthesisDecision) []*entity.SynthesisDecision {
	out := make([]*entity.SynthesisDecision, 0, len(models))
	for _, d := range models {
		out = append(out, m.ToEntity(d))
	}
	return out
}
