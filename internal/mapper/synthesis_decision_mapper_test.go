package mapper

import (
	"testing"
	"time"

	"source-intel-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesisDecisionMapper_PreservesScores(t *testing.T) {
	m := NewSynthesisDecisionMapper()
	prev := "pain_point_discovery"
	e := &entity.SynthesisDecision{
		Id:              uuid.New(),
		SessionId:       "s-1",
		Query:           "latest trends",
		Context:         "technical_trends",
		SelectedSources: []string{"github", "hackernews"},
		PerSourceScores: map[string]float64{"github": 0.89, "hackernews": 0.81},
		PreviousContext: &prev,
		RegistryVersion: 7,
		CreatedAt:       time.Now().UTC(),
	}

	row, err := m.ToModel(e)
	require.NoError(t, err)
	assert.Equal(t, int64(7), row.RegistryVersion)
	assert.JSONEq(t, `{"github":0.89,"hackernews":0.81}`, string(row.PerSourceScores))

	back := m.ToEntity(row)
	assert.Equal(t, e, back)
}

func TestSynthesisDecisionMapper_Nil(t *testing.T) {
	m := NewSynthesisDecisionMapper()
	assert.Nil(t, m.ToEntity(nil))
	row, err := m.ToModel(nil)
	assert.NoError(t, err)
	assert.Nil(t, row)
}
