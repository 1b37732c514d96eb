package events

import (
	"encoding/json"
	"testing"
	"time"

	"source-intel-be/pkg/synthesis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextSwitched(t *testing.T) {
	d := synthesis.Decision{ID: "d1", SessionID: "s", Context: synthesis.ContextTechnicalTrends, CreatedAt: time.Now()}
	_, ok := NewContextSwitched(d)
	assert.False(t, ok)

	prev := synthesis.ContextPainPointDiscovery
	d.ContextSwitched = true
	d.PreviousContext = &prev
	d.TransitionTension = 0.8

	evt, ok := NewContextSwitched(d)
	require.True(t, ok)
	assert.Equal(t, TypeContextSwitched, evt.EventType())
	assert.Equal(t, "pain_point_discovery", evt.Payload()["from"])
	assert.Equal(t, "technical_trends", evt.Payload()["to"])
}

func TestCredibilityPayloadRoundTrip(t *testing.T) {
	authority := 0.42
	evt := NewSourceCredibilityUpdated("github", synthesis.CredibilityUpdate{AuthorityScore: &authority}, time.Now())

	raw, err := json.Marshal(evt.Payload())
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	id, upd, ok := CredibilityFromPayload(decoded)
	require.True(t, ok)
	assert.Equal(t, "github", id)
	require.NotNil(t, upd.AuthorityScore)
	assert.Equal(t, 0.42, *upd.AuthorityScore)
	assert.Nil(t, upd.BaseQuality)
}

func TestCredibilityFromPayload_Rejects(t *testing.T) {
	_, _, ok := CredibilityFromPayload(map[string]interface{}{"authority_score": 0.5})
	assert.False(t, ok)
	_, _, ok = CredibilityFromPayload(map[string]interface{}{"source_id": "github"})
	assert.False(t, ok)
}
