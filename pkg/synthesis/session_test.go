package synthesis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQualityTrend(t *testing.T) {
	tests := []struct {
		name      string
		qualities []float64
		want      Trend
	}{
		{"empty", nil, TrendInsufficientData},
		{"single", []float64{0.7}, TrendInsufficientData},
		{"strictly increasing", []float64{0.5, 0.6, 0.7, 0.8, 0.9}, TrendImproving},
		{"strictly decreasing", []float64{0.9, 0.8, 0.7, 0.6, 0.5}, TrendDeclining},
		{"jump after weak start", []float64{0.4, 0.45, 0.9, 0.92, 0.95}, TrendImproving},
		{"two points up", []float64{0.5, 0.8}, TrendImproving},
		{"two points down", []float64{0.9, 0.5}, TrendDeclining},
		{"flat", []float64{0.7, 0.72, 0.71, 0.7}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualityTrend(tt.qualities, DefaultTrendEpsilon))
		})
	}
}

func sessionWith(contexts []QueryContext, qualities []float64) *Session {
	s := NewSession("s", time.Now())
	for i, q := range qualities {
		s.History = append(s.History, Decision{Context: contexts[i], SynthesisQuality: q})
	}
	return s
}

func TestSession_Analyze(t *testing.T) {
	s := sessionWith(
		[]QueryContext{ContextPainPointDiscovery, ContextTechnicalTrends, ContextTechnicalTrends},
		[]float64{0.6, 0.9, 0.8},
	)
	s.ContextSwitchCount = 1

	a := s.Analyze(DefaultTrendEpsilon)
	assert.Equal(t, 3, a.QueryCount)
	assert.Equal(t, 1, a.ContextSwitches)
	assert.InDelta(t, 2.3/3, a.AverageQuality, 1e-9)
	assert.Equal(t, ContextTechnicalTrends, a.BestContext)
	assert.True(t, a.HasBestContext)
	assert.Equal(t, TrendImproving, a.QualityTrend)
}

func TestSession_AnalyzeBestContextTieUsesPriority(t *testing.T) {
	s := sessionWith(
		[]QueryContext{ContextRealTimeMonitoring, ContextMarketValidation},
		[]float64{0.7, 0.7},
	)
	assert.Equal(t, ContextMarketValidation, s.Analyze(DefaultTrendEpsilon).BestContext)
}

func TestSession_AnalyzeEmpty(t *testing.T) {
	a := NewSession("empty", time.Now()).Analyze(DefaultTrendEpsilon)
	assert.Equal(t, 0, a.QueryCount)
	assert.Equal(t, 0.0, a.AverageQuality)
	assert.False(t, a.HasBestContext)
	assert.Equal(t, TrendInsufficientData, a.QualityTrend)
}

func TestSession_CloneIsDeep(t *testing.T) {
	s := sessionWith([]QueryContext{ContextTechnicalTrends}, []float64{0.5})
	s.History[0].SelectedSources = []string{"github"}
	s.History[0].PerSourceScores = map[string]float64{"github": 0.5}

	c := s.Clone()
	c.History[0].SelectedSources[0] = "reddit"
	c.History[0].PerSourceScores["github"] = 0.1

	assert.Equal(t, "github", s.History[0].SelectedSources[0])
	assert.Equal(t, 0.5, s.History[0].PerSourceScores["github"])
}
