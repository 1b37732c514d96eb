// FILE: pkg/synthesis/context.go
// PURPOSE: Closed set of query intent categories and their transition table

package synthesis

import (
	"fmt"
	"strings"
)

// QueryContext is the classified intent of a query.
// Declaration order is the tie-break priority used by the classifier.
type QueryContext int

const (
	ContextPainPointDiscovery QueryContext = iota
	ContextMarketValidation
	ContextTechnicalTrends
	ContextDeveloperInsights
	ContextStartupIntelligence
	ContextCompetitiveAnalysis
	ContextSentimentAnalysis
	ContextRealTimeMonitoring
	ContextGeneralExploration

	contextCount
)

var contextNames = [contextCount]string{
	ContextPainPointDiscovery:  "pain_point_discovery",
	ContextMarketValidation:    "market_validation",
	ContextTechnicalTrends:     "technical_trends",
	ContextDeveloperInsights:   "developer_insights",
	ContextStartupIntelligence: "startup_intelligence",
	ContextCompetitiveAnalysis: "competitive_analysis",
	ContextSentimentAnalysis:   "sentiment_analysis",
	ContextRealTimeMonitoring:  "real_time_monitoring",
	ContextGeneralExploration:  "general_exploration",
}

// AllContexts returns every category in priority order.
func AllContexts() []QueryContext {
	out := make([]QueryContext, 0, contextCount)
	for c := QueryContext(0); c < contextCount; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c is one of the defined categories.
func (c QueryContext) Valid() bool {
	return c >= 0 && c < contextCount
}

func (c QueryContext) String() string {
	if !c.Valid() {
		return fmt.Sprintf("query_context(%d)", int(c))
	}
	return contextNames[c]
}

// ParseQueryContext resolves a wire name such as "technical_trends".
func ParseQueryContext(name string) (QueryContext, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for c, known := range contextNames {
		if known == n {
			return QueryContext(c), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown query context %q", ErrInvalidInput, name)
}

func (c QueryContext) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: query context %d out of range", ErrInvalidInput, int(c))
	}
	return []byte(contextNames[c]), nil
}

func (c *QueryContext) UnmarshalText(text []byte) error {
	parsed, err := ParseQueryContext(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type contextPair struct{ a, b QueryContext }

// relatedContexts lists the pairs that share most of their useful sources.
// Any pair not listed falls back to unrelatedSimilarity.
var relatedContexts = map[contextPair]float64{
	{ContextPainPointDiscovery, ContextSentimentAnalysis}:    0.7,
	{ContextPainPointDiscovery, ContextMarketValidation}:     0.6,
	{ContextPainPointDiscovery, ContextDeveloperInsights}:    0.5,
	{ContextMarketValidation, ContextStartupIntelligence}:    0.7,
	{ContextMarketValidation, ContextCompetitiveAnalysis}:    0.7,
	{ContextTechnicalTrends, ContextDeveloperInsights}:       0.8,
	{ContextTechnicalTrends, ContextRealTimeMonitoring}:      0.4,
	{ContextStartupIntelligence, ContextCompetitiveAnalysis}: 0.6,
	{ContextSentimentAnalysis, ContextRealTimeMonitoring}:    0.5,
	{ContextSentimentAnalysis, ContextCompetitiveAnalysis}:   0.4,
}

const (
	unrelatedSimilarity = 0.2
	generalSimilarity   = 0.5
)

// Similarity is a symmetric measure in [0,1] of how much two contexts overlap.
func Similarity(a, b QueryContext) float64 {
	if a == b {
		return 1
	}
	if a == ContextGeneralExploration || b == ContextGeneralExploration {
		return generalSimilarity
	}
	if s, ok := relatedContexts[contextPair{a, b}]; ok {
		return s
	}
	if s, ok := relatedContexts[contextPair{b, a}]; ok {
		return s
	}
	return unrelatedSimilarity
}

// TransitionTension is high for switches between unrelated contexts.
func TransitionTension(from, to QueryContext) float64 {
	return clamp01(1 - Similarity(from, to))
}
