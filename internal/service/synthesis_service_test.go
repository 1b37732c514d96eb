package service

import (
	"context"
	"testing"
	"time"

	"source-intel-be/internal/dto"
	"source-intel-be/internal/entity"
	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/repository/specification"
	"source-intel-be/pkg/events"
	"source-intel-be/pkg/synthesis"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesisService_ClassifyQuery(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())

	res, err := svc.ClassifyQuery(context.Background(), &dto.ClassifyQueryRequest{Query: "what pain points and frustrations do users complain about"})
	require.NoError(t, err)
	assert.Equal(t, "pain_point_discovery", res.Context)
	assert.GreaterOrEqual(t, res.Confidence, synthesis.MinConfidence)
}

func TestSynthesisService_SelectSources_GeneratesSessionID(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())

	res, err := svc.SelectSources(context.Background(), &dto.SelectSourcesRequest{Query: "developer tools for api testing"})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(res.SessionId)
	assert.NoError(t, parseErr)
	assert.NotEmpty(t, res.DecisionId)
	assert.NotEmpty(t, res.SelectedSources)
	assert.False(t, res.ContextSwitched)
	assert.Nil(t, res.PreviousContext)
	assert.Nil(t, res.TransitionTension)
	// Every ranked source is scored, selected or not.
	assert.Len(t, res.PerSourceScores, len(synthesis.DefaultCatalog()))
	for _, id := range res.SelectedSources {
		assert.Contains(t, res.PerSourceScores, id)
	}
}

func TestSynthesisService_SelectSources_ReportsSwitch(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())
	ctx := context.Background()

	_, err := svc.SelectSources(ctx, &dto.SelectSourcesRequest{Query: "developer tools for api testing", SessionId: "s-1"})
	require.NoError(t, err)
	res, err := svc.SelectSources(ctx, &dto.SelectSourcesRequest{Query: "what pain points and frustrations do users complain about", SessionId: "s-1"})
	require.NoError(t, err)

	require.True(t, res.ContextSwitched)
	require.NotNil(t, res.PreviousContext)
	require.NotNil(t, res.TransitionTension)
	assert.Equal(t, "pain_point_discovery", res.Context)

	analytics, err := svc.SessionAnalytics(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 2, analytics.QueryCount)
	assert.Equal(t, 1, analytics.ContextSwitches)
	assert.NotEmpty(t, analytics.BestContext)
}

func TestSynthesisService_SelectSources_InvalidQuery(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())

	_, err := svc.SelectSources(context.Background(), &dto.SelectSourcesRequest{Query: "   "})
	assert.ErrorIs(t, err, synthesis.ErrInvalidInput)
}

func TestSynthesisService_SessionAnalytics_UnknownSession(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())

	res, err := svc.SessionAnalytics(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, 0, res.QueryCount)
	assert.Equal(t, "insufficient_data", res.QualityTrend)
	assert.Empty(t, res.BestContext)
}

func TestSynthesisService_SessionDecisions(t *testing.T) {
	t.Run("no audit store", func(t *testing.T) {
		svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())
		_, err := svc.SessionDecisions(context.Background(), "s-1", dto.DecisionQuery{Limit: 10})
		assert.ErrorIs(t, err, ErrAuditDisabled)
	})

	t.Run("returns rows and counts", func(t *testing.T) {
		repo := &fakeDecisionRepo{rows: []*entity.SynthesisDecision{
			{Id: uuid.New(), SessionId: "s-1", Context: "technical_trends", SelectedSources: []string{"github"}, CreatedAt: time.Now()},
			{Id: uuid.New(), SessionId: "s-1", Context: "technical_trends", SelectedSources: []string{"hackernews"}, CreatedAt: time.Now()},
		}}
		svc := NewSynthesisService(newTestEngine(t), repo, nil, logger.NewNopLogger())

		res, err := svc.SessionDecisions(context.Background(), " s-1 ", dto.DecisionQuery{})
		require.NoError(t, err)
		assert.Equal(t, "s-1", res.SessionId)
		assert.Len(t, res.Decisions, 2)
		assert.Equal(t, int64(2), res.ByContext["technical_trends"])
		assert.Len(t, repo.specs, 2)
	})

	t.Run("filters become specifications", func(t *testing.T) {
		repo := &fakeDecisionRepo{}
		svc := NewSynthesisService(newTestEngine(t), repo, nil, logger.NewNopLogger())

		_, err := svc.SessionDecisions(context.Background(), "s-1", dto.DecisionQuery{
			Context:      "Technical_Trends",
			OnlySwitches: true,
			Since:        time.Now().Add(-time.Hour),
			Limit:        10_000,
		})
		require.NoError(t, err)
		require.Len(t, repo.specs, 5)
		assert.Equal(t, specification.ByContext{Context: "technical_trends"}, repo.specs[1])
		assert.Equal(t, specification.OnlyContextSwitches{}, repo.specs[2])
		assert.Equal(t, specification.Pagination{Limit: maxDecisionLimit}, repo.specs[4])
	})

	t.Run("unknown context filter", func(t *testing.T) {
		svc := NewSynthesisService(newTestEngine(t), &fakeDecisionRepo{}, nil, logger.NewNopLogger())
		_, err := svc.SessionDecisions(context.Background(), "s-1", dto.DecisionQuery{Context: "astrology"})
		assert.ErrorIs(t, err, synthesis.ErrInvalidInput)
	})
}

func TestSynthesisService_Sources(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())
	ctx := context.Background()

	before := svc.ListSources(ctx)
	require.NotEmpty(t, before.Sources)

	_, err := svc.GetSource(ctx, "myspace")
	assert.ErrorIs(t, err, synthesis.ErrSourceNotFound)

	_, err = svc.UpsertSource(ctx, "lobsters", &dto.UpsertSourceRequest{
		BaseQuality: 0.8, AuthorityScore: 0.7,
		ContextWeights: map[string]float64{"astrology": 1.2},
	})
	assert.ErrorIs(t, err, synthesis.ErrInvalidInput)

	src, err := svc.UpsertSource(ctx, "Lobsters", &dto.UpsertSourceRequest{
		Name:           "Lobsters",
		BaseQuality:    0.8,
		AuthorityScore: 0.7,
		SocialProof:    dto.SocialProofPayload{EngagementRate: 0.5, ViralPotential: 0.3, AuthenticityScore: 0.9, SocialValidation: 0.6},
		ContextWeights: map[string]float64{"technical_trends": 1.3},
	})
	require.NoError(t, err)
	assert.Equal(t, "lobsters", src.Id)
	assert.Equal(t, 1.3, src.ContextWeights["technical_trends"])
	assert.Equal(t, 1.0, src.ContextWeights["market_validation"])

	after := svc.ListSources(ctx)
	assert.Len(t, after.Sources, len(before.Sources)+1)
	assert.Greater(t, after.RegistryVersion, before.RegistryVersion)
}

func TestSynthesisService_UpsertSource_RejectsOutOfRange(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())

	_, err := svc.UpsertSource(context.Background(), "broken", &dto.UpsertSourceRequest{BaseQuality: 1.5, AuthorityScore: 0.5})
	assert.ErrorIs(t, err, synthesis.ErrInvalidSource)
}

func TestSynthesisService_UpdateCredibility(t *testing.T) {
	bus := &fakeBus{}
	svc := NewSynthesisService(newTestEngine(t), nil, bus, logger.NewNopLogger())
	ctx := context.Background()

	_, err := svc.UpdateCredibility(ctx, "reddit", &dto.CredibilityUpdateRequest{})
	assert.ErrorIs(t, err, synthesis.ErrInvalidInput)

	authority := 0.4
	src, err := svc.UpdateCredibility(ctx, "reddit", &dto.CredibilityUpdateRequest{AuthorityScore: &authority})
	require.NoError(t, err)
	assert.Equal(t, 0.4, src.AuthorityScore)
	assert.Equal(t, []string{events.TypeSourceCredibilityUpdated}, bus.types())

	_, err = svc.UpdateCredibility(ctx, "myspace", &dto.CredibilityUpdateRequest{AuthorityScore: &authority})
	assert.ErrorIs(t, err, synthesis.ErrSourceNotFound)
	assert.Len(t, bus.types(), 1)
}

func TestSynthesisService_ScoreSource(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())
	ctx := context.Background()

	res, err := svc.ScoreSource(ctx, "GitHub", "developer_insights")
	require.NoError(t, err)
	assert.Equal(t, "github", res.SourceId)
	assert.Equal(t, "developer_insights", res.Context)
	assert.Equal(t, 1.5, res.Breakdown.ContextWeight)
	assert.Equal(t, res.Score, res.Breakdown.Score)
	assert.LessOrEqual(t, res.Score, 1.0)

	res, err = svc.ScoreSource(ctx, "github", "")
	require.NoError(t, err)
	assert.Equal(t, "general_exploration", res.Context)

	_, err = svc.ScoreSource(ctx, "github", "astrology")
	assert.ErrorIs(t, err, synthesis.ErrInvalidInput)

	_, err = svc.ScoreSource(ctx, "myspace", "")
	assert.ErrorIs(t, err, synthesis.ErrSourceNotFound)
}

func TestSynthesisService_RemoveSource(t *testing.T) {
	svc := NewSynthesisService(newTestEngine(t), nil, nil, logger.NewNopLogger())
	ctx := context.Background()
	before := svc.ListSources(ctx)

	require.NoError(t, svc.RemoveSource(ctx, "Reddit"))

	_, err := svc.GetSource(ctx, "reddit")
	assert.ErrorIs(t, err, synthesis.ErrSourceNotFound)
	after := svc.ListSources(ctx)
	assert.Len(t, after.Sources, len(before.Sources)-1)
	assert.Greater(t, after.RegistryVersion, before.RegistryVersion)

	assert.ErrorIs(t, svc.RemoveSource(ctx, "reddit"), synthesis.ErrSourceNotFound)
}
