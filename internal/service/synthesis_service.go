package service

import (
	"context"
	"fmt"
	"time"

	"source-intel-be/internal/dto"
	"source-intel-be/internal/entity"
	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/repository/contract"
	"source-intel-be/internal/repository/specification"
	"source-intel-be/pkg/events"
	"source-intel-be/pkg/synthesis"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDecisionLimit = 50
	maxDecisionLimit     = 500
)

// ErrAuditDisabled is returned when no database is configured for the decision trail.
var ErrAuditDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "decision audit store is not configured")

type ISynthesisService interface {
	ClassifyQuery(ctx context.Context, req *dto.ClassifyQueryRequest) (*dto.ClassifyQueryResponse, error)
	SelectSources(ctx context.Context, req *dto.SelectSourcesRequest) (*dto.SelectSourcesResponse, error)
	SessionAnalytics(ctx context.Context, sessionID string) (*dto.SessionAnalyticsResponse, error)
	SessionDecisions(ctx context.Context, sessionID string, q dto.DecisionQuery) (*dto.SessionDecisionsResponse, error)
	ListSources(ctx context.Context) *dto.SourceListResponse
	GetSource(ctx context.Context, id string) (*dto.SourceResponse, error)
	UpsertSource(ctx context.Context, id string, req *dto.UpsertSourceRequest) (*dto.SourceResponse, error)
	UpdateCredibility(ctx context.Context, id string, req *dto.CredibilityUpdateRequest) (*dto.SourceResponse, error)
	RemoveSource(ctx context.Context, id string) error
	ScoreSource(ctx context.Context, id string, contextName string) (*dto.SourceScoreResponse, error)
}

type synthesisService struct {
	engine *synthesis.Engine
	repo   contract.SynthesisDecisionRepository
	bus    EventPublisher
	logger logger.ILogger
	tracer trace.Tracer
}

// NewSynthesisService wires the engine to the outer layers. repo and bus may be nil.
func NewSynthesisService(engine *synthesis.Engine, repo contract.SynthesisDecisionRepository, bus EventPublisher, log logger.ILogger) ISynthesisService {
	return &synthesisService{
		engine: engine,
		repo:   repo,
		bus:    bus,
		logger: log,
		tracer: otel.Tracer("source-intel-be/synthesis"),
	}
}

func (s *synthesisService) ClassifyQuery(ctx context.Context, req *dto.ClassifyQueryRequest) (*dto.ClassifyQueryResponse, error) {
	_, span := s.tracer.Start(ctx, "SynthesisService.ClassifyQuery")
	defer span.End()

	c, err := s.engine.ClassifyQuery(req.Query)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("synthesis.context", c.Context.String()),
		attribute.Float64("synthesis.confidence", c.Confidence),
	)
	return &dto.ClassifyQueryResponse{Context: c.Context.String(), Confidence: c.Confidence}, nil
}

func (s *synthesisService) SelectSources(ctx context.Context, req *dto.SelectSourcesRequest) (*dto.SelectSourcesResponse, error) {
	sessionID := req.SessionId
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, span := s.tracer.Start(ctx, "SynthesisService.SelectSources",
		trace.WithAttributes(attribute.String("synthesis.session_id", sessionID)))
	defer span.End()

	d, err := s.engine.SelectSources(ctx, synthesis.SelectRequest{
		Query:         req.Query,
		SessionID:     sessionID,
		TargetQuality: req.TargetQuality,
		MaxSources:    req.MaxSources,
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("synthesis.context", d.Context.String()),
		attribute.Int("synthesis.selected", len(d.SelectedSources)),
		attribute.Float64("synthesis.quality", d.SynthesisQuality),
		attribute.Bool("synthesis.context_switched", d.ContextSwitched),
	)
	return toSelectResponse(d), nil
}

func (s *synthesisService) SessionAnalytics(ctx context.Context, sessionID string) (*dto.SessionAnalyticsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SynthesisService.SessionAnalytics")
	defer span.End()

	a, err := s.engine.SessionAnalytics(ctx, sessionID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	res := &dto.SessionAnalyticsResponse{
		SessionId:       a.SessionID,
		QueryCount:      a.QueryCount,
		ContextSwitches: a.ContextSwitches,
		QualityTrend:    string(a.QualityTrend),
		AverageQuality:  a.AverageQuality,
	}
	if a.HasBestContext {
		res.BestContext = a.BestContext.String()
	}
	return res, nil
}

func (s *synthesisService) SessionDecisions(ctx context.Context, sessionID string, q dto.DecisionQuery) (*dto.SessionDecisionsResponse, error) {
	if s.repo == nil {
		return nil, ErrAuditDisabled
	}
	id, err := synthesis.NormalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	filters, err := decisionFilters(id, q)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultDecisionLimit
	}
	if limit > maxDecisionLimit {
		limit = maxDecisionLimit
	}

	ctx, span := s.tracer.Start(ctx, "SynthesisService.SessionDecisions")
	defer span.End()

	rows, err := s.repo.FindAll(ctx, append(filters, specification.Pagination{Limit: limit})...)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("load decisions for session %s: %w", id, err)
	}
	counts, err := s.repo.CountByContext(ctx, filters...)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("count decisions for session %s: %w", id, err)
	}

	res := &dto.SessionDecisionsResponse{
		SessionId: id,
		Decisions: make([]*dto.DecisionRecordResponse, 0, len(rows)),
		ByContext: counts,
	}
	for _, row := range rows {
		res.Decisions = append(res.Decisions, toDecisionRecord(row))
	}
	return res, nil
}

func decisionFilters(sessionID string, q dto.DecisionQuery) ([]specification.Specification, error) {
	specs := []specification.Specification{specification.BySessionID{SessionID: sessionID}}
	if q.Context != "" {
		qc, err := synthesis.ParseQueryContext(q.Context)
		if err != nil {
			return nil, err
		}
		specs = append(specs, specification.ByContext{Context: qc.String()})
	}
	if q.OnlySwitches {
		specs = append(specs, specification.OnlyContextSwitches{})
	}
	if !q.Since.IsZero() {
		specs = append(specs, specification.CreatedSince{Since: q.Since})
	}
	return specs, nil
}

func (s *synthesisService) ListSources(_ context.Context) *dto.SourceListResponse {
	snap := s.engine.Registry().Snapshot()
	sources := snap.Sources()

	res := &dto.SourceListResponse{
		RegistryVersion: snap.Version,
		Sources:         make([]*dto.SourceResponse, 0, len(sources)),
	}
	for _, src := range sources {
		res.Sources = append(res.Sources, toSourceResponse(src))
	}
	return res
}

func (s *synthesisService) GetSource(_ context.Context, id string) (*dto.SourceResponse, error) {
	src, err := s.engine.Registry().Get(id)
	if err != nil {
		return nil, err
	}
	return toSourceResponse(src), nil
}

func (s *synthesisService) UpsertSource(ctx context.Context, id string, req *dto.UpsertSourceRequest) (*dto.SourceResponse, error) {
	_, span := s.tracer.Start(ctx, "SynthesisService.UpsertSource")
	defer span.End()

	normalized, err := synthesis.NormalizeSourceID(id)
	if err != nil {
		return nil, err
	}
	src := synthesis.Source{
		ID:             normalized,
		DisplayName:    req.Name,
		BaseQuality:    req.BaseQuality,
		AuthorityScore: req.AuthorityScore,
		SocialProof: synthesis.SocialProof{
			EngagementRate:    req.SocialProof.EngagementRate,
			ViralPotential:    req.SocialProof.ViralPotential,
			AuthenticityScore: req.SocialProof.AuthenticityScore,
			SocialValidation:  req.SocialProof.SocialValidation,
		},
		ContextWeights: make(map[synthesis.QueryContext]float64, len(req.ContextWeights)),
	}
	for name, w := range req.ContextWeights {
		qc, err := synthesis.ParseQueryContext(name)
		if err != nil {
			return nil, err
		}
		src.ContextWeights[qc] = w
	}
	// Registry writes skip range checks; reject bad entries before they reach selection.
	if err := src.Validate(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := s.engine.Registry().Upsert(src); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s.logger.Info("REGISTRY", "Source upserted", map[string]interface{}{
		"source_id":        normalized,
		"registry_version": s.engine.Registry().Snapshot().Version,
	})
	return s.GetSource(ctx, normalized)
}

func (s *synthesisService) UpdateCredibility(ctx context.Context, id string, req *dto.CredibilityUpdateRequest) (*dto.SourceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SynthesisService.UpdateCredibility")
	defer span.End()

	if req.AuthorityScore == nil && req.BaseQuality == nil {
		return nil, fmt.Errorf("%w: credibility update needs authority_score or base_quality", synthesis.ErrInvalidInput)
	}
	upd := synthesis.CredibilityUpdate{AuthorityScore: req.AuthorityScore, BaseQuality: req.BaseQuality}

	src, err := s.engine.Registry().UpdateCredibility(id, upd)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s.logger.Info("REGISTRY", "Source credibility updated", map[string]interface{}{
		"source_id":       src.ID,
		"authority_score": src.AuthorityScore,
		"base_quality":    src.BaseQuality,
	})

	// Other replicas pick the update up from the bus; re-applying it here is harmless.
	if s.bus != nil {
		evt := events.NewSourceCredibilityUpdated(src.ID, upd, time.Now())
		if err := s.bus.Publish(ctx, evt); err != nil {
			s.logger.Warn("REGISTRY", "Failed to publish credibility update", map[string]interface{}{"error": err.Error()})
		}
	}
	return toSourceResponse(src), nil
}

func (s *synthesisService) RemoveSource(ctx context.Context, id string) error {
	_, span := s.tracer.Start(ctx, "SynthesisService.RemoveSource")
	defer span.End()

	src, err := s.engine.Registry().Get(id)
	if err != nil {
		recordSpanError(span, err)
		return err
	}
	if err := s.engine.Registry().Remove(src.ID); err != nil {
		recordSpanError(span, err)
		return err
	}

	s.logger.Info("REGISTRY", "Source removed", map[string]interface{}{
		"source_id":        src.ID,
		"registry_version": s.engine.Registry().Snapshot().Version,
	})
	return nil
}

// ScoreSource reports how a source would score for a context. An empty
// context name scores against general_exploration.
func (s *synthesisService) ScoreSource(_ context.Context, id string, contextName string) (*dto.SourceScoreResponse, error) {
	qc := synthesis.ContextGeneralExploration
	if contextName != "" {
		parsed, err := synthesis.ParseQueryContext(contextName)
		if err != nil {
			return nil, err
		}
		qc = parsed
	}

	score, breakdown, err := s.engine.ScoreSource(id, qc)
	if err != nil {
		return nil, err
	}
	src, _ := s.engine.Registry().Get(id)
	return &dto.SourceScoreResponse{
		SourceId:  src.ID,
		Context:   qc.String(),
		Score:     score,
		Breakdown: breakdown,
	}, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toSelectResponse(d synthesis.Decision) *dto.SelectSourcesResponse {
	res := &dto.SelectSourcesResponse{
		DecisionId:       d.ID,
		SessionId:        d.SessionID,
		SelectedSources:  d.SelectedSources,
		SynthesisQuality: d.SynthesisQuality,
		TargetReached:    d.TargetReached,
		Context:          d.Context.String(),
		Confidence:       d.Confidence,
		ContextSwitched:  d.ContextSwitched,
		PerSourceScores:  d.PerSourceScores,
		ExcludedSources:  make([]dto.ExcludedSource, 0, len(d.ExcludedSources)),
	}
	if d.PreviousContext != nil {
		prev := d.PreviousContext.String()
		res.PreviousContext = &prev
	}
	if d.ContextSwitched {
		tension := d.TransitionTension
		res.TransitionTension = &tension
	}
	for _, ex := range d.ExcludedSources {
		res.ExcludedSources = append(res.ExcludedSources, dto.ExcludedSource{
			SourceId: ex.SourceID,
			Field:    ex.Field,
			Reason:   ex.Reason,
		})
	}
	return res
}

func toSourceResponse(src synthesis.Source) *dto.SourceResponse {
	weights := make(map[string]float64, len(src.ContextWeights))
	for qc, w := range src.ContextWeights {
		weights[qc.String()] = w
	}
	return &dto.SourceResponse{
		Id:             src.ID,
		Name:           src.DisplayName,
		BaseQuality:    src.BaseQuality,
		AuthorityScore: src.AuthorityScore,
		SocialProof: dto.SocialProofPayload{
			EngagementRate:    src.SocialProof.EngagementRate,
			ViralPotential:    src.SocialProof.ViralPotential,
			AuthenticityScore: src.SocialProof.AuthenticityScore,
			SocialValidation:  src.SocialProof.SocialValidation,
		},
		ContextWeights: weights,
	}
}

func toDecisionRecord(e *entity.SynthesisDecision) *dto.DecisionRecordResponse {
	return &dto.DecisionRecordResponse{
		Id:                e.Id,
		SessionId:         e.SessionId,
		Query:             e.Query,
		Context:           e.Context,
		Confidence:        e.Confidence,
		SelectedSources:   append([]string(nil), e.SelectedSources...),
		PerSourceScores:   e.PerSourceScores,
		SynthesisQuality:  e.SynthesisQuality,
		ContextSwitched:   e.ContextSwitched,
		TransitionTension: e.TransitionTension,
		CreatedAt:         e.CreatedAt,
	}
}
