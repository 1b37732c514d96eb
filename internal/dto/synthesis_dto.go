package dto

import (
	"time"

	"source-intel-be/pkg/synthesis"

	"github.com/google/uuid"
)

type ClassifyQueryRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

type ClassifyQueryResponse struct {
	Context    string  `json:"context"`
	Confidence float64 `json:"confidence"`
}

// SelectSourcesRequest leaves SessionId empty to start a new session.
type SelectSourcesRequest struct {
	Query         string   `json:"query" validate:"required,max=2000"`
	SessionId     string   `json:"session_id" validate:"max=128"`
	TargetQuality *float64 `json:"target_quality" validate:"omitempty,gte=0,lte=1"`
	MaxSources    int      `json:"max_sources" validate:"gte=0"`
}

type ExcludedSource struct {
	SourceId string `json:"source_id"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

type SelectSourcesResponse struct {
	DecisionId        string             `json:"decision_id"`
	SessionId         string             `json:"session_id"`
	SelectedSources   []string           `json:"selected_sources"`
	SynthesisQuality  float64            `json:"synthesis_quality"`
	TargetReached     bool               `json:"target_reached"`
	Context           string             `json:"context"`
	Confidence        float64            `json:"confidence"`
	ContextSwitched   bool               `json:"context_switched"`
	PreviousContext   *string            `json:"previous_context,omitempty"`
	TransitionTension *float64           `json:"transition_tension,omitempty"`
	PerSourceScores   map[string]float64 `json:"per_source_scores"`
	ExcludedSources   []ExcludedSource   `json:"excluded_sources"`
}

type SessionAnalyticsResponse struct {
	SessionId       string  `json:"session_id"`
	QueryCount      int     `json:"query_count"`
	ContextSwitches int     `json:"context_switches"`
	QualityTrend    string  `json:"quality_trend"`
	AverageQuality  float64 `json:"average_quality"`
	BestContext     string  `json:"best_context"`
}

// DecisionRecordResponse is one row of the persisted audit trail.
type DecisionRecordResponse struct {
	Id                uuid.UUID          `json:"id"`
	SessionId         string             `json:"session_id"`
	Query             string             `json:"query"`
	Context           string             `json:"context"`
	Confidence        float64            `json:"confidence"`
	SelectedSources   []string           `json:"selected_sources"`
	PerSourceScores   map[string]float64 `json:"per_source_scores"`
	SynthesisQuality  float64            `json:"synthesis_quality"`
	ContextSwitched   bool               `json:"context_switched"`
	TransitionTension float64            `json:"transition_tension"`
	CreatedAt         time.Time          `json:"created_at"`
}

// DecisionQuery filters the audit trail of one session. Zero values mean no filter.
type DecisionQuery struct {
	Limit        int
	Context      string
	OnlySwitches bool
	Since        time.Time
}

type SessionDecisionsResponse struct {
	SessionId string                    `json:"session_id"`
	Decisions []*DecisionRecordResponse `json:"decisions"`
	ByContext map[string]int64          `json:"by_context"`
}

type SocialProofPayload struct {
	EngagementRate    float64 `json:"engagement_rate" validate:"gte=0,lte=1"`
	ViralPotential    float64 `json:"viral_potential" validate:"gte=0,lte=1"`
	AuthenticityScore float64 `json:"authenticity_score" validate:"gte=0,lte=1"`
	SocialValidation  float64 `json:"social_validation" validate:"gte=0,lte=1"`
}

type SourceResponse struct {
	Id             string             `json:"id"`
	Name           string             `json:"name"`
	BaseQuality    float64            `json:"base_quality"`
	AuthorityScore float64            `json:"authority_score"`
	SocialProof    SocialProofPayload `json:"social_proof"`
	ContextWeights map[string]float64 `json:"context_weights"`
}

type SourceListResponse struct {
	RegistryVersion uint64            `json:"registry_version"`
	Sources         []*SourceResponse `json:"sources"`
}

type SourceScoreResponse struct {
	SourceId  string              `json:"source_id"`
	Context   string              `json:"context"`
	Score     float64             `json:"score"`
	Breakdown synthesis.Breakdown `json:"breakdown"`
}

type UpsertSourceRequest struct {
	Name           string             `json:"name" validate:"max=120"`
	BaseQuality    float64            `json:"base_quality" validate:"gte=0,lte=1"`
	AuthorityScore float64            `json:"authority_score" validate:"gte=0,lte=1"`
	SocialProof    SocialProofPayload `json:"social_proof"`
	ContextWeights map[string]float64 `json:"context_weights"`
}

// CredibilityUpdateRequest carries externally computed feedback. Omitted fields stay unchanged.
type CredibilityUpdateRequest struct {
	AuthorityScore *float64 `json:"authority_score" validate:"omitempty,gte=0,lte=1"`
	BaseQuality    *float64 `json:"base_quality" validate:"omitempty,gte=0,lte=1"`
}

// DecisionMessage travels on the in-process bus after every committed decision.
type DecisionMessage struct {
	Decision synthesis.Decision `json:"decision"`
}
