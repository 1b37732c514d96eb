package synthesis

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"source-intel-be/internal/pkg/logger"
)

// Options enumerates every tunable of the engine.
type Options struct {
	// DefaultTargetQuality applies when a request leaves the target unset.
	DefaultTargetQuality float64
	// MaxSourcesPerQuery is both the default and the ceiling for max sources.
	MaxSourcesPerQuery int
	// ContextCacheTTL bounds how long classifications are cached; zero disables the cache.
	ContextCacheTTL time.Duration
	// SessionTTL is honoured by the session store implementations.
	SessionTTL time.Duration
	// SelectionDecay is the per-rank weight decay of the aggregate quality.
	SelectionDecay float64
	// TrendEpsilon is the mean difference treated as a real trend.
	TrendEpsilon float64
	Weights      Weights
}

func DefaultOptions() Options {
	return Options{
		DefaultTargetQuality: 0.75,
		MaxSourcesPerQuery:   5,
		ContextCacheTTL:      5 * time.Minute,
		SessionTTL:           30 * time.Minute,
		SelectionDecay:       DefaultDecay,
		TrendEpsilon:         DefaultTrendEpsilon,
		Weights:              DefaultWeights(),
	}
}

func (o Options) Validate() error {
	if math.IsNaN(o.DefaultTargetQuality) || o.DefaultTargetQuality < 0 || o.DefaultTargetQuality > 1 {
		return fmt.Errorf("%w: default target quality %g is outside [0,1]", ErrInvalidInput, o.DefaultTargetQuality)
	}
	if o.MaxSourcesPerQuery < 1 {
		return fmt.Errorf("%w: max sources per query must be at least 1", ErrInvalidInput)
	}
	if o.ContextCacheTTL < 0 || o.SessionTTL < 0 {
		return fmt.Errorf("%w: ttl values must not be negative", ErrInvalidInput)
	}
	if math.IsNaN(o.SelectionDecay) || o.SelectionDecay <= 0 || o.SelectionDecay > 1 {
		return fmt.Errorf("%w: selection decay %g must be in (0,1]", ErrInvalidInput, o.SelectionDecay)
	}
	if math.IsNaN(o.TrendEpsilon) || o.TrendEpsilon < 0 {
		return fmt.Errorf("%w: trend epsilon must not be negative", ErrInvalidInput)
	}
	return o.Weights.Validate()
}

// SelectRequest carries the per-call parameters of SelectSources.
// A nil TargetQuality or zero MaxSources falls back to Options.
type SelectRequest struct {
	Query         string
	SessionID     string
	TargetQuality *float64
	MaxSources    int
}

// DecisionObserver is notified after a decision has been committed to its session.
type DecisionObserver func(ctx context.Context, d Decision)

// Engine is the entry point for callers: it owns the registry, the
// classification cache and the session tracker.
type Engine struct {
	opts       Options
	registry   *Registry
	classifier *Classifier
	scorer     *Scorer
	selector   *Selector
	tracker    *Tracker
	logger     logger.ILogger

	obsMu     sync.RWMutex
	observers []DecisionObserver
}

func NewEngine(opts Options, registry *Registry, store SessionStore, log logger.ILogger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if registry == nil || store == nil {
		return nil, fmt.Errorf("%w: registry and session store are required", ErrInvalidInput)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	scorer, err := NewScorer(opts.Weights)
	if err != nil {
		return nil, err
	}
	selector, err := NewSelector(scorer, opts.SelectionDecay, log)
	if err != nil {
		return nil, err
	}
	classifier := NewClassifier(WithCacheTTL(opts.ContextCacheTTL))

	return &Engine{
		opts:       opts,
		registry:   registry,
		classifier: classifier,
		scorer:     scorer,
		selector:   selector,
		tracker:    NewTracker(classifier, selector, registry, store, opts.TrendEpsilon, log),
		logger:     log,
	}, nil
}

func (e *Engine) Options() Options { return e.opts }

func (e *Engine) Registry() *Registry { return e.registry }

func (e *Engine) Classifier() *Classifier { return e.classifier }

// OnDecision registers an observer. Observers run synchronously in registration order.
func (e *Engine) OnDecision(fn DecisionObserver) {
	e.obsMu.Lock()
	e.observers = append(e.observers, fn)
	e.obsMu.Unlock()
}

// ClassifyQuery returns the dominant context and confidence of text.
func (e *Engine) ClassifyQuery(text string) (Classification, error) {
	return e.classifier.Classify(text)
}

// SelectSources runs one query through the session tracker.
func (e *Engine) SelectSources(ctx context.Context, req SelectRequest) (Decision, error) {
	target := e.opts.DefaultTargetQuality
	if req.TargetQuality != nil {
		target = *req.TargetQuality
	}
	maxSources := req.MaxSources
	if maxSources < 0 {
		return Decision{}, fmt.Errorf("%w: max sources must not be negative", ErrInvalidInput)
	}
	if maxSources == 0 || maxSources > e.opts.MaxSourcesPerQuery {
		maxSources = e.opts.MaxSourcesPerQuery
	}

	d, err := e.tracker.Process(ctx, req.SessionID, req.Query, target, maxSources)
	if err != nil {
		return Decision{}, err
	}

	e.logger.Info("SYNTHESIS", "Sources selected", map[string]interface{}{
		"session_id":        d.SessionID,
		"context":           d.Context.String(),
		"confidence":        d.Confidence,
		"selected_sources":  d.SelectedSources,
		"synthesis_quality": d.SynthesisQuality,
		"target_reached":    d.TargetReached,
	})

	e.obsMu.RLock()
	observers := append([]DecisionObserver(nil), e.observers...)
	e.obsMu.RUnlock()
	for _, fn := range observers {
		fn(ctx, d.Clone())
	}
	return d, nil
}

// SessionAnalytics summarizes a session; unknown ids are reported as empty sessions.
func (e *Engine) SessionAnalytics(ctx context.Context, sessionID string) (Analytics, error) {
	return e.tracker.Analytics(ctx, sessionID)
}

// Session returns a copy of a stored session.
func (e *Engine) Session(ctx context.Context, sessionID string) (*Session, bool, error) {
	return e.tracker.Session(ctx, sessionID)
}

// ScoreSource exposes the scorer breakdown for one registered source.
func (e *Engine) ScoreSource(id string, qc QueryContext) (float64, Breakdown, error) {
	src, err := e.registry.Get(id)
	if err != nil {
		return 0, Breakdown{}, err
	}
	return e.scorer.Synthesize(src, qc)
}
