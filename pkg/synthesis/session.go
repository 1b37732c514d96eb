package synthesis

import (
	"context"
	"time"
)

// Decision is the immutable record of one selection pass.
type Decision struct {
	ID                string             `json:"id"`
	SessionID         string             `json:"session_id"`
	Query             string             `json:"query"`
	Context           QueryContext       `json:"context"`
	Confidence        float64            `json:"confidence"`
	SelectedSources   []string           `json:"selected_sources"`
	SynthesisQuality  float64            `json:"synthesis_quality"`
	TargetQuality     float64            `json:"target_quality"`
	TargetReached     bool               `json:"target_reached"`
	PerSourceScores   map[string]float64 `json:"per_source_scores"`
	ExcludedSources   []SourceError      `json:"excluded_sources,omitempty"`
	ContextSwitched   bool               `json:"context_switched"`
	PreviousContext   *QueryContext      `json:"previous_context,omitempty"`
	TransitionTension float64            `json:"transition_tension"`
	RegistryVersion   uint64             `json:"registry_version"`
	CreatedAt         time.Time          `json:"created_at"`
}

// Clone returns a deep copy so stored history never aliases caller data.
func (d Decision) Clone() Decision {
	out := d
	out.SelectedSources = append([]string(nil), d.SelectedSources...)
	out.ExcludedSources = append([]SourceError(nil), d.ExcludedSources...)
	out.PerSourceScores = make(map[string]float64, len(d.PerSourceScores))
	for k, v := range d.PerSourceScores {
		out.PerSourceScores[k] = v
	}
	if d.PreviousContext != nil {
		prev := *d.PreviousContext
		out.PreviousContext = &prev
	}
	return out
}

// Transition records one context switch inside a session.
type Transition struct {
	From    QueryContext `json:"from"`
	To      QueryContext `json:"to"`
	Tension float64      `json:"tension"`
	At      time.Time    `json:"at"`
}

// Session is the per-caller state carried across queries.
type Session struct {
	ID                 string       `json:"id"`
	History            []Decision   `json:"history"`
	PreviousContext    QueryContext `json:"previous_context"`
	HasPrevious        bool         `json:"has_previous"`
	ContextSwitchCount int          `json:"context_switch_count"`
	Transitions        []Transition `json:"transitions"`
	CreatedAt          time.Time    `json:"created_at"`
	LastActiveAt       time.Time    `json:"last_active_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, LastActiveAt: now}
}

func (s *Session) Clone() *Session {
	out := *s
	out.History = make([]Decision, len(s.History))
	for i, d := range s.History {
		out.History[i] = d.Clone()
	}
	out.Transitions = append([]Transition(nil), s.Transitions...)
	return &out
}

// Qualities lists the synthesis quality of each decision in order.
func (s *Session) Qualities() []float64 {
	out := make([]float64, len(s.History))
	for i, d := range s.History {
		out[i] = d.SynthesisQuality
	}
	return out
}

// SessionStore persists sessions between queries. Implementations handle expiry.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, bool, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// SessionLocker is implemented by stores shared between processes. The
// tracker holds the lock across load and save so replicas cannot interleave
// updates to one session.
type SessionLocker interface {
	LockSession(ctx context.Context, id string) (unlock func(), err error)
}

type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// DefaultTrendEpsilon is the mean difference below which a trend is stable.
const DefaultTrendEpsilon = 0.05

const trendWindow = 3

// QualityTrend compares the mean of the latest scores (up to three, always
// leaving at least one earlier score) with the mean of everything before them.
func QualityTrend(qualities []float64, epsilon float64) Trend {
	n := len(qualities)
	if n < 2 {
		return TrendInsufficientData
	}
	window := trendWindow
	if window > n-1 {
		window = n - 1
	}
	recent := mean(qualities[n-window:])
	prior := mean(qualities[:n-window])

	switch diff := recent - prior; {
	case diff > epsilon:
		return TrendImproving
	case diff < -epsilon:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Analytics summarizes a session.
type Analytics struct {
	SessionID       string       `json:"session_id"`
	QueryCount      int          `json:"query_count"`
	ContextSwitches int          `json:"context_switches"`
	QualityTrend    Trend        `json:"quality_trend"`
	AverageQuality  float64      `json:"average_quality"`
	BestContext     QueryContext `json:"best_context"`
	HasBestContext  bool         `json:"-"`
}

// Analyze derives analytics. The best context has the highest mean quality;
// ties go to the context with higher priority.
func (s *Session) Analyze(epsilon float64) Analytics {
	qualities := s.Qualities()
	a := Analytics{
		SessionID:       s.ID,
		QueryCount:      len(s.History),
		ContextSwitches: s.ContextSwitchCount,
		QualityTrend:    QualityTrend(qualities, epsilon),
		AverageQuality:  mean(qualities),
	}

	var sums, counts [contextCount]float64
	for _, d := range s.History {
		if d.Context.Valid() {
			sums[d.Context] += d.SynthesisQuality
			counts[d.Context]++
		}
	}
	best := -1.0
	for _, ctx := range AllContexts() {
		if counts[ctx] == 0 {
			continue
		}
		if m := sums[ctx] / counts[ctx]; m > best {
			best = m
			a.BestContext = ctx
			a.HasBestContext = true
		}
	}
	return a
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
