package synthesis

import (
	"fmt"
	"math"
	"strings"
)

// SocialProof holds the engagement-derived signals of a source, each in [0,1].
type SocialProof struct {
	EngagementRate    float64 `json:"engagement_rate" yaml:"engagement_rate"`
	ViralPotential    float64 `json:"viral_potential" yaml:"viral_potential"`
	AuthenticityScore float64 `json:"authenticity_score" yaml:"authenticity_score"`
	SocialValidation  float64 `json:"social_validation" yaml:"social_validation"`
}

// Source is one queryable information origin.
type Source struct {
	ID             string                   `json:"id"`
	DisplayName    string                   `json:"name,omitempty"`
	BaseQuality    float64                  `json:"base_quality"`
	AuthorityScore float64                  `json:"authority_score"`
	SocialProof    SocialProof              `json:"social_proof"`
	ContextWeights map[QueryContext]float64 `json:"context_weights"`
}

// ContextWeight returns the relevance multiplier for ctx, 1.0 when unset.
func (s Source) ContextWeight(ctx QueryContext) float64 {
	if w, ok := s.ContextWeights[ctx]; ok {
		return w
	}
	return 1.0
}

// Clone deep-copies the weight map so registry snapshots never share it.
func (s Source) Clone() Source {
	out := s
	out.ContextWeights = make(map[QueryContext]float64, contextCount)
	for k, v := range s.ContextWeights {
		out.ContextWeights[k] = v
	}
	return out
}

// withDefaultWeights fills every missing category with the neutral multiplier.
func (s Source) withDefaultWeights() Source {
	out := s.Clone()
	for _, c := range AllContexts() {
		if _, ok := out.ContextWeights[c]; !ok {
			out.ContextWeights[c] = 1.0
		}
	}
	return out
}

// Validate checks that every score component lies in [0,1].
func (s Source) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"base_quality", s.BaseQuality},
		{"authority_score", s.AuthorityScore},
		{"social_proof.engagement_rate", s.SocialProof.EngagementRate},
		{"social_proof.viral_potential", s.SocialProof.ViralPotential},
		{"social_proof.authenticity_score", s.SocialProof.AuthenticityScore},
		{"social_proof.social_validation", s.SocialProof.SocialValidation},
	}
	for _, f := range fields {
		if err := checkUnit(s.ID, f.name, f.v); err != nil {
			return err
		}
	}
	for ctx, w := range s.ContextWeights {
		if !ctx.Valid() {
			return &SourceError{SourceID: s.ID, Field: "context_weights", Reason: fmt.Sprintf("has unknown context %d", int(ctx))}
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return &SourceError{SourceID: s.ID, Field: "context_weights." + ctx.String(), Value: w, Reason: "must be a finite non-negative multiplier"}
		}
	}
	return nil
}

func checkUnit(id, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &SourceError{SourceID: id, Field: field, Value: v, Reason: "is not a finite number"}
	}
	if v < 0 || v > 1 {
		return &SourceError{SourceID: id, Field: field, Value: v, Reason: fmt.Sprintf("= %g is outside [0,1]", v)}
	}
	return nil
}

// NormalizeSourceID lowercases and trims id, rejecting anything outside [a-z0-9_.-].
func NormalizeSourceID(id string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(id))
	if n == "" {
		return "", fmt.Errorf("%w: source id is empty", ErrInvalidInput)
	}
	for _, r := range n {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return "", fmt.Errorf("%w: source id %q contains %q", ErrInvalidInput, id, r)
		}
	}
	return n, nil
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
