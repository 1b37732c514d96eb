// FILE: pkg/synthesis/scorer.go
// PURPOSE: Dialectical quality score — popularity (thesis) against credibility (antithesis)

package synthesis

import (
	"fmt"
	"math"
)

// Weights tunes the dialectical formula. PopularityWeight and its complement
// split the thesis/antithesis; the three mix weights blend the popularity signals.
type Weights struct {
	PopularityWeight  float64 `json:"popularity_weight"`
	EngagementMix     float64 `json:"engagement_mix"`
	ViralMix          float64 `json:"viral_mix"`
	ValidationMix     float64 `json:"validation_mix"`
	AuthenticityBonus float64 `json:"authenticity_bonus"`
}

// DefaultWeights favours credibility: 0.4 popularity against 0.6 quality.
func DefaultWeights() Weights {
	return Weights{
		PopularityWeight:  0.4,
		EngagementMix:     0.5,
		ViralMix:          0.3,
		ValidationMix:     0.2,
		AuthenticityBonus: 0.1,
	}
}

// QualityWeight is the antithesis share.
func (w Weights) QualityWeight() float64 { return 1 - w.PopularityWeight }

func (w Weights) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"popularity_weight", w.PopularityWeight},
		{"engagement_mix", w.EngagementMix},
		{"viral_mix", w.ViralMix},
		{"validation_mix", w.ValidationMix},
		{"authenticity_bonus", w.AuthenticityBonus},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || f.v < 0 || f.v > 1 {
			return fmt.Errorf("%w: weight %s = %g is outside [0,1]", ErrInvalidInput, f.name, f.v)
		}
	}
	if mix := w.EngagementMix + w.ViralMix + w.ValidationMix; math.Abs(mix-1) > 1e-9 {
		return fmt.Errorf("%w: popularity mix weights sum to %g, want 1", ErrInvalidInput, mix)
	}
	return nil
}

// Breakdown exposes every component of a score.
type Breakdown struct {
	Popularity        float64 `json:"popularity"`
	Quality           float64 `json:"quality"`
	Dialectical       float64 `json:"dialectical"`
	AuthenticityBonus float64 `json:"authenticity_bonus"`
	ContextWeight     float64 `json:"context_weight"`
	// Weighted is the score before clamping; selection ranks on it so
	// saturated sources still order by authority and context fit.
	Weighted float64 `json:"weighted"`
	Score    float64 `json:"score"`
}

// Scorer computes dialectical scores. It holds no mutable state.
type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

func (s *Scorer) Weights() Weights { return s.weights }

// Synthesize scores src for ctx. The result is deterministic and clamped to [0,1].
func (s *Scorer) Synthesize(src Source, ctx QueryContext) (float64, Breakdown, error) {
	if err := src.Validate(); err != nil {
		return 0, Breakdown{}, err
	}
	w := s.weights
	sp := src.SocialProof

	popularity, err := normalizeComponent(src.ID, "popularity",
		w.EngagementMix*sp.EngagementRate+w.ViralMix*sp.ViralPotential+w.ValidationMix*sp.SocialValidation)
	if err != nil {
		return 0, Breakdown{}, err
	}
	quality, err := normalizeComponent(src.ID, "quality", math.Sqrt(src.BaseQuality*src.AuthorityScore))
	if err != nil {
		return 0, Breakdown{}, err
	}
	dialectical, err := normalizeComponent(src.ID, "dialectical", w.PopularityWeight*popularity+w.QualityWeight()*quality)
	if err != nil {
		return 0, Breakdown{}, err
	}
	bonus := w.AuthenticityBonus * sp.AuthenticityScore
	cw := src.ContextWeight(ctx)
	weighted := (dialectical + bonus) * cw

	b := Breakdown{
		Popularity:        popularity,
		Quality:           quality,
		Dialectical:       dialectical,
		AuthenticityBonus: bonus,
		ContextWeight:     cw,
		Weighted:          weighted,
		Score:             clamp01(weighted),
	}
	return b.Score, b, nil
}

// normalizeComponent absorbs float rounding at the [0,1] edges and rejects anything further out.
func normalizeComponent(id, field string, v float64) (float64, error) {
	const tolerance = 1e-9
	if v > 1 && v <= 1+tolerance {
		v = 1
	}
	if v < 0 && v >= -tolerance {
		v = 0
	}
	if err := checkUnit(id, field, v); err != nil {
		return 0, err
	}
	return v, nil
}
