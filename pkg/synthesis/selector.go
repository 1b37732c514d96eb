// FILE: pkg/synthesis/selector.go
// PURPOSE: Pick the fewest sources whose aggregate quality meets the target

package synthesis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"source-intel-be/internal/pkg/logger"
)

// DefaultDecay is the rank decay of the aggregate's weights.
const DefaultDecay = 0.8

// ScoredSource is one ranked candidate.
type ScoredSource struct {
	ID        string    `json:"id"`
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// Selection is the outcome of one selector pass.
type Selection struct {
	Context       QueryContext   `json:"context"`
	Selected      []ScoredSource `json:"selected"`
	Ranked        []ScoredSource `json:"ranked"`
	Quality       float64        `json:"quality"`
	Target        float64        `json:"target"`
	TargetReached bool           `json:"target_reached"`
	Excluded      []*SourceError `json:"excluded,omitempty"`
}

// SelectedIDs returns the chosen source ids in rank order.
func (s Selection) SelectedIDs() []string {
	ids := make([]string, len(s.Selected))
	for i, src := range s.Selected {
		ids[i] = src.ID
	}
	return ids
}

// Scores maps every valid candidate to the score it was ranked by.
func (s Selection) Scores() map[string]float64 {
	out := make(map[string]float64, len(s.Ranked))
	for _, src := range s.Ranked {
		out[src.ID] = src.Score
	}
	return out
}

// Selector ranks sources with a Scorer and trims them to the quality target.
type Selector struct {
	scorer *Scorer
	decay  float64
	logger logger.ILogger
}

func NewSelector(scorer *Scorer, decay float64, log logger.ILogger) (*Selector, error) {
	if math.IsNaN(decay) || decay <= 0 || decay > 1 {
		return nil, fmt.Errorf("%w: selection decay %g must be in (0,1]", ErrInvalidInput, decay)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Selector{scorer: scorer, decay: decay, logger: log}, nil
}

// Select scores every source under ctx and greedily takes them in rank order
// until the decaying-weight mean reaches target or maxSources are taken.
// Because the mean of a descending sequence never rises, a target the top
// source misses is never reached; the selection then widens to max sources
// for corroboration and reports the lower achieved quality.
func (s *Selector) Select(ctx QueryContext, sources []Source, target float64, maxSources int) (Selection, error) {
	if !ctx.Valid() {
		return Selection{}, fmt.Errorf("%w: query context %d out of range", ErrInvalidInput, int(ctx))
	}
	if math.IsNaN(target) || target < 0 || target > 1 {
		return Selection{}, fmt.Errorf("%w: target quality %g is outside [0,1]", ErrInvalidInput, target)
	}
	if maxSources < 1 {
		return Selection{}, fmt.Errorf("%w: max sources must be at least 1, got %d", ErrInvalidInput, maxSources)
	}

	sel := Selection{Context: ctx, Target: target}
	for _, src := range sources {
		score, breakdown, err := s.scorer.Synthesize(src, ctx)
		if err != nil {
			var srcErr *SourceError
			if !errors.As(err, &srcErr) {
				srcErr = &SourceError{SourceID: src.ID, Field: "score", Reason: err.Error()}
			}
			sel.Excluded = append(sel.Excluded, srcErr)
			s.logger.Warn("SYNTHESIS", "Source excluded from selection", map[string]interface{}{
				"source_id": srcErr.SourceID,
				"field":     srcErr.Field,
				"reason":    srcErr.Reason,
			})
			continue
		}
		sel.Ranked = append(sel.Ranked, ScoredSource{ID: src.ID, Score: score, Breakdown: breakdown})
	}

	if len(sel.Ranked) == 0 {
		return Selection{}, &NoViableSourcesError{Excluded: sel.Excluded}
	}

	// Clamping is monotone, so ordering by the unclamped value keeps score
	// order and separates sources that both saturate at 1.
	sort.SliceStable(sel.Ranked, func(i, j int) bool {
		a, b := sel.Ranked[i].Breakdown.Weighted, sel.Ranked[j].Breakdown.Weighted
		if a != b {
			return a > b
		}
		return sel.Ranked[i].ID < sel.Ranked[j].ID
	})

	var weighted, totalWeight float64
	w := 1.0
	for _, cand := range sel.Ranked {
		if len(sel.Selected) == maxSources {
			break
		}
		sel.Selected = append(sel.Selected, cand)
		weighted += w * cand.Score
		totalWeight += w
		w *= s.decay

		sel.Quality = clamp01(weighted / totalWeight)
		if sel.Quality >= target {
			sel.TargetReached = true
			break
		}
	}
	return sel, nil
}
