package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Thresholds are the gap levels at which a category stops being on track.
type Thresholds struct {
	Attention float64 `json:"attention" yaml:"attention"`
	Critical  float64 `json:"critical" yaml:"critical"`
	// Strict bands start above a threshold instead of at it.
	Strict    bool    `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// DefaultThresholds matches the infrastructure dashboard: under 10 points is
// on track, under 20 needs attention.
var DefaultThresholds = Thresholds{Attention: 0.10, Critical: 0.20}

// Validate requires 0 < Attention <= Critical.
func (t Thresholds) Validate() error {
	if t.Attention <= 0 || t.Critical < t.Attention {
		return fmt.Errorf("invalid thresholds: attention=%v critical=%v", t.Attention, t.Critical)
	}
	return nil
}

// bandEpsilon absorbs float noise so a gap that is a threshold in decimal
// terms compares equal to it: 0.7-0.6 reaches 0.10, 0.7-0.55 does not exceed 0.15.
const bandEpsilon = 1e-9

// Classify places a gap into a status band. Over-performance is on track.
func (t Thresholds) Classify(gap float64) Status {
	if t.Strict {
		switch {
		case gap > t.Critical+bandEpsilon:
			return StatusCritical
		case gap > t.Attention+bandEpsilon:
			return StatusNeedsAttention
		default:
			return StatusOnTrack
		}
	}
	switch {
	case gap >= t.Critical-bandEpsilon:
		return StatusCritical
	case gap >= t.Attention-bandEpsilon:
		return StatusNeedsAttention
	default:
		return StatusOnTrack
	}
}

// ParseRankMode accepts the mode names used on the wire; empty means RankByGap.
func ParseRankMode(s string) (RankMode, error) {
	if s == "" {
		return RankByGap, nil
	}
	for _, m := range RankModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", &ValidationError{Kind: ErrUnknownRankMode, Vector: "rank_mode", Category: Category(s)}
}

func (m RankMode) key(e GapEntry) float64 {
	switch m {
	case RankByWeightedGap:
		return e.WeightedGap
	case RankByPriorityScore:
		return e.PriorityScore
	default:
		return e.Gap
	}
}

// GapAnalysis computes target - current per category and returns every entry
// ranked descending by mode. Ties keep category order.
func GapAnalysis(categories CategorySet, performance PerformanceVector, target TargetVector, weights NormalizedWeights, mode RankMode) ([]GapEntry, error) {
	return gapAnalysis(categories, performance, target, weights, mode, DefaultThresholds)
}

func gapAnalysis(categories CategorySet, performance PerformanceVector, target TargetVector, weights NormalizedWeights, mode RankMode, th Thresholds) ([]GapEntry, error) {
	if _, err := ParseRankMode(string(mode)); err != nil {
		return nil, err
	}
	if err := checkScoringInputs(categories, performance, weights); err != nil {
		return nil, err
	}
	if err := checkDomain(categories, "target", target); err != nil {
		return nil, err
	}
	if err := checkFinite(categories, "target", target); err != nil {
		return nil, err
	}

	entries := make([]GapEntry, 0, len(categories))
	for _, c := range categories {
		gap := target[c] - performance[c]
		weighted := gap * weights[c]
		if !isFinite(gap) || !isFinite(weighted) {
			return nil, &ValidationError{Kind: ErrInvalidScore, Vector: "gap", Category: c, Value: gap}
		}
		entries = append(entries, GapEntry{
			Category:      c,
			Current:       performance[c],
			Target:        target[c],
			Weight:        weights[c],
			Gap:           gap,
			WeightedGap:   weighted,
			PriorityScore: math.Abs(weighted),
			Status:        th.Classify(gap),
		})
	}
	Rank(entries, mode)
	return entries, nil
}

// Rank sorts entries in place, descending by the mode's key, stable on ties.
func Rank(entries []GapEntry, mode RankMode) {
	if mode == "" {
		mode = RankByGap
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return mode.key(entries[i]) > mode.key(entries[j])
	})
}

// Priorities keeps only under-target entries (gap > 0), in their ranked order,
// truncated to n. n <= 0 keeps them all.
func Priorities(entries []GapEntry, n int) []GapEntry {
	out := make([]GapEntry, 0, len(entries))
	for _, e := range entries {
		if e.Gap <= 0 {
			continue
		}
		out = append(out, e)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// ImprovementPotential is the composite increase available if every
// under-target category reached its target.
func ImprovementPotential(entries []GapEntry) float64 {
	total := 0.0
	for _, e := range entries {
		if e.Gap > 0 {
			total += e.Gap * e.Weight
		}
	}
	return total
}
