package scoring

import (
	"fmt"
	"math"
)

// CompositeScore is the weighted sum of performance under normalized weights.
// Both vectors must cover the category set exactly.
func CompositeScore(categories CategorySet, performance PerformanceVector, weights NormalizedWeights) (float64, error) {
	if err := checkScoringInputs(categories, performance, weights); err != nil {
		return 0, err
	}
	return composite(categories, performance, weights)
}

// composite fails when the sum leaves the float range, which finite but
// extreme inputs can cause.
func composite(categories CategorySet, performance PerformanceVector, weights NormalizedWeights) (float64, error) {
	score := 0.0
	for _, c := range categories {
		score += performance[c] * weights[c]
	}
	if !isFinite(score) {
		return 0, &ValidationError{Kind: ErrInvalidScore, Vector: "composite_score", Value: score}
	}
	return score, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkScoringInputs(categories CategorySet, performance PerformanceVector, weights NormalizedWeights) error {
	if err := categories.Validate(); err != nil {
		return err
	}
	if err := checkDomain(categories, "performance", performance); err != nil {
		return err
	}
	if err := checkDomain(categories, "weights", weights); err != nil {
		return err
	}
	if err := checkFinite(categories, "performance", performance); err != nil {
		return err
	}
	for _, c := range categories {
		if v := weights[c]; v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Kind: ErrInvalidWeight, Vector: "weights", Category: c, Value: v}
		}
	}
	return nil
}

// ProjectScore recomputes the composite with one category moved to value,
// leaving the caller's vector untouched.
func ProjectScore(categories CategorySet, performance PerformanceVector, weights NormalizedWeights, category Category, value float64) (Projection, error) {
	if err := checkScoringInputs(categories, performance, weights); err != nil {
		return Projection{}, err
	}
	if !categories.Contains(category) {
		return Projection{}, &ValidationError{Kind: ErrUnknownCategory, Vector: "projection", Category: category}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Projection{}, &ValidationError{Kind: ErrInvalidScore, Vector: "projection", Category: category, Value: value}
	}

	adjusted := make(PerformanceVector, len(performance))
	for k, v := range performance {
		adjusted[k] = v
	}
	adjusted[category] = value

	baseline, err := composite(categories, performance, weights)
	if err != nil {
		return Projection{}, err
	}
	projected, err := composite(categories, adjusted, weights)
	if err != nil {
		return Projection{}, err
	}
	delta := projected - baseline
	if !isFinite(delta) {
		return Projection{}, &ValidationError{Kind: ErrInvalidScore, Vector: "projection", Category: category, Value: delta}
	}
	return Projection{
		Category:       category,
		From:           performance[category],
		To:             value,
		BaselineScore:  baseline,
		ProjectedScore: projected,
		Delta:          delta,
	}, nil
}

// String renders the projection the way the dashboards phrased it.
func (p Projection) String() string {
	return fmt.Sprintf("improving %s to %.1f%% moves the score from %.1f%% to %.1f%% (%+.1f%%)",
		p.Category, p.To*100, p.BaselineScore*100, p.ProjectedScore*100, p.Delta*100)
}
