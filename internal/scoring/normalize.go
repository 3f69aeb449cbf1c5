package scoring

import "math"

// NormalizeWeights converts raw weights into fractions summing to 1.
// An all-zero input falls back to a uniform 1/N distribution.
func NormalizeWeights(categories CategorySet, raw WeightVector) (NormalizedWeights, error) {
	weights, _, err := normalize(categories, raw)
	return weights, err
}

// NormalizeWithReport is NormalizeWeights plus a description of what happened.
// nominal is the total the weight inputs are meant to add up to (for example
// 100 for percentage sliders); zero disables the rescale check.
func NormalizeWithReport(categories CategorySet, raw WeightVector, nominal float64) (NormalizedWeights, NormalizationReport, error) {
	weights, total, err := normalize(categories, raw)
	if err != nil {
		return nil, NormalizationReport{}, err
	}
	report := NormalizationReport{
		RawTotal:        total,
		UniformFallback: total == 0,
		NominalTotal:    nominal,
	}
	if nominal > 0 {
		// the dashboards flagged sums more than 1% of the scale away
		report.Rescaled = math.Abs(total-nominal) > nominal/100
	}
	return weights, report, nil
}

func normalize(categories CategorySet, raw WeightVector) (NormalizedWeights, float64, error) {
	if err := categories.Validate(); err != nil {
		return nil, 0, err
	}
	if err := checkDomain(categories, "weights", raw); err != nil {
		return nil, 0, err
	}

	total := 0.0
	for _, c := range categories {
		v := raw[c]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, &ValidationError{Kind: ErrInvalidWeight, Vector: "weights", Category: c, Value: v}
		}
		total += v
	}
	if math.IsInf(total, 0) {
		return nil, 0, &ValidationError{Kind: ErrInvalidWeight, Vector: "weights", Value: total}
	}

	out := make(NormalizedWeights, len(categories))
	if total == 0 {
		uniform := 1 / float64(len(categories))
		for _, c := range categories {
			out[c] = uniform
		}
		return out, 0, nil
	}
	for _, c := range categories {
		out[c] = raw[c] / total
	}
	return out, total, nil
}

// Sum adds the weights in category order.
func (w NormalizedWeights) Sum(categories CategorySet) float64 {
	s := 0.0
	for _, c := range categories {
		s += w[c]
	}
	return s
}
