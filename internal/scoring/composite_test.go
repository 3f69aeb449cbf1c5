package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeScore(t *testing.T) {
	weights := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}

	tests := []struct {
		name        string
		performance PerformanceVector
		expected    float64
	}{
		{"mixed performance", PerformanceVector{"A": 0.6, "B": 0.5, "C": 0.7}, 0.60},
		{"weighted average of 0.6, 0.4 and 0.8", PerformanceVector{"A": 0.6, "B": 0.4, "C": 0.8}, 0.60},
		{"all zero", PerformanceVector{"A": 0, "B": 0, "C": 0}, 0},
		{"all one", PerformanceVector{"A": 1, "B": 1, "C": 1}, 1},
		{"constant performance", PerformanceVector{"A": 0.42, "B": 0.42, "C": 0.42}, 0.42},
		{"out of range passes through", PerformanceVector{"A": 1.5, "B": 0, "C": 0}, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompositeScore(abc, tt.performance, weights)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestCompositeScore_Overflow(t *testing.T) {
	cs := CategorySet{"A", "B"}
	w := NormalizedWeights{"A": 1, "B": 1}

	_, err := CompositeScore(cs, PerformanceVector{"A": math.MaxFloat64, "B": math.MaxFloat64}, w)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = ProjectScore(cs, PerformanceVector{"A": math.MaxFloat64, "B": 0}, w, "B", math.MaxFloat64)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = Evaluate(Assessment{
		Categories:  cs,
		Weights:     WeightVector{"A": 1, "B": 1},
		Performance: PerformanceVector{"A": -math.MaxFloat64, "B": 0},
		Target:      TargetVector{"A": math.MaxFloat64, "B": 0},
	})
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestCompositeScore_Linear(t *testing.T) {
	w := NormalizedWeights{"A": 0.5, "B": 0.25, "C": 0.25}
	p1 := PerformanceVector{"A": 0.2, "B": 0.9, "C": 0.4}
	p2 := PerformanceVector{"A": 0.7, "B": 0.1, "C": 0.3}
	const a, b = 0.3, 0.6

	mixed := PerformanceVector{}
	for _, c := range abc {
		mixed[c] = a*p1[c] + b*p2[c]
	}

	s1, err := CompositeScore(abc, p1, w)
	require.NoError(t, err)
	s2, err := CompositeScore(abc, p2, w)
	require.NoError(t, err)
	sm, err := CompositeScore(abc, mixed, w)
	require.NoError(t, err)

	assert.InDelta(t, a*s1+b*s2, sm, 1e-12)
}

func TestCompositeScore_Deterministic(t *testing.T) {
	cs := CategorySet{"educate", "perspective", "help", "update", "inspire"}
	w, err := NormalizeWeights(cs, WeightVector{"educate": 35, "perspective": 25, "help": 20, "update": 10, "inspire": 10})
	require.NoError(t, err)
	p := PerformanceVector{"educate": 0.65, "perspective": 0.55, "help": 0.4, "update": 0.8, "inspire": 0.5}

	first, err := CompositeScore(cs, p, w)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := CompositeScore(cs, p, w)
		require.NoError(t, err)
		require.Equal(t, math.Float64bits(first), math.Float64bits(again))
	}
}

func TestCompositeScore_Errors(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}

	tests := []struct {
		name        string
		performance PerformanceVector
		weights     NormalizedWeights
		kind        error
		field       string
	}{
		{
			name:        "missing performance",
			performance: PerformanceVector{"A": 0.5, "B": 0.5},
			weights:     w,
			kind:        ErrMissingCategory,
			field:       "performance.C",
		},
		{
			name:        "extra performance key",
			performance: PerformanceVector{"A": 0.5, "B": 0.5, "C": 0.5, "X": 1},
			weights:     w,
			kind:        ErrUnknownCategory,
			field:       "performance.X",
		},
		{
			name:        "missing weight",
			performance: PerformanceVector{"A": 0.5, "B": 0.5, "C": 0.5},
			weights:     NormalizedWeights{"A": 0.5, "C": 0.5},
			kind:        ErrMissingCategory,
			field:       "weights.B",
		},
		{
			name:        "NaN performance",
			performance: PerformanceVector{"A": 0.5, "B": math.NaN(), "C": 0.5},
			weights:     w,
			kind:        ErrInvalidScore,
			field:       "performance.B",
		},
		{
			name:        "negative normalized weight",
			performance: PerformanceVector{"A": 0.5, "B": 0.5, "C": 0.5},
			weights:     NormalizedWeights{"A": 1.2, "B": -0.2, "C": 0},
			kind:        ErrInvalidWeight,
			field:       "weights.B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompositeScore(abc, tt.performance, tt.weights)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field())
		})
	}
}

func TestProjectScore(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}
	p := PerformanceVector{"A": 0.6, "B": 0.5, "C": 0.7}

	proj, err := ProjectScore(abc, p, w, "B", 0.75)
	require.NoError(t, err)

	assert.Equal(t, Category("B"), proj.Category)
	assert.InDelta(t, 0.5, proj.From, 1e-12)
	assert.InDelta(t, 0.75, proj.To, 1e-12)
	assert.InDelta(t, 0.60, proj.BaselineScore, 1e-12)
	assert.InDelta(t, 0.675, proj.ProjectedScore, 1e-12)
	assert.InDelta(t, 0.075, proj.Delta, 1e-12)
	assert.InDelta(t, 0.5, p["B"], 0, "input vector must not change")

	assert.Equal(t, "improving B to 75.0% moves the score from 60.0% to 67.5% (+7.5%)", proj.String())
}

func TestProjectScore_Errors(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}
	p := PerformanceVector{"A": 0.6, "B": 0.5, "C": 0.7}

	_, err := ProjectScore(abc, p, w, "Z", 0.9)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = ProjectScore(abc, p, w, "A", math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidScore)
}
