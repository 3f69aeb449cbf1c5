package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoriesOf(entries []GapEntry) []Category {
	out := make([]Category, len(entries))
	for i, e := range entries {
		out[i] = e.Category
	}
	return out
}

func TestGapAnalysis(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}
	p := PerformanceVector{"A": 0.6, "B": 0.5, "C": 0.7}
	target := TargetVector{"A": 0.7, "B": 0.75, "C": 0.4}

	entries, err := GapAnalysis(abc, p, target, w, RankByGap)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []Category{"B", "A", "C"}, categoriesOf(entries))

	expected := map[Category]struct {
		gap    float64
		status Status
	}{
		"A": {0.1, StatusNeedsAttention},
		"B": {0.25, StatusCritical},
		"C": {-0.3, StatusOnTrack},
	}
	for _, e := range entries {
		want := expected[e.Category]
		assert.InDelta(t, want.gap, e.Gap, 1e-12, "gap %s", e.Category)
		assert.InDelta(t, e.Gap*e.Weight, e.WeightedGap, 1e-12)
		assert.GreaterOrEqual(t, e.PriorityScore, 0.0)
		assert.Equal(t, want.status, e.Status, "status %s", e.Category)
	}
}

func TestGapAnalysis_Scenarios(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}

	tests := []struct {
		name        string
		performance PerformanceVector
		target      TargetVector
		gaps        map[Category]float64
		ranked      []Category
		priorities  []Category
	}{
		{
			name:        "below target on A and B",
			performance: PerformanceVector{"A": 0.6, "B": 0.4, "C": 0.8},
			target:      TargetVector{"A": 0.7, "B": 0.65, "C": 0.5},
			gaps:        map[Category]float64{"A": 0.1, "B": 0.25, "C": -0.3},
			ranked:      []Category{"B", "A", "C"},
			priorities:  []Category{"B", "A"},
		},
		{
			name:        "on target everywhere",
			performance: PerformanceVector{"A": 0.6, "B": 0.4, "C": 0.8},
			target:      TargetVector{"A": 0.6, "B": 0.4, "C": 0.8},
			gaps:        map[Category]float64{"A": 0, "B": 0, "C": 0},
			ranked:      []Category{"A", "B", "C"},
			priorities:  []Category{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := GapAnalysis(abc, tt.performance, tt.target, w, RankByGap)
			require.NoError(t, err)

			assert.Equal(t, tt.ranked, categoriesOf(entries))
			for _, e := range entries {
				assert.InDelta(t, tt.gaps[e.Category], e.Gap, 1e-12, "gap %s", e.Category)
			}
			assert.Equal(t, tt.priorities, categoriesOf(Priorities(entries, 0)))
		})
	}
}

func TestGapAnalysis_Overflow(t *testing.T) {
	cs := CategorySet{"A"}
	w := NormalizedWeights{"A": 1}

	_, err := GapAnalysis(cs, PerformanceVector{"A": -1e308}, TargetVector{"A": 1e308}, w, RankByGap)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidScore)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "gap.A", ve.Field())
}

func TestGapAnalysis_RankModes(t *testing.T) {
	// A has the biggest raw gap but a tiny weight; C is over target with a
	// large weight, so only priority_score ranks it first.
	cs := CategorySet{"A", "B", "C"}
	w := NormalizedWeights{"A": 0.1, "B": 0.3, "C": 0.6}
	p := PerformanceVector{"A": 0.2, "B": 0.5, "C": 0.9}
	target := TargetVector{"A": 0.8, "B": 0.8, "C": 0.5}

	tests := []struct {
		mode     RankMode
		expected []Category
	}{
		{RankByGap, []Category{"A", "B", "C"}},
		{RankByWeightedGap, []Category{"B", "A", "C"}},
		{RankByPriorityScore, []Category{"C", "B", "A"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			entries, err := GapAnalysis(cs, p, target, w, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, categoriesOf(entries))
		})
	}
}

func TestGapAnalysis_TiesKeepCategoryOrder(t *testing.T) {
	cs := CategorySet{"d", "b", "a", "c"}
	w := NormalizedWeights{"d": 0.25, "b": 0.25, "a": 0.25, "c": 0.25}
	p := PerformanceVector{"d": 0.5, "b": 0.5, "a": 0.5, "c": 0.5}
	target := TargetVector{"d": 0.6, "b": 0.6, "a": 0.6, "c": 0.6}

	for _, mode := range RankModes {
		entries, err := GapAnalysis(cs, p, target, w, mode)
		require.NoError(t, err)
		assert.Equal(t, []Category{"d", "b", "a", "c"}, categoriesOf(entries), "mode %s", mode)
	}
}

func TestGapAnalysis_Errors(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}
	p := PerformanceVector{"A": 0.6, "B": 0.5, "C": 0.7}

	_, err := GapAnalysis(abc, p, TargetVector{"A": 0.7, "B": 0.7}, w, RankByGap)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCategory)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "target.C", ve.Field())

	_, err = GapAnalysis(abc, p, TargetVector{"A": 0.7, "B": 0.7, "C": 0.7}, w, "loudest")
	assert.ErrorIs(t, err, ErrUnknownRankMode)
	assert.Equal(t, "unknown_rank_mode", KindName(err))
}

func TestPriorities(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}
	p := PerformanceVector{"A": 0.6, "B": 0.5, "C": 0.7}
	target := TargetVector{"A": 0.7, "B": 0.75, "C": 0.4}

	entries, err := GapAnalysis(abc, p, target, w, RankByGap)
	require.NoError(t, err)

	tests := []struct {
		name     string
		n        int
		expected []Category
	}{
		{"default top three drops over-performers", DefaultTopN, []Category{"B", "A"}},
		{"top one", 1, []Category{"B"}},
		{"zero keeps all under-target", 0, []Category{"B", "A"}},
		{"negative keeps all under-target", -1, []Category{"B", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Priorities(entries, tt.n)
			assert.Equal(t, tt.expected, categoriesOf(got))
			for _, e := range got {
				assert.Greater(t, e.Gap, 0.0)
			}
		})
	}
}

func TestPriorities_AllMet(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}
	p := PerformanceVector{"A": 0.9, "B": 0.9, "C": 0.9}
	target := TargetVector{"A": 0.7, "B": 0.9, "C": 0.4}

	entries, err := GapAnalysis(abc, p, target, w, RankByGap)
	require.NoError(t, err)

	got := Priorities(entries, DefaultTopN)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, ImprovementPotential(entries))
}

func TestImprovementPotential(t *testing.T) {
	w := NormalizedWeights{"A": 0.4, "B": 0.3, "C": 0.3}
	p := PerformanceVector{"A": 0.6, "B": 0.5, "C": 0.7}
	target := TargetVector{"A": 0.7, "B": 0.75, "C": 0.4}

	entries, err := GapAnalysis(abc, p, target, w, RankByGap)
	require.NoError(t, err)

	// 0.1*0.4 + 0.25*0.3; C is over target and contributes nothing
	assert.InDelta(t, 0.115, ImprovementPotential(entries), 1e-12)
}

func TestThresholds(t *testing.T) {
	t.Run("classify", func(t *testing.T) {
		th := Thresholds{Attention: 0.15, Critical: 0.30}
		assert.Equal(t, StatusOnTrack, th.Classify(-0.5))
		assert.Equal(t, StatusOnTrack, th.Classify(0.149))
		assert.Equal(t, StatusNeedsAttention, th.Classify(0.15))
		assert.Equal(t, StatusNeedsAttention, th.Classify(0.29))
		assert.Equal(t, StatusCritical, th.Classify(0.30))
	})

	t.Run("band edges", func(t *testing.T) {
		inclusive := Thresholds{Attention: 0.10, Critical: 0.20}
		strict := Thresholds{Attention: 0.15, Critical: 0.30, Strict: true}

		tests := []struct {
			name     string
			th       Thresholds
			gap      float64
			expected Status
		}{
			{"inclusive below attention", inclusive, 0.09, StatusOnTrack},
			{"inclusive at attention", inclusive, 0.10, StatusNeedsAttention},
			{"inclusive at attention after subtraction", inclusive, 0.7 - 0.6, StatusNeedsAttention},
			{"inclusive below critical", inclusive, 0.19, StatusNeedsAttention},
			{"inclusive at critical", inclusive, 0.20, StatusCritical},
			{"strict at attention", strict, 0.15, StatusOnTrack},
			{"strict at attention after subtraction", strict, 0.7 - 0.55, StatusOnTrack},
			{"strict above attention", strict, 0.16, StatusNeedsAttention},
			{"strict at critical", strict, 0.30, StatusNeedsAttention},
			{"strict at critical after subtraction", strict, 0.85 - 0.55, StatusNeedsAttention},
			{"strict above critical", strict, 0.31, StatusCritical},
			{"strict over target", strict, -0.2, StatusOnTrack},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.expected, tt.th.Classify(tt.gap), "gap %v", tt.gap)
			})
		}
	})

	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, DefaultThresholds.Validate())
		assert.NoError(t, Thresholds{Attention: 0.2, Critical: 0.2}.Validate())
		assert.Error(t, Thresholds{}.Validate())
		assert.Error(t, Thresholds{Attention: 0.3, Critical: 0.1}.Validate())
	})
}

func TestParseRankMode(t *testing.T) {
	for _, m := range RankModes {
		got, err := ParseRankMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseRankMode("")
	require.NoError(t, err)
	assert.Equal(t, RankByGap, got)

	_, err = ParseRankMode("biggest")
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rank_mode.biggest", ve.Field())
}
