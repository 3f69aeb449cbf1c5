package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAssessment() Assessment {
	return Assessment{
		Categories:  abc,
		Weights:     WeightVector{"A": 4, "B": 3, "C": 3},
		Performance: PerformanceVector{"A": 0.6, "B": 0.5, "C": 0.7},
		Target:      TargetVector{"A": 0.7, "B": 0.75, "C": 0.4},
	}
}

func TestEvaluate(t *testing.T) {
	res, err := Evaluate(sampleAssessment())
	require.NoError(t, err)

	assert.InDelta(t, 0.4, res.Weights["A"], 1e-12)
	assert.InDelta(t, 0.60, res.CompositeScore, 1e-12)
	assert.Equal(t, RankByGap, res.RankMode)
	assert.Equal(t, []Category{"B", "A", "C"}, categoriesOf(res.Gaps))
	assert.Equal(t, []Category{"B", "A"}, categoriesOf(res.Priorities))
	assert.InDelta(t, 0.115, res.ImprovementPotential, 1e-12)
	assert.Equal(t, 10.0, res.Normalization.RawTotal)
	assert.False(t, res.Normalization.Rescaled)
	assert.Equal(t, StatusNeedsAttention, res.Gaps[1].Status)
}

func TestEvaluate_Options(t *testing.T) {
	a := sampleAssessment()

	t.Run("top n", func(t *testing.T) {
		res, err := Evaluate(a, WithTopN(1))
		require.NoError(t, err)
		assert.Equal(t, []Category{"B"}, categoriesOf(res.Priorities))
	})

	t.Run("rank mode", func(t *testing.T) {
		res, err := Evaluate(a, WithRankMode(RankByPriorityScore))
		require.NoError(t, err)
		assert.Equal(t, RankByPriorityScore, res.RankMode)
		// C is over target but |-0.3*0.3| = 0.09 outranks B (0.075) and A (0.04)
		assert.Equal(t, []Category{"C", "B", "A"}, categoriesOf(res.Gaps))
		// priorities still only carry under-target categories
		assert.Equal(t, []Category{"B", "A"}, categoriesOf(res.Priorities))
	})

	t.Run("thresholds", func(t *testing.T) {
		res, err := Evaluate(a, WithThresholds(Thresholds{Attention: 0.15, Critical: 0.30}))
		require.NoError(t, err)
		assert.Equal(t, StatusNeedsAttention, res.Gaps[0].Status)
		assert.Equal(t, StatusOnTrack, res.Gaps[1].Status)
	})

	t.Run("invalid thresholds", func(t *testing.T) {
		_, err := Evaluate(a, WithThresholds(Thresholds{Attention: 0.5, Critical: 0.1}))
		assert.Error(t, err)
	})

	t.Run("nominal total", func(t *testing.T) {
		res, err := Evaluate(a, WithNominalTotal(100))
		require.NoError(t, err)
		assert.True(t, res.Normalization.Rescaled)
		assert.Equal(t, 100.0, res.Normalization.NominalTotal)
	})

	t.Run("empty rank mode means gap", func(t *testing.T) {
		res, err := Evaluate(a, WithRankMode(""))
		require.NoError(t, err)
		assert.Equal(t, RankByGap, res.RankMode)
	})
}

func TestEvaluate_Idempotent(t *testing.T) {
	a := sampleAssessment()
	first, err := Evaluate(a, WithRankMode(RankByWeightedGap))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Evaluate(a, WithRankMode(RankByWeightedGap))
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestEvaluate_NormalizedWeightsAreFixedPoint(t *testing.T) {
	a := sampleAssessment()
	res, err := Evaluate(a)
	require.NoError(t, err)

	a.Weights = WeightVector(res.Weights)
	again, err := Evaluate(a)
	require.NoError(t, err)
	for _, c := range abc {
		assert.InDelta(t, res.Weights[c], again.Weights[c], 1e-12)
	}
	assert.InDelta(t, res.CompositeScore, again.CompositeScore, 1e-12)
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Assessment)
		kind   error
	}{
		{"empty categories", func(a *Assessment) { a.Categories = nil }, ErrEmptyCategorySet},
		{"duplicate categories", func(a *Assessment) { a.Categories = CategorySet{"A", "A", "B", "C"} }, ErrDuplicateCategory},
		{"negative weight", func(a *Assessment) { a.Weights["C"] = -3 }, ErrInvalidWeight},
		{"missing target", func(a *Assessment) { delete(a.Target, "A") }, ErrMissingCategory},
		{"unknown performance key", func(a *Assessment) { a.Performance["Q"] = 0.1 }, ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleAssessment()
			tt.mutate(&a)
			_, err := Evaluate(a)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	_, err := Evaluate(sampleAssessment(), WithRankMode("loudest"))
	assert.ErrorIs(t, err, ErrUnknownRankMode)
}

func TestProject(t *testing.T) {
	proj, err := Project(sampleAssessment(), "B", 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.075, proj.Delta, 1e-12)

	_, err = Project(sampleAssessment(), "nope", 0.5)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func BenchmarkEvaluate(b *testing.B) {
	a := Assessment{
		Categories:  CategorySet{"democratic_empowerment", "information_integrity", "community_control", "user_rights_protection", "inclusion_access", "sustainability"},
		Weights:     WeightVector{"democratic_empowerment": 0.25, "information_integrity": 0.2, "community_control": 0.2, "user_rights_protection": 0.15, "inclusion_access": 0.1, "sustainability": 0.1},
		Performance: PerformanceVector{"democratic_empowerment": 0.45, "information_integrity": 0.6, "community_control": 0.35, "user_rights_protection": 0.7, "inclusion_access": 0.5, "sustainability": 0.55},
		Target:      TargetVector{"democratic_empowerment": 0.7, "information_integrity": 0.8, "community_control": 0.6, "user_rights_protection": 0.85, "inclusion_access": 0.65, "sustainability": 0.75},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(a, WithRankMode(RankByPriorityScore)); err != nil {
			b.Fatal(err)
		}
	}
}
