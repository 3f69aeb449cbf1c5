package scoring

// Category names one dimension of public-interest performance.
type Category string

// CategorySet is the ordered set of categories configured for an assessment.
// Its order drives summation and tie-breaks everywhere in this package.
type CategorySet []Category

// WeightVector holds raw, user-entered importance values on an arbitrary scale.
type WeightVector map[Category]float64

// NormalizedWeights holds fractions in [0,1] that sum to 1.
type NormalizedWeights map[Category]float64

// PerformanceVector holds current performance per category, expected in [0,1].
type PerformanceVector map[Category]float64

// TargetVector holds benchmark performance per category, expected in [0,1].
type TargetVector map[Category]float64

// RankMode selects the key used to order gap entries.
type RankMode string

const (
	// RankByGap orders by raw gap, categories furthest below target first.
	RankByGap RankMode = "gap"
	// RankByWeightedGap orders by gap scaled by mission weight.
	RankByWeightedGap RankMode = "weighted_gap"
	// RankByPriorityScore orders by |gap x weight|.
	RankByPriorityScore RankMode = "priority_score"
)

// RankModes lists every supported mode.
var RankModes = []RankMode{RankByGap, RankByWeightedGap, RankByPriorityScore}

// Status is the band a gap falls into.
type Status string

const (
	StatusOnTrack        Status = "on_track"
	StatusNeedsAttention Status = "needs_attention"
	StatusCritical       Status = "critical"
)

// GapEntry is the per-category result of a gap analysis.
type GapEntry struct {
	Category      Category `json:"category" yaml:"category"`
	Current       float64  `json:"current" yaml:"current"`
	Target        float64  `json:"target" yaml:"target"`
	Weight        float64  `json:"weight" yaml:"weight"`
	Gap           float64  `json:"gap" yaml:"gap"`
	WeightedGap   float64  `json:"weighted_gap" yaml:"weighted_gap"`
	PriorityScore float64  `json:"priority_score" yaml:"priority_score"`
	Status        Status   `json:"status" yaml:"status"`
}

// Assessment is one caller-owned set of inputs. Nothing in this package
// retains it between calls.
type Assessment struct {
	Categories  CategorySet       `json:"categories" yaml:"categories"`
	Weights     WeightVector      `json:"weights" yaml:"weights"`
	Performance PerformanceVector `json:"performance" yaml:"performance"`
	Target      TargetVector      `json:"target" yaml:"target"`
}

// NormalizationReport describes how raw weights were turned into fractions.
type NormalizationReport struct {
	RawTotal        float64 `json:"raw_total" yaml:"raw_total"`
	UniformFallback bool    `json:"uniform_fallback" yaml:"uniform_fallback"`
	NominalTotal    float64 `json:"nominal_total,omitempty" yaml:"nominal_total,omitempty"`
	Rescaled        bool    `json:"rescaled" yaml:"rescaled"`
}

// Projection is the outcome of moving one category to a new performance value.
type Projection struct {
	Category       Category `json:"category" yaml:"category"`
	From           float64  `json:"from" yaml:"from"`
	To             float64  `json:"to" yaml:"to"`
	BaselineScore  float64  `json:"baseline_score" yaml:"baseline_score"`
	ProjectedScore float64  `json:"projected_score" yaml:"projected_score"`
	Delta          float64  `json:"delta" yaml:"delta"`
}

// Result bundles everything Evaluate derives from an Assessment.
type Result struct {
	Weights              NormalizedWeights   `json:"normalized_weights" yaml:"normalized_weights"`
	Normalization        NormalizationReport `json:"normalization" yaml:"normalization"`
	CompositeScore       float64             `json:"composite_score" yaml:"composite_score"`
	RankMode             RankMode            `json:"rank_mode" yaml:"rank_mode"`
	Gaps                 []GapEntry          `json:"gaps" yaml:"gaps"`
	Priorities           []GapEntry          `json:"priorities" yaml:"priorities"`
	ImprovementPotential float64             `json:"improvement_potential" yaml:"improvement_potential"`
}
