package scoring

// DefaultTopN is how many priorities every dashboard surfaced.
const DefaultTopN = 3

// Option tunes Evaluate.
type Option func(*options)

type options struct {
	mode       RankMode
	topN       int
	thresholds Thresholds
	nominal    float64
}

func WithRankMode(m RankMode) Option        { return func(o *options) { o.mode = m } }
func WithTopN(n int) Option                 { return func(o *options) { o.topN = n } }
func WithThresholds(t Thresholds) Option    { return func(o *options) { o.thresholds = t } }
func WithNominalTotal(total float64) Option { return func(o *options) { o.nominal = total } }

// Evaluate runs the whole pipeline over one assessment: normalization,
// composite score, ranked gaps, priorities and improvement potential.
func Evaluate(a Assessment, opts ...Option) (Result, error) {
	o := options{
		mode:       RankByGap,
		topN:       DefaultTopN,
		thresholds: DefaultThresholds,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mode == "" {
		o.mode = RankByGap
	}
	if err := o.thresholds.Validate(); err != nil {
		return Result{}, err
	}

	weights, report, err := NormalizeWithReport(a.Categories, a.Weights, o.nominal)
	if err != nil {
		return Result{}, err
	}
	gaps, err := gapAnalysis(a.Categories, a.Performance, a.Target, weights, o.mode, o.thresholds)
	if err != nil {
		return Result{}, err
	}
	score, err := composite(a.Categories, a.Performance, weights)
	if err != nil {
		return Result{}, err
	}
	potential := ImprovementPotential(gaps)
	if !isFinite(potential) {
		return Result{}, &ValidationError{Kind: ErrInvalidScore, Vector: "improvement_potential", Value: potential}
	}

	return Result{
		Weights:              weights,
		Normalization:        report,
		CompositeScore:       score,
		RankMode:             o.mode,
		Gaps:                 gaps,
		Priorities:           Priorities(gaps, o.topN),
		ImprovementPotential: potential,
	}, nil
}

// Project evaluates a what-if for one category of the assessment.
func Project(a Assessment, category Category, value float64) (Projection, error) {
	weights, err := NormalizeWeights(a.Categories, a.Weights)
	if err != nil {
		return Projection{}, err
	}
	return ProjectScore(a.Categories, a.Performance, weights, category, value)
}
