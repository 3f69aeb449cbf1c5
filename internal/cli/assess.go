package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/presets"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/scoring"
)

const maxAssessmentFileSize = 1024 * 1024

var (
	fileFlag = &urfave.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Assessment file (YAML or JSON)",
		Required: true,
	}

	presetFlag = &urfave.StringFlag{
		Name:    "preset",
		Aliases: []string{"p"},
		Usage:   "Preset supplying categories, weights and targets (overrides the file)",
	}

	modeFlag = &urfave.StringFlag{
		Name:  "mode",
		Usage: "Rank mode [gap, weighted_gap, priority_score]",
	}

	topFlag = &urfave.IntFlag{
		Name:  "top",
		Usage: "Number of priorities to report",
		Value: scoring.DefaultTopN,
	}

	categoryFlag = &urfave.StringFlag{
		Name:     "category",
		Aliases:  []string{"c"},
		Usage:    "Category to move",
		Required: true,
	}

	valueFlag = &urfave.Float64Flag{
		Name:     "value",
		Usage:    "Projected performance for the category, in [0,1]",
		Required: true,
	}

	presetsCmd = &urfave.Command{
		Name:      "presets",
		Usage:     "List presets, or show one in full",
		ArgsUsage: "[name]",
		Action:    cmdPresets,
	}

	assessCmd = &urfave.Command{
		Name:    "assess",
		Aliases: []string{"a"},
		Usage:   "Evaluate an assessment file",
		Action:  cmdAssess,
		Flags: []urfave.Flag{
			fileFlag,
			presetFlag,
			modeFlag,
			topFlag,
		},
	}

	projectCmd = &urfave.Command{
		Name:   "project",
		Usage:  "Project the composite score with one category moved",
		Action: cmdProject,
		Flags: []urfave.Flag{
			fileFlag,
			presetFlag,
			categoryFlag,
			valueFlag,
		},
	}
)

// assessmentFile is the on-disk form of an assessment. A preset fills any
// omitted categories, weights and targets.
type assessmentFile struct {
	Preset      string                    `yaml:"preset"`
	Categories  scoring.CategorySet       `yaml:"categories"`
	Weights     scoring.WeightVector      `yaml:"weights"`
	Performance scoring.PerformanceVector `yaml:"performance"`
	Target      scoring.TargetVector      `yaml:"target"`
	RankMode    string                    `yaml:"rank_mode"`
	TopN        *int                      `yaml:"top_n"`
}

type assessOutput struct {
	Preset         string                      `json:"preset,omitempty" yaml:"preset,omitempty"`
	Labels         map[scoring.Category]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	scoring.Result `yaml:",inline"`
}

type projectOutput struct {
	Projection scoring.Projection `json:"projection" yaml:"projection"`
	Summary    string             `json:"summary" yaml:"summary"`
}

func readAssessmentFile(path string) (*assessmentFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("assessment file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("assessment file %s is a directory", path)
	}
	if info.Size() > maxAssessmentFileSize {
		return nil, fmt.Errorf("assessment file %s exceeds %d bytes", path, maxAssessmentFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assessment file: %w", err)
	}

	var f assessmentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing assessment file %s: %w", path, err)
	}
	return &f, nil
}

// build applies preset defaults and returns the assessment with its options.
func (f *assessmentFile) build(registry *presets.Registry) (scoring.Assessment, *presets.Preset, []scoring.Option, error) {
	a := scoring.Assessment{
		Categories:  f.Categories,
		Weights:     f.Weights,
		Performance: f.Performance,
		Target:      f.Target,
	}

	if f.Preset == "" {
		if len(a.Categories) == 0 {
			return scoring.Assessment{}, nil, nil, errors.New("assessment needs either a preset or categories")
		}
		return a, nil, nil, nil
	}

	p, err := registry.Get(f.Preset)
	if err != nil {
		return scoring.Assessment{}, nil, nil, err
	}
	a.Categories = p.CategorySet()
	if a.Weights == nil {
		a.Weights = p.Weights()
	}
	if a.Target == nil {
		a.Target = p.Targets()
	}
	return a, &p, p.Options(), nil
}

func loadAssessment(c *urfave.Context) (*assessmentFile, error) {
	f, err := readAssessmentFile(c.String(fileFlag.Name))
	if err != nil {
		return nil, err
	}
	if name := c.String(presetFlag.Name); name != "" {
		f.Preset = name
	}
	return f, nil
}

func cmdPresets(c *urfave.Context) error {
	cfg := getConfig(c)

	if name := c.Args().First(); name != "" {
		p, err := cfg.Presets.Get(name)
		if err != nil {
			return err
		}
		return cfg.encode(p)
	}

	list := cfg.Presets.List()
	summaries := make([]presets.Summary, 0, len(list))
	for _, p := range list {
		summaries = append(summaries, p.Summary())
	}
	return cfg.encode(summaries)
}

func cmdAssess(c *urfave.Context) error {
	start := time.Now()
	cfg := getConfig(c)

	f, err := loadAssessment(c)
	if err != nil {
		return err
	}
	if m := c.String(modeFlag.Name); m != "" {
		f.RankMode = m
	}

	a, p, opts, err := f.build(cfg.Presets)
	if err != nil {
		return err
	}

	if f.RankMode != "" {
		mode, err := scoring.ParseRankMode(f.RankMode)
		if err != nil {
			return err
		}
		opts = append(opts, scoring.WithRankMode(mode))
	}

	topN := c.Int(topFlag.Name)
	if !c.IsSet(topFlag.Name) && f.TopN != nil {
		topN = *f.TopN
	}
	opts = append(opts, scoring.WithTopN(topN))

	res, err := scoring.Evaluate(a, opts...)
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", c.String(fileFlag.Name), err)
	}

	out := assessOutput{Result: res}
	if p != nil {
		out.Preset = p.Name
		out.Labels = make(map[scoring.Category]string, len(a.Categories))
		for _, id := range a.Categories {
			out.Labels[id] = p.Label(id)
		}
	}

	slog.Debug("assessment evaluated",
		"preset", out.Preset,
		"rank_mode", res.RankMode,
		"composite_score", res.CompositeScore,
		"duration_ms", time.Since(start).Milliseconds())

	return cfg.encode(out)
}

func cmdProject(c *urfave.Context) error {
	cfg := getConfig(c)

	f, err := loadAssessment(c)
	if err != nil {
		return err
	}

	a, _, _, err := f.build(cfg.Presets)
	if err != nil {
		return err
	}

	proj, err := scoring.Project(a, scoring.Category(c.String(categoryFlag.Name)), c.Float64(valueFlag.Name))
	if err != nil {
		return fmt.Errorf("projecting %s: %w", c.String(fileFlag.Name), err)
	}

	return cfg.encode(projectOutput{Projection: proj, Summary: proj.String()})
}
