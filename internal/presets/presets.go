// Package presets ships the named assessment configurations: category order,
// labels, default weights, slider ranges, targets and status thresholds.
package presets

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/scoring"
)

//go:embed presets.yaml
var builtin []byte

// ErrUnknownPreset is returned by Registry.Get for names it does not hold.
var ErrUnknownPreset = errors.New("unknown preset")

// WeightRange describes the slider a weight was entered with.
type WeightRange struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// Contains reports whether v lies within [Min, Max].
func (r WeightRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Category is one assessed dimension of a preset.
type Category struct {
	ID     scoring.Category `yaml:"id" json:"id"`
	Label  string           `yaml:"label" json:"label"`
	Weight float64          `yaml:"weight" json:"weight"`
	Target float64          `yaml:"target" json:"target"`
	Sample float64          `yaml:"sample" json:"sample"`
	Range  *WeightRange     `yaml:"range,omitempty" json:"range,omitempty"`
}

// Preset is a complete assessment configuration.
type Preset struct {
	Name         string             `yaml:"name" json:"name"`
	Title        string             `yaml:"title" json:"title"`
	Description  string             `yaml:"description" json:"description"`
	WeightRange  WeightRange        `yaml:"weight_range" json:"weight_range"`
	NominalTotal float64            `yaml:"nominal_total,omitempty" json:"nominal_total,omitempty"`
	RankMode     scoring.RankMode   `yaml:"rank_mode,omitempty" json:"rank_mode,omitempty"`
	Thresholds   scoring.Thresholds `yaml:"thresholds" json:"thresholds"`
	Categories   []Category         `yaml:"categories" json:"categories"`
}

// Summary is the listing view of a preset.
type Summary struct {
	Name       string             `json:"name" yaml:"name"`
	Title      string             `json:"title" yaml:"title"`
	Categories scoring.CategorySet `json:"categories" yaml:"categories"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// CategorySet returns the preset's categories in declaration order.
func (p Preset) CategorySet() scoring.CategorySet {
	cs := make(scoring.CategorySet, len(p.Categories))
	for i, c := range p.Categories {
		cs[i] = c.ID
	}
	return cs
}

// Weights returns the default raw weights.
func (p Preset) Weights() scoring.WeightVector {
	w := make(scoring.WeightVector, len(p.Categories))
	for _, c := range p.Categories {
		w[c.ID] = c.Weight
	}
	return w
}

// Targets returns the per-category targets.
func (p Preset) Targets() scoring.TargetVector {
	t := make(scoring.TargetVector, len(p.Categories))
	for _, c := range p.Categories {
		t[c.ID] = c.Target
	}
	return t
}

// SamplePerformance returns the demo performance values.
func (p Preset) SamplePerformance() scoring.PerformanceVector {
	s := make(scoring.PerformanceVector, len(p.Categories))
	for _, c := range p.Categories {
		s[c.ID] = c.Sample
	}
	return s
}

// Label returns the display label of id, or id itself.
func (p Preset) Label(id scoring.Category) string {
	for _, c := range p.Categories {
		if c.ID == id && c.Label != "" {
			return c.Label
		}
	}
	return string(id)
}

// Assessment builds an assessment from the preset's defaults and the given
// performance.
func (p Preset) Assessment(performance scoring.PerformanceVector) scoring.Assessment {
	return scoring.Assessment{
		Categories:  p.CategorySet(),
		Weights:     p.Weights(),
		Performance: performance,
		Target:      p.Targets(),
	}
}

// Options returns the evaluation options the preset implies.
func (p Preset) Options() []scoring.Option {
	opts := []scoring.Option{
		scoring.WithThresholds(p.Thresholds),
		scoring.WithNominalTotal(p.NominalTotal),
	}
	if p.RankMode != "" {
		opts = append(opts, scoring.WithRankMode(p.RankMode))
	}
	return opts
}

// Summary returns the listing view.
func (p Preset) Summary() Summary {
	return Summary{Name: p.Name, Title: p.Title, Categories: p.CategorySet()}
}

// Validate checks the preset is internally consistent and usable by the engine.
func (p Preset) Validate() error {
	if p.Name == "" {
		return errors.New("preset has no name")
	}
	cs := p.CategorySet()
	if err := cs.Validate(); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	if err := p.Thresholds.Validate(); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	if _, err := scoring.ParseRankMode(string(p.RankMode)); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	if p.WeightRange.Max < p.WeightRange.Min {
		return fmt.Errorf("preset %s: weight range max %v below min %v", p.Name, p.WeightRange.Max, p.WeightRange.Min)
	}
	for _, c := range p.Categories {
		r := p.WeightRange
		if c.Range != nil {
			r = *c.Range
		}
		if !r.Contains(c.Weight) {
			return fmt.Errorf("preset %s: default weight %v for %s outside [%v, %v]", p.Name, c.Weight, c.ID, r.Min, r.Max)
		}
		if math.IsNaN(c.Target) || c.Target < 0 || c.Target > 1 {
			return fmt.Errorf("preset %s: target %v for %s outside [0, 1]", p.Name, c.Target, c.ID)
		}
	}
	if _, err := scoring.NormalizeWeights(cs, p.Weights()); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return nil
}

// Registry holds presets by name.
type Registry struct {
	presets map[string]Preset
}

// Load returns a registry of the built-in presets.
func Load() (*Registry, error) {
	r := &Registry{presets: make(map[string]Preset)}
	if err := r.add(builtin); err != nil {
		return nil, fmt.Errorf("built-in presets: %w", err)
	}
	return r, nil
}

// LoadFile returns the built-in presets overlaid with those in path.
// A preset in the file replaces a built-in of the same name.
func LoadFile(path string) (*Registry, error) {
	r, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file %s: %w", path, err)
	}
	if err := r.add(data); err != nil {
		return nil, fmt.Errorf("presets file %s: %w", path, err)
	}
	return r, nil
}

func (r *Registry) add(data []byte) error {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(f.Presets) == 0 {
		return errors.New("no presets defined")
	}
	seen := make(map[string]bool, len(f.Presets))
	for _, p := range f.Presets {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("preset %s defined twice", p.Name)
		}
		seen[p.Name] = true
		r.presets[p.Name] = p
	}
	return nil
}

// Get returns the named preset.
func (r *Registry) Get(name string) (Preset, error) {
	p, ok := r.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// List returns presets sorted by name.
func (r *Registry) List() []Preset {
	out := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len is the number of presets held.
func (r *Registry) Len() int { return len(r.presets) }
