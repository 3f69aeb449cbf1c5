package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/public-interest-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/presets"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/scoring"
)

// assessRequest names either a preset or an explicit category set. Preset
// defaults fill any omitted weights and targets.
type assessRequest struct {
	Preset      string                    `json:"preset,omitempty" example:"ims-pia"`
	Categories  scoring.CategorySet       `json:"categories,omitempty" binding:"omitempty,max=64,dive,required"`
	Weights     scoring.WeightVector      `json:"weights,omitempty"`
	Performance scoring.PerformanceVector `json:"performance" binding:"required"`
	Target      scoring.TargetVector      `json:"target,omitempty"`
	RankMode    string                    `json:"rank_mode,omitempty" binding:"omitempty,oneof=gap weighted_gap priority_score" example:"weighted_gap"`
	TopN        *int                      `json:"top_n,omitempty" binding:"omitempty,min=0,max=64" example:"3"`
}

type normalizeRequest struct {
	Preset     string               `json:"preset,omitempty" example:"civic-kpis"`
	Categories scoring.CategorySet  `json:"categories,omitempty" binding:"omitempty,max=64,dive,required"`
	Weights    scoring.WeightVector `json:"weights" binding:"required"`
}

type projectRequest struct {
	assessRequest
	Category scoring.Category `json:"category" binding:"required" example:"privacy"`
	Value    *float64         `json:"value" binding:"required" example:"0.75"`
}

type assessResponse struct {
	Preset string                      `json:"preset,omitempty"`
	Labels map[scoring.Category]string `json:"labels,omitempty"`
	scoring.Result
}

type normalizeResponse struct {
	Categories    scoring.CategorySet         `json:"categories"`
	Weights       scoring.NormalizedWeights   `json:"normalized_weights"`
	Normalization scoring.NormalizationReport `json:"normalization"`
}

type projectResponse struct {
	Projection scoring.Projection `json:"projection"`
	Summary    string             `json:"summary"`
}

type presetListResponse struct {
	Presets []presets.Summary `json:"presets"`
	Count   int               `json:"count"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Presets   int    `json:"presets"`
}

// resolved is a request after preset defaults were applied.
type resolved struct {
	preset     *presets.Preset
	assessment scoring.Assessment
	opts       []scoring.Option
}

func (r resolved) presetName() string {
	if r.preset == nil {
		return ""
	}
	return r.preset.Name
}

func (r resolved) labels() map[scoring.Category]string {
	if r.preset == nil {
		return nil
	}
	labels := make(map[scoring.Category]string, len(r.assessment.Categories))
	for _, c := range r.assessment.Categories {
		labels[c] = r.preset.Label(c)
	}
	return labels
}

func (s *server) resolve(req assessRequest) (resolved, error) {
	out := resolved{
		assessment: scoring.Assessment{
			Categories:  req.Categories,
			Weights:     req.Weights,
			Performance: req.Performance,
			Target:      req.Target,
		},
	}

	if req.Preset != "" {
		if len(req.Categories) > 0 {
			return resolved{}, apperrors.NewValidationErrorWithMap(map[string]string{
				"categories": "must be omitted when preset is set",
			})
		}
		p, err := s.registry().Get(req.Preset)
		if err != nil {
			return resolved{}, err
		}
		out.preset = &p
		out.assessment.Categories = p.CategorySet()
		if out.assessment.Weights == nil {
			out.assessment.Weights = p.Weights()
		}
		if out.assessment.Target == nil {
			out.assessment.Target = p.Targets()
		}
		out.opts = p.Options()
	} else if len(req.Categories) == 0 {
		return resolved{}, apperrors.NewValidationErrorWithMap(map[string]string{
			"categories": "required when preset is not set",
		})
	}

	if req.RankMode != "" {
		mode, err := scoring.ParseRankMode(req.RankMode)
		if err != nil {
			return resolved{}, err
		}
		out.opts = append(out.opts, scoring.WithRankMode(mode))
	}
	if req.TopN != nil {
		out.opts = append(out.opts, scoring.WithTopN(*req.TopN))
	}
	return out, nil
}

// fail records engine rejections before handing err to the error middleware.
func (s *server) fail(c *gin.Context, err error) {
	if scoring.IsValidationError(err) {
		s.metrics.RecordValidationFailure(scoring.KindName(err))
	}
	_ = c.Error(err)
}

// health godoc
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /health [get]
func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   version,
		Timestamp: time.Now().Format(time.RFC3339),
		Presets:   s.registry().Len(),
	})
}

// listPresets godoc
// @Summary      List assessment presets
// @Tags         presets
// @Produce      json
// @Success      200  {object}  presetListResponse
// @Router       /presets [get]
func (s *server) listPresets(c *gin.Context) {
	list := s.registry().List()
	summaries := make([]presets.Summary, 0, len(list))
	for _, p := range list {
		summaries = append(summaries, p.Summary())
	}
	c.JSON(http.StatusOK, presetListResponse{Presets: summaries, Count: len(summaries)})
}

// getPreset godoc
// @Summary      Full preset configuration
// @Tags         presets
// @Produce      json
// @Param        name  path      string  true  "Preset name"
// @Success      200   {object}  presets.Preset
// @Failure      404   {object}  apperrors.Response
// @Router       /presets/{name} [get]
func (s *server) getPreset(c *gin.Context) {
	p, err := s.registry().Get(c.Param("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// normalizeWeights godoc
// @Summary      Normalise raw weights to fractions summing to one
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Param        request  body      normalizeRequest  true  "Raw weights"
// @Success      200      {object}  normalizeResponse
// @Failure      400      {object}  apperrors.Response
// @Failure      422      {object}  apperrors.Response
// @Router       /weights/normalize [post]
func (s *server) normalizeWeights(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	categories := req.Categories
	var nominal float64
	if req.Preset != "" {
		p, err := s.registry().Get(req.Preset)
		if err != nil {
			_ = c.Error(err)
			return
		}
		categories = p.CategorySet()
		nominal = p.NominalTotal
	} else if len(categories) == 0 {
		_ = c.Error(apperrors.NewValidationErrorWithMap(map[string]string{
			"categories": "required when preset is not set",
		}))
		return
	}

	weights, report, err := scoring.NormalizeWithReport(categories, req.Weights, nominal)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.RecordOperation("normalize", "")
	c.JSON(http.StatusOK, normalizeResponse{
		Categories:    categories,
		Weights:       weights,
		Normalization: report,
	})
}

// assess godoc
// @Summary      Evaluate an assessment
// @Description  Composite score, ranked gaps, top priorities and improvement potential.
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Param        request  body      assessRequest  true  "Assessment"
// @Success      200      {object}  assessResponse
// @Failure      400      {object}  apperrors.Response
// @Failure      404      {object}  apperrors.Response
// @Failure      422      {object}  apperrors.Response
// @Router       /assess [post]
func (s *server) assess(c *gin.Context) {
	start := time.Now()

	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	r, err := s.resolve(req)
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := scoring.Evaluate(r.assessment, r.opts...)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.RecordOperation("assess", string(res.RankMode))
	s.metrics.RecordCompositeScore(res.CompositeScore)
	s.logger.AssessmentLogger(r.presetName(), string(res.RankMode), len(r.assessment.Categories),
		res.CompositeScore, res.ImprovementPotential, len(res.Priorities), time.Since(start))

	c.JSON(http.StatusOK, assessResponse{
		Preset: r.presetName(),
		Labels: r.labels(),
		Result: res,
	})
}

// project godoc
// @Summary      What-if projection for one category
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Param        request  body      projectRequest  true  "Assessment plus the category to move"
// @Success      200      {object}  projectResponse
// @Failure      400      {object}  apperrors.Response
// @Failure      422      {object}  apperrors.Response
// @Router       /assess/project [post]
func (s *server) project(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	r, err := s.resolve(req.assessRequest)
	if err != nil {
		s.fail(c, err)
		return
	}

	p, err := scoring.Project(r.assessment, req.Category, *req.Value)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.RecordOperation("project", "")
	c.JSON(http.StatusOK, projectResponse{Projection: p, Summary: p.String()})
}

// stats godoc
// @Summary      JSON metrics snapshot
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /metrics [get]
func (s *server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.GetStats())
}

// cacheStats godoc
// @Summary      Response cache statistics
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /cache/stats [get]
func (s *server) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Stats())
}
