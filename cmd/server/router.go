package main

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ZanzyTHEbar/public-interest-o-meter/docs"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/config"
	apperrors "github.com/ZanzyTHEbar/public-interest-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/presets"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/security"
)

// cachedPaths are the POST endpoints whose responses depend only on the body.
var cachedPaths = []string{"/weights/normalize", "/assess", "/assess/project"}

type server struct {
	cfg      *config.Config
	presets  atomic.Pointer[presets.Registry]
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
	cache    *cache.Cache
	security *security.SecurityMiddleware
}

func newServer(cfg *config.Config, registry *presets.Registry, logger *monitoring.Logger) *server {
	metrics := monitoring.NewMetrics()
	s := &server{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		cache:   cache.NewCache(cfg.CacheTTL),
		security: security.NewSecurityMiddleware(security.SecurityConfig{
			MaxRequestsPerMin: cfg.RateLimitPerMinute,
			MaxBodyBytes:      cfg.MaxBodyBytes,
			RequestTimeout:    cfg.RequestTimeout,
			LimiterIdleTTL:    security.DefaultSecurityConfig().LimiterIdleTTL,
		}, metrics),
	}
	s.presets.Store(registry)
	return s
}

func (s *server) registry() *presets.Registry {
	return s.presets.Load()
}

// reloadPresets rereads the presets file and drops cached responses, which
// may have been computed from the previous presets. On failure the current
// presets stay in place.
func (s *server) reloadPresets() error {
	registry, err := presets.LoadFile(s.cfg.PresetsFile)
	if err != nil {
		return fmt.Errorf("reloading presets: %w", err)
	}
	s.presets.Store(registry)
	s.cache.Clear()
	s.logger.SystemLogger("presets_reloaded", fmt.Sprintf("%d presets, response cache cleared", registry.Len()))
	return nil
}

// Close stops background janitors.
func (s *server) Close() {
	s.cache.Close()
	s.security.Close()
}

// useJSONFieldNames makes validation errors name fields the way clients send them.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func (s *server) router() (*gin.Engine, error) {
	useJSONFieldNames()

	corsHandler, err := security.CORS(s.cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		return nil, err
	}

	r.Use(security.RequestID())

	// Add monitoring middleware first (to capture all requests)
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger, s.cfg.MaxBodyBytes))

	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	r.Use(security.SecurityHeadersMiddleware(false))
	r.Use(corsHandler)
	r.Use(s.security.RequestTimeout)
	r.Use(s.security.RateLimitByIP)
	r.Use(s.security.BodyLimit)
	r.Use(s.security.ValidateContentType)
	r.Use(s.cache.Middleware(s.metrics, s.logger, cachedPaths...))

	r.GET("/health", s.health)
	r.GET("/presets", s.listPresets)
	r.GET("/presets/:name", s.getPreset)

	r.POST("/weights/normalize", s.normalizeWeights)
	r.POST("/assess", s.assess)
	r.POST("/assess/project", s.project)

	r.GET("/metrics", s.stats)
	r.GET("/metrics/prometheus", gin.WrapH(s.metrics.PrometheusHandler()))
	r.GET("/cache/stats", s.cacheStats)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r, nil
}
