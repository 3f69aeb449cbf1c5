package monitoring

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds application metrics. The counters back the JSON /metrics
// view; the same events are mirrored into a private Prometheus registry.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	RateLimitIPBlocks   int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	// operation -> count, e.g. "assess", "project", "normalize"
	Operations      map[string]int64
	OperationsMutex sync.RWMutex

	// scoring error kind -> count
	ValidationFailures      map[string]int64
	ValidationFailuresMutex sync.RWMutex

	registry           *prometheus.Registry
	promRequests       *prometheus.CounterVec
	promDuration       *prometheus.HistogramVec
	promOperations     *prometheus.CounterVec
	promValidation     *prometheus.CounterVec
	promCompositeScore prometheus.Histogram
	promCache          *prometheus.CounterVec
	promRateLimited    prometheus.Counter
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		StartTime:            time.Now(),
		ResponseTimes:        make([]time.Duration, 0, 1000),
		RequestCountByStatus: make(map[int]int64),
		Operations:           make(map[string]int64),
		ValidationFailures:   make(map[string]int64),

		registry: reg,
		promRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piscore",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		promDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "piscore",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		promOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piscore",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Scoring operations computed, by operation and rank mode",
		}, []string{"operation", "rank_mode"}),
		promValidation: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piscore",
			Subsystem: "engine",
			Name:      "validation_failures_total",
			Help:      "Rejected inputs by error kind",
		}, []string{"kind"}),
		promCompositeScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "piscore",
			Subsystem: "engine",
			Name:      "composite_score",
			Help:      "Distribution of computed composite scores",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		promCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piscore",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result",
		}, []string{"result"}),
		promRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "piscore",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP limiter",
		}),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
	m.promCache.WithLabelValues("hit").Inc()
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
	m.promCache.WithLabelValues("miss").Inc()
}

// IncrementRateLimitIPBlock counts a request rejected by the per-IP limiter
func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
	m.promRateLimited.Inc()
}

// RecordOperation counts a successful engine call
func (m *Metrics) RecordOperation(operation, rankMode string) {
	m.OperationsMutex.Lock()
	m.Operations[operation]++
	m.OperationsMutex.Unlock()
	m.promOperations.WithLabelValues(operation, rankMode).Inc()
}

// RecordCompositeScore adds a computed score to the distribution
func (m *Metrics) RecordCompositeScore(score float64) {
	m.promCompositeScore.Observe(score)
}

// RecordValidationFailure counts a rejected input by its error kind
func (m *Metrics) RecordValidationFailure(kind string) {
	if kind == "" {
		kind = "other"
	}
	m.ValidationFailuresMutex.Lock()
	m.ValidationFailures[kind]++
	m.ValidationFailuresMutex.Unlock()
	m.promValidation.WithLabelValues(kind).Inc()
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	// keep the last 1000 samples for percentiles
	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// ObserveHTTP mirrors one finished request into Prometheus
func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.promRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.promDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// PrometheusHandler exposes the registry in the Prometheus text format
func (m *Metrics) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

func copyCounts(mu *sync.RWMutex, src map[string]int64) map[string]int64 {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	totalCacheRequests := cacheHits + cacheMisses
	if totalCacheRequests > 0 {
		cacheHitRate = float64(cacheHits) / float64(totalCacheRequests) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     errorRate,
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": cacheHitRate,
		"rate_limit_ip_blocks":   atomic.LoadInt64(&m.RateLimitIPBlocks),
		"avg_response_time_ms":   float64(avgResponseTime) / 1000000,
		"start_time":             m.StartTime.Format(time.RFC3339),

		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),

		"operations":          copyCounts(&m.OperationsMutex, m.Operations),
		"validation_failures": copyCounts(&m.ValidationFailuresMutex, m.ValidationFailures),
	}
}

// Ensure Metrics implements cache.Metrics interface
var _ interface {
	IncrementCacheHit()
	IncrementCacheMiss()
} = (*Metrics)(nil)

