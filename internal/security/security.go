package security

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/ZanzyTHEbar/public-interest-o-meter/internal/errors"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	MaxBodyBytes      int64         `json:"max_body_bytes"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	LimiterIdleTTL    time.Duration `json:"limiter_idle_ttl"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxRequestsPerMin: 60,
		MaxBodyBytes:      64 * 1024,
		RequestTimeout:    10 * time.Second,
		LimiterIdleTTL:    time.Hour,
	}
}

// RateLimitMetrics is told about every rejected request.
type RateLimitMetrics interface {
	IncrementRateLimitIPBlock()
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SecurityMiddleware provides per-IP rate limiting and request hygiene
type SecurityMiddleware struct {
	config  SecurityConfig
	metrics RateLimitMetrics

	mu         sync.Mutex
	ipLimiters map[string]*ipLimiter

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSecurityMiddleware creates a new security middleware instance. metrics
// may be nil.
func NewSecurityMiddleware(config SecurityConfig, metrics RateLimitMetrics) *SecurityMiddleware {
	return &SecurityMiddleware{
		config:     config,
		metrics:    metrics,
		ipLimiters: make(map[string]*ipLimiter),
		stop:       make(chan struct{}),
	}
}

// limits returns the refill rate and burst for one client.
func (sm *SecurityMiddleware) limits() (rate.Limit, int) {
	rps := rate.Limit(float64(sm.config.MaxRequestsPerMin) / 60.0)
	// Allow burst of up to half the requests per minute for initial allowance
	burst := sm.config.MaxRequestsPerMin / 2
	if burst < 5 {
		burst = 5
	}
	return rps, burst
}

func (sm *SecurityMiddleware) limiterFor(ip string, now time.Time) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, exists := sm.ipLimiters[ip]
	if !exists {
		rps, burst := sm.limits()
		entry = &ipLimiter{limiter: rate.NewLimiter(rps, burst)}
		sm.ipLimiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// RateLimitByIP implements per-IP rate limiting
func (sm *SecurityMiddleware) RateLimitByIP(c *gin.Context) {
	if sm.config.MaxRequestsPerMin <= 0 {
		c.Next()
		return
	}

	limiter := sm.limiterFor(c.ClientIP(), time.Now())
	if !limiter.Allow() {
		if sm.metrics != nil {
			sm.metrics.IncrementRateLimitIPBlock()
		}
		retryAfter := strconv.Itoa(sm.retryAfterSeconds())
		c.Header("Retry-After", retryAfter)
		apperrors.Respond(c, apperrors.NewRateLimitError(retryAfter))
		return
	}

	c.Next()
}

// retryAfterSeconds is the time for one token to refill.
func (sm *SecurityMiddleware) retryAfterSeconds() int {
	n := sm.config.MaxRequestsPerMin
	return (60 + n - 1) / n
}

// TrackedClients reports how many client limiters are held.
func (sm *SecurityMiddleware) TrackedClients() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.ipLimiters)
}

// BodyLimit caps request bodies at MaxBodyBytes. Reads past the cap fail with
// *http.MaxBytesError, which the error handler renders as 413.
func (sm *SecurityMiddleware) BodyLimit(c *gin.Context) {
	if sm.config.MaxBodyBytes > 0 && c.Request.Body != nil {
		if c.Request.ContentLength > sm.config.MaxBodyBytes {
			apperrors.Respond(c, apperrors.NewPayloadTooLargeError(sm.config.MaxBodyBytes))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	}
	c.Next()
}

// ValidateContentType requires JSON on requests that carry a body
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		c.Next()
		return
	}

	contentType := c.GetHeader("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, "application/json") {
		apperrors.Respond(c, apperrors.NewUnsupportedMediaTypeError(contentType))
		return
	}

	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	if sm.config.RequestTimeout <= 0 {
		c.Next()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)

	// Set timeout header for client
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// Cleanup evicts idle client limiters until Close is called
func (sm *SecurityMiddleware) Cleanup() {
	every := sm.config.LimiterIdleTTL
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-sm.stop:
				return
			case now := <-ticker.C:
				sm.cleanupOldLimiters(now)
			}
		}
	}()
}

// cleanupOldLimiters removes rate limiters for IPs that haven't been seen recently
func (sm *SecurityMiddleware) cleanupOldLimiters(now time.Time) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for ip, entry := range sm.ipLimiters {
		if now.Sub(entry.lastSeen) > sm.config.LimiterIdleTTL {
			delete(sm.ipLimiters, ip)
			removed++
		}
	}
	return removed
}

// Close stops the cleanup goroutine
func (sm *SecurityMiddleware) Close() {
	sm.stopOnce.Do(func() { close(sm.stop) })
}
