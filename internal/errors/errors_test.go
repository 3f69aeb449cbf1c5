package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/presets"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/scoring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestToAppError(t *testing.T) {
	scoringErr := &scoring.ValidationError{Kind: scoring.ErrInvalidWeight, Vector: "weights", Category: "Help", Value: -1}

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		status   int
		kind     string
	}{
		{"scoring validation", scoringErr, CategoryValidation, http.StatusUnprocessableEntity, "invalid_weight"},
		{"wrapped scoring validation", fmt.Errorf("preset x: %w", scoringErr), CategoryValidation, http.StatusUnprocessableEntity, "invalid_weight"},
		{"unknown preset", fmt.Errorf("%w: %q", presets.ErrUnknownPreset, "nope"), CategoryNotFound, http.StatusNotFound, ""},
		{"body too large", &http.MaxBytesError{Limit: 10}, CategoryBadRequest, http.StatusRequestEntityTooLarge, ""},
		{"bad json", &json.SyntaxError{Offset: 3}, CategoryBadRequest, http.StatusBadRequest, ""},
		{"deadline", context.DeadlineExceeded, CategoryTimeout, http.StatusGatewayTimeout, ""},
		{"anything else", errors.New("boom"), CategoryInternal, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.category, appErr.Category)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
			assert.Equal(t, tt.kind, appErr.Kind)
		})
	}

	assert.Nil(t, ToAppError(nil))

	existing := NewNotFoundError("preset", "x")
	assert.Same(t, existing, ToAppError(fmt.Errorf("wrapped: %w", existing)))
}

func TestNewScoringError(t *testing.T) {
	err := &scoring.ValidationError{Kind: scoring.ErrMissingCategory, Vector: "target", Category: "Inspire"}

	appErr := NewScoringError(err)
	assert.Equal(t, "missing_category", appErr.Kind)
	assert.Equal(t, map[string]string{"target.Inspire": `missing category "Inspire" in target`}, appErr.Fields)
	assert.Equal(t, `[VALIDATION_ERROR] missing category "Inspire" in target`, appErr.Error())
	assert.ErrorIs(t, appErr, scoring.ErrMissingCategory)
}

func TestErrorConstructors(t *testing.T) {
	rl := NewRateLimitError("60")
	assert.Equal(t, http.StatusTooManyRequests, rl.HTTPStatus)
	assert.Equal(t, "60", rl.Fields["retry_after"])
	assert.Equal(t, "[RATE_LIMIT_EXCEEDED] Rate limit exceeded", rl.Error())

	cfg := NewConfigurationError("presets file unreadable", errors.New("permission denied"))
	assert.Equal(t, CategoryConfiguration, cfg.Category)
	assert.EqualError(t, errors.Unwrap(cfg), "permission denied")

	internal := NewInternalError("broken", nil)
	assert.NotEmpty(t, internal.StackTrace, "test mode captures stack traces")

	nf := NewNotFoundError("preset", "nope")
	assert.Equal(t, `[NOT_FOUND] preset "nope" not found`, nf.Error())

	withMap := NewValidationErrorWithMap(map[string]string{"performance": "failed on required"})
	assert.Equal(t, http.StatusBadRequest, withMap.HTTPStatus)
	assert.Len(t, withMap.Fields, 1)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		c.Set(RequestIDKey, "req-1")
		_ = c.Error(&scoring.ValidationError{Kind: scoring.ErrUnknownCategory, Vector: "performance", Category: "Reach"})
	})
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CategoryValidation, body.Category)
	assert.Equal(t, "unknown_category", body.Kind)
	assert.Equal(t, "req-1", body.RequestID)
	assert.Contains(t, body.Fields, "performance.Reach")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRecoveryHandler(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"category":"internal"`))
	assert.Contains(t, w.Body.String(), `"stack_trace"`)
}

func TestRecoveryHandler_ReleaseModeHidesStack(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CategoryInternal, body.Category)
	assert.Empty(t, body.StackTrace)
	assert.NotContains(t, w.Body.String(), "goroutine")
}
