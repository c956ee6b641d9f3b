package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stock-hold-service/internal/handler/httperr"
	"stock-hold-service/internal/handler/middleware"
	"stock-hold-service/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine() (*gin.Engine, *middleware.Logger) {
	gin.SetMode(gin.TestMode)
	logger := middleware.NewLogger(config.LogConfig{Level: "error", TimeZone: "UTC", TimeFormat: "15:04:05"})
	engine := gin.New()
	engine.Use(middleware.CustomRecovery(logger.GetSlogLogger()))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
	return engine, logger
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	engine, _ := newEngine()
	var seen string
	engine.GET("/ping", func(c *gin.Context) {
		seen = middleware.GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	t.Run("generated when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("propagated when supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "webhook-retry-7")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, "webhook-retry-7", seen)
		assert.Equal(t, "webhook-retry-7", rec.Header().Get("X-Request-ID"))
	})
}

func TestCustomRecovery(t *testing.T) {
	engine, _ := newEngine()
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestErrorHandler_PublicError(t *testing.T) {
	engine, _ := newEngine()
	engine.GET("/conflict", func(c *gin.Context) {
		httperr.AbortWithError(c, http.StatusConflict, errors.New("busy"), "Sweep already running", nil)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sweep already running")
}
