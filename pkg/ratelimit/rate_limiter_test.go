package ratelimit

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"tally/pkg/logger"
)

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		path string
		want RateLimitType
	}{
		{"/api/account/user/login", RateLimitTypeAuth},
		{"/api/account/user/register", RateLimitTypeAuth},
		{"/api/account/user/refresh", RateLimitTypeAuth},
		{"/api/account/user/login/verify_code", RateLimitTypeVerifyCode},
		{"/api/account/user/register/verify_code", RateLimitTypeVerifyCode},
		{"/api/account/user/me", RateLimitTypeDefault},
		{"/api/account/category/get_all", RateLimitTypeDefault},
		{"/health", RateLimitTypeDefault},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, getRateLimitType(tt.path), "path %s", tt.path)
	}
}

func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = "10.0.0.9:4312"
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "203.0.113.7", getClientIP(c))
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = "10.0.0.9:4312"
	c.Request.Header.Set("X-Forwarded-For", "not-an-ip")

	assert.Equal(t, "10.0.0.9", getClientIP(c))
}

// stubLimiter answers every check with a canned result.
type stubLimiter struct {
	result *Result
}

func (s *stubLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	return s.result, nil
}

func TestMiddlewareRejectsAndLogsWhenOverBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var logBuffer bytes.Buffer
	previous := logger.GetDefault()
	logger.SetDefault(&logger.Logger{Logger: slog.New(slog.NewTextHandler(&logBuffer, nil))})
	defer logger.SetDefault(previous)

	engine := gin.New()
	engine.Use(Middleware(&stubLimiter{result: &Result{
		Allowed:   false,
		Limit:     10,
		Remaining: 0,
		ResetTime: 1756400000,
	}}))
	engine.POST("/api/account/user/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/account/user/login", nil)
	request.RemoteAddr = "203.0.113.7:9000"
	engine.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "请求过于频繁，请稍后再试")
	assert.Equal(t, "10", recorder.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", recorder.Header().Get("X-RateLimit-Remaining"))

	logged := logBuffer.String()
	assert.Contains(t, logged, "Rate Limit Exceeded")
	assert.Contains(t, logged, "203.0.113.7")
	assert.Contains(t, logged, "/api/account/user/login")
}

func TestMiddlewarePassesWhenUnderBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(Middleware(&stubLimiter{result: &Result{
		Allowed:   true,
		Limit:     10,
		Remaining: 9,
		ResetTime: 1756400000,
	}}))
	engine.GET("/api/account/user/me", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/account/user/me", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "9", recorder.Header().Get("X-RateLimit-Remaining"))
}

func TestIsWhitelisted(t *testing.T) {
	limiter := NewRateLimiter(nil, &Config{WhitelistedIPs: []string{"127.0.0.1", "10.1.2.3"}})

	assert.True(t, limiter.isWhitelisted("127.0.0.1"))
	assert.False(t, limiter.isWhitelisted("198.51.100.4"))
}
