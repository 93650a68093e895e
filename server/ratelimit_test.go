package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const (
	testIP = "192.168.1.100"
)

func sendFrom(e *echo.Echo, ip, path string) int {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.Header.Set(HeaderXRealIP, ip)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name           string
		requestsPerSec int
		burst          int
		requestCount   int
		expectAllowed  int
		expectBlocked  int
		sleepBetween   time.Duration
	}{
		{
			name:           "requests_within_limit",
			requestsPerSec: 10,
			requestCount:   5,
			expectAllowed:  5,
		},
		{
			name:           "requests_exceed_default_burst",
			requestsPerSec: 2,
			requestCount:   10,
			expectAllowed:  4,
			expectBlocked:  6,
		},
		{
			name:           "explicit_burst",
			requestsPerSec: 1,
			burst:          3,
			requestCount:   5,
			expectAllowed:  3,
			expectBlocked:  2,
		},
		{
			name:           "requests_with_delay_allowed",
			requestsPerSec: 5,
			requestCount:   3,
			expectAllowed:  3,
			sleepBetween:   100 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(RateLimit(tt.requestsPerSec, tt.burst))
			e.GET("/test", okHandler("ok"))

			var allowed, blocked int
			for i := 0; i < tt.requestCount; i++ {
				switch sendFrom(e, testIP, "/test") {
				case http.StatusOK:
					allowed++
				case http.StatusTooManyRequests:
					blocked++
				default:
					t.Fatalf("unexpected status")
				}
				if tt.sleepBetween > 0 {
					time.Sleep(tt.sleepBetween)
				}
			}

			assert.Equal(t, tt.expectAllowed, allowed)
			assert.Equal(t, tt.expectBlocked, blocked)
		})
	}
}

func TestRateLimitDisabled(t *testing.T) {
	for _, limit := range []int{0, -1} {
		e := echo.New()
		e.Use(RateLimit(limit, 0))
		e.GET("/test", okHandler("ok"))

		for range 50 {
			assert.Equal(t, http.StatusOK, sendFrom(e, testIP, "/test"))
		}
	}
}

func TestRateLimitPerClient(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(1, 1))
	e.GET("/test", okHandler("ok"))

	assert.Equal(t, http.StatusOK, sendFrom(e, testIP, "/test"))
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(e, testIP, "/test"))
	assert.Equal(t, http.StatusOK, sendFrom(e, "10.0.0.1", "/test"))
}

func TestRateLimitDenialGoesThroughErrorHandler(t *testing.T) {
	cfg := minimalConfig()
	cfg.Rate.Limit = 1
	cfg.Rate.Burst = 1
	srv := New(cfg, &testLogger{}, Options{})
	var handled []int
	fallback := srv.Echo().HTTPErrorHandler
	srv.Echo().HTTPErrorHandler = func(err error, c echo.Context) {
		handled = append(handled, StatusOf(err))
		fallback(err, c)
	}
	srv.Group("").Add(http.MethodGet, "/", okHandler("ok"))

	assert.Equal(t, http.StatusOK, sendFrom(srv.Echo(), testIP, "/"))
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(srv.Echo(), testIP, "/"))
	assert.Equal(t, []int{http.StatusTooManyRequests}, handled)
}
