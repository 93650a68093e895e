package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiming(t *testing.T) {
	e := echo.New()
	e.Use(Timing())
	e.GET("/slow", func(c echo.Context) error {
		time.Sleep(20 * time.Millisecond)
		return c.String(http.StatusOK, "ok")
	})

	rec := serve(e, http.MethodGet, "/slow")
	header := rec.Header().Get(HeaderXResponseTime)
	require.NotEmpty(t, header)

	d, err := time.ParseDuration(header)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 20*time.Millisecond)
}

func TestTimingOnErrorResponses(t *testing.T) {
	e := echo.New()
	e.Use(Timing())

	rec := serve(e, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderXResponseTime))
}
