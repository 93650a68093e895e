package server

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/servicedesk-portal/logger"
	obtest "github.com/gaborage/servicedesk-portal/observability/testing"
)

func TestMiddlewareRequestIDIsUUID(t *testing.T) {
	srv := newTestServer(t, &testLogger{})
	srv.Group("").Add(http.MethodGet, "/", okHandler("ok"))

	rec := serve(srv.Echo(), http.MethodGet, "/")
	id := rec.Header().Get(echo.HeaderXRequestID)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "request id %q", id)
}

func TestMiddlewareSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, &testLogger{})
	srv.Group("").Add(http.MethodGet, "/", okHandler("ok"))

	rec := serve(srv.Echo(), http.MethodGet, "/")
	assert.Equal(t, "1; mode=block", rec.Header().Get(HeaderXXSSProtection))
	assert.Equal(t, "nosniff", rec.Header().Get(HeaderXContentTypeOptions))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get(HeaderXFrameOptions))
	assert.NotEmpty(t, rec.Header().Get(HeaderXResponseTime))
}

func TestAccessLogWritesOneDebugRecord(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("debug", logger.NewSink(logger.NewLineWriter(&buf), zerolog.DebugLevel))

	e := echo.New()
	e.Use(AccessLog(log))
	e.GET("/users/:id", okHandler("ok"))

	serve(e, http.MethodGet, "/users/7")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], " DEBUG: GET /users/7 200 ")
	assert.Contains(t, lines[0], "route=/users/:id")
	assert.Contains(t, lines[0], "status=200")
}

func TestAccessLogReportsErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("debug", logger.NewSink(logger.NewLineWriter(&buf), zerolog.DebugLevel))

	e := echo.New()
	e.Use(AccessLog(log))

	serve(e, http.MethodGet, "/missing")
	assert.Contains(t, buf.String(), "DEBUG: GET /missing 404")
}

func TestAccessLogInvisibleAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("debug", logger.NewSink(logger.NewLineWriter(&buf), zerolog.InfoLevel))

	e := echo.New()
	e.Use(AccessLog(log))
	e.GET("/", okHandler("ok"))

	serve(e, http.MethodGet, "/")
	assert.Empty(t, buf.String())
}

func TestMiddlewareTracingCreatesServerSpans(t *testing.T) {
	tp := obtest.NewTestTraceProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv := New(minimalConfig(), &testLogger{}, Options{TracerProvider: tp})
	srv.Group("/api").Add(http.MethodGet, "/register", okHandler("ok"))

	rec := serve(srv.Echo(), http.MethodGet, "/api/register")
	assert.Equal(t, http.StatusOK, rec.Code)

	spans := tp.Exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/register", spans[0].Name)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind)
	obtest.AssertSpanAttribute(t, &spans[0], "http.route", "/api/register")
}

func TestMiddlewareMetricsCountRequests(t *testing.T) {
	mp := obtest.NewTestMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	srv := newTestServerWith(t, Options{MeterProvider: mp})
	srv.Group("").Add(http.MethodGet, "/", okHandler("ok"))

	serve(srv.Echo(), http.MethodGet, "/")
	serve(srv.Echo(), http.MethodGet, "/")
	serve(srv.Echo(), http.MethodGet, "/missing")

	rm := mp.Collect(t)
	obtest.AssertCounterTotal(t, rm, metricRequestCount, 3)
	obtest.AssertHistogramCount(t, rm, metricRequestDuration, 3)

	m := obtest.FindMetric(rm, metricRequestCount)
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byRoute := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value("http.route")
		byRoute[route.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"/": 2, unmatchedRouteLabel: 1}, byRoute)
}

func TestMiddlewareTracingDisabledWithoutProvider(t *testing.T) {
	tp := obtest.NewTestTraceProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv := New(minimalConfig(), &testLogger{}, Options{})
	srv.Group("").Add(http.MethodGet, "/", okHandler("ok"))

	serve(srv.Echo(), http.MethodGet, "/")
	assert.Empty(t, tp.Exporter.GetSpans())
}
