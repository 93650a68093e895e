package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gaborage/servicedesk-portal/observability"
)

const (
	meterName             = "github.com/gaborage/servicedesk-portal/server"
	metricRequestCount    = "http.server.request.count"
	metricRequestDuration = "http.server.request.duration"
	unmatchedRouteLabel   = "unmatched"
)

// Metrics returns a middleware recording a request counter and a latency
// histogram per method, route and status.
func Metrics(mp metric.MeterProvider) (echo.MiddlewareFunc, error) {
	meter := mp.Meter(meterName)

	requests, err := observability.CreateCounter(meter, metricRequestCount,
		"Number of HTTP requests served", metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	duration, err := observability.CreateHistogram(meter, metricRequestDuration,
		"Duration of HTTP requests", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = StatusOf(err)
			}
			route := c.Path()
			if route == "" || status == http.StatusNotFound {
				route = unmatchedRouteLabel
			}

			attrs := metric.WithAttributes(
				attribute.String("http.request.method", c.Request().Method),
				attribute.String("http.route", route),
				attribute.String("http.response.status_code", strconv.Itoa(status)),
			)
			ctx := c.Request().Context()
			requests.Add(ctx, 1, attrs)
			duration.Record(ctx, time.Since(start).Seconds(), attrs)

			return err
		}
	}, nil
}
