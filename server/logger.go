package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/servicedesk-portal/logger"
)

// AccessLog returns a middleware that writes one DEBUG record per request.
// The record carries the final status, which for failed handlers is the
// status the error handler will render.
func AccessLog(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = StatusOf(err)
			}

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}

			log.Debug().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Str("route", route).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("client", c.RealIP()).
				Msgf("%s %s %d", c.Request().Method, c.Request().URL.Path, status)

			return err
		}
	}
}
