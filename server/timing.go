package server

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Timing returns a middleware that reports handler duration in the
// X-Response-Time header. The header is only set while the response is
// still uncommitted.
func Timing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				c.Response().Header().Set(HeaderXResponseTime, time.Since(start).String())
			})
			return next(c)
		}
	}
}
