package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/gaborage/servicedesk-portal/config"
	"github.com/gaborage/servicedesk-portal/logger"
)

// SetupMiddlewares configures and registers the HTTP middlewares for the Echo server.
// Tracing and metrics are installed when opts carries the matching provider.
func SetupMiddlewares(e *echo.Echo, log logger.Logger, cfg *config.Config, opts Options) {
	// Request ID
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	if opts.TracerProvider != nil {
		e.Use(otelecho.Middleware(cfg.App.Name, otelecho.WithTracerProvider(opts.TracerProvider)))
	}

	if opts.MeterProvider != nil {
		if mw, err := Metrics(opts.MeterProvider); err != nil {
			log.Warn().Err(err).Msg("Request metrics unavailable")
		} else {
			e.Use(mw)
		}
	}

	e.Use(AccessLog(log))

	// Recovery
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error().
				Err(err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Bytes("stack", stack).
				Msg("Panic recovered")
			return err
		},
	}))

	// Security headers
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))

	e.Use(RateLimit(cfg.Rate.Limit, cfg.Rate.Burst))

	e.Use(Timing())
}
