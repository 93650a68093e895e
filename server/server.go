// Package server provides the portal's HTTP server built on Echo.
// It owns middleware setup, the route table and the error page registry.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/servicedesk-portal/config"
	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/web"
)

// Options carries the optional collaborators of a Server.
type Options struct {
	// Renderer renders pages, including the error pages. Without one every
	// error falls back to echo's default body.
	Renderer echo.Renderer
	// TracerProvider enables request tracing when non-nil.
	TracerProvider trace.TracerProvider
	// MeterProvider enables request metrics when non-nil.
	MeterProvider metric.MeterProvider
}

// Server represents an HTTP server instance with Echo framework.
// It manages server lifecycle, configuration, and request handling.
type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger logger.Logger
	routes *RouteTable
	pages  *ErrorPages
}

// New creates a server with middlewares and error pages installed.
// No routes are registered; modules add theirs through Group.
func New(cfg *config.Config, log logger.Logger, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.App.Debug

	e.Validator = NewValidator()

	pages := NewErrorPages(log, e.DefaultHTTPErrorHandler)
	if opts.Renderer != nil {
		e.Renderer = opts.Renderer
		for _, status := range PageStatuses {
			pages.Register(status, web.ErrorPage(status))
		}
	}
	e.HTTPErrorHandler = pages.Handle

	SetupMiddlewares(e, log, cfg, opts)

	log.Debug().
		Str("profile", cfg.Profile).
		Interface("error_pages", pages.Statuses()).
		Msg("Server configured")

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: log,
		routes: newRouteTable(),
		pages:  pages,
	}
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Group returns a registrar mounting routes below prefix. An empty prefix
// mounts at the root.
func (s *Server) Group(prefix string) RouteRegistrar {
	normalized := normalizePrefix(prefix)
	return newRouteGroup(s.echo.Group(normalized), normalized, s.routes)
}

// Routes returns the table of routes registered through Group.
func (s *Server) Routes() *RouteTable {
	return s.routes
}

// ErrorPages returns the error page registry installed as the HTTP error handler.
func (s *Server) ErrorPages() *ErrorPages {
	return s.pages
}

// Address returns the host:port the server listens on.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
}

// Start starts the HTTP server and begins accepting requests.
// It blocks until the server is shut down or encounters an error.
func (s *Server) Start() error {
	addr := s.Address()

	s.logger.Info().
		Str("service", s.cfg.App.Name).
		Str("version", s.cfg.App.Version).
		Str("profile", s.cfg.Profile).
		Str("address", addr).
		Msg("Starting server")

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  orDefault(s.cfg.Server.Timeout.Read, DefaultReadTimeout),
		WriteTimeout: orDefault(s.cfg.Server.Timeout.Write, DefaultWriteTimeout),
		IdleTimeout:  orDefault(s.cfg.Server.Timeout.Idle, DefaultIdleTimeout),
	}

	return s.echo.StartServer(server)
}

// Shutdown gracefully shuts down the HTTP server with the given context.
// It waits for existing connections to finish within the context timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
