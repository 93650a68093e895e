// Package app builds and runs the portal: configuration, logging, tracing,
// the HTTP server and its route groups.
package app

import (
	"fmt"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/servicedesk-portal/config"
	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/modules"
	"github.com/gaborage/servicedesk-portal/observability"
	"github.com/gaborage/servicedesk-portal/server"
)

const serverErrorMsg = "server: %w"

// App represents the main application instance.
// Every App owns its configuration, logger, sinks and HTTP server; nothing is
// shared between instances.
type App struct {
	cfg             *config.Config
	server          ServerRunner
	logger          logger.Logger
	registry        *modules.Registry
	provider        observability.Provider
	signalHandler   SignalHandler
	timeoutProvider TimeoutProvider

	// closers run in reverse order after the server stopped
	closers []namedCloser

	shutdownOnce sync.Once
	shutdownErr  error
}

// namedCloser holds a resource with its name for cleanup tracking
type namedCloser struct {
	name   string
	closer interface{ Close() error }
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// New creates a fully wired application for the profile named by CONFIG_TYPE.
// It returns no instance when any step fails.
func New() (*App, error) {
	return NewWithOptions(nil)
}

// NewWithOptions creates an application with injectable dependencies.
func NewWithOptions(opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	loader := opts.ConfigLoader
	if loader == nil {
		loader = config.Load
	}
	cfg, err := loader()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewAppBuilder().
		WithConfig(cfg, opts).
		CreateLogger().
		CreateObservability().
		CreateServer().
		CreateApp().
		RegisterModules().
		Build()
}

// Echo returns the instance's HTTP handler.
func (a *App) Echo() *echo.Echo {
	return a.server.Echo()
}

// Config returns the instance's configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger {
	return a.logger
}

// Routes returns the instance's route table.
func (a *App) Routes() *server.RouteTable {
	return a.server.Routes()
}

// Modules returns the registered route groups in registration order.
func (a *App) Modules() []modules.Info {
	return a.registry.Modules()
}
