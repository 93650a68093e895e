package app

import (
	"errors"
	"fmt"

	"github.com/gaborage/servicedesk-portal/config"
	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/modules"
	"github.com/gaborage/servicedesk-portal/modules/landing"
	"github.com/gaborage/servicedesk-portal/modules/servicenow"
	"github.com/gaborage/servicedesk-portal/observability"
	"github.com/gaborage/servicedesk-portal/server"
	"github.com/gaborage/servicedesk-portal/web"
)

// Builder orchestrates the step-by-step construction of an App instance
// using a fluent interface pattern. Each step is responsible for a single
// aspect of initialization; the first failing step short-circuits the rest.
type Builder struct {
	// Configuration
	cfg  *config.Config
	opts *Options

	// Core components
	logger   *logger.ZeroLogger
	provider observability.Provider
	server   ServerRunner
	app      *App

	// closers acquired so far, released by Build when a step failed
	closers []namedCloser

	// State tracking
	err error
}

// NewAppBuilder creates a new app builder instance.
func NewAppBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the configuration and options for the app.
func (b *Builder) WithConfig(cfg *config.Config, opts *Options) *Builder {
	if b.err != nil {
		return b
	}

	if cfg == nil {
		b.err = fmt.Errorf("configuration required")
		return b
	}
	if opts == nil {
		opts = &Options{}
	}

	b.cfg = cfg
	b.opts = opts
	return b
}

// CreateLogger opens the rotating log file and builds the application logger.
// The console sink is only attached when log.console is set.
func (b *Builder) CreateLogger() *Builder {
	if b.err != nil {
		return b
	}

	if b.cfg == nil {
		b.err = fmt.Errorf("configuration required before creating logger")
		return b
	}

	file := b.cfg.Log.File
	fileSink, err := logger.NewFileSink(logger.FileOptions{
		Path:       file.Path,
		Level:      file.Level,
		MaxBytes:   file.MaxBytes,
		Backups:    file.Backups,
		Dated:      file.Mode == config.RotationDated,
		MaxAgeDays: file.MaxAgeDays,
		Compress:   file.Compress,
	})
	if err != nil {
		b.err = fmt.Errorf("failed to open log file %s: %w", file.Path, err)
		return b
	}

	sinks := []logger.Sink{fileSink}
	if b.cfg.Log.Console {
		sinks = append(sinks, logger.NewConsoleSink(b.cfg.Log.Level))
	}
	sinks = append(sinks, b.opts.LogSinks...)

	b.logger = logger.New(b.cfg.Log.Level, sinks...)
	b.track("log files", b.logger)

	b.logger.Info().
		Str("app", b.cfg.App.Name).
		Str("profile", b.cfg.Profile).
		Str("version", b.cfg.App.Version).
		Interface("debug", b.cfg.App.Debug).
		Msg("Starting application")

	return b
}

// CreateObservability creates the tracing and metrics provider.
func (b *Builder) CreateObservability() *Builder {
	if b.err != nil {
		return b
	}

	if b.logger == nil {
		b.err = fmt.Errorf("logger required before creating observability")
		return b
	}

	provider, err := observability.NewProvider(b.cfg, b.opts.ObservabilityOptions...)
	if err != nil {
		b.err = fmt.Errorf("failed to create observability provider: %w", err)
		return b
	}
	b.provider = provider
	b.track("observability provider", closerFunc(func() error {
		return observability.Shutdown(provider, observability.DefaultShutdownTimeout)
	}))

	if provider.Enabled() {
		b.logger.Debug().
			Str("exporter", b.cfg.Observability.Exporter).
			Msg("Observability enabled")
	}
	return b
}

// CreateServer builds the page renderer and the HTTP server, unless a server
// was injected through Options.
func (b *Builder) CreateServer() *Builder {
	if b.err != nil {
		return b
	}

	if b.provider == nil {
		b.err = fmt.Errorf("observability provider required before creating server")
		return b
	}

	if b.opts.Server != nil {
		b.server = b.opts.Server
		return b
	}

	renderer, err := web.NewRenderer(web.Options{
		Dir:    b.cfg.Templates.Dir,
		Reload: b.cfg.Templates.Reload,
		Globals: map[string]any{
			"app_name": b.cfg.App.Name,
			"debug":    b.cfg.App.Debug,
			"version":  b.cfg.App.Version,
		},
	})
	if err != nil {
		b.err = fmt.Errorf("failed to create renderer: %w", err)
		return b
	}

	opts := server.Options{Renderer: renderer}
	if b.provider.Enabled() {
		opts.TracerProvider = b.provider.TracerProvider()
		opts.MeterProvider = b.provider.MeterProvider()
	}
	b.server = server.New(b.cfg, b.logger, opts)
	return b
}

// CreateApp creates the core App instance.
func (b *Builder) CreateApp() *Builder {
	if b.err != nil {
		return b
	}

	if b.server == nil {
		b.err = fmt.Errorf("server required before creating app")
		return b
	}

	signalHandler := b.opts.SignalHandler
	if signalHandler == nil {
		signalHandler = OSSignalHandler{}
	}
	timeoutProvider := b.opts.TimeoutProvider
	if timeoutProvider == nil {
		timeoutProvider = StandardTimeoutProvider{}
	}

	b.app = &App{
		cfg:             b.cfg,
		server:          b.server,
		logger:          b.logger,
		provider:        b.provider,
		signalHandler:   signalHandler,
		timeoutProvider: timeoutProvider,
	}
	return b
}

// RegisterModules initializes the built-in route groups followed by
// Options.Modules, mounts their routes and verifies the route table.
func (b *Builder) RegisterModules() *Builder {
	if b.err != nil {
		return b
	}

	if b.app == nil {
		b.err = fmt.Errorf("app instance required before registering modules")
		return b
	}

	registry := modules.NewRegistry(&modules.Deps{Logger: b.logger, Config: b.cfg})
	b.app.registry = registry

	all := append([]modules.Module{landing.New(), servicenow.New()}, b.opts.Modules...)
	for _, m := range all {
		if err := registry.Register(m); err != nil {
			b.err = err
			return b
		}
	}

	registry.RegisterRoutes(b.server)
	if err := b.server.Routes().Err(); err != nil {
		b.err = fmt.Errorf("invalid route table: %w", err)
		return b
	}

	for _, r := range b.server.Routes().Routes() {
		b.logger.Debug().Str("method", r.Method).Str("path", r.Path).Msg("Route registered")
	}
	return b
}

// Build returns the completed App instance or the first error encountered.
// On error every resource acquired by earlier steps is released.
func (b *Builder) Build() (*App, error) {
	if b.err == nil && b.app == nil {
		b.err = fmt.Errorf("app building incomplete")
	}

	if b.err != nil {
		return nil, errors.Join(b.err, b.release())
	}

	b.app.closers = b.closers
	b.closers = nil
	return b.app, nil
}

// GetError returns any error encountered during the building process.
func (b *Builder) GetError() error {
	return b.err
}

func (b *Builder) track(name string, c interface{ Close() error }) {
	b.closers = append(b.closers, namedCloser{name: name, closer: c})
}

func (b *Builder) release() error {
	var errs []error
	if b.app != nil && b.app.registry != nil {
		if err := b.app.registry.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.closers[i].name, err))
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
