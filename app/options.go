package app

import (
	"github.com/gaborage/servicedesk-portal/config"
	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/modules"
	"github.com/gaborage/servicedesk-portal/observability"
)

// Options contains optional dependencies for creating an App instance
type Options struct {
	// ConfigLoader replaces config.Load.
	ConfigLoader func() (*config.Config, error)
	// LogSinks are attached next to the file and console sinks.
	LogSinks []logger.Sink
	// Modules are registered after the built-in route groups.
	Modules []modules.Module

	SignalHandler        SignalHandler
	TimeoutProvider      TimeoutProvider
	Server               ServerRunner
	ObservabilityOptions []observability.Option
}
