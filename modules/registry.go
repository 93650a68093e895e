package modules

import (
	"errors"
	"fmt"

	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/server"
)

// Mounter hands out route registrars for a path prefix. *server.Server implements it.
type Mounter interface {
	Group(prefix string) server.RouteRegistrar
}

// Registry manages the registration and lifecycle of modules.
type Registry struct {
	modules []Info
	deps    *Deps
	logger  logger.Logger
}

// NewRegistry creates an empty registry that passes deps to every module.
func NewRegistry(deps *Deps) *Registry {
	return &Registry{
		modules: make([]Info, 0),
		deps:    deps,
		logger:  deps.Logger,
	}
}

// Register initializes module with the registry's dependencies and adds it.
// A module that fails to initialize is not added.
func (r *Registry) Register(module Module) error {
	info := describe(module)

	r.logger.Debug().
		Str("module", info.Descriptor.Name).
		Str("package", info.Package).
		Msg("Registering module")

	if err := module.Init(r.deps); err != nil {
		return fmt.Errorf("failed to initialize module %s: %w", info.Descriptor.Name, err)
	}

	r.modules = append(r.modules, info)
	return nil
}

// RegisterRoutes mounts every registered module under its base path.
func (r *Registry) RegisterRoutes(m Mounter) {
	for _, info := range r.modules {
		r.logger.Debug().
			Str("module", info.Descriptor.Name).
			Str("base_path", info.Descriptor.BasePath).
			Msg("Registering module routes")

		info.Module.RegisterRoutes(m.Group(info.Descriptor.BasePath))
	}
}

// Modules returns the registered modules in registration order.
func (r *Registry) Modules() []Info {
	out := make([]Info, len(r.modules))
	copy(out, r.modules)
	return out
}

// Shutdown shuts down modules in reverse registration order. Every module is
// asked to shut down even when an earlier one fails.
func (r *Registry) Shutdown() error {
	var errs []error
	for i := len(r.modules) - 1; i >= 0; i-- {
		module := r.modules[i].Module

		r.logger.Debug().
			Str("module", module.Name()).
			Msg("Shutting down module")

		if err := module.Shutdown(); err != nil {
			r.logger.Error().
				Err(err).
				Str("module", module.Name()).
				Msg("Failed to shutdown module")
			errs = append(errs, fmt.Errorf("module %s: %w", module.Name(), err))
		}
	}
	return errors.Join(errs...)
}
