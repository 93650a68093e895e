// Package modules defines the contract between the application and its route
// groups, and the registry that initializes, mounts and shuts them down.
package modules

import (
	"reflect"

	"github.com/gaborage/servicedesk-portal/config"
	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/server"
)

// Module defines the interface that all route groups must implement.
// It provides hooks for initialization, route registration, and cleanup.
type Module interface {
	Name() string
	Init(deps *Deps) error
	RegisterRoutes(r server.RouteRegistrar)
	Shutdown() error
}

// Deps contains the dependencies injected into each module.
type Deps struct {
	Logger logger.Logger
	Config *config.Config
}

// Describer is an optional interface that modules can implement to provide
// metadata, including the prefix their routes are mounted under.
type Describer interface {
	DescribeModule() Descriptor
}

// Descriptor captures module-level metadata.
type Descriptor struct {
	Name        string
	Description string
	// BasePath prefixes every route of the module. Empty mounts at the root.
	BasePath string
}

// Info contains a registered module and its metadata.
type Info struct {
	Module     Module
	Descriptor Descriptor
	Package    string
}

func describe(m Module) Info {
	info := Info{Module: m, Package: packageOf(m)}
	if d, ok := m.(Describer); ok {
		info.Descriptor = d.DescribeModule()
	}
	if info.Descriptor.Name == "" {
		info.Descriptor.Name = m.Name()
	}
	return info
}

// packageOf extracts the package path from a module instance.
func packageOf(m Module) string {
	t := reflect.TypeOf(m)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath()
}
