// Package landing serves the portal's informational landing page.
package landing

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/modules"
	"github.com/gaborage/servicedesk-portal/server"
	"github.com/gaborage/servicedesk-portal/web"
)

const moduleName = "main"

// Module mounts the landing page at the site root.
type Module struct {
	log logger.Logger
}

var (
	_ modules.Module    = (*Module)(nil)
	_ modules.Describer = (*Module)(nil)
)

// New returns an uninitialized landing module.
func New() *Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return moduleName
}

// Init keeps the application logger for the page handlers.
func (m *Module) Init(deps *modules.Deps) error {
	m.log = deps.Logger
	return nil
}

// RegisterRoutes mounts GET /.
func (m *Module) RegisterRoutes(r server.RouteRegistrar) {
	r.Add(http.MethodGet, "/", m.index)
}

// Shutdown is a no-op; the module holds no resources.
func (m *Module) Shutdown() error {
	return nil
}

// DescribeModule implements modules.Describer.
func (m *Module) DescribeModule() modules.Descriptor {
	return modules.Descriptor{
		Name:        moduleName,
		Description: "Informational landing page",
	}
}

func (m *Module) index(c echo.Context) error {
	m.log.Info().Msg("Index page loading")
	return c.Render(http.StatusOK, web.PageIndex, nil)
}
