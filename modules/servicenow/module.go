// Package servicenow holds the service desk integration endpoints. Registration
// requests are accepted and confirmed but no notification is dispatched.
package servicenow

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/modules"
	"github.com/gaborage/servicedesk-portal/server"
	"github.com/gaborage/servicedesk-portal/web"
)

const (
	moduleName = "servicenow"
	basePath   = "/api"

	registerSubject = "Hello from the portal!"
)

// RegisterRequest carries the address a registration confirmation is meant for.
type RegisterRequest struct {
	Email string `query:"email" validate:"required,email"`
}

// Message is the notification a registration would send.
type Message struct {
	Subject    string
	Body       string
	Recipients []string
}

// NewRegistrationMessage builds the confirmation addressed to email.
func NewRegistrationMessage(email string) Message {
	return Message{
		Subject:    registerSubject,
		Body:       fmt.Sprintf("Hello %s, your registration with the service desk was received.", email),
		Recipients: []string{email},
	}
}

// Module mounts the integration endpoints under /api.
type Module struct {
	log logger.Logger
}

var (
	_ modules.Module    = (*Module)(nil)
	_ modules.Describer = (*Module)(nil)
)

// New returns an uninitialized integration module.
func New() *Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return moduleName
}

// Init keeps the application logger for the handlers.
func (m *Module) Init(deps *modules.Deps) error {
	m.log = deps.Logger
	return nil
}

// RegisterRoutes mounts GET /register.
func (m *Module) RegisterRoutes(r server.RouteRegistrar) {
	r.Add(http.MethodGet, "/register", m.register)
}

// Shutdown is a no-op; the module holds no resources.
func (m *Module) Shutdown() error {
	return nil
}

// DescribeModule implements modules.Describer.
func (m *Module) DescribeModule() modules.Descriptor {
	return modules.Descriptor{
		Name:        moduleName,
		Description: "Service desk integration stub",
		BasePath:    basePath,
	}
}

func (m *Module) register(c echo.Context) error {
	var req RegisterRequest
	// query only: a GET body is never read, whatever its framing
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	msg := NewRegistrationMessage(req.Email)
	m.log.Debug().
		Str("subject", msg.Subject).
		Int("recipients", len(msg.Recipients)).
		Msg("Registration message built, no dispatcher configured")

	return c.Render(http.StatusOK, web.PageRegister, map[string]any{"email": req.Email})
}
