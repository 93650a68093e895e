package modules

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/servicedesk-portal/config"
	"github.com/gaborage/servicedesk-portal/logger"
	"github.com/gaborage/servicedesk-portal/server"
)

const (
	testModule = "test-module"
)

type MockModule struct {
	mock.Mock
	name string
}

func (m *MockModule) Name() string {
	return m.name
}

func (m *MockModule) Init(deps *Deps) error {
	return m.Called(deps).Error(0)
}

func (m *MockModule) RegisterRoutes(r server.RouteRegistrar) {
	m.Called(r)
}

func (m *MockModule) Shutdown() error {
	return m.Called().Error(0)
}

// describedModule mounts a single GET route under its base path.
type describedModule struct {
	MockModule
	basePath string
}

func (m *describedModule) DescribeModule() Descriptor {
	return Descriptor{Name: "described", Description: "test module", BasePath: m.basePath}
}

func newDeps() *Deps {
	return &Deps{Logger: logger.New("debug"), Config: &config.Config{}}
}

func TestNewRegistry(t *testing.T) {
	deps := newDeps()
	registry := NewRegistry(deps)

	assert.Same(t, deps, registry.deps)
	assert.Equal(t, deps.Logger, registry.logger)
	assert.Empty(t, registry.Modules())
}

func TestRegistryRegisterSuccess(t *testing.T) {
	deps := newDeps()
	registry := NewRegistry(deps)

	module := &MockModule{name: testModule}
	module.On("Init", deps).Return(nil)

	require.NoError(t, registry.Register(module))

	infos := registry.Modules()
	require.Len(t, infos, 1)
	assert.Same(t, module, infos[0].Module)
	assert.Equal(t, testModule, infos[0].Descriptor.Name)
	assert.Empty(t, infos[0].Descriptor.BasePath)
	assert.Equal(t, "github.com/gaborage/servicedesk-portal/modules", infos[0].Package)
	module.AssertExpectations(t)
}

func TestRegistryRegisterInitError(t *testing.T) {
	deps := newDeps()
	registry := NewRegistry(deps)

	module := &MockModule{name: "failing-module"}
	expectedErr := errors.New("init failed")
	module.On("Init", deps).Return(expectedErr)

	err := registry.Register(module)
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "failing-module")
	assert.Empty(t, registry.Modules())
	module.AssertExpectations(t)
}

func TestRegistryRegisterRoutesUsesBasePath(t *testing.T) {
	deps := newDeps()
	registry := NewRegistry(deps)
	srv := server.New(&config.Config{}, deps.Logger, server.Options{})

	root := &MockModule{name: "root"}
	root.On("Init", deps).Return(nil)
	root.On("RegisterRoutes", mock.Anything).Run(func(args mock.Arguments) {
		r := args.Get(0).(server.RouteRegistrar)
		r.Add(http.MethodGet, "/", func(c echo.Context) error { return c.String(http.StatusOK, "root") })
	})

	api := &describedModule{MockModule: MockModule{name: "api"}, basePath: "/api"}
	api.On("Init", deps).Return(nil)
	api.On("RegisterRoutes", mock.Anything).Run(func(args mock.Arguments) {
		r := args.Get(0).(server.RouteRegistrar)
		assert.Equal(t, "/api/register", r.FullPath("/register"))
		r.Add(http.MethodGet, "/register", func(c echo.Context) error { return c.String(http.StatusOK, "api") })
	})

	require.NoError(t, registry.Register(root))
	require.NoError(t, registry.Register(api))
	registry.RegisterRoutes(srv)
	require.NoError(t, srv.Routes().Err())

	for path, want := range map[string]string{"/": "root", "/api/register": "api"} {
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		assert.Equal(t, want, rec.Body.String(), path)
	}

	assert.Equal(t, "described", registry.Modules()[1].Descriptor.Name)
	root.AssertExpectations(t)
	api.AssertExpectations(t)
}

func TestRegistryShutdownReverseOrderAndJoinsErrors(t *testing.T) {
	deps := newDeps()
	registry := NewRegistry(deps)

	var order []string
	first := &MockModule{name: "first"}
	first.On("Init", deps).Return(nil)
	first.On("Shutdown").Run(func(mock.Arguments) { order = append(order, "first") }).Return(errors.New("first failed"))

	second := &MockModule{name: "second"}
	second.On("Init", deps).Return(nil)
	second.On("Shutdown").Run(func(mock.Arguments) { order = append(order, "second") }).Return(nil)

	require.NoError(t, registry.Register(first))
	require.NoError(t, registry.Register(second))

	err := registry.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module first: first failed")
	assert.Equal(t, []string{"second", "first"}, order)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestRegistryShutdownEmpty(t *testing.T) {
	assert.NoError(t, NewRegistry(newDeps()).Shutdown())
}
