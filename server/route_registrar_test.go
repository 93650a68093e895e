package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(body string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, body)
	}
}

func TestRouteGroupAddNormalizesPaths(t *testing.T) {
	e := echo.New()
	rg := newRouteGroup(e.Group("/api"), "/api", newRouteTable())

	rg.Add(http.MethodGet, "/users", okHandler("users"))
	rg.Add(http.MethodGet, "orders", okHandler("orders"))
	rg.Add(http.MethodGet, "/", okHandler("root"))

	for path, want := range map[string]string{
		"/api/users":  "users",
		"/api/orders": "orders",
		"/api":        "root",
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}
}

func TestRouteGroupRootPrefix(t *testing.T) {
	e := echo.New()
	rg := newRouteGroup(e.Group(""), "", newRouteTable())

	rg.Add(http.MethodGet, "/", okHandler("index"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index", rec.Body.String())
}

func TestRouteGroupGroupCreatesNestedRegistrar(t *testing.T) {
	e := echo.New()
	table := newRouteTable()
	parent := newRouteGroup(e.Group("/api"), "/api", table)

	child := parent.Group("/v1/")
	childGroup, ok := child.(*routeGroup)
	require.True(t, ok)
	assert.Equal(t, "/api/v1", childGroup.prefix)

	child.Add(http.MethodGet, "/widgets", okHandler("widgets"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/widgets", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "widgets", rec.Body.String())
	assert.Equal(t, []RouteInfo{
		{Method: http.MethodGet, Path: "/api/v1/widgets"},
		{Method: http.MethodHead, Path: "/api/v1/widgets"},
	}, table.Routes())
}

func TestRouteGroupFullPath(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "/", "/"},
		{"", "", "/"},
		{"", "/register", "/register"},
		{"/api", "/", "/api"},
		{"/api", "register", "/api/register"},
		{"/api", "/register", "/api/register"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.path, func(t *testing.T) {
			rg := &routeGroup{prefix: tt.prefix}
			assert.Equal(t, tt.want, rg.FullPath(tt.path))
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"/":       "",
		"api":     "/api",
		"/api/":   "/api",
		"/api///": "/api",
		"api/v1":  "/api/v1",
	}

	for input, want := range tests {
		assert.Equal(t, want, normalizePrefix(input), input)
	}
}

func TestRouteTableDetectsConflicts(t *testing.T) {
	e := echo.New()
	table := newRouteTable()
	root := newRouteGroup(e.Group(""), "", table)
	api := newRouteGroup(e.Group("/api"), "/api", table)

	require.NotNil(t, api.Add(http.MethodGet, "/register", okHandler("first")))
	require.NoError(t, table.Err())

	// same full path through a different registrar
	assert.Nil(t, root.Add(http.MethodGet, "/api/register", okHandler("second")))
	// lower-case method still conflicts
	assert.Nil(t, api.Add("get", "register", okHandler("third")))

	err := table.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRouteConflict)
	assert.Contains(t, err.Error(), "GET /api/register")

	// the first registration keeps serving
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/register", http.NoBody))
	assert.Equal(t, "first", rec.Body.String())
	assert.Len(t, table.Routes(), 2)
}

func TestRouteTableSamePathDifferentMethods(t *testing.T) {
	e := echo.New()
	table := newRouteTable()
	rg := newRouteGroup(e.Group(""), "", table)

	rg.Add(http.MethodPost, "/", okHandler("post"))
	rg.Add(http.MethodGet, "/", okHandler("get"))

	require.NoError(t, table.Err())
	assert.Equal(t, []RouteInfo{
		{Method: http.MethodGet, Path: "/"},
		{Method: http.MethodHead, Path: "/"},
		{Method: http.MethodPost, Path: "/"},
	}, table.Routes())
}

func TestRouteGroupGetAlsoAnswersHead(t *testing.T) {
	e := echo.New()
	rg := newRouteGroup(e.Group(""), "", newRouteTable())

	rg.Add(http.MethodGet, "/", func(c echo.Context) error {
		c.Response().Header().Set("X-Page", "index")
		return c.String(http.StatusOK, "index")
	})
	rg.Add(http.MethodGet, "/missing", func(echo.Context) error {
		return echo.ErrNotFound
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index", rec.Header().Get("X-Page"))
	assert.Empty(t, rec.Body.String())

	// error responses stay bodiless too
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/missing", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())

	// GET is unaffected
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, "index", rec.Body.String())
}

func TestRouteGroupExplicitHeadWins(t *testing.T) {
	e := echo.New()
	table := newRouteTable()
	rg := newRouteGroup(e.Group(""), "", table)

	require.NotNil(t, rg.Add(http.MethodHead, "/", func(c echo.Context) error {
		return c.NoContent(http.StatusAccepted)
	}))
	require.NotNil(t, rg.Add(http.MethodGet, "/", okHandler("get")))
	require.NoError(t, table.Err())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", http.NoBody))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// an explicit HEAD after the implicit one is a conflict
	assert.Nil(t, rg.Add(http.MethodHead, "/", okHandler("late")))
	assert.ErrorIs(t, table.Err(), ErrRouteConflict)
}
