package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

// ErrRouteConflict is reported when a (method, path) pair is registered twice.
var ErrRouteConflict = errors.New("route already registered")

// RouteRegistrar registers handlers below a path prefix.
type RouteRegistrar interface {
	// Add registers handler for method and path relative to the group prefix.
	// A conflicting registration is not added; it is recorded in the route
	// table and reported by RouteTable.Err.
	Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route
	Group(prefix string) RouteRegistrar
	FullPath(path string) string
}

// RouteInfo identifies a registered route.
type RouteInfo struct {
	Method string
	Path   string
}

// RouteTable records every registration made through the server's registrars.
// It is populated during startup and read-only afterwards.
type RouteTable struct {
	mu     sync.Mutex
	routes []RouteInfo
	seen   map[RouteInfo]struct{}
	errs   []error
}

func newRouteTable() *RouteTable {
	return &RouteTable{seen: make(map[RouteInfo]struct{})}
}

func (t *RouteTable) record(method, path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := RouteInfo{Method: strings.ToUpper(method), Path: path}
	if _, dup := t.seen[key]; dup {
		t.errs = append(t.errs, fmt.Errorf("%w: %s %s", ErrRouteConflict, key.Method, key.Path))
		return false
	}
	t.seen[key] = struct{}{}
	t.routes = append(t.routes, key)
	return true
}

// recordImplicit adds a derived route, silently skipping one already taken.
func (t *RouteTable) recordImplicit(method, path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := RouteInfo{Method: method, Path: path}
	if _, dup := t.seen[key]; dup {
		return false
	}
	t.seen[key] = struct{}{}
	t.routes = append(t.routes, key)
	return true
}

// Routes returns the registered routes sorted by path, then method.
func (t *RouteTable) Routes() []RouteInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]RouteInfo, len(t.routes))
	copy(out, t.routes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Err returns the conflicts recorded so far, or nil.
func (t *RouteTable) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return errors.Join(t.errs...)
}

type routeGroup struct {
	group  *echo.Group
	prefix string
	table  *RouteTable
}

func newRouteGroup(group *echo.Group, prefix string, table *RouteTable) RouteRegistrar {
	return &routeGroup{
		group:  group,
		prefix: normalizePrefix(prefix),
		table:  table,
	}
}

// Add registers the route. A GET route also answers HEAD with the same
// status and headers and an empty body, unless HEAD is already taken.
func (rg *routeGroup) Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route {
	full := rg.FullPath(path)
	if !rg.table.record(method, full) {
		return nil
	}
	route := rg.group.Add(method, rg.relativePath(path), handler, middleware...)

	if strings.EqualFold(method, http.MethodGet) && rg.table.recordImplicit(http.MethodHead, full) {
		headChain := append([]echo.MiddlewareFunc{discardBody}, middleware...)
		rg.group.Add(http.MethodHead, rg.relativePath(path), handler, headChain...)
	}
	return route
}

// discardBody keeps headers and status but drops every body byte, including
// those of an error page rendered for the request.
func discardBody(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Writer = headWriter{c.Response().Writer}
		return next(c)
	}
}

type headWriter struct {
	http.ResponseWriter
}

func (w headWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (w headWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (rg *routeGroup) Group(prefix string) RouteRegistrar {
	normalized := normalizePrefix(prefix)
	return &routeGroup{
		group:  rg.group.Group(normalized),
		prefix: rg.prefix + normalized,
		table:  rg.table,
	}
}

// FullPath returns the absolute path a relative path is served at.
func (rg *routeGroup) FullPath(path string) string {
	relative := rg.relativePath(path)
	if rg.prefix+relative == "" {
		return "/"
	}
	return rg.prefix + relative
}

// relativePath maps "/" to the group root so "/api" + "/" serves "/api".
func (rg *routeGroup) relativePath(path string) string {
	if path == "" || path == "/" {
		if rg.prefix == "" {
			return "/"
		}
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func normalizePrefix(prefix string) string {
	if prefix == "" || prefix == "/" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimRight(prefix, "/")
}
