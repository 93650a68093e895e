package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/servicedesk-portal/logger"
)

// PageStatuses are the HTTP statuses answered with a rendered page.
var PageStatuses = []int{
	http.StatusBadRequest,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusMethodNotAllowed,
	http.StatusInternalServerError,
}

// ErrorPages maps HTTP statuses to page templates and serves as the echo
// HTTPErrorHandler. The triggering error only contributes its status code;
// its message never reaches the page.
type ErrorPages struct {
	pages    map[int]string
	log      logger.Logger
	fallback echo.HTTPErrorHandler
}

// NewErrorPages creates an empty registry. Errors whose status has no page,
// or whose page fails to render, are passed to fallback.
func NewErrorPages(log logger.Logger, fallback echo.HTTPErrorHandler) *ErrorPages {
	return &ErrorPages{
		pages:    make(map[int]string),
		log:      log,
		fallback: fallback,
	}
}

// Register sets the template rendered for status.
func (p *ErrorPages) Register(status int, template string) {
	p.pages[status] = template
}

// Statuses returns the registered statuses in ascending order.
func (p *ErrorPages) Statuses() []int {
	out := make([]int, 0, len(p.pages))
	for status := range p.pages {
		out = append(out, status)
	}
	sort.Ints(out)
	return out
}

// Handle renders the page registered for the error's status with that status code.
func (p *ErrorPages) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		p.log.Error().
			Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg(fmt.Sprintf("Exception on %s [%s]", c.Request().URL.Path, c.Request().Method))
	}

	name, ok := p.pages[status]
	if !ok {
		p.fallback(err, c)
		return
	}

	if renderErr := c.Render(status, name, map[string]any{"status": status}); renderErr != nil {
		p.log.Warn().
			Err(renderErr).
			Int("status", status).
			Msg("Error page unavailable, serving default body")
		p.fallback(err, c)
	}
}

// StatusOf returns the HTTP status carried by err, or 500 for any other error.
func StatusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
