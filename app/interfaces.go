package app

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/servicedesk-portal/server"
)

// SignalHandler interface allows for injectable signal handling for testing
type SignalHandler interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// TimeoutProvider interface allows for injectable timeout creation for testing
type TimeoutProvider interface {
	WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc)
}

// ServerRunner abstracts the HTTP server to allow injecting test-friendly implementations
type ServerRunner interface {
	Start() error
	Shutdown(ctx context.Context) error
	Echo() *echo.Echo
	Group(prefix string) server.RouteRegistrar
	Routes() *server.RouteTable
}

// OSSignalHandler delivers process signals through os/signal.
type OSSignalHandler struct{}

// Notify implements SignalHandler.
func (OSSignalHandler) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

// Stop implements SignalHandler.
func (OSSignalHandler) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// StandardTimeoutProvider creates timeouts with context.WithTimeout.
type StandardTimeoutProvider struct{}

// WithTimeout implements TimeoutProvider.
func (StandardTimeoutProvider) WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
