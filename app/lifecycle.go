package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaborage/servicedesk-portal/server"
)

// Run starts the HTTP server and blocks until a shutdown signal is received
// or the server stops on its own, then shuts the application down.
func (a *App) Run() error {
	quit := make(chan os.Signal, 1)
	a.signalHandler.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer a.signalHandler.Stop(quit)

	serverDone := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(serverDone)
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("Server stopped unexpectedly")
			return fmt.Errorf(serverErrorMsg, err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case sig := <-quit:
			a.logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		case <-serverDone:
		}

		timeout := a.cfg.Server.Timeout.Shutdown
		if timeout <= 0 {
			timeout = server.DefaultShutdownTimeout
		}
		ctx, cancel := a.timeoutProvider.WithTimeout(context.Background(), timeout)
		defer cancel()
		return a.Shutdown(ctx)
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the application with the given context:
// modules first, then the HTTP server, then tracing and the log files.
// Only the first call has an effect; later calls return its result.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		a.shutdownErr = a.shutdown(ctx)
	})
	return a.shutdownErr
}

func (a *App) shutdown(ctx context.Context) error {
	var errs []error
	start := time.Now()

	if err := a.registry.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("modules: %w", err))
		a.logger.Error().Err(err).Msg("Failed to shutdown modules")
	}

	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = append(errs, fmt.Errorf(serverErrorMsg, err))
		a.logger.Error().Err(err).Msg("Failed to shutdown server")
	}

	a.logger.Info().Dur("duration", time.Since(start)).Msg("Application shutdown complete")

	// the log files are the last closer, nothing may log after this loop
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
