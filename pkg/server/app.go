package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	xhttp "StockSense/pkg/http"
	applogger "StockSense/pkg/logger"
)

// Closer is an infrastructure client released on shutdown.
type Closer struct {
	Name string
	io.Closer
}

// App encapsulates the application lifecycle.
type App struct {
	httpServer *xhttp.Server
	logger     *applogger.Logger
	closers    []Closer
}

// New creates an App. Closers are released in reverse order on shutdown.
func New(httpServer *xhttp.Server, l *applogger.Logger, closers ...Closer) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{httpServer: httpServer, logger: l, closers: closers}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.logger }

// Run starts the HTTP server and blocks until ctx is done or the process
// receives SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		_ = a.Close()
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// Close releases infrastructure clients without touching the HTTP server.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("client", c.Name), applogger.Error(err))
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
