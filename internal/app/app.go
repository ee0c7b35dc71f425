// file: internal/app/app.go

// Package app assembles the quote server from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"freight-rates/config"
	"freight-rates/internal/lifecycle"
	"freight-rates/internal/logger"
	"freight-rates/internal/server"
)

const metricsShutdownTimeout = 5 * time.Second

var _ lifecycle.Application = (*ServerApp)(nil)

// ServerApp is the rate-server process: the quote HTTP server plus its
// metrics listener.
type ServerApp struct {
	config *config.Config
	logger *logger.Logger
	base   *BaseApp
	server *server.Server
}

// NewServerApp builds every component from cfg.
func NewServerApp(cfg *config.Config) (*ServerApp, error) {
	base, err := NewAppBuilder(cfg).
		WithLogger().
		WithMetrics().
		WithProvider().
		Build()
	if err != nil {
		return nil, err
	}

	return &ServerApp{
		config: cfg,
		logger: base.Logger,
		base:   base,
		server: server.New(cfg.HTTP.Server, base.Quotes, base.Logger.With("component", "server"), base.Metrics),
	}, nil
}

// Run serves until ctx is cancelled. Signal handling belongs to
// lifecycle.RunWithReload.
func (a *ServerApp) Run(ctx context.Context) error {
	a.logger.Info("starting rate-server",
		"httpAddress", a.config.HTTP.Server.Address,
		"providerURL", a.config.Provider.BaseURL,
		"metricsEnabled", a.config.Metrics.Enabled)

	if err := a.server.Start(); err != nil {
		return fmt.Errorf("failed to start quote server: %w", err)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully...")
	case runErr = <-a.server.Errors():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.Server.ShutdownGracePeriod)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Error("failed to stop quote server", "error", err)
	}

	return runErr
}

// Close stops metrics and flushes the logger.
func (a *ServerApp) Close() error {
	a.logger.Info("closing application components")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	err := a.base.Shutdown(shutdownCtx)

	if syncErr := a.logger.Sync(); syncErr != nil {
		a.logger.Debug("logger sync completed", "error", syncErr)
	}
	return err
}
