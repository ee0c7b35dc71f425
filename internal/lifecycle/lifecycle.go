// file: internal/lifecycle/lifecycle.go

package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freight-rates/internal/logger"
)

// RunWithReload runs the application built by createApp. SIGINT and SIGTERM
// shut it down; SIGHUP closes it and builds a new one. A factory error
// ends the process, including on reload.
func RunWithReload(createApp Factory, log *logger.Logger) error {
	shutdownSig := make(chan os.Signal, 1)
	reloadSig := make(chan os.Signal, 1)
	signal.Notify(shutdownSig, os.Interrupt, syscall.SIGTERM)
	signal.Notify(reloadSig, syscall.SIGHUP)
	defer signal.Stop(shutdownSig)
	defer signal.Stop(reloadSig)

	return run(createApp, log, shutdownSig, reloadSig)
}

func run(createApp Factory, log *logger.Logger, shutdownSig, reloadSig <-chan os.Signal) error {
	for generation := 0; ; generation++ {
		if generation > 0 {
			log.Info("initiating application reload", "reloadCount", generation)
		}

		startTime := time.Now()
		application, err := createApp()
		if err != nil {
			if generation > 0 {
				log.Error("failed to reload application", "reloadCount", generation, "error", err)
			}
			return fmt.Errorf("failed to create application: %w", err)
		}
		if generation > 0 {
			log.Info("application reload completed", "reloadCount", generation, "duration", time.Since(startTime))
		}

		reload, runErr := runOnce(application, log, shutdownSig, reloadSig)
		if !reload {
			log.Info("shutdown complete")
			return runErr
		}
	}
}

// runOnce runs a single application generation and reports whether the
// caller should build the next one.
func runOnce(application Application, log *logger.Logger, shutdownSig, reloadSig <-chan os.Signal) (bool, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run(ctx)
	}()

	var (
		reload bool
		runErr error
		exited bool
	)
	select {
	case sig := <-shutdownSig:
		log.Info("shutdown signal received", "signal", sig)
	case <-reloadSig:
		log.Info("SIGHUP received, rebuilding application")
		reload = true
	case runErr = <-errCh:
		exited = true
		if runErr != nil {
			log.Error("application stopped with error", "error", runErr)
		}
	}

	cancel()
	if !exited {
		if err := <-errCh; err != nil {
			log.Error("application run returned error during shutdown", "error", err)
		}
	}

	closeStart := time.Now()
	if err := application.Close(); err != nil {
		log.Error("error during application close", "error", err, "duration", time.Since(closeStart))
	} else {
		log.Info("application closed", "duration", time.Since(closeStart))
	}

	return reload, runErr
}
