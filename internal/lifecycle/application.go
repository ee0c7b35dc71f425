// file: internal/lifecycle/application.go

// Package lifecycle runs an application until shutdown, rebuilding it from
// scratch on SIGHUP.
package lifecycle

import "context"

// Application is a long-running process component.
type Application interface {
	// Run blocks until ctx is cancelled or the application fails.
	// Normal shutdown returns nil.
	Run(ctx context.Context) error

	// Close releases everything the application started. It must be safe
	// to call more than once.
	Close() error
}

// Factory builds a fresh Application. It is called at startup and again on
// every reload, so it should re-read configuration.
type Factory func() (Application, error)
