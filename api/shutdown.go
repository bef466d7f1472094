// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown unifies deterministic teardown of components that own
// background resources (worker goroutines, queued calls). Shutdown must
// settle or reject anything still in flight and release held resources.
type GracefulShutdown interface {
	// Shutdown performs an orderly stop of all internal activity and
	// releases resources. It returns an error on failure.
	Shutdown() error
}
