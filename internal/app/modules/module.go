// Package modules contains domain-oriented dependency modules wired by the
// composition root.
//
// Import Path: soundstake.io/soundstake/internal/app/modules
package modules

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"soundstake.io/soundstake/internal/api/handlers"
)

// defaultHealthInterval is how often remote providers are probed.
const defaultHealthInterval = 30 * time.Second

// Module represents a domain-specific dependency unit in the composition root.
type Module interface {
	// Name returns a stable module identifier for logging/debugging.
	Name() string

	// ContributeServerDeps injects module-owned dependencies into the HTTP server deps.
	ContributeServerDeps(*handlers.ServerDeps)

	// RegisterWorkers registers module workers into a shared River worker registry.
	RegisterWorkers(*river.Workers)

	// Shutdown performs module-local graceful cleanup.
	Shutdown(context.Context) error
}
