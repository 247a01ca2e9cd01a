// Package health tracks the components the readiness check depends on. For
// this service that is the user store.
package health

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/user-lookup-service/internal/ports"
)

var _ ports.HealthRegistry = (*Registry)(nil)

// Registry is a concurrency-safe [ports.HealthRegistry].
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register adds checker. Registering a second checker under the same name
// shadows the first in CheckAll results.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// CheckAll runs every check concurrently, so a readiness call takes as long as the
// slowest check rather than the sum. Results are keyed by name; nil means
// healthy.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := append([]ports.HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	// Failures are results, not group errors, so every check runs to the end.
	errs := make([]error, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			errs[i] = c.HealthCheck(ctx)
			return nil
		})
	}
	_ = g.Wait()

	// Merged in registration order so later registrations win.
	results := make(map[string]error, len(checkers))
	for i, c := range checkers {
		results[c.Name()] = errs[i]
	}
	return results
}
