// Package gateway owns the project inventory and the address registry
// that links the lifecycle state machine to the data plane. The
// registry is the only mutable state shared between the per-project
// driver tasks (writers) and the proxy's request path (readers).
package gateway

import (
	"sync"

	"github.com/shuttle-hq/shuttle-sub002/models"
)

// Registry maps a project name to the network address of its currently
// ready container. Writers are state transitions; readers are proxy
// lookups, which must not be serialized behind state-machine activity,
// hence the read/write lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]models.TargetAddress
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]models.TargetAddress)}
}

// Publish makes the project's address visible to new proxy lookups.
func (r *Registry) Publish(project string, addr models.TargetAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[project] = addr
}

// Remove withdraws the project's address. Lookups that already captured
// the address keep their in-flight connections; only new routing stops.
func (r *Registry) Remove(project string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, project)
}

// Lookup resolves a project name to its serving address.
func (r *Registry) Lookup(project string) (models.TargetAddress, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addr, ok := r.entries[project]
	return addr, ok
}

// Len returns the number of currently routable projects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
