package service

import (
	"sync"
	"time"

	"slotshare/core/logger"

	"github.com/google/uuid"
)

// Registry keeps one Workspace per signed-in user for the life of the
// process, until the user signs out or the workspace sits idle too long.
type Registry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*registryEntry
	create  func(owner Owner) *Workspace
	now     func() time.Time
}

type registryEntry struct {
	workspace  *Workspace
	lastAccess time.Time
}

func NewRegistry(create func(owner Owner) *Workspace) *Registry {
	return &Registry{
		entries: make(map[uuid.UUID]*registryEntry),
		create:  create,
		now:     time.Now,
	}
}

// Get returns the owner's workspace, creating it on first use.
func (r *Registry) Get(owner Owner) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[owner.UserID]
	if !ok {
		e = &registryEntry{workspace: r.create(owner)}
		r.entries[owner.UserID] = e
		logger.Info("Registry:Get:WorkspaceCreated", "owner", owner.UserID, "client_zone", owner.Zone)
	}
	e.lastAccess = r.now()
	return e.workspace
}

func (r *Registry) Drop(ownerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, ownerID)
}

// EvictIdle drops workspaces not touched within maxIdle and returns how many
// were removed.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	evicted := 0
	for id, e := range r.entries {
		if e.lastAccess.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
