package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrRegistryFrozen  = errors.New("router: page registry is frozen")
	ErrDuplicatePage   = errors.New("router: page already registered")
	ErrInvalidPageName = errors.New("router: invalid page key")
)

// Registration is the construction metadata for one navigable page.
type Registration struct {
	Key       string // View identifier used in navigation paths
	ViewType  string // Host toolkit type name, used for reverse lookup
	ViewModel string // Container name of the page's view-model; empty for none
}

// Registry maps view identifiers to their Registration. It is populated
// during startup, frozen once the container is finalized, and read
// concurrently afterwards.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[string]Registration
	byType map[string]Registration
	frozen bool
}

// NewRegistry creates an empty page registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:  make(map[string]Registration),
		byType: make(map[string]Registration),
	}
}

// Register adds a page. viewType defaults to key when empty.
func (r *Registry) Register(key, viewType, viewModel string) error {
	if key == "" || strings.ContainsAny(key, "/?&") {
		return fmt.Errorf("%w: %q", ErrInvalidPageName, key)
	}
	if viewType == "" {
		viewType = key
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %q: %w", key, ErrRegistryFrozen)
	}
	if _, exists := r.byKey[key]; exists {
		return fmt.Errorf("register %q: %w", key, ErrDuplicatePage)
	}
	reg := Registration{Key: key, ViewType: viewType, ViewModel: viewModel}
	r.byKey[key] = reg
	r.byType[viewType] = reg
	return nil
}

// Lookup returns the registration for a view identifier.
func (r *Registry) Lookup(key string) (Registration, bool) {
	if r == nil {
		return Registration{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byKey[key]
	return reg, ok
}

// TryGetRegistration returns the registration for a host view type.
func (r *Registry) TryGetRegistration(viewType string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byType[viewType]
	return reg, ok
}

// Keys returns the registered view identifiers, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Freeze rejects further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
