// Package container is a small factory-based dependency container. Entries
// are registered by name before Finalize and resolved by name afterwards;
// named arguments let callers hand per-resolution values (such as a frame's
// navigation service) to a factory.
package container

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrFinalized     = errors.New("container: already finalized")
	ErrNotFinalized  = errors.New("container: not finalized")
	ErrNotRegistered = errors.New("container: not registered")
	ErrDuplicate     = errors.New("container: duplicate registration")
)

// Arg is a named value passed to a factory at resolution time.
type Arg struct {
	Name  string
	Value any
}

// Args is the set of named arguments a factory receives.
type Args []Arg

// Get returns the last argument with the given name.
func (a Args) Get(name string) (any, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Name == name {
			return a[i].Value, true
		}
	}
	return nil, false
}

// Factory builds a value. It may resolve its own dependencies from p.
type Factory func(p Provider, args Args) (any, error)

// Registry is the registration side of a container.
type Registry interface {
	Register(name string, factory Factory) error
	RegisterSingleton(name string, factory Factory) error
	RegisterInstance(name string, value any) error
}

// Provider is the resolution side of a container.
type Provider interface {
	Resolve(name string, args ...Arg) (any, error)
	IsRegistered(name string) bool
}

// Extension is a container that can be registered into, finalized, and
// resolved from.
type Extension interface {
	Registry
	Provider
	Finalize() error
	Finalized() bool
}

type entry struct {
	factory   Factory
	singleton bool
	once      sync.Once
	value     any
	err       error
}

// Container is the default Extension.
type Container struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	finalized bool
}

// New creates an empty container.
func New() *Container {
	return &Container{entries: make(map[string]*entry)}
}

func (c *Container) add(name string, e *entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		return fmt.Errorf("register %q: %w", name, ErrFinalized)
	}
	if _, exists := c.entries[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicate)
	}
	c.entries[name] = e
	return nil
}

// Register adds a transient entry: every Resolve calls the factory.
func (c *Container) Register(name string, factory Factory) error {
	return c.add(name, &entry{factory: factory})
}

// RegisterSingleton adds an entry whose factory runs once, on first Resolve.
// Arguments passed to later resolutions are ignored.
func (c *Container) RegisterSingleton(name string, factory Factory) error {
	return c.add(name, &entry{factory: factory, singleton: true})
}

// RegisterInstance adds a singleton that is already built.
func (c *Container) RegisterInstance(name string, value any) error {
	return c.RegisterSingleton(name, func(Provider, Args) (any, error) { return value, nil })
}

// Finalize closes registration. Resolve is only allowed afterwards.
func (c *Container) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		return ErrFinalized
	}
	c.finalized = true
	return nil
}

func (c *Container) Finalized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.finalized
}

func (c *Container) IsRegistered(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

func (c *Container) Resolve(name string, args ...Arg) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[name]
	finalized := c.finalized
	c.mu.RUnlock()

	if !finalized {
		return nil, fmt.Errorf("resolve %q: %w", name, ErrNotFinalized)
	}
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", name, ErrNotRegistered)
	}

	if !e.singleton {
		v, err := e.factory(c, Args(args))
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", name, err)
		}
		return v, nil
	}

	e.once.Do(func() {
		e.value, e.err = e.factory(c, Args(args))
	})
	if e.err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, e.err)
	}
	return e.value, nil
}

// Resolve resolves name from p and asserts the result to T.
func Resolve[T any](p Provider, name string, args ...Arg) (T, error) {
	var zero T
	v, err := p.Resolve(name, args...)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("resolve %q: got %T, want %T", name, v, zero)
	}
	return t, nil
}
