package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/settings"
)

var ErrDuplicateFrame = errors.New("router: frame name already in use")

// Services tracks the navigation services of every open frame by name.
type Services struct {
	mu     sync.RWMutex
	byName map[string]*Service
}

func NewServices() *Services {
	return &Services{byName: make(map[string]*Service)}
}

func (s *Services) add(svc *Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[svc.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFrame, svc.Name())
	}
	s.byName[svc.Name()] = svc
	return nil
}

func (s *Services) Get(name string) (*Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.byName[name]
	return svc, ok
}

// All returns the services sorted by frame name.
func (s *Services) All() []*Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Service, 0, len(names))
	for _, name := range names {
		out = append(out, s.byName[name])
	}
	return out
}

func (s *Services) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// SaveAll persists every frame's history. It keeps going past a failed
// frame and returns all failures joined.
func (s *Services) SaveAll(ctx context.Context, store settings.Store) error {
	var errs []error
	for _, svc := range s.All() {
		if err := svc.SaveState(ctx, store); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove closes the named frame and forgets it.
func (s *Services) Remove(name string) {
	s.mu.Lock()
	svc, ok := s.byName[name]
	delete(s.byName, name)
	s.mu.Unlock()
	if ok {
		svc.Close()
	}
}

// CloseAll closes every frame.
func (s *Services) CloseAll() {
	s.mu.Lock()
	list := make([]*Service, 0, len(s.byName))
	for _, svc := range s.byName {
		list = append(list, svc)
	}
	s.byName = make(map[string]*Service)
	s.mu.Unlock()
	for _, svc := range list {
		svc.Close()
	}
}
