package settings

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownComponent is returned by Service for a name nobody registered.
var ErrUnknownComponent = errors.New("settings: unknown component")

// ErrDuplicateComponent is returned when a component name is taken.
var ErrDuplicateComponent = errors.New("settings: component already registered")

// Component is a settings owner that exposes its values for introspection.
type Component interface {
	Query(name string) (any, error)
	Set(name string, value any) error
}

// Registrar accepts components for external introspection.
type Registrar interface {
	RegisterComponent(name string, c Component) error
	UnregisterComponent(name string)
}

// Service is an in-process Registrar that tools use to read and override
// settings by component and field name.
type Service struct {
	mu         sync.RWMutex
	components map[string]Component
}

// NewService returns an empty Service.
func NewService() *Service {
	return &Service{components: make(map[string]Component)}
}

// RegisterComponent adds c under name.
func (s *Service) RegisterComponent(name string, c Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.components[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}
	s.components[name] = c
	return nil
}

// UnregisterComponent removes name. Unknown names are ignored.
func (s *Service) UnregisterComponent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.components, name)
}

// Components returns the registered names, sorted.
func (s *Service) Components() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is registered.
func (s *Service) IsRegistered(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.components[name]
	return ok
}

func (s *Service) get(name string) (Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	return c, nil
}

// Query reads field from the named component.
func (s *Service) Query(component, field string) (any, error) {
	c, err := s.get(component)
	if err != nil {
		return nil, err
	}
	return c.Query(field)
}

// Set writes field on the named component.
func (s *Service) Set(component, field string, value any) error {
	c, err := s.get(component)
	if err != nil {
		return err
	}
	return c.Set(field, value)
}
