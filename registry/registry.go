package registry

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateName is returned by Register when the name is already bound.
	ErrDuplicateName = errors.New("registry: name already registered")

	// ErrUnknownName is returned by Get when the name was never registered.
	ErrUnknownName = errors.New("registry: name is not defined")
)

// Registry maps names to values of type T (typically factory functions).
// The zero value is not usable; construct with New.
type Registry[T any] struct {
	entries map[string]T
}

// New returns an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]T)}
}

// Register binds name to v. Binding an already-registered name returns
// ErrDuplicateName and leaves the original binding untouched.
func (r *Registry[T]) Register(name string, v T) error {
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.entries[name] = v

	return nil
}

// Get returns the value bound to name, or ErrUnknownName.
func (r *Registry[T]) Get(name string) (T, error) {
	v, ok := r.entries[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}

	return v, nil
}

// Names returns all registered names in sorted order.
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
