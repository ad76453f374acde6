// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/term"
)

// SinkFactory creates a new Sink with the given options.
type SinkFactory func(opts Options) (Sink, error)

// RegistryEntry represents a registered sink backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	//   - 50: interactive outputs (terminal)
	//   - 10: image files
	//   - 0: discard
	Priority int

	// Factory creates sink instances.
	Factory SinkFactory

	// Available reports if the backend can be used on this system.
	Available func() bool
}

var globalRegistry = &Registry{}

// Registry manages registered sink backends.
//
//	func init() {
//	    surface.Register("vnc", 60, vncFactory, nil)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a backend to the global registry. If available is nil, the
// backend is assumed always available. Registering an existing name
// replaces the previous entry.
func Register(name string, priority int, factory SinkFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available backends sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// NewSink creates a sink using the best available backend.
func NewSink(opts Options) (Sink, error) {
	return globalRegistry.NewSink(opts)
}

// NewSinkByName creates a sink using a specific named backend.
func NewSinkByName(name string, opts Options) (Sink, error) {
	return globalRegistry.NewSinkByName(name, opts)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory SinkFactory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(false)
}

// Available returns names of all available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(true)
}

// Get returns a copy of the entry registered under name.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	entryCopy := *entry
	return &entryCopy, true
}

// NewSink creates a sink using the best available backend.
func (r *Registry) NewSink(opts Options) (Sink, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoBackendAvailable
	}
	var errs []error
	for _, name := range available {
		s, err := r.NewSinkByName(name, opts)
		if err == nil {
			return s, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return nil, errors.Join(errs...)
}

// NewSinkByName creates a sink using a specific backend.
func (r *Registry) NewSinkByName(name string, opts Options) (Sink, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return entry.Factory(opts)
}

// sortedNames returns backend names, highest priority first, ties by name.
// Caller must hold r.mu.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	var entries []*RegistryEntry
	for _, e := range r.entries {
		if !onlyAvailable || e.Available() {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b *RegistryEntry) int {
		return cmp.Or(cmp.Compare(b.Priority, a.Priority), strings.Compare(a.Name, b.Name))
	})
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// Errors.
var (
	// ErrNoBackendAvailable is returned when no sink backends are registered
	// or available on the current system.
	ErrNoBackendAvailable = errors.New("surface: no backend available")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surface: backend unavailable: " + e.Name
}

// haveTerminal reports whether stdout looks like an interactive terminal.
func haveTerminal() bool {
	if os.Getenv("TERM") == "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	Register("term", 50, func(Options) (Sink, error) {
		return NewTermSink(nil), nil
	}, haveTerminal)
	Register("image", 10, func(opts Options) (Sink, error) {
		return NewImageSink(opts.Path), nil
	}, nil)
	Register("discard", 0, func(Options) (Sink, error) {
		return &DiscardSink{}, nil
	}, nil)
}
