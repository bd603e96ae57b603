// Package registry resolves a widget package id to a factory and its
// display metadata.
//
// Factories are registered at process startup from compiled code. A one-time
// scan of the widgets directory may then refine display metadata from
// <dir>/<package>/widget.yaml descriptors. Package ids are never turned into
// code at runtime: a descriptor without a compiled factory is ignored.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kcjengr/hazzy/internal/status"
)

var (
	// ErrUnknownWidgetPackage is returned by Resolve for an unregistered package id.
	ErrUnknownWidgetPackage = errors.New("unknown widget package")
	// ErrDuplicatePackage is returned when a package id is registered twice.
	ErrDuplicatePackage = errors.New("widget package already registered")
)

// Size is a default widget size in pixels.
type Size struct {
	Width  int
	Height int
}

// Widget is a live widget object hosted on a screen.
type Widget interface {
	Package() string
	// Close releases status subscriptions and other resources.
	Close() error
}

// Deps are the collaborators handed to every factory.
type Deps struct {
	Status *status.Service
	Logger *slog.Logger
}

// Factory builds a live widget.
type Factory func(deps Deps) (Widget, error)

// Entry describes one registered widget package.
type Entry struct {
	Package     string
	DisplayName string
	Description string
	DefaultSize Size
	Factory     Factory
}

// New builds a widget through the entry's factory.
func (e Entry) New(deps Deps) (Widget, error) {
	if e.Factory == nil {
		return nil, fmt.Errorf("widget package %q has no factory", e.Package)
	}
	w, err := e.Factory(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build widget %q: %w", e.Package, err)
	}
	return w, nil
}

// Registry is the package id -> Entry table. It is not safe for concurrent
// use; the hosting session serializes access.
type Registry struct {
	entries map[string]Entry
	dir     string
	scanned bool
	logger  *slog.Logger
}

// New creates a registry. dir is the widgets directory scanned for
// descriptors; an empty dir disables scanning.
func New(dir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		entries: make(map[string]Entry),
		dir:     dir,
		logger:  logger,
	}
}

// Register adds an entry. Registered entries cannot be replaced.
func (r *Registry) Register(e Entry) error {
	e.Package = strings.TrimSpace(e.Package)
	if e.Package == "" {
		return fmt.Errorf("widget package id is required")
	}
	if e.Factory == nil {
		return fmt.Errorf("widget package %q: factory is required", e.Package)
	}
	if _, ok := r.entries[e.Package]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePackage, e.Package)
	}
	if e.DisplayName == "" {
		e.DisplayName = e.Package
	}
	r.entries[e.Package] = e
	return nil
}

// MustRegister is Register for static tables built at startup.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Resolve returns the entry for pkg. The widgets directory is scanned
// before the first resolution, so descriptor metadata is in place for every
// entry Resolve hands out.
func (r *Registry) Resolve(pkg string) (Entry, error) {
	if !r.scanned && r.dir != "" {
		if err := r.Scan(); err != nil {
			r.logger.Warn("widget scan failed", "dir", r.dir, "error", err)
		}
	}
	if e, ok := r.entries[pkg]; ok {
		return e, nil
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownWidgetPackage, pkg)
}

// List returns all entries sorted by display name, then package id.
func (r *Registry) List() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].DisplayName), strings.ToLower(out[j].DisplayName)
		if a != b {
			return a < b
		}
		return out[i].Package < out[j].Package
	})
	return out
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Scanned reports whether the widgets directory has been scanned.
func (r *Registry) Scanned() bool {
	return r.scanned
}
