// Package session hosts a loaded layout: the model, the live widget objects
// built for its instances, and the dirty state that drives saving.
//
// Every exported method is safe for concurrent use. A single mutex guards the
// model, the registry and the widget table.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kcjengr/hazzy/internal/layout"
	"github.com/kcjengr/hazzy/internal/registry"
	"github.com/kcjengr/hazzy/internal/screen"
	"github.com/kcjengr/hazzy/internal/status"
)

var (
	ErrClosed          = errors.New("session closed")
	ErrInvalidIndex    = errors.New("widget index out of range")
	ErrInvalidWindow   = errors.New("invalid window state")
	ErrInvalidWidgetID = errors.New("invalid widget id")
)

// Options configures a Session.
type Options struct {
	Store    *layout.Store
	Registry *registry.Registry
	Status   *status.Service
	Logger   *slog.Logger
}

// Session is an open layout.
type Session struct {
	store  *layout.Store
	reg    *registry.Registry
	status *status.Service
	logger *slog.Logger

	mu       sync.Mutex
	model    *layout.Model
	widgets  map[uuid.UUID]registry.Widget
	warnings []layout.Warning
	dirty    bool
	closed   bool
}

// Open loads the layout and builds a live widget for every instance. Load
// problems never fail Open; they are available from Warnings.
func Open(opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("session: layout store is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("session: widget registry is required")
	}
	if opts.Status == nil {
		opts.Status = status.NewService()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		store:   opts.Store,
		reg:     opts.Registry,
		status:  opts.Status,
		logger:  opts.Logger,
		widgets: make(map[uuid.UUID]registry.Widget),
	}
	res := s.store.Load()
	s.install(res)
	return s, nil
}

// install replaces the model and rebuilds live widgets. Callers hold mu or
// own s exclusively.
func (s *Session) install(res layout.LoadResult) {
	s.closeWidgetsLocked()
	s.model = res.Model
	s.warnings = res.Warnings
	s.dirty = false

	for _, scr := range s.model.Screens.List() {
		for _, inst := range scr.Instances() {
			s.buildWidgetLocked(inst)
		}
	}
}

func (s *Session) buildWidgetLocked(inst screen.Instance) {
	entry, err := s.reg.Resolve(inst.Package)
	if err != nil {
		s.logger.Warn("no widget for instance", "package", inst.Package, "id", inst.ID, "error", err)
		return
	}
	w, err := entry.New(registry.Deps{Status: s.status, Logger: s.logger})
	if err != nil {
		// The instance stays in the layout so it is not lost on save.
		s.logger.Warn("widget construction failed", "package", inst.Package, "id", inst.ID, "error", err)
		return
	}
	s.widgets[inst.ID] = w
}

func (s *Session) closeWidgetLocked(id uuid.UUID) {
	w, ok := s.widgets[id]
	if !ok {
		return
	}
	delete(s.widgets, id)
	if err := w.Close(); err != nil {
		s.logger.Warn("widget close failed", "package", w.Package(), "id", id, "error", err)
	}
}

func (s *Session) closeWidgetsLocked() {
	for id := range s.widgets {
		s.closeWidgetLocked(id)
	}
}

func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	return nil
}

// Close releases every live widget. The layout is not saved.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.closeWidgetsLocked()
	return nil
}

// Path is the layout file backing the session.
func (s *Session) Path() string {
	return s.store.Path()
}

// Warnings returns the problems recorded by the last load.
func (s *Session) Warnings() []layout.Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]layout.Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Snapshot copies the current layout.
func (s *Session) Snapshot() layout.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Snapshot()
}

// Widget returns the live widget of an instance, if one was built.
func (s *Session) Widget(id uuid.UUID) (registry.Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.widgets[id]
	return w, ok
}

// Packages lists the registered widget packages for a widget chooser.
func (s *Session) Packages() []registry.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reg.Scan(); err != nil {
		s.logger.Warn("widget scan failed", "error", err)
	}
	return s.reg.List()
}

// Save writes the layout. On failure the session stays dirty and the
// in-memory model is unchanged.
func (s *Session) Save() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if err := s.store.Save(s.model); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	s.dirty = false
	return nil
}

// SaveIfDirty saves only when there are unsaved changes and reports whether
// it wrote the file.
func (s *Session) SaveIfDirty() (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	if !s.dirty {
		return false, nil
	}
	if err := s.store.Save(s.model); err != nil {
		return false, fmt.Errorf("failed to save layout: %w", err)
	}
	s.dirty = false
	return true, nil
}

// ChangedOnDisk reports whether the layout file no longer holds what this
// session last loaded or saved.
func (s *Session) ChangedOnDisk() (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	return s.store.Changed()
}

// Reload discards the in-memory layout and loads the file again.
func (s *Session) Reload() ([]layout.Warning, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	s.install(s.store.Load())
	out := make([]layout.Warning, len(s.warnings))
	copy(out, s.warnings)
	return out, nil
}
