package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kcjengr/hazzy/internal/geometry"
	"github.com/kcjengr/hazzy/internal/layout"
	"github.com/kcjengr/hazzy/internal/screen"
)

// ParseWidgetID parses an instance id as printed by Snapshot.
func ParseWidgetID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w %q: %v", ErrInvalidWidgetID, s, err)
	}
	return id, nil
}

// AddScreen appends a screen. An existing name fails with
// screen.ErrDuplicateScreenName and leaves the layout unchanged.
func (s *Session) AddScreen(name, title string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if _, err := s.model.Screens.Add(name, title); err != nil {
		return err
	}
	s.dirty = true
	s.logger.Debug("screen added", "screen", name)
	return nil
}

// RemoveScreen deletes a screen with all of its widgets.
func (s *Session) RemoveScreen(name string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	removed, err := s.model.RemoveScreen(name)
	if err != nil {
		return err
	}
	for _, inst := range removed {
		s.closeWidgetLocked(inst.ID)
	}
	s.dirty = true
	s.logger.Debug("screen removed", "screen", name, "widgets", len(removed))
	return nil
}

// ReorderScreen moves a screen to index; index is clamped.
func (s *Session) ReorderScreen(name string, index int) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	scr, ok := s.model.Screens.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", screen.ErrScreenNotFound, name)
	}
	before := scr.Position()
	if err := s.model.Screens.Reorder(name, index); err != nil {
		return err
	}
	if scr.Position() != before {
		s.dirty = true
	}
	return nil
}

// RenameScreen changes a screen's title.
func (s *Session) RenameScreen(name, title string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if err := s.model.Screens.Rename(name, title); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// PlaceWidget adds an instance of pkg to a screen and builds its live
// widget. A nil rect places the widget at the origin with the package's
// default size.
func (s *Session) PlaceWidget(screenName, pkg string, r *geometry.Rect) (layout.WidgetSnapshot, error) {
	if err := s.lock(); err != nil {
		return layout.WidgetSnapshot{}, err
	}
	defer s.mu.Unlock()

	if _, ok := s.model.Screens.Get(screenName); !ok {
		return layout.WidgetSnapshot{}, fmt.Errorf("%w: %q", screen.ErrScreenNotFound, screenName)
	}
	entry, err := s.reg.Resolve(pkg)
	if err != nil {
		return layout.WidgetSnapshot{}, err
	}
	rect := geometry.Rect{Width: entry.DefaultSize.Width, Height: entry.DefaultSize.Height}
	if r != nil {
		rect = *r
	}
	inst, err := s.model.Place(screenName, entry.Package, rect)
	if err != nil {
		return layout.WidgetSnapshot{}, err
	}
	s.buildWidgetLocked(inst)
	s.dirty = true
	s.logger.Debug("widget placed", "screen", screenName, "package", pkg, "id", inst.ID)
	return widgetSnapshot(inst, rect), nil
}

// WidgetAt returns the id of the index-th widget of a screen in placement
// order.
func (s *Session) WidgetAt(screenName string, index int) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scr, ok := s.model.Screens.Get(screenName)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", screen.ErrScreenNotFound, screenName)
	}
	insts := scr.Instances()
	if index < 0 || index >= len(insts) {
		return uuid.Nil, fmt.Errorf("%w: screen %q has %d widgets, got index %d", ErrInvalidIndex, screenName, len(insts), index)
	}
	return insts[index].ID, nil
}

// SetWidgetGeometry replaces an instance's position and size.
func (s *Session) SetWidgetGeometry(id uuid.UUID, r geometry.Rect) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if err := s.model.SetGeometry(id, r); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// MoveWidget changes an instance's position, keeping its size.
func (s *Session) MoveWidget(id uuid.UUID, x, y int) error {
	return s.updateGeometry(id, func(r geometry.Rect) geometry.Rect { return r.Translate(x, y) })
}

// ResizeWidget changes an instance's size, keeping its position.
func (s *Session) ResizeWidget(id uuid.UUID, w, h int) error {
	return s.updateGeometry(id, func(r geometry.Rect) geometry.Rect { return r.Resize(w, h) })
}

func (s *Session) updateGeometry(id uuid.UUID, fn func(geometry.Rect) geometry.Rect) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	cur, ok := s.model.Geometry.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", screen.ErrInstanceNotFound, id)
	}
	if err := s.model.SetGeometry(id, fn(cur)); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// RemoveWidget deletes an instance and closes its live widget.
func (s *Session) RemoveWidget(id uuid.UUID) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	inst, err := s.model.RemoveInstance(id)
	if err != nil {
		return err
	}
	s.closeWidgetLocked(id)
	s.dirty = true
	s.logger.Debug("widget removed", "package", inst.Package, "id", id)
	return nil
}

// WindowUpdate changes selected window fields; nil fields are kept.
type WindowUpdate struct {
	Title      *string
	X          *int
	Y          *int
	Width      *int
	Height     *int
	Maximized  *bool
	Fullscreen *bool
}

// SetWindowState applies an update to the main window state. Sizes must be
// positive and the title must be storable in the layout file.
func (s *Session) SetWindowState(u WindowUpdate) (layout.WindowState, error) {
	if err := s.lock(); err != nil {
		return layout.WindowState{}, err
	}
	defer s.mu.Unlock()

	w := s.model.Window
	if u.Title != nil {
		w.Title = *u.Title
	}
	if u.X != nil {
		w.X = *u.X
	}
	if u.Y != nil {
		w.Y = *u.Y
	}
	if u.Width != nil {
		w.Width = *u.Width
	}
	if u.Height != nil {
		w.Height = *u.Height
	}
	if u.Maximized != nil {
		w.Maximized = *u.Maximized
	}
	if u.Fullscreen != nil {
		w.Fullscreen = *u.Fullscreen
	}
	if !screen.ValidText(w.Title) {
		return s.model.Window, fmt.Errorf("%w: title %q contains characters the layout file cannot hold", ErrInvalidWindow, w.Title)
	}
	if w.Width < 1 || w.Height < 1 {
		return s.model.Window, fmt.Errorf("%w: size must be positive, got %dx%d", ErrInvalidWindow, w.Width, w.Height)
	}
	if w != s.model.Window {
		s.model.Window = w
		s.dirty = true
	}
	return w, nil
}

func widgetSnapshot(inst screen.Instance, r geometry.Rect) layout.WidgetSnapshot {
	return layout.WidgetSnapshot{
		ID:      inst.ID.String(),
		Package: inst.Package,
		X:       r.X,
		Y:       r.Y,
		Width:   r.Width,
		Height:  r.Height,
	}
}
