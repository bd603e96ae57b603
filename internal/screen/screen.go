// Package screen keeps the ordered, uniquely named screens of a layout and
// the widget instances each screen owns.
package screen

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrDuplicateScreenName = errors.New("duplicate screen name")
	ErrInvalidScreenName   = errors.New("invalid screen name")
	ErrScreenNotFound      = errors.New("screen not found")
	ErrInstanceNotFound    = errors.New("widget instance not found")
)

// Instance is one placed occurrence of a widget package on a screen.
// Its geometry lives in the geometry store under ID.
type Instance struct {
	ID      uuid.UUID
	Package string
}

// Screen is a named canvas of widget instances.
type Screen struct {
	Name  string
	Title string

	position  int
	instances []Instance
}

// Position is the screen's ordinal in its collection.
func (s *Screen) Position() int {
	return s.position
}

// Instances returns the screen's instances in placement order.
func (s *Screen) Instances() []Instance {
	out := make([]Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// Instance looks up an instance by id.
func (s *Screen) Instance(id uuid.UUID) (Instance, bool) {
	for _, inst := range s.instances {
		if inst.ID == id {
			return inst, true
		}
	}
	return Instance{}, false
}

// AddInstance appends a new instance of pkg with a fresh id.
func (s *Screen) AddInstance(pkg string) Instance {
	inst := Instance{ID: uuid.New(), Package: pkg}
	s.instances = append(s.instances, inst)
	return inst
}

// RemoveInstance removes an instance and returns it.
func (s *Screen) RemoveInstance(id uuid.UUID) (Instance, error) {
	for i, inst := range s.instances {
		if inst.ID == id {
			s.instances = append(s.instances[:i], s.instances[i+1:]...)
			return inst, nil
		}
	}
	return Instance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
}

// Collection is an ordered set of screens. Ordinals are always the dense
// permutation 0..N-1 of the current order.
type Collection struct {
	screens []*Screen
	byName  map[string]*Screen
}

func NewCollection() *Collection {
	return &Collection{byName: make(map[string]*Screen)}
}

// ValidText reports whether s survives a round trip through the layout
// file: valid UTF-8 made only of XML 1.0 characters.
func ValidText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}

// Add appends a new screen at the end of the order.
func (c *Collection) Add(name, title string) (*Screen, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidScreenName)
	}
	if !ValidText(name) || !ValidText(title) {
		return nil, fmt.Errorf("%w: %q contains characters the layout file cannot hold", ErrInvalidScreenName, name)
	}
	if _, ok := c.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateScreenName, name)
	}
	s := &Screen{Name: name, Title: title, position: len(c.screens)}
	c.screens = append(c.screens, s)
	c.byName[name] = s
	return s, nil
}

// Remove deletes a screen and returns the instances it owned.
func (c *Collection) Remove(name string) ([]Instance, error) {
	s, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrScreenNotFound, name)
	}
	idx := s.position
	c.screens = append(c.screens[:idx], c.screens[idx+1:]...)
	delete(c.byName, name)
	c.renumber()

	removed := s.instances
	s.instances = nil
	return removed, nil
}

// Reorder moves a screen to index, shifting the others while keeping their
// relative order. index is clamped to the valid range.
func (c *Collection) Reorder(name string, index int) error {
	s, ok := c.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrScreenNotFound, name)
	}
	index = max(0, min(index, len(c.screens)-1))
	from := s.position
	if from == index {
		return nil
	}

	c.screens = append(c.screens[:from], c.screens[from+1:]...)
	c.screens = append(c.screens[:index], append([]*Screen{s}, c.screens[index:]...)...)
	c.renumber()
	return nil
}

// Rename changes a screen's display title. The name is the identity and
// cannot change.
func (c *Collection) Rename(name, title string) error {
	s, ok := c.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrScreenNotFound, name)
	}
	if !ValidText(title) {
		return fmt.Errorf("%w: title %q contains characters the layout file cannot hold", ErrInvalidScreenName, title)
	}
	s.Title = title
	return nil
}

func (c *Collection) Get(name string) (*Screen, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// List returns the screens in ordinal order.
func (c *Collection) List() []*Screen {
	out := make([]*Screen, len(c.screens))
	copy(out, c.screens)
	return out
}

func (c *Collection) Len() int {
	return len(c.screens)
}

// FindInstance locates an instance on any screen.
func (c *Collection) FindInstance(id uuid.UUID) (*Screen, Instance, bool) {
	for _, s := range c.screens {
		if inst, ok := s.Instance(id); ok {
			return s, inst, true
		}
	}
	return nil, Instance{}, false
}

func (c *Collection) renumber() {
	for i, s := range c.screens {
		s.position = i
	}
}
