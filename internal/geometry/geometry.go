// Package geometry holds the position and size of every placed widget instance.
package geometry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNegativeGeometry is returned when a rectangle has a negative coordinate or dimension.
var ErrNegativeGeometry = errors.New("geometry values must be non-negative")

// Rect is a widget rectangle in canvas pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Validate reports whether all values are non-negative.
func (r Rect) Validate() error {
	if r.X < 0 || r.Y < 0 || r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("%w: x=%d y=%d w=%d h=%d", ErrNegativeGeometry, r.X, r.Y, r.Width, r.Height)
	}
	return nil
}

// Clamp returns r with negative values replaced by zero.
func (r Rect) Clamp() Rect {
	return Rect{
		X:      max(r.X, 0),
		Y:      max(r.Y, 0),
		Width:  max(r.Width, 0),
		Height: max(r.Height, 0),
	}
}

// Translate returns r moved to (x, y), keeping its size.
func (r Rect) Translate(x, y int) Rect {
	r.X, r.Y = x, y
	return r
}

// Resize returns r with a new size, keeping its position.
func (r Rect) Resize(w, h int) Rect {
	r.Width, r.Height = w, h
	return r
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects reports whether the two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width && other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height && other.Y < r.Y+r.Height
}

// Store maps instance ids to rectangles. Off-canvas placement is allowed;
// keeping widgets visible is the UI's concern.
type Store struct {
	rects map[uuid.UUID]Rect
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rects: make(map[uuid.UUID]Rect)}
}

// Set records the geometry of an instance.
func (s *Store) Set(id uuid.UUID, r Rect) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.rects[id] = r
	return nil
}

// Get returns the geometry of an instance.
func (s *Store) Get(id uuid.UUID) (Rect, bool) {
	r, ok := s.rects[id]
	return r, ok
}

// Delete forgets an instance. Unknown ids are ignored.
func (s *Store) Delete(id uuid.UUID) {
	delete(s.rects, id)
}

func (s *Store) Len() int {
	return len(s.rects)
}
