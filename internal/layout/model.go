// Package layout maps the in-memory layout model to and from the persisted
// XML layout document.
package layout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kcjengr/hazzy/internal/geometry"
	"github.com/kcjengr/hazzy/internal/screen"
)

// WindowState is the main window's geometry and mode flags.
type WindowState struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"w"`
	Height     int    `json:"h"`
	Maximized  bool   `json:"maximize"`
	Fullscreen bool   `json:"fullscreen"`
}

// Defaults are the documented fallbacks used when the layout file is absent,
// corrupt or missing properties.
type Defaults struct {
	ProductName string
	Window      WindowState
	ScreenName  string
	ScreenTitle string
}

// BuiltinDefaults returns the fallbacks used when nothing is configured.
func BuiltinDefaults() Defaults {
	return Defaults{
		ProductName: "Hazzy",
		Window: WindowState{
			Name:   "Window 1",
			Title:  "Main Window",
			X:      0,
			Y:      0,
			Width:  900,
			Height: 600,
		},
		ScreenName:  "main",
		ScreenTitle: "Main Screen",
	}
}

// Model is the whole layout: window state, screens and instance geometry.
// It is not safe for concurrent use.
type Model struct {
	Window   WindowState
	Screens  *screen.Collection
	Geometry *geometry.Store
}

// NewModel creates a model with no screens.
func NewModel(win WindowState) *Model {
	return &Model{
		Window:   win,
		Screens:  screen.NewCollection(),
		Geometry: geometry.NewStore(),
	}
}

// DefaultModel is the model used when there is no usable layout file:
// default window state and a single empty default screen.
func DefaultModel(d Defaults) *Model {
	m := NewModel(d.Window)
	if _, err := m.Screens.Add(d.ScreenName, d.ScreenTitle); err != nil {
		// Only an empty configured name can fail here.
		_, _ = m.Screens.Add("main", d.ScreenTitle)
	}
	return m
}

// Place adds an instance of pkg to a screen with the given geometry.
func (m *Model) Place(screenName, pkg string, r geometry.Rect) (screen.Instance, error) {
	s, ok := m.Screens.Get(screenName)
	if !ok {
		return screen.Instance{}, fmt.Errorf("%w: %q", screen.ErrScreenNotFound, screenName)
	}
	if err := r.Validate(); err != nil {
		return screen.Instance{}, err
	}
	inst := s.AddInstance(pkg)
	if err := m.Geometry.Set(inst.ID, r); err != nil {
		_, _ = s.RemoveInstance(inst.ID)
		return screen.Instance{}, err
	}
	return inst, nil
}

// SetGeometry moves and/or resizes an existing instance.
func (m *Model) SetGeometry(id uuid.UUID, r geometry.Rect) error {
	if _, _, ok := m.Screens.FindInstance(id); !ok {
		return fmt.Errorf("%w: %s", screen.ErrInstanceNotFound, id)
	}
	return m.Geometry.Set(id, r)
}

// RemoveInstance deletes an instance and its geometry.
func (m *Model) RemoveInstance(id uuid.UUID) (screen.Instance, error) {
	s, _, ok := m.Screens.FindInstance(id)
	if !ok {
		return screen.Instance{}, fmt.Errorf("%w: %s", screen.ErrInstanceNotFound, id)
	}
	inst, err := s.RemoveInstance(id)
	if err != nil {
		return screen.Instance{}, err
	}
	m.Geometry.Delete(id)
	return inst, nil
}

// RemoveScreen deletes a screen together with its instances and their geometry.
func (m *Model) RemoveScreen(name string) ([]screen.Instance, error) {
	removed, err := m.Screens.Remove(name)
	if err != nil {
		return nil, err
	}
	for _, inst := range removed {
		m.Geometry.Delete(inst.ID)
	}
	return removed, nil
}

// Snapshot is a plain-value copy of a model, used for reporting and comparison.
type Snapshot struct {
	Window  WindowState      `json:"window"`
	Screens []ScreenSnapshot `json:"screens"`
}

type ScreenSnapshot struct {
	Name     string           `json:"name"`
	Title    string           `json:"title"`
	Position int              `json:"position"`
	Widgets  []WidgetSnapshot `json:"widgets"`
}

type WidgetSnapshot struct {
	ID      string `json:"id,omitempty"`
	Package string `json:"package"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"w"`
	Height  int    `json:"h"`
}

// Snapshot copies the persisted fields of the model plus instance ids.
func (m *Model) Snapshot() Snapshot {
	out := Snapshot{Window: m.Window, Screens: []ScreenSnapshot{}}
	for _, s := range m.Screens.List() {
		ss := ScreenSnapshot{
			Name:     s.Name,
			Title:    s.Title,
			Position: s.Position(),
			Widgets:  []WidgetSnapshot{},
		}
		for _, inst := range s.Instances() {
			r, _ := m.Geometry.Get(inst.ID)
			ss.Widgets = append(ss.Widgets, WidgetSnapshot{
				ID:      inst.ID.String(),
				Package: inst.Package,
				X:       r.X,
				Y:       r.Y,
				Width:   r.Width,
				Height:  r.Height,
			})
		}
		out.Screens = append(out.Screens, ss)
	}
	return out
}

// WithoutIDs drops the transient instance ids so snapshots of a saved and a
// reloaded model compare equal.
func (s Snapshot) WithoutIDs() Snapshot {
	out := Snapshot{Window: s.Window, Screens: make([]ScreenSnapshot, len(s.Screens))}
	for i, ss := range s.Screens {
		widgets := make([]WidgetSnapshot, len(ss.Widgets))
		for j, w := range ss.Widgets {
			w.ID = ""
			widgets[j] = w
		}
		ss.Widgets = widgets
		out.Screens[i] = ss
	}
	return out
}
