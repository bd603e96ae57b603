package mcp

import "github.com/kcjengr/hazzy/internal/layout"

// ListScreensInput is the input for the list_screens tool.
type ListScreensInput struct{}

// ListScreensOutput is the output for the list_screens tool.
type ListScreensOutput struct {
	Path    string                  `json:"path"`
	Dirty   bool                    `json:"dirty"`
	Window  layout.WindowState      `json:"window"`
	Screens []layout.ScreenSnapshot `json:"screens"`
}

// AddScreenInput is the input for the add_screen tool.
type AddScreenInput struct {
	Name  string `json:"name" jsonschema:"required,Unique screen name"`
	Title string `json:"title,omitempty" jsonschema:"Display title (default: the name)"`
}

// ScreenOrderOutput reports the screen order after a change.
type ScreenOrderOutput struct {
	Screens []string `json:"screens"`
}

// RemoveScreenInput is the input for the remove_screen tool.
type RemoveScreenInput struct {
	Name string `json:"name" jsonschema:"required,Screen to remove together with all of its widgets"`
}

// ReorderScreenInput is the input for the reorder_screen tool.
type ReorderScreenInput struct {
	Name  string `json:"name" jsonschema:"required,Screen to move"`
	Index int    `json:"index" jsonschema:"New zero-based position; clamped to the valid range"`
}

// RenameScreenInput is the input for the rename_screen tool.
type RenameScreenInput struct {
	Name  string `json:"name" jsonschema:"required,Screen to retitle"`
	Title string `json:"title" jsonschema:"required,New display title"`
}

// ListWidgetPackagesInput is the input for the list_widget_packages tool.
type ListWidgetPackagesInput struct{}

// WidgetPackage describes one registered widget package.
type WidgetPackage struct {
	Package       string `json:"package"`
	DisplayName   string `json:"display_name"`
	Description   string `json:"description,omitempty"`
	DefaultWidth  int    `json:"default_width"`
	DefaultHeight int    `json:"default_height"`
}

// ListWidgetPackagesOutput is the output for the list_widget_packages tool.
type ListWidgetPackagesOutput struct {
	Packages []WidgetPackage `json:"packages"`
}

// PlaceWidgetInput is the input for the place_widget tool.
type PlaceWidgetInput struct {
	Screen  string `json:"screen" jsonschema:"required,Screen to place the widget on"`
	Package string `json:"package" jsonschema:"required,Widget package id from list_widget_packages"`
	X       *int   `json:"x,omitempty" jsonschema:"Left edge in pixels (default: 0)"`
	Y       *int   `json:"y,omitempty" jsonschema:"Top edge in pixels (default: 0)"`
	W       *int   `json:"w,omitempty" jsonschema:"Width in pixels (default: package default size)"`
	H       *int   `json:"h,omitempty" jsonschema:"Height in pixels (default: package default size)"`
}

// WidgetOutput reports a widget instance.
type WidgetOutput struct {
	Widget layout.WidgetSnapshot `json:"widget"`
}

// SetWidgetGeometryInput is the input for the set_widget_geometry tool.
type SetWidgetGeometryInput struct {
	ID string `json:"id" jsonschema:"required,Widget instance id from list_screens"`
	X  *int   `json:"x,omitempty" jsonschema:"New left edge; unchanged when omitted"`
	Y  *int   `json:"y,omitempty" jsonschema:"New top edge; unchanged when omitted"`
	W  *int   `json:"w,omitempty" jsonschema:"New width; unchanged when omitted"`
	H  *int   `json:"h,omitempty" jsonschema:"New height; unchanged when omitted"`
}

// RemoveWidgetInput is the input for the remove_widget tool.
type RemoveWidgetInput struct {
	ID string `json:"id" jsonschema:"required,Widget instance id from list_screens"`
}

// RemoveWidgetOutput is the output for the remove_widget tool.
type RemoveWidgetOutput struct {
	Removed bool `json:"removed"`
}

// SetWindowStateInput is the input for the set_window_state tool.
type SetWindowStateInput struct {
	Title      *string `json:"title,omitempty" jsonschema:"Window title"`
	X          *int    `json:"x,omitempty" jsonschema:"Window left edge"`
	Y          *int    `json:"y,omitempty" jsonschema:"Window top edge"`
	W          *int    `json:"w,omitempty" jsonschema:"Window width, must be positive"`
	H          *int    `json:"h,omitempty" jsonschema:"Window height, must be positive"`
	Maximize   *bool   `json:"maximize,omitempty" jsonschema:"Maximized flag"`
	Fullscreen *bool   `json:"fullscreen,omitempty" jsonschema:"Fullscreen flag"`
}

// WindowOutput reports the window state after a change.
type WindowOutput struct {
	Window layout.WindowState `json:"window"`
}

// SaveLayoutInput is the input for the save_layout tool.
type SaveLayoutInput struct {
	OnlyIfDirty bool `json:"only_if_dirty,omitempty" jsonschema:"Skip writing when there are no unsaved changes"`
}

// SaveLayoutOutput is the output for the save_layout tool.
type SaveLayoutOutput struct {
	Path  string `json:"path"`
	Saved bool   `json:"saved"`
}
