// Package config loads hazzy's YAML configuration.
//
// Files are decoded strictly into pointer-field raw structs, merged over
// DefaultConfig and validated. Validation errors carry the file position of
// the offending key.
package config

import (
	"fmt"
	"strings"
)

// Config is the effective configuration.
type Config struct {
	// LayoutFile is the layout document path. Empty means the XDG default.
	LayoutFile string `yaml:"layout_file"`
	// WidgetsDir is scanned for widget descriptors. Empty means the XDG default.
	WidgetsDir  string `yaml:"widgets_dir"`
	ProductName string `yaml:"product_name"`
	LogLevel    string `yaml:"log_level"`

	Window   WindowConfig   `yaml:"window"`
	Screen   ScreenConfig   `yaml:"screen"`
	Dro      DroConfig      `yaml:"dro"`
	Autosave AutosaveConfig `yaml:"autosave"`
}

// WindowConfig holds the window size used when the layout has none.
type WindowConfig struct {
	DefaultWidth  int `yaml:"default_width"`
	DefaultHeight int `yaml:"default_height"`
}

// ScreenConfig names the screen created for an empty layout.
type ScreenConfig struct {
	DefaultName  string `yaml:"default_name"`
	DefaultTitle string `yaml:"default_title"`
}

// DroConfig controls the built-in DRO widgets.
type DroConfig struct {
	DecimalPlaces int    `yaml:"decimal_places"`
	Coordinates   string `yaml:"coordinates"`
}

// AutosaveConfig controls periodic saving in `hazzy run`. Zero disables it.
type AutosaveConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

const axisLetters = "xyzabcuvw"

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		ProductName: "Hazzy",
		LogLevel:    "info",
		Window: WindowConfig{
			DefaultWidth:  900,
			DefaultHeight: 600,
		},
		Screen: ScreenConfig{
			DefaultName:  "main",
			DefaultTitle: "Main Screen",
		},
		Dro: DroConfig{
			DecimalPlaces: 4,
			Coordinates:   "xyz",
		},
		Autosave: AutosaveConfig{
			IntervalSeconds: 30,
		},
	}
}

// Validate checks value ranges. Paths are resolved before validation.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProductName) == "" {
		return &ValidationError{Path: "product_name", Err: fmt.Errorf("product_name is required")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Window.DefaultWidth < 1 {
		return &ValidationError{Path: "window.default_width", Err: fmt.Errorf("default_width must be > 0")}
	}
	if c.Window.DefaultHeight < 1 {
		return &ValidationError{Path: "window.default_height", Err: fmt.Errorf("default_height must be > 0")}
	}
	if strings.TrimSpace(c.Screen.DefaultName) == "" {
		return &ValidationError{Path: "screen.default_name", Err: fmt.Errorf("default_name is required")}
	}
	if c.Dro.DecimalPlaces < 0 || c.Dro.DecimalPlaces > 9 {
		return &ValidationError{Path: "dro.decimal_places", Err: fmt.Errorf("decimal_places must be between 0 and 9")}
	}
	if c.Dro.Coordinates == "" {
		return &ValidationError{Path: "dro.coordinates", Err: fmt.Errorf("coordinates must not be empty")}
	}
	for _, r := range strings.ToLower(c.Dro.Coordinates) {
		if !strings.ContainsRune(axisLetters, r) {
			return &ValidationError{Path: "dro.coordinates", Err: fmt.Errorf("coordinates may only contain axis letters %s, got %q", axisLetters, r)}
		}
	}
	if c.Autosave.IntervalSeconds < 0 {
		return &ValidationError{Path: "autosave.interval_seconds", Err: fmt.Errorf("interval_seconds must be >= 0")}
	}
	return nil
}

// ValidationError reports an invalid value, with its file position when the
// value came from a config file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
