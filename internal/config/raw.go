package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one config file as written. Nil fields were not set.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	LayoutFile  *string `yaml:"layout_file"`
	WidgetsDir  *string `yaml:"widgets_dir"`
	ProductName *string `yaml:"product_name"`
	LogLevel    *string `yaml:"log_level"`

	Window   *RawWindow   `yaml:"window"`
	Screen   *RawScreen   `yaml:"screen"`
	Dro      *RawDro      `yaml:"dro"`
	Autosave *RawAutosave `yaml:"autosave"`
}

type RawWindow struct {
	DefaultWidth  *int `yaml:"default_width"`
	DefaultHeight *int `yaml:"default_height"`
}

type RawScreen struct {
	DefaultName  *string `yaml:"default_name"`
	DefaultTitle *string `yaml:"default_title"`
}

type RawDro struct {
	DecimalPlaces *int    `yaml:"decimal_places"`
	Coordinates   *string `yaml:"coordinates"`
}

type RawAutosave struct {
	IntervalSeconds *int `yaml:"interval_seconds"`
}

// merge returns c with every field set in overlay replaced.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.LayoutFile != nil {
		out.LayoutFile = overlay.LayoutFile
	}
	if overlay.WidgetsDir != nil {
		out.WidgetsDir = overlay.WidgetsDir
	}
	if overlay.ProductName != nil {
		out.ProductName = overlay.ProductName
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}

	if overlay.Window != nil {
		merged := RawWindow{}
		if out.Window != nil {
			merged = *out.Window
		}
		if overlay.Window.DefaultWidth != nil {
			merged.DefaultWidth = overlay.Window.DefaultWidth
		}
		if overlay.Window.DefaultHeight != nil {
			merged.DefaultHeight = overlay.Window.DefaultHeight
		}
		out.Window = &merged
	}

	if overlay.Screen != nil {
		merged := RawScreen{}
		if out.Screen != nil {
			merged = *out.Screen
		}
		if overlay.Screen.DefaultName != nil {
			merged.DefaultName = overlay.Screen.DefaultName
		}
		if overlay.Screen.DefaultTitle != nil {
			merged.DefaultTitle = overlay.Screen.DefaultTitle
		}
		out.Screen = &merged
	}

	if overlay.Dro != nil {
		merged := RawDro{}
		if out.Dro != nil {
			merged = *out.Dro
		}
		if overlay.Dro.DecimalPlaces != nil {
			merged.DecimalPlaces = overlay.Dro.DecimalPlaces
		}
		if overlay.Dro.Coordinates != nil {
			merged.Coordinates = overlay.Dro.Coordinates
		}
		out.Dro = &merged
	}

	if overlay.Autosave != nil {
		merged := RawAutosave{}
		if out.Autosave != nil {
			merged = *out.Autosave
		}
		if overlay.Autosave.IntervalSeconds != nil {
			merged.IntervalSeconds = overlay.Autosave.IntervalSeconds
		}
		out.Autosave = &merged
	}

	return out
}
