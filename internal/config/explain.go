package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	layout_file
//	widgets_dir
//	product_name
//	log_level
//	window.default_width
//	window.default_height
//	screen.default_name
//	screen.default_title
//	dro.decimal_places
//	dro.coordinates
//	autosave.interval_seconds
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// Paths lists every path accepted by Explain.
func Paths() []string {
	return []string{
		"layout_file",
		"widgets_dir",
		"product_name",
		"log_level",
		"window.default_width",
		"window.default_height",
		"screen.default_name",
		"screen.default_title",
		"dro.decimal_places",
		"dro.coordinates",
		"autosave.interval_seconds",
	}
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "layout_file":
		return cfg.LayoutFile, nil
	case "widgets_dir":
		return cfg.WidgetsDir, nil
	case "product_name":
		return cfg.ProductName, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "window.default_width":
		return cfg.Window.DefaultWidth, nil
	case "window.default_height":
		return cfg.Window.DefaultHeight, nil
	case "screen.default_name":
		return cfg.Screen.DefaultName, nil
	case "screen.default_title":
		return cfg.Screen.DefaultTitle, nil
	case "dro.decimal_places":
		return cfg.Dro.DecimalPlaces, nil
	case "dro.coordinates":
		return cfg.Dro.Coordinates, nil
	case "autosave.interval_seconds":
		return cfg.Autosave.IntervalSeconds, nil
	default:
		return nil, fmt.Errorf("unsupported path %q", path)
	}
}
