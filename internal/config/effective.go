package config

import (
	"path/filepath"
	"strings"

	"github.com/kcjengr/hazzy/internal/xdgpath"
)

// BuildEffectiveConfig applies raw over DefaultConfig and resolves paths.
// Relative paths are taken relative to baseDir, normally the directory of
// the main config file.
func BuildEffectiveConfig(raw RawConfig, baseDir string) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LayoutFile != nil {
		cfg.LayoutFile = strings.TrimSpace(*raw.LayoutFile)
	}
	if raw.WidgetsDir != nil {
		cfg.WidgetsDir = strings.TrimSpace(*raw.WidgetsDir)
	}
	if raw.ProductName != nil {
		cfg.ProductName = *raw.ProductName
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}

	if raw.Window != nil {
		if raw.Window.DefaultWidth != nil {
			cfg.Window.DefaultWidth = *raw.Window.DefaultWidth
		}
		if raw.Window.DefaultHeight != nil {
			cfg.Window.DefaultHeight = *raw.Window.DefaultHeight
		}
	}
	if raw.Screen != nil {
		if raw.Screen.DefaultName != nil {
			cfg.Screen.DefaultName = *raw.Screen.DefaultName
		}
		if raw.Screen.DefaultTitle != nil {
			cfg.Screen.DefaultTitle = *raw.Screen.DefaultTitle
		}
	}
	if raw.Dro != nil {
		if raw.Dro.DecimalPlaces != nil {
			cfg.Dro.DecimalPlaces = *raw.Dro.DecimalPlaces
		}
		if raw.Dro.Coordinates != nil {
			cfg.Dro.Coordinates = strings.ToLower(strings.TrimSpace(*raw.Dro.Coordinates))
		}
	}
	if raw.Autosave != nil && raw.Autosave.IntervalSeconds != nil {
		cfg.Autosave.IntervalSeconds = *raw.Autosave.IntervalSeconds
	}

	if err := cfg.resolvePaths(baseDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths fills empty paths with XDG defaults and expands "~".
func (c *Config) resolvePaths(baseDir string) error {
	var err error
	if c.LayoutFile == "" {
		if c.LayoutFile, err = xdgpath.LayoutPath(); err != nil {
			return err
		}
	} else if c.LayoutFile, err = resolveUserPath(c.LayoutFile, baseDir); err != nil {
		return &ValidationError{Path: "layout_file", Err: err}
	}

	if c.WidgetsDir == "" {
		if c.WidgetsDir, err = xdgpath.WidgetsDir(); err != nil {
			return err
		}
	} else if c.WidgetsDir, err = resolveUserPath(c.WidgetsDir, baseDir); err != nil {
		return &ValidationError{Path: "widgets_dir", Err: err}
	}
	return nil
}

func resolveUserPath(path, baseDir string) (string, error) {
	path, err := xdgpath.ExpandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return path, nil
	}
	return filepath.Join(baseDir, path), nil
}
