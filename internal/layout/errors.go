package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptLayout means the layout file exists but is not a valid layout document.
	ErrCorruptLayout = errors.New("corrupt layout")
	// ErrMissingProperty marks a required property that was absent and replaced by a default.
	ErrMissingProperty = errors.New("missing property")
	// ErrInvalidProperty marks a property whose value could not be used.
	ErrInvalidProperty = errors.New("invalid property")
)

// CorruptLayoutError carries the path and parse failure of a corrupt layout file.
type CorruptLayoutError struct {
	Path string
	Err  error
}

func (e *CorruptLayoutError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("corrupt layout: %v", e.Err)
	}
	return fmt.Sprintf("%s: corrupt layout: %v", e.Path, e.Err)
}

func (e *CorruptLayoutError) Unwrap() error {
	return e.Err
}

func (e *CorruptLayoutError) Is(target error) bool {
	return target == ErrCorruptLayout
}

// WarningKind classifies a recoverable load problem.
type WarningKind string

const (
	WarnCorruptLayout        WarningKind = "corrupt_layout"
	WarnUnreadableLayout     WarningKind = "unreadable_layout"
	WarnUnknownWidgetPackage WarningKind = "unknown_widget_package"
	WarnMissingProperty      WarningKind = "missing_property"
	WarnInvalidProperty      WarningKind = "invalid_property"
	WarnInvalidScreen        WarningKind = "invalid_screen"
	WarnMissingWindow        WarningKind = "missing_window"
	WarnExtraWindow          WarningKind = "extra_window"
)

// Warning is a load problem that was recovered locally.
type Warning struct {
	Kind     WarningKind
	Screen   string
	Package  string
	Property string
	Err      error
}

func (w Warning) String() string {
	msg := string(w.Kind)
	if w.Screen != "" {
		msg += fmt.Sprintf(" screen=%q", w.Screen)
	}
	if w.Package != "" {
		msg += fmt.Sprintf(" package=%q", w.Package)
	}
	if w.Property != "" {
		msg += fmt.Sprintf(" property=%q", w.Property)
	}
	if w.Err != nil {
		msg += ": " + w.Err.Error()
	}
	return msg
}
