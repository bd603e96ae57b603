// Package widgets holds the widgets compiled into hazzy and registers them
// with the widget registry.
package widgets

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/kcjengr/hazzy/internal/registry"
	"github.com/kcjengr/hazzy/internal/status"
)

// axisLetters is the axis numbering used by status.AxisPositions.
const axisLetters = "xyzabcuvw"

var ErrUnknownAxis = errors.New("unknown axis")

// DroType selects which position a DRO shows.
type DroType int

const (
	DroAbsolute DroType = iota
	DroRelative
	DroDistanceToGo
)

func (t DroType) String() string {
	switch t {
	case DroAbsolute:
		return "abs"
	case DroRelative:
		return "rel"
	case DroDistanceToGo:
		return "dtg"
	default:
		return "unknown"
	}
}

// DroOptions configures a DRO.
type DroOptions struct {
	Type          DroType
	DecimalPlaces int
	// Coordinates lists the displayed axes, e.g. "xyz".
	Coordinates string
}

type droAxis struct {
	letter  byte
	index   int
	text    string
	editing bool
}

// Dro is a digital readout of axis positions. It follows the
// axis_positions status key until closed.
type Dro struct {
	pkg    string
	opts   DroOptions
	logger *slog.Logger

	mu     sync.Mutex
	axes   []*droAxis
	sub    *status.Subscription
	closed bool
}

// NewDro builds a DRO and subscribes it to axis positions.
func NewDro(pkg string, deps registry.Deps, opts DroOptions) (*Dro, error) {
	if deps.Status == nil {
		return nil, fmt.Errorf("dro: status service is required")
	}
	if opts.DecimalPlaces < 0 {
		return nil, fmt.Errorf("dro: decimal places must be >= 0, got %d", opts.DecimalPlaces)
	}
	coords := strings.ToLower(opts.Coordinates)
	if coords == "" {
		coords = "xyz"
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Dro{pkg: pkg, opts: opts, logger: logger.With("widget", pkg)}
	seen := make(map[byte]bool)
	for i := 0; i < len(coords); i++ {
		c := coords[i]
		idx := strings.IndexByte(axisLetters, c)
		if idx < 0 {
			return nil, fmt.Errorf("dro: %w %q", ErrUnknownAxis, string(c))
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		d.axes = append(d.axes, &droAxis{letter: c, index: idx, text: d.format(0)})
	}

	sub := deps.Status.Subscribe(status.KeyAxisPositions, d.update, true)
	d.mu.Lock()
	d.sub = sub
	d.mu.Unlock()
	return d, nil
}

func (d *Dro) Package() string {
	return d.pkg
}

// Close stops following status updates.
func (d *Dro) Close() error {
	d.mu.Lock()
	sub := d.sub
	d.sub = nil
	d.closed = true
	d.mu.Unlock()
	sub.Unsubscribe()
	return nil
}

// Type reports which position set the readout shows.
func (d *Dro) Type() DroType {
	return d.opts.Type
}

// Axes returns the displayed axis letters in display order.
func (d *Dro) Axes() string {
	var b strings.Builder
	for _, a := range d.axes {
		b.WriteByte(a.letter)
	}
	return b.String()
}

// Text returns the text currently shown for an axis.
func (d *Dro) Text(axis string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, err := d.axis(axis)
	if err != nil {
		return "", err
	}
	return a.text, nil
}

// SetEditing marks an axis entry as being edited by the user. Updates for
// that axis are dropped while editing.
func (d *Dro) SetEditing(axis string, editing bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, err := d.axis(axis)
	if err != nil {
		return err
	}
	a.editing = editing
	return nil
}

func (d *Dro) axis(letter string) (*droAxis, error) {
	letter = strings.ToLower(letter)
	for _, a := range d.axes {
		if len(letter) == 1 && a.letter == letter[0] {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownAxis, letter)
}

func (d *Dro) update(value any) {
	var pos status.AxisPositions
	switch v := value.(type) {
	case status.AxisPositions:
		pos = v
	case *status.AxisPositions:
		if v == nil {
			return
		}
		pos = *v
	default:
		d.logger.Debug("ignoring axis positions of unexpected type", "type", fmt.Sprintf("%T", value))
		return
	}

	var values [9]float64
	switch d.opts.Type {
	case DroAbsolute:
		values = pos.Abs
	case DroDistanceToGo:
		values = pos.DTG
	default:
		values = pos.Rel
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	for _, a := range d.axes {
		if a.editing {
			continue
		}
		a.text = d.format(values[a.index])
	}
}

func (d *Dro) format(v float64) string {
	return strconv.FormatFloat(v, 'f', d.opts.DecimalPlaces, 64)
}
