package widgets

import (
	"github.com/kcjengr/hazzy/internal/registry"
)

// Built-in widget package ids.
const (
	PackageDro    = "dro"
	PackageDroAbs = "dro_abs"
	PackageDroDTG = "dro_dtg"
)

// Options carries configured widget settings into the built-in factories.
type Options struct {
	DecimalPlaces int
	Coordinates   string
}

// DefaultOptions matches the readout format of a stock machine config.
func DefaultOptions() Options {
	return Options{DecimalPlaces: 4, Coordinates: "xyz"}
}

var droSize = registry.Size{Width: 240, Height: 120}

// RegisterBuiltins adds every compiled widget to reg.
func RegisterBuiltins(reg *registry.Registry, opts Options) error {
	dros := []struct {
		pkg, name, desc string
		typ             DroType
	}{
		{PackageDro, "DRO", "Relative axis positions", DroRelative},
		{PackageDroAbs, "DRO (Absolute)", "Absolute axis positions", DroAbsolute},
		{PackageDroDTG, "DRO (Distance to Go)", "Remaining distance of the current move", DroDistanceToGo},
	}
	for _, d := range dros {
		pkg := d.pkg
		droOpts := DroOptions{Type: d.typ, DecimalPlaces: opts.DecimalPlaces, Coordinates: opts.Coordinates}
		err := reg.Register(registry.Entry{
			Package:     pkg,
			DisplayName: d.name,
			Description: d.desc,
			DefaultSize: droSize,
			Factory: func(deps registry.Deps) (registry.Widget, error) {
				return NewDro(pkg, deps, droOpts)
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
