package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcjengr/hazzy/internal/registry"
	"github.com/kcjengr/hazzy/internal/status"
)

func positions() status.AxisPositions {
	var p status.AxisPositions
	p.Abs[0], p.Abs[1], p.Abs[2] = 1.5, 2.25, -3
	p.Rel[0], p.Rel[1], p.Rel[2] = 0.12345, 10, -0.5
	p.DTG[0] = 7
	return p
}

func TestDro_FollowsAxisPositions(t *testing.T) {
	svc := status.NewService()
	d, err := NewDro("dro", registry.Deps{Status: svc}, DroOptions{Type: DroRelative, DecimalPlaces: 4, Coordinates: "XYZ"})
	require.NoError(t, err)
	assert.Equal(t, "xyz", d.Axes())

	x, _ := d.Text("x")
	assert.Equal(t, "0.0000", x)

	svc.Publish(status.KeyAxisPositions, positions())

	tests := map[string]string{"x": "0.1235", "Y": "10.0000", "z": "-0.5000"}
	for axis, want := range tests {
		got, err := d.Text(axis)
		require.NoError(t, err)
		assert.Equal(t, want, got, "axis %s", axis)
	}

	_, err = d.Text("a")
	require.ErrorIs(t, err, ErrUnknownAxis)
}

func TestDro_TypeSelectsPositions(t *testing.T) {
	svc := status.NewService()
	svc.Publish(status.KeyAxisPositions, positions())

	abs, err := NewDro("dro_abs", registry.Deps{Status: svc}, DroOptions{Type: DroAbsolute, DecimalPlaces: 2, Coordinates: "xy"})
	require.NoError(t, err)
	dtg, err := NewDro("dro_dtg", registry.Deps{Status: svc}, DroOptions{Type: DroDistanceToGo, DecimalPlaces: 1, Coordinates: "x"})
	require.NoError(t, err)

	got, _ := abs.Text("y")
	assert.Equal(t, "2.25", got, "current value delivered on subscribe")
	got, _ = dtg.Text("x")
	assert.Equal(t, "7.0", got)
}

func TestDro_EditingSuppressesUpdates(t *testing.T) {
	svc := status.NewService()
	d, err := NewDro("dro", registry.Deps{Status: svc}, DroOptions{DecimalPlaces: 3, Coordinates: "xy"})
	require.NoError(t, err)

	require.NoError(t, d.SetEditing("x", true))
	svc.Publish(status.KeyAxisPositions, &status.AxisPositions{Rel: [9]float64{1, 2}})

	x, _ := d.Text("x")
	y, _ := d.Text("y")
	assert.Equal(t, "0.000", x)
	assert.Equal(t, "2.000", y)

	require.NoError(t, d.SetEditing("x", false))
	svc.Publish(status.KeyAxisPositions, status.AxisPositions{Rel: [9]float64{4, 5}})
	x, _ = d.Text("x")
	assert.Equal(t, "4.000", x)

	require.ErrorIs(t, d.SetEditing("q", true), ErrUnknownAxis)
}

func TestDro_CloseUnsubscribes(t *testing.T) {
	svc := status.NewService()
	d, err := NewDro("dro", registry.Deps{Status: svc}, DroOptions{DecimalPlaces: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Subscribers(status.KeyAxisPositions))

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Equal(t, 0, svc.Subscribers(status.KeyAxisPositions))

	svc.Publish(status.KeyAxisPositions, positions())
	x, _ := d.Text("x")
	assert.Equal(t, "0.0", x)
}

func TestDro_InvalidOptions(t *testing.T) {
	_, err := NewDro("dro", registry.Deps{}, DroOptions{})
	require.Error(t, err)

	_, err = NewDro("dro", registry.Deps{Status: status.NewService()}, DroOptions{Coordinates: "xq"})
	require.ErrorIs(t, err, ErrUnknownAxis)

	_, err = NewDro("dro", registry.Deps{Status: status.NewService()}, DroOptions{DecimalPlaces: -1})
	require.Error(t, err)
}

func TestRegisterBuiltins(t *testing.T) {
	reg := registry.New("", nil)
	require.NoError(t, RegisterBuiltins(reg, DefaultOptions()))
	assert.Equal(t, 3, reg.Len())

	e, err := reg.Resolve(PackageDro)
	require.NoError(t, err)
	assert.Equal(t, "DRO", e.DisplayName)

	svc := status.NewService()
	w, err := e.New(registry.Deps{Status: svc})
	require.NoError(t, err)
	assert.Equal(t, PackageDro, w.Package())
	assert.Equal(t, 1, svc.Subscribers(status.KeyAxisPositions))
	require.NoError(t, w.Close())

	require.ErrorIs(t, RegisterBuiltins(reg, DefaultOptions()), registry.ErrDuplicatePackage)
}
