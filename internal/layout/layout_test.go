package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcjengr/hazzy/internal/geometry"
	"github.com/kcjengr/hazzy/internal/registry"
)

type nopWidget struct{ pkg string }

func (w nopWidget) Package() string { return w.pkg }
func (w nopWidget) Close() error    { return nil }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New("", nil)
	for _, pkg := range []string{"dro", "jog"} {
		require.NoError(t, r.Register(registry.Entry{
			Package:     pkg,
			DefaultSize: registry.Size{Width: 200, Height: 120},
			Factory: func(registry.Deps) (registry.Widget, error) {
				return nopWidget{pkg: pkg}, nil
			},
		}))
	}
	return r
}

var testNow = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	return NewStore(StoreOptions{
		Path:     path,
		Resolver: testRegistry(t),
		Clock:    clockwork.NewFakeClockAt(testNow),
	})
}

func writeLayout(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.xml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func readLayout(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func warningKinds(ws []Warning) []WarningKind {
	var out []WarningKind
	for _, w := range ws {
		out = append(out, w.Kind)
	}
	return out
}

func TestStore_ExampleScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.xml")
	store := newTestStore(t, path)

	m := NewModel(WindowState{Name: "Window 1", Title: "Main Window", X: 100, Y: 50, Width: 900, Height: 600})
	_, err := m.Screens.Add("main", "Main Screen")
	require.NoError(t, err)
	_, err = m.Place("main", "dro", geometry.Rect{X: 10, Y: 10, Width: 120, Height: 80})
	require.NoError(t, err)

	require.NoError(t, store.Save(m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "<!--Interface for: Hazzy-->")
	assert.Contains(t, doc, "<!--Last modified: 2024-03-09 14:05:06-->")
	assert.Contains(t, doc, `<window name="Window 1" title="Main Window">`)
	assert.Contains(t, doc, `<screen name="main" title="Main Screen" position="0">`)
	assert.Contains(t, doc, `<widget package="dro">`)
	assert.Contains(t, doc, `<property name="maximize">False</property>`)

	order := []string{`"x">100`, `"y">50`, `"w">900`, `"h">600`, `"maximize"`, `"fullscreen"`}
	last := -1
	for _, needle := range order {
		idx := strings.Index(doc, needle)
		require.Greater(t, idx, last, "property %s out of order", needle)
		last = idx
	}

	res := newTestStore(t, path).Load()
	require.Nil(t, res.Corrupt)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, m.Snapshot().WithoutIDs(), res.Model.Snapshot().WithoutIDs())

	got := res.Model.Snapshot()
	require.Len(t, got.Screens, 1)
	require.Len(t, got.Screens[0].Widgets, 1)
	w := got.Screens[0].Widgets[0]
	assert.Equal(t, WidgetSnapshot{ID: w.ID, Package: "dro", X: 10, Y: 10, Width: 120, Height: 80}, w)
	assert.NotEqual(t, m.Snapshot().Screens[0].Widgets[0].ID, w.ID, "instance ids are not persisted")
}

func TestStore_RoundTrip(t *testing.T) {
	m := NewModel(WindowState{Name: "Win", Title: "T & <co>", X: -20, Y: 5, Width: 1280, Height: 800, Maximized: true})
	_, _ = m.Screens.Add("main", "Main")
	_, _ = m.Screens.Add("tool", "Tool Table")
	_, _ = m.Screens.Add("empty", "")
	_, _ = m.Place("main", "dro", geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	_, _ = m.Place("main", "jog", geometry.Rect{X: 3000, Y: 4000, Width: 1, Height: 2})
	_, _ = m.Place("tool", "dro", geometry.Rect{X: 5, Y: 6, Width: 7, Height: 8})
	require.NoError(t, m.Screens.Reorder("empty", 0))

	path := filepath.Join(t.TempDir(), "layout.xml")
	require.NoError(t, newTestStore(t, path).Save(m))
	res := newTestStore(t, path).Load()

	assert.Empty(t, res.Warnings)
	assert.Equal(t, m.Snapshot().WithoutIDs(), res.Model.Snapshot().WithoutIDs())
}

func TestStore_RoundTripEmptyWindowText(t *testing.T) {
	m := NewModel(WindowState{Name: "", Title: "", Width: 640, Height: 480})
	_, _ = m.Screens.Add("main", "")

	path := filepath.Join(t.TempDir(), "layout.xml")
	require.NoError(t, newTestStore(t, path).Save(m))
	assert.Contains(t, readLayout(t, path), `<window name="" title="">`)

	res := newTestStore(t, path).Load()
	assert.Empty(t, res.Warnings)
	assert.Equal(t, m.Snapshot().WithoutIDs(), res.Model.Snapshot().WithoutIDs())
	assert.Equal(t, "", res.Model.Window.Title)
}

func TestStore_RoundTripNoScreens(t *testing.T) {
	m := NewModel(BuiltinDefaults().Window)
	path := filepath.Join(t.TempDir(), "layout.xml")
	require.NoError(t, newTestStore(t, path).Save(m))

	res := newTestStore(t, path).Load()
	assert.Equal(t, 0, res.Model.Screens.Len())
}

func TestStore_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "layout.xml")
	res := newTestStore(t, path).Load()

	assert.True(t, res.Missing)
	assert.Nil(t, res.Corrupt)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, DefaultModel(BuiltinDefaults()).Snapshot().WithoutIDs(), res.Model.Snapshot().WithoutIDs())

	screens := res.Model.Screens.List()
	require.Len(t, screens, 1)
	assert.Equal(t, "main", screens[0].Name)
	assert.Equal(t, WindowState{Name: "Window 1", Title: "Main Window", Width: 900, Height: 600}, res.Model.Window)
}

func TestStore_CorruptFile(t *testing.T) {
	bodies := map[string]string{
		"truncated":     `<?xml version="1.0"?><hazzy_interface><window name="w">`,
		"garbage":       "not xml at all",
		"empty":         "",
		"wrong root":    `<layout><window/></layout>`,
		"trailing root": `<hazzy_interface></hazzy_interface><hazzy_interface></hazzy_interface>`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			path := writeLayout(t, body)
			res := newTestStore(t, path).Load()

			require.NotNil(t, res.Corrupt)
			assert.ErrorIs(t, res.Corrupt, ErrCorruptLayout)
			assert.Equal(t, path, res.Corrupt.Path)
			assert.Equal(t, []WarningKind{WarnCorruptLayout}, warningKinds(res.Warnings))
			assert.Equal(t, DefaultModel(BuiltinDefaults()).Snapshot().WithoutIDs(), res.Model.Snapshot().WithoutIDs())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, body, string(data), "corrupt file must be left untouched")
		})
	}
}

func TestStore_SaveAfterCorruptLoadKeepsBackup(t *testing.T) {
	body := "<hazzy_interface><window"
	path := writeLayout(t, body)
	store := newTestStore(t, path)

	res := store.Load()
	require.NotNil(t, res.Corrupt)
	require.NoError(t, store.Save(res.Model))

	backup := path + ".corrupt-20240309-140506"
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	again := store.Load()
	assert.Nil(t, again.Corrupt)

	require.NoError(t, store.Save(again.Model))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "second save must not create another backup")
}

func TestStore_UnknownPackageSkipped(t *testing.T) {
	path := writeLayout(t, `<?xml version="1.0" encoding="UTF-8"?>
<hazzy_interface>
  <window name="Window 1" title="Main Window">
    <property name="x">0</property>
    <property name="y">0</property>
    <property name="w">900</property>
    <property name="h">600</property>
    <property name="maximize">False</property>
    <property name="fullscreen">False</property>
    <screen name="main" title="Main" position="0">
      <widget package="dro">
        <property name="x">1</property><property name="y">2</property>
        <property name="w">3</property><property name="h">4</property>
      </widget>
      <widget package="spindle">
        <property name="x">1</property><property name="y">2</property>
        <property name="w">3</property><property name="h">4</property>
      </widget>
      <widget package="jog">
        <property name="x">5</property><property name="y">6</property>
        <property name="w">7</property><property name="h">8</property>
      </widget>
    </screen>
  </window>
</hazzy_interface>
`)
	res := newTestStore(t, path).Load()

	require.Nil(t, res.Corrupt)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnUnknownWidgetPackage, res.Warnings[0].Kind)
	assert.Equal(t, "spindle", res.Warnings[0].Package)
	assert.ErrorIs(t, res.Warnings[0].Err, registry.ErrUnknownWidgetPackage)

	s, ok := res.Model.Screens.Get("main")
	require.True(t, ok)
	insts := s.Instances()
	require.Len(t, insts, 2)
	assert.Equal(t, "dro", insts[0].Package)
	assert.Equal(t, "jog", insts[1].Package)
}

func TestDecode_PropertyFallbacks(t *testing.T) {
	doc := `<hazzy_interface>
  <window>
    <property name="w">abc</property>
    <property name="h">-5</property>
    <property name="maximize">true</property>
    <property name="fullscreen">maybe</property>
    <screen name="main" title="Main" position="7">
      <widget package="dro">
        <property name="x">-3</property>
        <property name="y">4</property>
      </widget>
    </screen>
  </window>
</hazzy_interface>`

	m, warnings, err := Decode([]byte(doc), testRegistry(t), BuiltinDefaults())
	require.NoError(t, err)

	assert.Equal(t, WindowState{
		Name:      "Window 1",
		Title:     "Main Window",
		X:         0,
		Y:         0,
		Width:     900,
		Height:    600,
		Maximized: true,
	}, m.Window)

	snap := m.Snapshot()
	require.Len(t, snap.Screens, 1)
	assert.Equal(t, 0, snap.Screens[0].Position, "position attribute is not read back")
	require.Len(t, snap.Screens[0].Widgets, 1)
	w := snap.Screens[0].Widgets[0]
	assert.Equal(t, [4]int{0, 4, 200, 120}, [4]int{w.X, w.Y, w.Width, w.Height})

	assert.Equal(t, []WarningKind{
		WarnMissingProperty, // window x
		WarnMissingProperty, // window y
		WarnInvalidProperty, // w
		WarnInvalidProperty, // h
		WarnInvalidProperty, // fullscreen
		WarnMissingProperty, // widget w
		WarnMissingProperty, // widget h
		WarnInvalidProperty, // negative x clamped
	}, warningKinds(warnings))
	for _, w := range warnings {
		assert.NotEmpty(t, w.String())
	}
}

func TestDecode_DocumentOrderIsAuthoritative(t *testing.T) {
	doc := `<hazzy_interface><window name="w" title="t">
  <property name="x">0</property><property name="y">0</property>
  <property name="w">10</property><property name="h">10</property>
  <property name="maximize">False</property><property name="fullscreen">False</property>
  <screen name="b" title="B" position="0"/>
  <screen name="a" title="A" position="1"/>
  <screen name="b" title="again" position="2"/>
</window></hazzy_interface>`

	m, warnings, err := Decode([]byte(doc), testRegistry(t), BuiltinDefaults())
	require.NoError(t, err)

	var got []string
	for _, s := range m.Screens.List() {
		got = append(got, s.Name+":"+s.Title)
	}
	assert.Equal(t, []string{"b:B", "a:A"}, got)
	assert.Equal(t, []WarningKind{WarnInvalidScreen}, warningKinds(warnings))
}

func TestDecode_WindowElementCount(t *testing.T) {
	m, warnings, err := Decode([]byte(`<hazzy_interface></hazzy_interface>`), testRegistry(t), BuiltinDefaults())
	require.NoError(t, err)
	assert.Equal(t, []WarningKind{WarnMissingWindow}, warningKinds(warnings))
	assert.Equal(t, 1, m.Screens.Len())

	two := `<hazzy_interface>
  <window name="first" title="t"><property name="x">1</property><property name="y">1</property>
    <property name="w">2</property><property name="h">2</property>
    <property name="maximize">False</property><property name="fullscreen">True</property></window>
  <window name="second" title="t"/>
</hazzy_interface>`
	m, warnings, err = Decode([]byte(two), testRegistry(t), BuiltinDefaults())
	require.NoError(t, err)
	assert.Equal(t, "first", m.Window.Name)
	assert.True(t, m.Window.Fullscreen)
	assert.Equal(t, []WarningKind{WarnExtraWindow}, warningKinds(warnings))
}

func TestEncode_CommentSanitized(t *testing.T) {
	data, err := Encode(NewModel(BuiltinDefaults().Window), "a--b-", testNow)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!--Interface for: a- -b-->")

	_, _, err = Decode(data, testRegistry(t), BuiltinDefaults())
	require.NoError(t, err)
}

func TestStore_SaveFailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	store := newTestStore(t, filepath.Join(blocker, "layout.xml"))
	err := store.Save(DefaultModel(BuiltinDefaults()))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	path := writeLayout(t, "old contents")
	store := newTestStore(t, path)
	require.NoError(t, store.Save(DefaultModel(BuiltinDefaults())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStore_Changed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.xml")
	store := newTestStore(t, path)

	res := store.Load()
	require.True(t, res.Missing)
	changed, err := store.Changed()
	require.NoError(t, err)
	assert.False(t, changed, "still absent")

	require.NoError(t, store.Save(res.Model))
	changed, err = store.Changed()
	require.NoError(t, err)
	assert.False(t, changed, "own save")

	require.NoError(t, os.WriteFile(path, []byte("<hazzy_interface/>"), 0o644))
	changed, err = store.Changed()
	require.NoError(t, err)
	assert.True(t, changed)

	store.Load()
	changed, err = store.Changed()
	require.NoError(t, err)
	assert.False(t, changed, "external bytes once loaded")

	require.NoError(t, os.Remove(path))
	changed, err = store.Changed()
	require.NoError(t, err)
	assert.True(t, changed)
}
