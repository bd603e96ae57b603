package mcp

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcjengr/hazzy/internal/layout"
	"github.com/kcjengr/hazzy/internal/registry"
	"github.com/kcjengr/hazzy/internal/session"
	"github.com/kcjengr/hazzy/internal/widgets"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.xml")
	reg := registry.New("", nil)
	require.NoError(t, widgets.RegisterBuiltins(reg, widgets.DefaultOptions()))
	store := layout.NewStore(layout.StoreOptions{
		Path:     path,
		Resolver: reg,
		Clock:    clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)),
	})
	sess, err := session.Open(session.Options{Store: store, Registry: reg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return NewServer(sess, nil), path
}

func intPtr(v int) *int { return &v }

func TestListScreens_DefaultLayout(t *testing.T) {
	s, path := newTestServer(t)

	_, out, err := s.handleListScreens(context.Background(), nil, ListScreensInput{})
	require.NoError(t, err)
	assert.Equal(t, path, out.Path)
	assert.False(t, out.Dirty)
	assert.Equal(t, 900, out.Window.Width)
	require.Len(t, out.Screens, 1)
	assert.Equal(t, "main", out.Screens[0].Name)
}

func TestScreenTools(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, order, err := s.handleAddScreen(ctx, nil, AddScreenInput{Name: "offsets"})
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "offsets"}, order.Screens)

	_, _, err = s.handleAddScreen(ctx, nil, AddScreenInput{Name: "offsets"})
	require.Error(t, err)

	_, order, err = s.handleReorderScreen(ctx, nil, ReorderScreenInput{Name: "offsets", Index: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"offsets", "main"}, order.Screens)

	_, _, err = s.handleRenameScreen(ctx, nil, RenameScreenInput{Name: "offsets", Title: "Work Offsets"})
	require.NoError(t, err)

	_, list, err := s.handleListScreens(ctx, nil, ListScreensInput{})
	require.NoError(t, err)
	assert.Equal(t, "Work Offsets", list.Screens[0].Title)
	assert.True(t, list.Dirty)

	_, order, err = s.handleRemoveScreen(ctx, nil, RemoveScreenInput{Name: "offsets"})
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, order.Screens)
}

func TestListWidgetPackages(t *testing.T) {
	s, _ := newTestServer(t)

	_, out, err := s.handleListWidgetPackages(context.Background(), nil, ListWidgetPackagesInput{})
	require.NoError(t, err)
	var pkgs []string
	for _, p := range out.Packages {
		pkgs = append(pkgs, p.Package)
		assert.Positive(t, p.DefaultWidth)
		assert.Positive(t, p.DefaultHeight)
	}
	assert.ElementsMatch(t, []string{widgets.PackageDro, widgets.PackageDroAbs, widgets.PackageDroDTG}, pkgs)
}

func TestPlaceWidget_PartialGeometryUsesDefaultSize(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handlePlaceWidget(ctx, nil, PlaceWidgetInput{
		Screen:  "main",
		Package: widgets.PackageDro,
		X:       intPtr(10),
		Y:       intPtr(20),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Widget.ID)
	assert.Equal(t, 10, out.Widget.X)
	assert.Equal(t, 20, out.Widget.Y)
	assert.Equal(t, 240, out.Widget.Width)
	assert.Equal(t, 120, out.Widget.Height)

	_, out, err = s.handlePlaceWidget(ctx, nil, PlaceWidgetInput{Screen: "main", Package: widgets.PackageDroAbs})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Widget.X)
	assert.Equal(t, 240, out.Widget.Width)
}

func TestPlaceWidget_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, _, err := s.handlePlaceWidget(ctx, nil, PlaceWidgetInput{Screen: "main", Package: "spindle"})
	require.ErrorIs(t, err, registry.ErrUnknownWidgetPackage)

	_, _, err = s.handlePlaceWidget(ctx, nil, PlaceWidgetInput{Screen: "nope", Package: widgets.PackageDro})
	require.Error(t, err)

	_, _, err = s.handlePlaceWidget(ctx, nil, PlaceWidgetInput{Screen: "main", Package: widgets.PackageDro, X: intPtr(-1)})
	require.Error(t, err)

	_, list, err := s.handleListScreens(ctx, nil, ListScreensInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Screens[0].Widgets)
	assert.False(t, list.Dirty)
}

func TestSetWidgetGeometryAndRemove(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, placed, err := s.handlePlaceWidget(ctx, nil, PlaceWidgetInput{Screen: "main", Package: widgets.PackageDro})
	require.NoError(t, err)

	_, moved, err := s.handleSetWidgetGeometry(ctx, nil, SetWidgetGeometryInput{ID: placed.Widget.ID, X: intPtr(50), H: intPtr(60)})
	require.NoError(t, err)
	assert.Equal(t, 50, moved.Widget.X)
	assert.Equal(t, 0, moved.Widget.Y)
	assert.Equal(t, 240, moved.Widget.Width)
	assert.Equal(t, 60, moved.Widget.Height)

	_, _, err = s.handleSetWidgetGeometry(ctx, nil, SetWidgetGeometryInput{ID: placed.Widget.ID, W: intPtr(-3)})
	require.Error(t, err)

	_, _, err = s.handleSetWidgetGeometry(ctx, nil, SetWidgetGeometryInput{ID: "not-a-uuid"})
	require.ErrorIs(t, err, session.ErrInvalidWidgetID)

	_, removed, err := s.handleRemoveWidget(ctx, nil, RemoveWidgetInput{ID: placed.Widget.ID})
	require.NoError(t, err)
	assert.True(t, removed.Removed)

	_, _, err = s.handleRemoveWidget(ctx, nil, RemoveWidgetInput{ID: placed.Widget.ID})
	require.Error(t, err)
}

func TestSetWindowState(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	title := "Mill"
	maximize := true

	_, out, err := s.handleSetWindowState(ctx, nil, SetWindowStateInput{Title: &title, W: intPtr(1280), Maximize: &maximize})
	require.NoError(t, err)
	assert.Equal(t, "Mill", out.Window.Title)
	assert.Equal(t, 1280, out.Window.Width)
	assert.Equal(t, 600, out.Window.Height)
	assert.True(t, out.Window.Maximized)

	_, _, err = s.handleSetWindowState(ctx, nil, SetWindowStateInput{H: intPtr(0)})
	require.ErrorIs(t, err, session.ErrInvalidWindow)
}

func TestSaveLayout(t *testing.T) {
	s, path := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleSaveLayout(ctx, nil, SaveLayoutInput{OnlyIfDirty: true})
	require.NoError(t, err)
	assert.False(t, out.Saved)
	assert.NoFileExists(t, path)

	_, _, err = s.handlePlaceWidget(ctx, nil, PlaceWidgetInput{Screen: "main", Package: widgets.PackageDroDTG})
	require.NoError(t, err)

	_, out, err = s.handleSaveLayout(ctx, nil, SaveLayoutInput{OnlyIfDirty: true})
	require.NoError(t, err)
	assert.True(t, out.Saved)
	assert.Equal(t, path, out.Path)
	assert.FileExists(t, path)

	_, list, err := s.handleListScreens(ctx, nil, ListScreensInput{})
	require.NoError(t, err)
	assert.False(t, list.Dirty)
}

func TestServer_ToolsListedOverTransport(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.ListTools(ctx, &mcpsdk.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"add_screen",
		"list_screens",
		"list_widget_packages",
		"place_widget",
		"remove_screen",
		"remove_widget",
		"rename_screen",
		"reorder_screen",
		"save_layout",
		"set_widget_geometry",
		"set_window_state",
	}, names)
}
