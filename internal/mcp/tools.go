package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kcjengr/hazzy/internal/geometry"
	"github.com/kcjengr/hazzy/internal/layout"
	"github.com/kcjengr/hazzy/internal/registry"
	"github.com/kcjengr/hazzy/internal/session"
)

func (s *Server) handleListScreens(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListScreensInput) (*mcpsdk.CallToolResult, ListScreensOutput, error) {
	snap := s.sess.Snapshot()
	return nil, ListScreensOutput{
		Path:    s.sess.Path(),
		Dirty:   s.sess.Dirty(),
		Window:  snap.Window,
		Screens: snap.Screens,
	}, nil
}

func (s *Server) handleAddScreen(_ context.Context, _ *mcpsdk.CallToolRequest, args AddScreenInput) (*mcpsdk.CallToolResult, ScreenOrderOutput, error) {
	name := strings.TrimSpace(args.Name)
	title := args.Title
	if strings.TrimSpace(title) == "" {
		title = name
	}
	if err := s.sess.AddScreen(name, title); err != nil {
		return nil, ScreenOrderOutput{}, fmt.Errorf("failed to add screen %q: %w", name, err)
	}
	s.logger.Info("mcp add_screen", "screen", name)
	return nil, s.screenOrder(), nil
}

func (s *Server) handleRemoveScreen(_ context.Context, _ *mcpsdk.CallToolRequest, args RemoveScreenInput) (*mcpsdk.CallToolResult, ScreenOrderOutput, error) {
	if err := s.sess.RemoveScreen(args.Name); err != nil {
		return nil, ScreenOrderOutput{}, fmt.Errorf("failed to remove screen %q: %w", args.Name, err)
	}
	s.logger.Info("mcp remove_screen", "screen", args.Name)
	return nil, s.screenOrder(), nil
}

func (s *Server) handleReorderScreen(_ context.Context, _ *mcpsdk.CallToolRequest, args ReorderScreenInput) (*mcpsdk.CallToolResult, ScreenOrderOutput, error) {
	if err := s.sess.ReorderScreen(args.Name, args.Index); err != nil {
		return nil, ScreenOrderOutput{}, fmt.Errorf("failed to move screen %q: %w", args.Name, err)
	}
	return nil, s.screenOrder(), nil
}

func (s *Server) handleRenameScreen(_ context.Context, _ *mcpsdk.CallToolRequest, args RenameScreenInput) (*mcpsdk.CallToolResult, ScreenOrderOutput, error) {
	if err := s.sess.RenameScreen(args.Name, args.Title); err != nil {
		return nil, ScreenOrderOutput{}, fmt.Errorf("failed to rename screen %q: %w", args.Name, err)
	}
	return nil, s.screenOrder(), nil
}

func (s *Server) screenOrder() ScreenOrderOutput {
	snap := s.sess.Snapshot()
	names := make([]string, 0, len(snap.Screens))
	for _, scr := range snap.Screens {
		names = append(names, scr.Name)
	}
	return ScreenOrderOutput{Screens: names}
}

func (s *Server) handleListWidgetPackages(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWidgetPackagesInput) (*mcpsdk.CallToolResult, ListWidgetPackagesOutput, error) {
	entries := s.sess.Packages()
	out := ListWidgetPackagesOutput{Packages: make([]WidgetPackage, 0, len(entries))}
	for _, e := range entries {
		out.Packages = append(out.Packages, WidgetPackage{
			Package:       e.Package,
			DisplayName:   e.DisplayName,
			Description:   e.Description,
			DefaultWidth:  e.DefaultSize.Width,
			DefaultHeight: e.DefaultSize.Height,
		})
	}
	return nil, out, nil
}

func (s *Server) handlePlaceWidget(_ context.Context, _ *mcpsdk.CallToolRequest, args PlaceWidgetInput) (*mcpsdk.CallToolResult, WidgetOutput, error) {
	var rect *geometry.Rect
	if args.X != nil || args.Y != nil || args.W != nil || args.H != nil {
		r := geometry.Rect{}
		if size, ok := s.defaultSize(args.Package); ok {
			r.Width = size.Width
			r.Height = size.Height
		}
		r = applyRect(r, args.X, args.Y, args.W, args.H)
		if err := r.Validate(); err != nil {
			return nil, WidgetOutput{}, err
		}
		rect = &r
	}

	w, err := s.sess.PlaceWidget(args.Screen, args.Package, rect)
	if err != nil {
		return nil, WidgetOutput{}, fmt.Errorf("failed to place %q on screen %q: %w", args.Package, args.Screen, err)
	}
	s.logger.Info("mcp place_widget", "screen", args.Screen, "package", args.Package, "id", w.ID)
	return nil, WidgetOutput{Widget: w}, nil
}

func (s *Server) defaultSize(pkg string) (registry.Size, bool) {
	for _, e := range s.sess.Packages() {
		if e.Package == pkg {
			return e.DefaultSize, true
		}
	}
	return registry.Size{}, false
}

func (s *Server) handleSetWidgetGeometry(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWidgetGeometryInput) (*mcpsdk.CallToolResult, WidgetOutput, error) {
	id, err := session.ParseWidgetID(args.ID)
	if err != nil {
		return nil, WidgetOutput{}, err
	}
	cur, ok := findWidget(s.sess.Snapshot(), id.String())
	if !ok {
		return nil, WidgetOutput{}, fmt.Errorf("no widget with id %s", id)
	}

	r := applyRect(geometry.Rect{X: cur.X, Y: cur.Y, Width: cur.Width, Height: cur.Height}, args.X, args.Y, args.W, args.H)
	if err := s.sess.SetWidgetGeometry(id, r); err != nil {
		return nil, WidgetOutput{}, fmt.Errorf("failed to update widget %s: %w", id, err)
	}
	cur.X, cur.Y, cur.Width, cur.Height = r.X, r.Y, r.Width, r.Height
	return nil, WidgetOutput{Widget: cur}, nil
}

func (s *Server) handleRemoveWidget(_ context.Context, _ *mcpsdk.CallToolRequest, args RemoveWidgetInput) (*mcpsdk.CallToolResult, RemoveWidgetOutput, error) {
	id, err := session.ParseWidgetID(args.ID)
	if err != nil {
		return nil, RemoveWidgetOutput{}, err
	}
	if err := s.sess.RemoveWidget(id); err != nil {
		return nil, RemoveWidgetOutput{}, fmt.Errorf("failed to remove widget %s: %w", id, err)
	}
	s.logger.Info("mcp remove_widget", "id", id)
	return nil, RemoveWidgetOutput{Removed: true}, nil
}

func (s *Server) handleSetWindowState(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowStateInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	w, err := s.sess.SetWindowState(session.WindowUpdate{
		Title:      args.Title,
		X:          args.X,
		Y:          args.Y,
		Width:      args.W,
		Height:     args.H,
		Maximized:  args.Maximize,
		Fullscreen: args.Fullscreen,
	})
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: w}, nil
}

func (s *Server) handleSaveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SaveLayoutInput) (*mcpsdk.CallToolResult, SaveLayoutOutput, error) {
	out := SaveLayoutOutput{Path: s.sess.Path()}
	if args.OnlyIfDirty {
		saved, err := s.sess.SaveIfDirty()
		if err != nil {
			return nil, out, err
		}
		out.Saved = saved
		return nil, out, nil
	}
	if err := s.sess.Save(); err != nil {
		return nil, out, err
	}
	out.Saved = true
	s.logger.Info("mcp save_layout", "path", out.Path)
	return nil, out, nil
}

func applyRect(r geometry.Rect, x, y, w, h *int) geometry.Rect {
	if x != nil {
		r.X = *x
	}
	if y != nil {
		r.Y = *y
	}
	if w != nil {
		r.Width = *w
	}
	if h != nil {
		r.Height = *h
	}
	return r
}

func findWidget(snap layout.Snapshot, id string) (layout.WidgetSnapshot, bool) {
	for _, scr := range snap.Screens {
		for _, w := range scr.Widgets {
			if w.ID == id {
				return w, true
			}
		}
	}
	return layout.WidgetSnapshot{}, false
}
