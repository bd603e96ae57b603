// Package mcp exposes a layout session as MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kcjengr/hazzy/internal/session"
)

const (
	ServerName    = "hazzy"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for layout editing.
type Server struct {
	mcpServer *mcpsdk.Server
	sess      *session.Session
	logger    *slog.Logger
}

// NewServer creates an MCP server operating on sess.
func NewServer(sess *session.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		sess:   sess,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_screens",
		Description: "List the main window state and every screen in display order with its widgets, their instance ids and geometry. Instance ids are valid for the lifetime of this server.",
	}, s.handleListScreens)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_screen",
		Description: "Append a new empty screen. Screen names must be unique.",
	}, s.handleAddScreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_screen",
		Description: "Remove a screen and every widget placed on it.",
	}, s.handleRemoveScreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reorder_screen",
		Description: "Move a screen to a new zero-based position. Other screens keep their relative order.",
	}, s.handleReorderScreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rename_screen",
		Description: "Change a screen's display title. The screen name cannot change.",
	}, s.handleRenameScreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_widget_packages",
		Description: "List the widget packages that can be placed, with display names and default sizes.",
	}, s.handleListWidgetPackages)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "place_widget",
		Description: "Place a new widget instance on a screen. Omitted geometry defaults to the origin and the package's default size.",
	}, s.handlePlaceWidget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_widget_geometry",
		Description: "Move and/or resize a widget instance. Omitted fields keep their current value. Values must be non-negative.",
	}, s.handleSetWidgetGeometry)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_widget",
		Description: "Remove a widget instance from its screen.",
	}, s.handleRemoveWidget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_state",
		Description: "Change the main window's title, position, size or maximize/fullscreen flags. Omitted fields are unchanged.",
	}, s.handleSetWindowState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_layout",
		Description: "Write the layout file atomically. Changes made through the other tools are in memory until saved.",
	}, s.handleSaveLayout)
}
